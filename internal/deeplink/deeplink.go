// Package deeplink turns raw launch/open URLs into routable descriptors.
//
// Deep links are advisory: anything that does not look like one of ours resolves
// to nil rather than an error.
package deeplink

import (
	"net/url"
	"regexp"
	"strings"
)

const (
	// AppScheme is the custom URL scheme registered for the client.
	AppScheme = "relay://"
	// WebLinkHost is the canonical https prefix used in shared links.
	WebLinkHost = "https://go.relay.chat/"
)

type Kind string

const (
	KindRoom Kind = "room"
	KindAuth Kind = "auth"
)

// Route is the canonical form of a deep link. Treat it as immutable once built.
type Route struct {
	Kind   Kind              `json:"kind" yaml:"kind"`
	Params map[string]string `json:"params" yaml:"params"`
}

func (r *Route) Param(name string) string {
	if r == nil || r.Params == nil {
		return ""
	}
	return r.Params[name]
}

func (r *Route) Clone() *Route {
	if r == nil {
		return nil
	}
	out := &Route{Kind: r.Kind, Params: make(map[string]string, len(r.Params))}
	for k, v := range r.Params {
		out.Params[k] = v
	}
	return out
}

// QueryParser turns the query part of a deep link into flat params.
type QueryParser interface {
	Parse(query string) map[string]string
}

// URLQuery parses application/x-www-form-urlencoded queries. For repeated keys the
// last value wins.
type URLQuery struct{}

func (URLQuery) Parse(query string) map[string]string {
	out := map[string]string{}
	// ParseQuery keeps every pair it could decode even when it reports an error.
	values, _ := url.ParseQuery(query)
	for k, vs := range values {
		if len(vs) == 0 {
			continue
		}
		out[k] = vs[len(vs)-1]
	}
	return out
}

var kindPattern = regexp.MustCompile(`^(room|auth)\?`)

type Resolver struct {
	Parser QueryParser
}

var defaultResolver = Resolver{Parser: URLQuery{}}

// Resolve resolves raw with the default query parser.
func Resolve(raw string) *Route {
	return defaultResolver.Resolve(raw)
}

// Resolve returns the route described by raw, or nil when raw is not a usable deep link.
func (r Resolver) Resolve(raw string) *Route {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	rest := raw
	switch {
	case strings.HasPrefix(rest, AppScheme):
		rest = strings.TrimPrefix(rest, AppScheme)
	case strings.HasPrefix(rest, WebLinkHost):
		rest = strings.TrimPrefix(rest, WebLinkHost)
	}

	m := kindPattern.FindStringSubmatch(rest)
	if m == nil {
		return nil
	}
	query := strings.TrimSpace(rest[len(m[0]):])
	if query == "" {
		return nil
	}

	parser := r.Parser
	if parser == nil {
		parser = URLQuery{}
	}
	params := parser.Parse(query)
	if params == nil {
		params = map[string]string{}
	}
	return &Route{Kind: Kind(m[1]), Params: params}
}
