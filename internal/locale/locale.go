// Package locale translates screen titles.
package locale

import (
	"embed"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"

	"relay-cli/internal/routes"
)

//go:embed locales/*.toml
var localesFS embed.FS

var supported = []language.Tag{language.English, language.German}

// Translator resolves header titles for one language, falling back to English
// and then to the message id itself.
type Translator struct {
	tag       language.Tag
	localizer *i18n.Localizer
}

func New(lang string) (*Translator, error) {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)
	for _, tag := range supported {
		if _, err := bundle.LoadMessageFileFS(localesFS, "locales/active."+tag.String()+".toml"); err != nil {
			return nil, err
		}
	}

	tag := Match(lang)
	return &Translator{
		tag:       tag,
		localizer: i18n.NewLocalizer(bundle, tag.String(), language.English.String()),
	}, nil
}

// Match picks the closest supported language for a BCP 47 tag such as "de-AT".
func Match(lang string) language.Tag {
	lang = strings.TrimSpace(lang)
	if lang == "" {
		return language.English
	}
	desired, _, err := language.ParseAcceptLanguage(lang)
	if err != nil || len(desired) == 0 {
		return language.English
	}
	_, idx, conf := language.NewMatcher(supported).Match(desired...)
	if conf == language.No {
		return language.English
	}
	return supported[idx]
}

func (t *Translator) Tag() language.Tag { return t.tag }

// Text localizes id, returning id when no translation exists.
func (t *Translator) Text(id string) string {
	if t == nil || id == "" {
		return id
	}
	s, err := t.localizer.Localize(&i18n.LocalizeConfig{MessageID: id})
	if err != nil || s == "" {
		return id
	}
	return s
}

// Title is the header title of n: its TitleID when set, else its view's name.
func (t *Translator) Title(n routes.Node) string {
	id := n.Header.TitleID
	if id == "" {
		id = n.View
	}
	if id == "" {
		id = n.Name
	}
	return t.Text(id)
}

// Languages lists the supported language tags.
func Languages() []string {
	out := make([]string, 0, len(supported))
	for _, tag := range supported {
		out = append(out, tag.String())
	}
	return out
}
