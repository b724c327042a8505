package startup

import (
	"context"
	"strings"

	"relay-cli/internal/logging"
	"relay-cli/internal/telemetry"
)

// Permissions reads the user's crash-report permission.
type Permissions interface {
	CrashReportAllowed(ctx context.Context) (bool, error)
}

// OnError is what InitCrashReport does when the permission cannot be read.
type OnError string

const (
	OnErrorEnabled  OnError = "enabled"
	OnErrorDisabled OnError = "disabled"
)

// ParseOnError defaults to OnErrorEnabled.
func ParseOnError(s string) OnError {
	if strings.EqualFold(strings.TrimSpace(s), string(OnErrorDisabled)) {
		return OnErrorDisabled
	}
	return OnErrorEnabled
}

// InitCrashReport applies the crash-report permission on its own goroutine and
// closes the returned channel when done. When reporting is not allowed it
// turns off auto-notify, vetoes every report and disables analytics.
func InitCrashReport(ctx context.Context, perms Permissions, rep *telemetry.Reporter, an *telemetry.Analytics, onErr OnError) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		allowed := true
		if perms != nil {
			ok, err := perms.CrashReportAllowed(ctx)
			if err != nil {
				logging.For("startup").Warn("crash report permission unavailable", "err", err, "on_error", onErr)
				ok = onErr != OnErrorDisabled
			}
			allowed = ok
		}
		if allowed {
			return
		}
		if rep != nil {
			rep.SetAutoNotify(false)
			rep.RegisterBeforeSend(func(*telemetry.Report) bool { return false })
		}
		if an != nil {
			an.SetEnabled(false)
		}
	}()
	return done
}
