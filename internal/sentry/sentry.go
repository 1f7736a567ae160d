package sentry

import (
	"os"
	"regexp"
	"time"

	"github.com/getsentry/sentry-go"
)

const (
	flushTimeout = 2 * time.Second
)

var (
	homePathPattern   = regexp.MustCompile(`(?i)(/users/|/home/|[a-z]:\\users\\)([^/\\\s]+)`)
	anthropicPattern  = regexp.MustCompile(`sk-ant-([a-z0-9]+)-[A-Za-z0-9_\-]+`)
	groqKeyPattern    = regexp.MustCompile(`gsk_[A-Za-z0-9]+`)
	genericKeyPattern = regexp.MustCompile(`(?i)((?:api_key|token|secret)\s*[:=]\s*)\S+`)
	emailPattern      = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
)

// scrubPII strips home directory user names, provider keys and email
// addresses. Tracebacks routinely carry the first two.
func scrubPII(s string) string {
	if s == "" {
		return s
	}
	s = homePathPattern.ReplaceAllString(s, "${1}[user]")
	s = anthropicPattern.ReplaceAllString(s, "sk-ant-${1}-[REDACTED]")
	s = groqKeyPattern.ReplaceAllString(s, "gsk_[REDACTED]")
	s = genericKeyPattern.ReplaceAllString(s, "${1}[REDACTED]")
	s = emailPattern.ReplaceAllString(s, "[email]")
	return s
}

func scrubEvent(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
	event.Message = scrubPII(event.Message)
	for i := range event.Exception {
		event.Exception[i].Value = scrubPII(event.Exception[i].Value)
	}
	for i := range event.Breadcrumbs {
		event.Breadcrumbs[i].Message = scrubPII(event.Breadcrumbs[i].Message)
	}
	return event
}

// Init initializes the Sentry SDK with the given version.
// If SENTRY_DSN is not set, Sentry is disabled (no-op).
// Returns a cleanup function that should be deferred.
func Init(version string) func() {
	dsn := os.Getenv("SENTRY_DSN")
	if dsn == "" {
		return func() {}
	}

	env := os.Getenv("SENTRY_ENVIRONMENT")
	if env == "" {
		env = "production"
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		Release:          "advisor@" + version,
		Environment:      env,
		AttachStacktrace: true,
		SampleRate:       1.0,
		BeforeSend:       scrubEvent,
	})
	if err != nil {
		return func() {}
	}

	return func() {
		sentry.Flush(flushTimeout)
	}
}

// CaptureError reports an error to Sentry if initialized.
// Safe to call even if Sentry is not configured.
func CaptureError(err error) {
	if err == nil {
		return
	}
	sentry.CaptureException(err)
}

// RecoverAndPanic recovers from a panic, reports it to Sentry,
// then re-panics. Use with defer at top-level entry points.
func RecoverAndPanic() {
	if r := recover(); r != nil {
		sentry.CurrentHub().Recover(r)
		sentry.Flush(flushTimeout)
		panic(r)
	}
}

// AddBreadcrumb adds context for debugging.
func AddBreadcrumb(category, message string) {
	sentry.AddBreadcrumb(&sentry.Breadcrumb{
		Category: category,
		Message:  message,
		Level:    sentry.LevelInfo,
	})
}

// SetTag sets a tag for filtering errors.
func SetTag(key, value string) {
	sentry.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetTag(key, value)
	})
}
