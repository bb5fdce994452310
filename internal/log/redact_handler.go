package log

import (
	"context"
	"io"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
)

// MaskValue replaces redacted values in log output.
const MaskValue = "***REDACTED***"

// credentialKeys are attribute keys whose values are always masked,
// compared case-insensitively.
var credentialKeys = map[string]bool{
	"authorization":       true,
	"proxy-authorization": true,
	"cookie":              true,
	"set-cookie":          true,
	"x-api-key":           true,
	"x-auth-token":        true,
	"api_key":             true,
	"apikey":              true,
	"access_token":        true,
	"refresh_token":       true,
	"password":            true,
	"secret":              true,
	"token":               true,
	"session":             true,
	"session_id":          true,
}

// credentialValuePatterns match values that are credentials regardless
// of the attribute key they arrive under.
var credentialValuePatterns = []*regexp.Regexp{
	// JWT
	regexp.MustCompile(`^eyJ[A-Za-z0-9_-]+\.eyJ[A-Za-z0-9_-]+\.[A-Za-z0-9_-]*$`),
	// Authorization header values pasted wholesale
	regexp.MustCompile(`(?i)^(bearer|basic)\s+\S+`),
}

// sensitiveQueryParams are query-string parameter names whose values
// get masked when a URL is logged. The URL itself stays visible since
// it is the primary debugging handle for a crawl.
var sensitiveQueryParams = map[string]bool{
	"token":        true,
	"access_token": true,
	"api_key":      true,
	"apikey":       true,
	"key":          true,
	"auth":         true,
	"session":      true,
	"sid":          true,
	"password":     true,
	"secret":       true,
	"signature":    true,
}

// RedactHandler wraps an slog.Handler and masks credentials in records
// before they reach it. Wrapping at the handler level means every
// component that accepts a *slog.Logger gets redaction for free, with
// any output format underneath.
type RedactHandler struct {
	handler slog.Handler
}

// NewRedactHandler wraps handler with credential redaction. A nil
// handler falls back to slog.Default's handler.
func NewRedactHandler(handler slog.Handler) *RedactHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &RedactHandler{handler: handler}
}

// Enabled delegates to the underlying handler.
func (h *RedactHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle rebuilds the record with redacted attributes and forwards it.
func (h *RedactHandler) Handle(ctx context.Context, r slog.Record) error {
	clean := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		clean.AddAttrs(h.redactAttr(a))
		return true
	})
	return h.handler.Handle(ctx, clean)
}

// WithAttrs redacts the attributes before adding them.
func (h *RedactHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clean := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		clean[i] = h.redactAttr(a)
	}
	return &RedactHandler{handler: h.handler.WithAttrs(clean)}
}

// WithGroup delegates to the underlying handler.
func (h *RedactHandler) WithGroup(name string) slog.Handler {
	return &RedactHandler{handler: h.handler.WithGroup(name)}
}

func (h *RedactHandler) redactAttr(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		members := a.Value.Group()
		clean := make([]slog.Attr, len(members))
		for i, m := range members {
			clean[i] = h.redactAttr(m)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(clean...)}
	}

	if credentialKeys[strings.ToLower(a.Key)] {
		return slog.String(a.Key, MaskValue)
	}

	if a.Value.Kind() == slog.KindString {
		v := a.Value.String()
		if isCredentialValue(v) {
			return slog.String(a.Key, MaskValue)
		}
		if scrubbed, changed := ScrubURL(v); changed {
			return slog.String(a.Key, scrubbed)
		}
	}

	return a
}

func isCredentialValue(v string) bool {
	for _, p := range credentialValuePatterns {
		if p.MatchString(v) {
			return true
		}
	}
	return false
}

// ScrubURL masks the values of sensitive query parameters in a URL
// string, and any userinfo in the authority. Non-URL strings are
// returned unchanged with changed=false.
func ScrubURL(s string) (scrubbed string, changed bool) {
	if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
		return s, false
	}
	u, err := url.Parse(s)
	if err != nil {
		return s, false
	}

	if u.User != nil {
		u.User = url.User(MaskValue)
		changed = true
	}

	q := u.Query()
	for name := range q {
		if sensitiveQueryParams[strings.ToLower(name)] {
			q.Set(name, MaskValue)
			changed = true
		}
	}
	if !changed {
		return s, false
	}
	u.RawQuery = q.Encode()
	return u.String(), true
}

// NewLogger returns a text-format logger with credential redaction.
// Verbose selects debug level; the default level is info so crawl
// progress stays visible.
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	return slog.New(NewRedactHandler(slog.NewTextHandler(w, handlerOptions(verbose))))
}

// NewJSONLogger returns a JSON-format logger with credential
// redaction, for structured log aggregation.
func NewJSONLogger(w io.Writer, verbose bool) *slog.Logger {
	return slog.New(NewRedactHandler(slog.NewJSONHandler(w, handlerOptions(verbose))))
}

func handlerOptions(verbose bool) *slog.HandlerOptions {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return &slog.HandlerOptions{Level: level}
}
