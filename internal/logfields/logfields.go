package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeySlug       = "slug"
	KeyPath       = "path"
	KeyFile       = "file"
	KeyTitle      = "title"
	KeyDocuments  = "documents"
	KeyEventID    = "event_id"
	KeyEventName  = "event_name"
	KeySink       = "sink"
	KeyURL        = "url"
	KeyMethod     = "method"
	KeyStatus     = "status"
	KeyUserAgent  = "user_agent"
	KeyRemoteAddr = "remote_addr"
	KeyDurationMS = "duration_ms"
	KeyJobName    = "job_name"
	KeyError      = "error"
	KeyRoute      = "route"
	KeyRequestID  = "request_id"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Slug(key string) slog.Attr       { return slog.String(KeySlug, key) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func File(f string) slog.Attr         { return slog.String(KeyFile, f) }
func Title(t string) slog.Attr        { return slog.String(KeyTitle, t) }
func Documents(n int) slog.Attr       { return slog.Int(KeyDocuments, n) }
func EventID(id string) slog.Attr     { return slog.String(KeyEventID, id) }
func EventName(n string) slog.Attr    { return slog.String(KeyEventName, n) }
func Sink(name string) slog.Attr      { return slog.String(KeySink, name) }
func URL(u string) slog.Attr          { return slog.String(KeyURL, u) }
func Method(m string) slog.Attr       { return slog.String(KeyMethod, m) }
func Status(code int) slog.Attr       { return slog.Int(KeyStatus, code) }
func UserAgent(ua string) slog.Attr   { return slog.String(KeyUserAgent, ua) }
func RemoteAddr(a string) slog.Attr   { return slog.String(KeyRemoteAddr, a) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Route(pattern string) slog.Attr  { return slog.String(KeyRoute, pattern) }
func RequestID(id string) slog.Attr   { return slog.String(KeyRequestID, id) }
func JobName(n string) slog.Attr      { return slog.String(KeyJobName, n) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
