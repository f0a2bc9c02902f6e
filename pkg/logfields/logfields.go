package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field names shared across packages.
const (
	KeyPostUID    = "post_uid"
	KeyDocumentID = "document_id"
	KeyCursor     = "cursor"
	KeyOp         = "op"
	KeyRequestID  = "request_id"
	KeyDurationMS = "duration_ms"
	KeyPath       = "path"
	KeyError      = "error"
)

func PostUID(uid string) slog.Attr    { return slog.String(KeyPostUID, uid) }
func DocumentID(id string) slog.Attr  { return slog.String(KeyDocumentID, id) }
func Cursor(c string) slog.Attr       { return slog.String(KeyCursor, c) }
func Op(op string) slog.Attr          { return slog.String(KeyOp, op) }
func RequestID(id string) slog.Attr   { return slog.String(KeyRequestID, id) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }

// Elapsed logs d as fractional milliseconds.
func Elapsed(d time.Duration) slog.Attr { return DurationMS(float64(d.Microseconds()) / 1000) }
func Path(p string) slog.Attr           { return slog.String(KeyPath, p) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
