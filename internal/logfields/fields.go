package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRoot       = "root"
	KeyArchive    = "archive"
	KeyPath       = "path"
	KeyFile       = "file"
	KeyEntries    = "entries"
	KeySizeBytes  = "size_bytes"
	KeyStatus     = "status"
	KeyRunID      = "run_id"
	KeyCommit     = "commit"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Root(r string) slog.Attr          { return slog.String(KeyRoot, r) }
func Archive(a string) slog.Attr       { return slog.String(KeyArchive, a) }
func Path(p string) slog.Attr          { return slog.String(KeyPath, p) }
func File(f string) slog.Attr          { return slog.String(KeyFile, f) }
func Entries(n int) slog.Attr          { return slog.Int(KeyEntries, n) }
func SizeBytes(n int64) slog.Attr      { return slog.Int64(KeySizeBytes, n) }
func Status(s string) slog.Attr        { return slog.String(KeyStatus, s) }
func RunID(id string) slog.Attr        { return slog.String(KeyRunID, id) }
func Commit(c string) slog.Attr        { return slog.String(KeyCommit, c) }
func DurationMS(ms float64) slog.Attr  { return slog.Float64(KeyDurationMS, ms) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
