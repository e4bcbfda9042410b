package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID     = "build_id"
	KeyStage       = "stage"
	KeyDurationMS  = "duration_ms"
	KeyPath        = "path"
	KeySource      = "source"
	KeyDestination = "destination"
	KeyLogicalName = "logical_name"
	KeyArtifact    = "artifact"
	KeyCount       = "count"
	KeyTool        = "tool"
	KeyMode        = "mode"
	KeyError       = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr       { return slog.String(KeyBuildID, id) }
func Stage(name string) slog.Attr       { return slog.String(KeyStage, name) }
func DurationMS(ms float64) slog.Attr   { return slog.Float64(KeyDurationMS, ms) }
func Path(p string) slog.Attr           { return slog.String(KeyPath, p) }
func Source(p string) slog.Attr         { return slog.String(KeySource, p) }
func Destination(p string) slog.Attr    { return slog.String(KeyDestination, p) }
func LogicalName(n string) slog.Attr    { return slog.String(KeyLogicalName, n) }
func Artifact(name string) slog.Attr    { return slog.String(KeyArtifact, name) }
func Count(n int) slog.Attr             { return slog.Int(KeyCount, n) }
func Tool(program string) slog.Attr     { return slog.String(KeyTool, program) }
func Mode(mode string) slog.Attr        { return slog.String(KeyMode, mode) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
