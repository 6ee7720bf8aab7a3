package core

// Logger is any leveled logging service. Implementations may inspect trailing
// args for context objects (error, resolved profile, ...) to enrich reports.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
