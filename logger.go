package longrep

// Logger is the verbosity/debug collaborator from §9: "treat global
// verbosity/debug state as a logger collaborator; do not make it
// process-wide." A Writer or Reader defaults to a no-op logger; callers
// that want tracing set one explicitly with SetLogger.
type Logger interface {
	Debugf(format string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debugf(string, ...any) {}
