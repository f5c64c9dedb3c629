package sqlboost

// Logger is the fire-and-forget sink the access layer emits debug and
// error signals to. Implementations must not block; sqlboost never reads
// anything back from the sink. The context map may be nil.
type Logger interface {
	Debug(msg string, ctx map[string]interface{})
	Error(msg string, ctx map[string]interface{})
}

type nopLogger struct{}

func (nopLogger) Debug(string, map[string]interface{}) {}
func (nopLogger) Error(string, map[string]interface{}) {}
