package sqlboost

import "fmt"

// ConfigError reports a missing or invalid configuration field. It is
// surfaced immediately at construction time and is never retried.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("sqlboost: config field %q: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("sqlboost: config field %q is required", e.Field)
}

// ConnError wraps a driver-level failure while establishing or checking
// the underlying connection.
type ConnError struct {
	Engine Engine
	Err    error
}

func (e *ConnError) Error() string {
	return fmt.Sprintf("sqlboost: connect %s: %v", e.Engine, e.Err)
}

func (e *ConnError) Unwrap() error { return e.Err }

// ExecError wraps a driver-level failure while preparing or executing a
// statement. The original driver error is always preserved.
type ExecError struct {
	Query string
	Err   error
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("sqlboost: execute %q: %v", e.Query, e.Err)
}

func (e *ExecError) Unwrap() error { return e.Err }

// UsageError reports a builder method invoked out of order, such as a
// fetch with no staged query. It is fatal to the call and never retried.
type UsageError struct {
	Op     string
	Reason string
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("sqlboost: %s: %s", e.Op, e.Reason)
}
