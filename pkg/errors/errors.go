package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ParseError represents a YAML parsing failure with optional line metadata.
type ParseError struct {
	Path    string
	Line    int
	Message string
	Err     error
}

// NewParseError constructs a ParseError.
func NewParseError(path string, line int, err error) error {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &ParseError{Path: path, Line: line, Message: message, Err: err}
}

func (e *ParseError) Error() string {
	if e == nil {
		return ""
	}

	if e.Line > 0 {
		return fmt.Sprintf("parse error: %s:%d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("parse error: %s: %s", e.Path, e.Message)
}

// Unwrap exposes the underlying error.
func (e *ParseError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ValidationError captures invalid configuration or invalid answers.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// NewValidationError constructs a ValidationError.
func NewValidationError(field, message string, err error) error {
	return &ValidationError{Field: field, Message: message, Err: err}
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Field != "" {
		return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// Unwrap exposes the underlying error.
func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ConfigurationError reports an unsatisfiable handler ordering or a broken
// plugin registration. It is always fatal.
type ConfigurationError struct {
	Stage   string
	Message string
	Cycle   []string
}

// NewConfigurationError constructs a ConfigurationError.
func NewConfigurationError(stage, message string) error {
	return &ConfigurationError{Stage: stage, Message: message}
}

// NewCycleError constructs a ConfigurationError describing an ordering cycle.
func NewCycleError(stage string, cycle []string) error {
	return &ConfigurationError{Stage: stage, Message: "ordering cycle detected", Cycle: cycle}
}

func (e *ConfigurationError) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Message
	if len(e.Cycle) > 0 {
		sequence := append(append([]string{}, e.Cycle...), e.Cycle[0])
		msg = fmt.Sprintf("%s: %s", msg, strings.Join(sequence, " -> "))
	}
	if e.Stage != "" {
		return fmt.Sprintf("configuration error in stage %s: %s", e.Stage, msg)
	}
	return fmt.Sprintf("configuration error: %s", msg)
}

// HandlerError represents a fault raised by an event handler.
type HandlerError struct {
	Handler string
	Stage   string
	Err     error
}

// NewHandlerError constructs a HandlerError.
func NewHandlerError(handler, stage string, err error) error {
	return &HandlerError{Handler: handler, Stage: stage, Err: err}
}

func (e *HandlerError) Error() string {
	if e == nil {
		return ""
	}
	if e.Handler != "" {
		return fmt.Sprintf("handler %s failed in stage %s: %v", e.Handler, e.Stage, e.Err)
	}
	return fmt.Sprintf("handler failed in stage %s: %v", e.Stage, e.Err)
}

// Unwrap exposes the root error.
func (e *HandlerError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ProtocolError reports a dialog exchange that breaks the line protocol.
type ProtocolError struct {
	Message string
	Err     error
}

// NewProtocolError constructs a ProtocolError.
func NewProtocolError(message string, err error) error {
	return &ProtocolError{Message: message, Err: err}
}

func (e *ProtocolError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("protocol error: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("protocol error: %s", e.Message)
}

// Unwrap exposes the underlying error.
func (e *ProtocolError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// AbortError signals a deliberate cancellation requested by the user or the
// remote controller.
type AbortError struct {
	Reason string
}

// NewAbortError constructs an AbortError.
func NewAbortError(reason string) error {
	return &AbortError{Reason: reason}
}

func (e *AbortError) Error() string {
	if e == nil {
		return ""
	}
	if e.Reason == "" {
		return "aborted"
	}
	return "aborted: " + e.Reason
}

// IsAbort reports whether err, or anything it wraps, is an AbortError.
func IsAbort(err error) bool {
	var abortErr *AbortError
	return errors.As(err, &abortErr)
}

// TransactionError reports an element that failed to prepare or commit, or
// an illegal transaction state transition.
type TransactionError struct {
	Element string
	Message string
	Err     error
}

// NewTransactionError constructs a TransactionError.
func NewTransactionError(element, message string, err error) error {
	return &TransactionError{Element: element, Message: message, Err: err}
}

func (e *TransactionError) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Message
	if e.Element != "" {
		msg = fmt.Sprintf("%s: %s", e.Element, msg)
	}
	if e.Err != nil {
		return fmt.Sprintf("transaction error: %s: %v", msg, e.Err)
	}
	return fmt.Sprintf("transaction error: %s", msg)
}

// Unwrap exposes the underlying error.
func (e *TransactionError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IOError reports a filesystem or OS call failure.
type IOError struct {
	Op   string
	Path string
	Err  error
}

// NewIOError constructs an IOError.
func NewIOError(op, path string, err error) error {
	return &IOError{Op: op, Path: path, Err: err}
}

func (e *IOError) Error() string {
	if e == nil {
		return ""
	}
	if e.Path != "" {
		return fmt.Sprintf("io error: %s %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("io error: %s: %v", e.Op, e.Err)
}

// Unwrap exposes the underlying error.
func (e *IOError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ServiceError reports a service control command that did not succeed.
type ServiceError struct {
	Service string
	Action  string
	Err     error
}

// NewServiceError constructs a ServiceError.
func NewServiceError(service, action string, err error) error {
	return &ServiceError{Service: service, Action: action, Err: err}
}

func (e *ServiceError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("failed to %s service '%s': %v", e.Action, e.Service, e.Err)
	}
	return fmt.Sprintf("failed to %s service '%s'", e.Action, e.Service)
}

// Unwrap exposes the underlying error.
func (e *ServiceError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// PluginError indicates issues within plugin registration.
type PluginError struct {
	Plugin  string
	Message string
	Err     error
}

// NewPluginError constructs a PluginError for the given plugin name.
func NewPluginError(plugin string, err error) error {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &PluginError{Plugin: plugin, Message: message, Err: err}
}

func (e *PluginError) Error() string {
	if e == nil {
		return ""
	}
	if e.Plugin != "" {
		return fmt.Sprintf("plugin error [%s]: %s", e.Plugin, e.Message)
	}
	return fmt.Sprintf("plugin error: %s", e.Message)
}

// Unwrap exposes the underlying error.
func (e *PluginError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
