package das

import "fmt"

// SchemaError reports a missing or malformed required header field.
type SchemaError struct {
	Field  string
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("das: field %q: %s", e.Field, e.Reason)
}

// FormatError reports an unrecognized or mismatched format tag.
type FormatError struct {
	Path   string
	Reason string
}

func (e *FormatError) Error() string {
	if e.Path == "" {
		return "das: " + e.Reason
	}
	return fmt.Sprintf("das: %s: %s", e.Path, e.Reason)
}

// UnsupportedValueTypeError reports a meta-tree leaf whose value cannot
// be represented in the container.
type UnsupportedValueTypeError struct {
	Path  string
	Value any
}

func (e *UnsupportedValueTypeError) Error() string {
	return fmt.Sprintf("das: meta leaf %q: unsupported value type %T", e.Path, e.Value)
}

// WriteError wraps an I/O failure while persisting a container.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("das: writing %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// ReadError wraps an I/O failure while loading a container.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("das: reading %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }
