package report

import "fmt"

// MissingRecordError means the records needed for a document do not exist.
type MissingRecordError struct {
	Kind string
	Key  string
}

func (e *MissingRecordError) Error() string {
	if e.Key == "" {
		return e.Kind + " not found"
	}
	return fmt.Sprintf("%s not found: %s", e.Kind, e.Key)
}

// RenderError means the PDF renderer failed to produce output.
type RenderError struct {
	Err error
}

func (e *RenderError) Error() string {
	return "rendering pdf: " + e.Err.Error()
}

func (e *RenderError) Unwrap() error { return e.Err }
