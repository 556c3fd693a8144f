package backup

import "fmt"

// ExportError aborts an export. Nothing is written.
type ExportError struct {
	Reason string
	Err    error
}

func (e *ExportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("backup: export: %s: %v", e.Reason, e.Err)
	}
	return "backup: export: " + e.Reason
}

func (e *ExportError) Unwrap() error { return e.Err }

// ImportError means nothing was restored. Warnings collected before the
// failure are kept for display.
type ImportError struct {
	Reason   string
	Warnings []string
	Err      error
}

func (e *ImportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("backup: import: %s: %v", e.Reason, e.Err)
	}
	return "backup: import: " + e.Reason
}

func (e *ImportError) Unwrap() error { return e.Err }
