package graphdb

import "fmt"

// ConnectionError reports that the graph store is unreachable. The runner
// checks connectivity before discovery starts, so a bad endpoint fails fast
// instead of after minutes of API calls.
type ConnectionError struct {
	URI string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("graph store %s unreachable: %v", e.URI, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// WriteError reports a failed batch commit. Committed and Pending let the
// caller say exactly how much of the graph landed before the failure.
type WriteError struct {
	Batch     int
	Committed int
	Pending   int
	Err       error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("graph write failed at batch %d (%d records committed, %d pending): %v",
		e.Batch, e.Committed, e.Pending, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }
