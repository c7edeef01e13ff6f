package dag

import "fmt"

// MalformedError reports that a pipeline's edges reference node ids that do
// not exist among its nodes.
type MalformedError struct {
	Edge   string
	Detail string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("dag: malformed pipeline, edge %s: %s", e.Edge, e.Detail)
}

// CyclicError reports that a pipeline's edges form a cycle, so no valid
// execution order exists.
type CyclicError struct {
	Scheduled int
	Total     int
}

func (e *CyclicError) Error() string {
	return fmt.Sprintf("dag: pipeline contains a cycle (scheduled %d of %d nodes)", e.Scheduled, e.Total)
}
