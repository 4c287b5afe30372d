package graph

import (
	"errors"
	"fmt"
)

// ErrNoPath reports that both endpoints exist but no directed sequence of
// non-closed arcs connects them.
var ErrNoPath = errors.New("no route available between these locations")

// ErrInvalidMetric is returned by boundary layers that reject unknown
// optimization metrics instead of defaulting to time.
var ErrInvalidMetric = errors.New("invalid optimization metric")

// NotFoundError reports that a query endpoint is not a vertex of the
// current graph (unknown or inactive location). Endpoint names which side
// failed: "source", "destination", or "location".
type NotFoundError struct {
	Endpoint string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s location %q not found or inactive", e.Endpoint, e.ID)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
