package runner

import (
	"fmt"
	"strings"
)

// UndefinedStateError reports a produced state with no transition entry
// under strict handling.
type UndefinedStateError struct {
	State string
	Node  string
}

func (e *UndefinedStateError) Error() string {
	return fmt.Sprintf("undefined state %q (node '%s')", e.State, e.Node)
}

// MaxIterationsError reports that the execution-count bound was exceeded.
// PathTail holds the last visited nodes for diagnosis.
type MaxIterationsError struct {
	Max      int
	PathTail []string
}

func (e *MaxIterationsError) Error() string {
	return fmt.Sprintf("max iterations (%d) reached; recent path: %s",
		e.Max, strings.Join(e.PathTail, " -> "))
}
