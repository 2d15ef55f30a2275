package sim

import (
	"errors"
	"fmt"
	"strings"
)

// ErrAlreadyClosed reports a call into a StepRunner that has already
// finished its run.
var ErrAlreadyClosed = errors.New("step runner is closed")

// A RoleArityError reports connecting a second router to a role that the
// producer's process model declares as single-peer.
type RoleArityError struct {
	Producer string
	Router   string
	Role     Role
}

func (e *RoleArityError) Error() string {
	return fmt.Sprintf(
		"cannot connect router %s to role %s of producer %s: role accepts a single peer",
		e.Router, e.Role, e.Producer)
}

// A CyclicGraphError reports that the active subgraph contains a directed
// cycle and therefore admits no causal execution order. Cycle names one
// minimal cycle, in traversal order, with the first device repeated at the
// end.
type CyclicGraphError struct {
	Cycle []string
}

func (e *CyclicGraphError) Error() string {
	return "device graph contains a cycle: " + strings.Join(e.Cycle, " -> ")
}
