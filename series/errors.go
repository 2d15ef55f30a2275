package series

import "fmt"

// A StorageUnavailableError reports that a variable's storage backend cannot
// be used, either because activation preconditions are not met (a paged
// variable without a declared file path) or because the variable is not
// activated at all.
type StorageUnavailableError struct {
	Variable string
	Reason   string
}

func (e *StorageUnavailableError) Error() string {
	return fmt.Sprintf("storage unavailable for variable %s: %s",
		e.Variable, e.Reason)
}

// An IndexOutOfRangeError reports a read or write with a step index outside
// the configured horizon.
type IndexOutOfRangeError struct {
	Variable string
	Step     int
	Horizon  int
}

func (e *IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("step index %d out of range for variable %s, horizon %d",
		e.Step, e.Variable, e.Horizon)
}
