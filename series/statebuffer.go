package series

// A StateBuffer is the double-buffered pair behind every stateful variable.
// Process models compute into the current side while still reading the
// previous step's value from the previous side; Commit promotes current to
// previous once the full step has completed.
type StateBuffer struct {
	previous *Variable
	current  *Variable
}

// NewStateBuffer creates a StateBuffer with two same-shaped variables named
// name.Old and name.New. Only the current side is a state variable that the
// runner records per step; the previous side is a working copy.
func NewStateBuffer(name string, shape ...int) *StateBuffer {
	return &StateBuffer{
		previous: NewVariable(name+".Old", shape...),
		current:  NewVariable(name+".New", shape...).MarkState(),
	}
}

// Current returns the current-step side.
func (s *StateBuffer) Current() *Variable {
	return s.current
}

// Previous returns the previous-step side.
func (s *StateBuffer) Previous() *Variable {
	return s.previous
}

// Commit copies the current value into the previous side. Committing twice
// without an intervening write leaves both sides equal.
func (s *StateBuffer) Commit() {
	copy(s.previous.value, s.current.value)
}
