package series

import (
	"fmt"
	"log"
)

// StorageMode selects the backend that holds a variable's time series.
type StorageMode int

// The two supported storage modes.
const (
	// Resident keeps the whole series in one in-memory array.
	Resident StorageMode = iota

	// Paged keeps the series in a fixed-record binary file, one record per
	// step, transferred on every read and write.
	Paged
)

func (m StorageMode) String() string {
	switch m {
	case Resident:
		return "resident"
	case Paged:
		return "paged"
	default:
		return fmt.Sprintf("StorageMode(%d)", int(m))
	}
}

// backend is the storage strategy behind an activated Variable.
type backend interface {
	read(step int, dst []float64) error
	write(step int, src []float64) error
	close() error
}

// A Variable is one simulated quantity recorded over the full time horizon.
// It has a fixed rank and per-step shape, a working value holding the
// current step, and an activatable series backend.
//
// The working value slice is allocated once and never reallocated while the
// variable keeps its shape, so it is safe to alias for zero-copy linking.
type Variable struct {
	name    string
	shape   []int
	length  int
	isState bool

	value []float64

	path     string
	prefMode *StorageMode
	mode     StorageMode
	horizon  int
	store    backend
}

// NewVariable creates a deactivated Variable. The shape is the per-step
// value shape; no dimensions means a scalar. All dimensions must be
// positive.
func NewVariable(name string, shape ...int) *Variable {
	length := 1
	for _, dim := range shape {
		if dim <= 0 {
			log.Panicf("variable %s: shape dimension must be positive", name)
		}
		length *= dim
	}

	return &Variable{
		name:   name,
		shape:  append([]int(nil), shape...),
		length: length,
		value:  make([]float64, length),
	}
}

// Name returns the variable's name.
func (v *Variable) Name() string {
	return v.name
}

// Rank returns the number of dimensions of the per-step value.
func (v *Variable) Rank() int {
	return len(v.shape)
}

// Shape returns a copy of the per-step value shape.
func (v *Variable) Shape() []int {
	return append([]int(nil), v.shape...)
}

// Len returns the number of floating-point values per step.
func (v *Variable) Len() int {
	return v.length
}

// MarkState flags the variable as a state quantity and returns the variable
// for chaining during declaration.
func (v *Variable) MarkState() *Variable {
	v.isState = true
	return v
}

// IsState reports whether the variable is a state quantity.
func (v *Variable) IsState() bool {
	return v.isState
}

// SetPath declares the file that backs the variable in Paged mode. Required
// before activating in Paged mode or switching to it.
func (v *Variable) SetPath(path string) {
	v.path = path
}

// Path returns the declared paged-file path, or an empty string.
func (v *Variable) Path() string {
	return v.path
}

// SetPreferredMode requests a storage mode for the variable, overriding the
// run-wide default the driver activates variables with.
func (v *Variable) SetPreferredMode(mode StorageMode) {
	v.prefMode = &mode
}

// PreferredMode returns the requested storage mode, if any.
func (v *Variable) PreferredMode() (StorageMode, bool) {
	if v.prefMode == nil {
		return Resident, false
	}
	return *v.prefMode, true
}

// Mode returns the storage mode of the last activation.
func (v *Variable) Mode() StorageMode {
	return v.mode
}

// Horizon returns the number of steps of the last activation.
func (v *Variable) Horizon() int {
	return v.horizon
}

// IsActive reports whether the variable currently has a storage backend.
func (v *Variable) IsActive() bool {
	return v.store != nil
}

// Value returns the working value for the current step. The returned slice
// is the variable's own buffer; it stays valid for the variable's lifetime
// unless Reshape is called.
func (v *Variable) Value() []float64 {
	return v.value
}

// SetValue copies vals into the working value. It panics if the length does
// not match the variable's shape.
func (v *Variable) SetValue(vals []float64) {
	if len(vals) != v.length {
		log.Panicf("variable %s: value length %d does not match shape length %d",
			v.name, len(vals), v.length)
	}
	copy(v.value, vals)
}

// Scalar returns the working value of a rank-0 or single-element variable.
func (v *Variable) Scalar() float64 {
	return v.value[0]
}

// SetScalar sets the working value of a rank-0 or single-element variable.
func (v *Variable) SetScalar(val float64) {
	v.value[0] = val
}

// Reshape changes the per-step value shape. The rank must stay the same.
// Any buffered series content is discarded; the variable must be
// deactivated first. Aliases of the working value become stale.
func (v *Variable) Reshape(shape ...int) error {
	if len(shape) != len(v.shape) {
		return fmt.Errorf("variable %s: cannot change rank from %d to %d",
			v.name, len(v.shape), len(shape))
	}

	if v.store != nil {
		return fmt.Errorf("variable %s: cannot reshape while activated", v.name)
	}

	length := 1
	for _, dim := range shape {
		if dim <= 0 {
			return fmt.Errorf("variable %s: shape dimension must be positive",
				v.name)
		}
		length *= dim
	}

	v.shape = append([]int(nil), shape...)
	v.length = length
	v.value = make([]float64, length)

	return nil
}

// Activate attaches a storage backend for a run over horizon steps. A paged
// variable must have a declared path. Activating an already-active variable
// replaces the backend and discards its content.
func (v *Variable) Activate(mode StorageMode, horizon int) error {
	if horizon <= 0 {
		return fmt.Errorf("variable %s: horizon must be positive", v.name)
	}

	store, err := v.newBackend(mode, horizon)
	if err != nil {
		return err
	}

	if v.store != nil {
		_ = v.store.close()
	}

	v.store = store
	v.mode = mode
	v.horizon = horizon

	return nil
}

func (v *Variable) newBackend(
	mode StorageMode,
	horizon int,
) (backend, error) {
	switch mode {
	case Resident:
		return newResidentBackend(horizon, v.length), nil
	case Paged:
		if v.path == "" {
			return nil, &StorageUnavailableError{
				Variable: v.name,
				Reason:   "no file path declared for paged storage",
			}
		}
		return newPagedBackend(v.path, v.length)
	default:
		return nil, &StorageUnavailableError{
			Variable: v.name,
			Reason:   fmt.Sprintf("unknown storage mode %d", int(mode)),
		}
	}
}

// SetMode switches the storage backend while preserving already-written
// content. The full series is read through the old backend and rewritten
// through the new one before the old backend is discarded.
func (v *Variable) SetMode(mode StorageMode) error {
	if v.store == nil {
		return &StorageUnavailableError{
			Variable: v.name,
			Reason:   "variable is not activated",
		}
	}

	if mode == v.mode {
		return nil
	}

	next, err := v.newBackend(mode, v.horizon)
	if err != nil {
		return err
	}

	record := make([]float64, v.length)
	for step := 0; step < v.horizon; step++ {
		if err := v.store.read(step, record); err != nil {
			_ = next.close()
			return fmt.Errorf("variable %s: migrating step %d: %w",
				v.name, step, err)
		}
		if err := next.write(step, record); err != nil {
			_ = next.close()
			return fmt.Errorf("variable %s: migrating step %d: %w",
				v.name, step, err)
		}
	}

	if err := v.store.close(); err != nil {
		_ = next.close()
		return fmt.Errorf("variable %s: closing old backend: %w", v.name, err)
	}

	v.store = next
	v.mode = mode

	return nil
}

// Deactivate flushes and releases the storage backend.
func (v *Variable) Deactivate() error {
	if v.store == nil {
		return nil
	}

	err := v.store.close()
	v.store = nil

	return err
}

func (v *Variable) checkStep(step int) error {
	if v.store == nil {
		return &StorageUnavailableError{
			Variable: v.name,
			Reason:   "variable is not activated",
		}
	}

	if step < 0 || step >= v.horizon {
		return &IndexOutOfRangeError{
			Variable: v.name,
			Step:     step,
			Horizon:  v.horizon,
		}
	}

	return nil
}

// Read returns a copy of the values recorded for a step.
func (v *Variable) Read(step int) ([]float64, error) {
	if err := v.checkStep(step); err != nil {
		return nil, err
	}

	record := make([]float64, v.length)
	if err := v.store.read(step, record); err != nil {
		return nil, err
	}

	return record, nil
}

// Write records vals as the values of a step.
func (v *Variable) Write(step int, vals []float64) error {
	if err := v.checkStep(step); err != nil {
		return err
	}

	if len(vals) != v.length {
		return fmt.Errorf("variable %s: value length %d does not match shape length %d",
			v.name, len(vals), v.length)
	}

	return v.store.write(step, vals)
}

// Load reads a step's record into the working value. Used on the per-step
// hot path to avoid allocation.
func (v *Variable) Load(step int) error {
	if err := v.checkStep(step); err != nil {
		return err
	}

	return v.store.read(step, v.value)
}

// Store records the working value as a step's record.
func (v *Variable) Store(step int) error {
	if err := v.checkStep(step); err != nil {
		return err
	}

	return v.store.write(step, v.value)
}
