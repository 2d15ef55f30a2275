// Package series provides time-series storage for simulation variables.
//
// Every state and flux variable in a network simulation is backed by a
// Variable, which records one value (scalar, vector, or higher rank) per
// simulated time step. A Variable stores its series through one of two
// interchangeable backends, selected per variable at run time:
//
//   - Resident: one in-memory array sized [horizon, shape...]. Reads and
//     writes are direct indexed access with no I/O.
//   - Paged: one fixed-record binary file per variable. Record i holds step
//     i's values in row-major order as 8-byte little-endian IEEE-754
//     floating-point numbers, so record size is 8*product(shape) bytes and
//     step i lives at byte offset i*recordSize. The file has no header.
//
// Backends can be swapped mid-run without losing content: SetMode reads the
// full series through the old backend and rewrites it through the new one
// before the old backend is discarded.
package series
