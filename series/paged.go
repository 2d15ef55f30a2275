package series

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
)

// pagedBackend stores one fixed-size record per step in a headerless binary
// file. The file is opened once on activation and the handle persists for
// the whole run; every read and write is a single positioned transfer.
type pagedBackend struct {
	file       *os.File
	recordLen  int
	recordSize int64
	scratch    []byte
}

func newPagedBackend(path string, recordLen int) (*pagedBackend, error) {
	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening paged series file %s: %w", path, err)
	}

	recordSize := int64(8 * recordLen)

	return &pagedBackend{
		file:       file,
		recordLen:  recordLen,
		recordSize: recordSize,
		scratch:    make([]byte, recordSize),
	}, nil
}

func (b *pagedBackend) read(step int, dst []float64) error {
	offset := int64(step) * b.recordSize

	n, err := b.file.ReadAt(b.scratch, offset)
	if err != nil && err != io.EOF {
		return fmt.Errorf("reading record %d from %s: %w",
			step, b.file.Name(), err)
	}

	// Records past the written end of the file read as zeros, matching the
	// resident backend's freshly allocated array.
	for i := n; i < len(b.scratch); i++ {
		b.scratch[i] = 0
	}

	for i := 0; i < b.recordLen; i++ {
		bits := binary.LittleEndian.Uint64(b.scratch[i*8:])
		dst[i] = math.Float64frombits(bits)
	}

	return nil
}

func (b *pagedBackend) write(step int, src []float64) error {
	for i := 0; i < b.recordLen; i++ {
		binary.LittleEndian.PutUint64(b.scratch[i*8:], math.Float64bits(src[i]))
	}

	offset := int64(step) * b.recordSize
	if _, err := b.file.WriteAt(b.scratch, offset); err != nil {
		return fmt.Errorf("writing record %d to %s: %w",
			step, b.file.Name(), err)
	}

	return nil
}

func (b *pagedBackend) close() error {
	if b.file == nil {
		return nil
	}

	if err := b.file.Sync(); err != nil {
		_ = b.file.Close()
		b.file = nil
		return err
	}

	err := b.file.Close()
	b.file = nil

	return err
}
