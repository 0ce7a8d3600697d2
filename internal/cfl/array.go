package cfl

import (
	"errors"
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/samcharles93/twixread/internal/mri"
)

// BytesPerElement is the on-disk size of one complex64 element.
const BytesPerElement = 8

var (
	ErrOutOfBounds  = errors.New("cfl: position out of bounds")
	ErrReadOnly     = errors.New("cfl: array is read-only")
	ErrSizeMismatch = errors.New("cfl: payload size does not match header")
)

// BoundsError reports a block that does not fit inside the array.
type BoundsError struct {
	Dim    mri.Dim
	Index  int
	Extent int
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("cfl: index %d out of range for dimension %s (extent %d)", e.Index, e.Dim, e.Extent)
}

func (e *BoundsError) Is(target error) bool {
	return target == ErrOutOfBounds
}

// Array is a dense complex array, either in memory or mapped from a .cfl
// file.
type Array struct {
	dims     mri.Dims
	data     []complex64
	raw      []byte
	mmapped  bool
	readOnly bool
}

// New allocates an in-memory array.
func New(dims mri.Dims) (*Array, error) {
	if err := dims.Validate(); err != nil {
		return nil, err
	}
	return &Array{dims: dims, data: make([]complex64, dims.Size())}, nil
}

// Create writes <name>.hdr and maps a zero-filled <name>.cfl read-write.
// Writes through the array reach the file; Close flushes and unmaps it.
func Create(name string, dims mri.Dims) (*Array, error) {
	if err := dims.Validate(); err != nil {
		return nil, err
	}
	base := Base(name)
	if err := writeHeaderFile(base+".hdr", dims); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	f, err := os.OpenFile(base+".cfl", os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	size := dims.Size() * BytesPerElement
	if err := f.Truncate(int64(size)); err != nil {
		return nil, err
	}
	raw, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("mmap %s: %w", base+".cfl", err)
	}
	return &Array{dims: dims, data: complexView(raw), raw: raw, mmapped: true}, nil
}

// Open maps an existing array read-only.
func Open(name string) (*Array, error) {
	base := Base(name)
	dims, err := readHeaderFile(base + ".hdr")
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	f, err := os.Open(base + ".cfl")
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	st, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size := dims.Size() * BytesPerElement
	if st.Size() != int64(size) {
		return nil, fmt.Errorf("%w: %d bytes, want %d", ErrSizeMismatch, st.Size(), size)
	}
	raw, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("mmap %s: %w", base+".cfl", err)
	}
	return &Array{dims: dims, data: complexView(raw), raw: raw, mmapped: true, readOnly: true}, nil
}

func complexView(raw []byte) []complex64 {
	return unsafe.Slice((*complex64)(unsafe.Pointer(&raw[0])), len(raw)/BytesPerElement)
}

// Dims returns the array extents.
func (a *Array) Dims() mri.Dims { return a.dims }

// Data returns the backing elements. The slice is invalid after Close.
func (a *Array) Data() []complex64 { return a.data }

// At returns the element at c.
func (a *Array) At(c mri.Coordinate) (complex64, error) {
	if dim, ok := a.dims.Contains(c); !ok {
		return 0, &BoundsError{Dim: dim, Index: c[dim], Extent: a.dims[dim]}
	}
	return a.data[a.dims.Offset(c)], nil
}

// CopyBlock copies the dense block src of shape block into the array with
// its origin at pos. Nothing is written unless the whole block fits.
func (a *Array) CopyBlock(pos mri.Coordinate, block mri.Dims, src []complex64) error {
	if a.readOnly {
		return ErrReadOnly
	}
	if a.data == nil {
		return errors.New("cfl: array is closed")
	}
	if err := block.Validate(); err != nil {
		return fmt.Errorf("cfl: block: %w", err)
	}
	if len(src) != block.Size() {
		return fmt.Errorf("cfl: block holds %d elements, shape %v needs %d", len(src), block, block.Size())
	}
	for i := range pos {
		if pos[i] < 0 {
			return &BoundsError{Dim: mri.Dim(i), Index: pos[i], Extent: a.dims[i]}
		}
		if pos[i]+block[i] > a.dims[i] {
			return &BoundsError{Dim: mri.Dim(i), Index: pos[i] + block[i] - 1, Extent: a.dims[i]}
		}
	}

	strides := a.dims.Strides()
	row := block[mri.Read]
	rows := len(src) / row

	var idx mri.Coordinate
	for r := 0; r < rows; r++ {
		off := pos[mri.Read]
		for d := 1; d < mri.NumDims; d++ {
			off += (pos[d] + idx[d]) * strides[d]
		}
		copy(a.data[off:off+row], src[r*row:(r+1)*row])

		for d := 1; d < mri.NumDims; d++ {
			idx[d]++
			if idx[d] < block[d] {
				break
			}
			idx[d] = 0
		}
	}
	return nil
}

// Close flushes a writable mapping to disk and releases it. Calling Close
// more than once is a no-op.
func (a *Array) Close() error {
	if a == nil || a.data == nil {
		return nil
	}
	var err error
	if a.mmapped {
		if !a.readOnly {
			err = unix.Msync(a.raw, unix.MS_SYNC)
		}
		if uerr := unix.Munmap(a.raw); err == nil {
			err = uerr
		}
	}
	a.data = nil
	a.raw = nil
	a.mmapped = false
	return err
}
