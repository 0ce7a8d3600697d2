// Package mri defines the logical dimensions of an MRI raw-data array and
// the extent and position types indexed by them.
package mri

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Dim identifies one logical axis of the output array.
type Dim int

const (
	Read Dim = iota
	Phase1
	Phase2
	Coil
	Maps
	Echo
	Coeff
	Coeff2
	Iter
	ChemShift
	Time
	Time2
	Level
	Slice
	Average
	Batch

	NumDims = int(iota)
)

var dimNames = [NumDims]string{
	Read:      "read",
	Phase1:    "phase1",
	Phase2:    "phase2",
	Coil:      "coil",
	Maps:      "maps",
	Echo:      "echo",
	Coeff:     "coeff",
	Coeff2:    "coeff2",
	Iter:      "iter",
	ChemShift: "cshift",
	Time:      "time",
	Time2:     "time2",
	Level:     "level",
	Slice:     "slice",
	Average:   "avg",
	Batch:     "batch",
}

func (d Dim) String() string {
	if d < 0 || int(d) >= NumDims {
		return "dim(" + strconv.Itoa(int(d)) + ")"
	}
	return dimNames[d]
}

// Valid reports whether d is one of the known dimensions.
func (d Dim) Valid() bool {
	return d >= 0 && int(d) < NumDims
}

// Dims holds the extent of every dimension. The zero value is not a valid
// shape; use Singleton.
type Dims [NumDims]int

// Singleton returns extents of 1 along every dimension.
func Singleton() Dims {
	var d Dims
	for i := range d {
		d[i] = 1
	}
	return d
}

func (d Dims) Get(dim Dim) int { return d[dim] }

func (d *Dims) Set(dim Dim, n int) { d[dim] = n }

// With returns a copy of d with dim set to n.
func (d Dims) With(dim Dim, n int) Dims {
	d[dim] = n
	return d
}

// MaxElements is the largest element count whose complex64 payload fits
// in an int byte length.
const MaxElements = math.MaxInt / 8

// Validate checks that every extent is at least 1 and that the total
// element count does not exceed MaxElements.
func (d Dims) Validate() error {
	total := 1
	for i, n := range d {
		if n < 1 {
			return fmt.Errorf("invalid extent %d for dimension %s", n, Dim(i))
		}
		if n > MaxElements/total {
			return fmt.Errorf("extents %v exceed %d elements", d, MaxElements)
		}
		total *= n
	}
	return nil
}

// Size returns the number of elements spanned by d.
func (d Dims) Size() int {
	n := 1
	for _, v := range d {
		n *= v
	}
	return n
}

// Select keeps the listed dimensions and collapses every other one to 1.
func (d Dims) Select(keep ...Dim) Dims {
	out := Singleton()
	for _, k := range keep {
		out[k] = d[k]
	}
	return out
}

// Strides returns element strides for a dense array of shape d with Read
// varying fastest.
func (d Dims) Strides() [NumDims]int {
	var s [NumDims]int
	n := 1
	for i := range d {
		s[i] = n
		n *= d[i]
	}
	return s
}

// Offset returns the linear element offset of c in a dense array of shape d.
// c must be contained in d.
func (d Dims) Offset(c Coordinate) int {
	strides := d.Strides()
	off := 0
	for i := range c {
		off += c[i] * strides[i]
	}
	return off
}

// Contains reports whether c lies inside d. When it does not, the first
// offending dimension is returned.
func (d Dims) Contains(c Coordinate) (Dim, bool) {
	for i := range c {
		if c[i] < 0 || c[i] >= d[i] {
			return Dim(i), false
		}
	}
	return 0, true
}

func (d Dims) String() string {
	return formatInts(d[:])
}

// Coordinate is the position of one element (or block origin) along every
// dimension.
type Coordinate [NumDims]int

func (c Coordinate) Get(dim Dim) int { return c[dim] }

func (c *Coordinate) Set(dim Dim, v int) { c[dim] = v }

// With returns a copy of c with dim set to v.
func (c Coordinate) With(dim Dim, v int) Coordinate {
	c[dim] = v
	return c
}

func (c Coordinate) String() string {
	return formatInts(c[:])
}

func formatInts(v []int) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, n := range v {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(strconv.Itoa(n))
	}
	b.WriteByte(']')
	return b.String()
}
