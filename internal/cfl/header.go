// Package cfl stores complex float arrays as a pair of files: a text header
// (<name>.hdr) listing the extents and a raw payload (<name>.cfl) of
// interleaved float32 real/imaginary values in host byte order.
package cfl

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/samcharles93/twixread/internal/mri"
)

const dimensionsTag = "# Dimensions"

// ErrBadHeader is returned for header files without a valid dimensions line.
var ErrBadHeader = errors.New("cfl: malformed header")

// Base strips a trailing .cfl or .hdr suffix so either file of a pair, or
// the bare name, addresses the same array.
func Base(name string) string {
	if s, ok := strings.CutSuffix(name, ".cfl"); ok {
		return s
	}
	if s, ok := strings.CutSuffix(name, ".hdr"); ok {
		return s
	}
	return name
}

// WriteHeader writes the dimensions header for dims to w.
func WriteHeader(w io.Writer, dims mri.Dims) error {
	var b strings.Builder
	b.WriteString(dimensionsTag)
	b.WriteByte('\n')
	for _, n := range dims {
		b.WriteString(strconv.Itoa(n))
		b.WriteByte(' ')
	}
	b.WriteByte('\n')
	_, err := io.WriteString(w, b.String())
	return err
}

// ReadHeader parses a dimensions header. Missing trailing dimensions are 1;
// extra dimensions are accepted only when they are 1.
func ReadHeader(r io.Reader) (mri.Dims, error) {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if strings.TrimSpace(sc.Text()) != dimensionsTag {
			continue
		}
		if !sc.Scan() {
			break
		}
		return parseDims(sc.Text())
	}
	if err := sc.Err(); err != nil {
		return mri.Dims{}, err
	}
	return mri.Dims{}, fmt.Errorf("%w: no dimensions", ErrBadHeader)
}

func parseDims(line string) (mri.Dims, error) {
	dims := mri.Singleton()
	for i, field := range strings.Fields(line) {
		n, err := strconv.Atoi(field)
		if err != nil || n < 1 {
			return mri.Dims{}, fmt.Errorf("%w: invalid extent %q", ErrBadHeader, field)
		}
		if i >= mri.NumDims {
			if n != 1 {
				return mri.Dims{}, fmt.Errorf("%w: too many dimensions", ErrBadHeader)
			}
			continue
		}
		dims[i] = n
	}
	return dims, nil
}

func writeHeaderFile(path string, dims mri.Dims) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteHeader(f, dims); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func readHeaderFile(path string) (mri.Dims, error) {
	f, err := os.Open(path)
	if err != nil {
		return mri.Dims{}, err
	}
	defer func() { _ = f.Close() }()
	return ReadHeader(f)
}
