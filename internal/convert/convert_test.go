package convert

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/samcharles93/twixread/internal/cfl"
	"github.com/samcharles93/twixread/internal/logger"
	"github.com/samcharles93/twixread/internal/mri"
	"github.com/samcharles93/twixread/internal/twix"
	"github.com/samcharles93/twixread/internal/twix/twixtest"
)

func testDims(x, y, z, s, c int) mri.Dims {
	return mri.Singleton().
		With(mri.Read, x).
		With(mri.Phase1, y).
		With(mri.Phase2, z).
		With(mri.Slice, s).
		With(mri.Coil, c)
}

func quietCtx() context.Context {
	return logger.WithContext(context.Background(), logger.Discard())
}

func TestOptionsTotal(t *testing.T) {
	t.Parallel()

	opts := Options{Dims: testDims(8, 4, 1, 2, 1)}
	if opts.Total() != 8 {
		t.Fatalf("inferred total: got %d want 8", opts.Total())
	}
	opts.Acquisitions = 3
	if opts.Total() != 3 {
		t.Fatalf("explicit total: got %d want 3", opts.Total())
	}
	opts.Acquisitions = -1
	if err := opts.Validate(); err == nil {
		t.Fatal("expected error for negative acquisition count")
	}
}

func TestRunInfersAcquisitionCount(t *testing.T) {
	t.Parallel()

	dims := testDims(4, 4, 1, 2, 1)
	b := &twixtest.Builder{Format: twix.FormatVD}
	for s := 0; s < 2; s++ {
		for y := 0; y < 4; y++ {
			b.Add(map[int]uint16{twix.CounterLine: uint16(y), twix.CounterSlice: uint16(s)},
				twixtest.Line(4, float32(10*s+y+1)))
		}
	}
	// Trailing acquisition that must not be read.
	b.Add(nil, twixtest.Line(4, 99))

	out, err := cfl.New(dims)
	if err != nil {
		t.Fatalf("new array: %v", err)
	}
	res, err := Run(quietCtx(), bytes.NewReader(b.Bytes()), out, Options{Dims: dims})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Acquisitions != 8 {
		t.Fatalf("acquisitions: got %d want 8", res.Acquisitions)
	}
	if res.Format != twix.FormatVD {
		t.Fatalf("format: got %v want VD", res.Format)
	}
	if res.RunID == "" {
		t.Fatal("missing run id")
	}

	origin, _ := out.At(mri.Coordinate{})
	if origin != complex(1, 0) {
		t.Fatalf("origin overwritten by trailing acquisition: %v", origin)
	}
}

func TestRunLastWriteWins(t *testing.T) {
	t.Parallel()

	dims := testDims(4, 2, 1, 1, 2)
	b := &twixtest.Builder{Format: twix.FormatVB}
	counters := map[int]uint16{twix.CounterLine: 1}
	b.Add(counters, twixtest.Line(4, 1), twixtest.Line(4, 2))
	b.Add(counters, twixtest.Line(4, 3), twixtest.Line(4, 4))

	out, err := cfl.New(dims)
	if err != nil {
		t.Fatalf("new array: %v", err)
	}
	if _, err := Run(quietCtx(), bytes.NewReader(b.Bytes()), out, Options{Dims: dims, Acquisitions: 2}); err != nil {
		t.Fatalf("run: %v", err)
	}

	for coil, tag := range []float32{3, 4} {
		for x := 0; x < 4; x++ {
			c := mri.Coordinate{}.With(mri.Phase1, 1).With(mri.Coil, coil).With(mri.Read, x)
			v, err := out.At(c)
			if err != nil {
				t.Fatalf("at %v: %v", c, err)
			}
			if v != complex(tag, float32(x)) {
				t.Fatalf("value at %v: got %v want %v", c, v, complex(tag, float32(x)))
			}
		}
	}
}

func TestRunSampleMismatchWritesNothing(t *testing.T) {
	t.Parallel()

	dims := testDims(128, 1, 1, 1, 1)
	b := &twixtest.Builder{Format: twix.FormatVB}
	b.Add(nil, twixtest.Line(100, 1))

	out, err := cfl.New(dims)
	if err != nil {
		t.Fatalf("new array: %v", err)
	}
	_, err = Run(quietCtx(), bytes.NewReader(b.Bytes()), out, Options{Dims: dims})
	if !errors.Is(err, twix.ErrFormatMismatch) {
		t.Fatalf("expected ErrFormatMismatch, got %v", err)
	}
	for i, v := range out.Data() {
		if v != 0 {
			t.Fatalf("element %d written: %v", i, v)
		}
	}
}

func TestRunOutOfBounds(t *testing.T) {
	t.Parallel()

	dims := testDims(4, 2, 1, 1, 1)
	b := &twixtest.Builder{Format: twix.FormatVD}
	b.Add(map[int]uint16{twix.CounterLine: 2}, twixtest.Line(4, 1))

	out, err := cfl.New(dims)
	if err != nil {
		t.Fatalf("new array: %v", err)
	}
	_, err = Run(quietCtx(), bytes.NewReader(b.Bytes()), out, Options{Dims: dims, Acquisitions: 1})
	if !errors.Is(err, cfl.ErrOutOfBounds) {
		t.Fatalf("expected ErrOutOfBounds, got %v", err)
	}
	var be *cfl.BoundsError
	if !errors.As(err, &be) || be.Dim != mri.Phase1 {
		t.Fatalf("expected bounds error on phase1, got %v", err)
	}
}

func TestRunEchoOutsideSingletonExtent(t *testing.T) {
	t.Parallel()

	dims := testDims(4, 1, 1, 1, 1)
	b := &twixtest.Builder{Format: twix.FormatVB}
	b.Add(map[int]uint16{twix.CounterEcho: 1}, twixtest.Line(4, 1))

	out, err := cfl.New(dims)
	if err != nil {
		t.Fatalf("new array: %v", err)
	}
	_, err = Run(quietCtx(), bytes.NewReader(b.Bytes()), out, Options{Dims: dims})
	var be *cfl.BoundsError
	if !errors.As(err, &be) || be.Dim != mri.Echo {
		t.Fatalf("expected bounds error on echo, got %v", err)
	}
}

func TestRunRejectsMismatchedOutput(t *testing.T) {
	t.Parallel()

	out, err := cfl.New(testDims(4, 1, 1, 1, 1))
	if err != nil {
		t.Fatalf("new array: %v", err)
	}
	_, err = Run(quietCtx(), bytes.NewReader(nil), out, Options{Dims: testDims(8, 1, 1, 1, 1)})
	if err == nil {
		t.Fatal("expected error for mismatched output extents")
	}
}

func TestRunCancelled(t *testing.T) {
	t.Parallel()

	dims := testDims(4, 1, 1, 1, 1)
	b := &twixtest.Builder{Format: twix.FormatVB}
	b.Add(nil, twixtest.Line(4, 1))

	out, err := cfl.New(dims)
	if err != nil {
		t.Fatalf("new array: %v", err)
	}
	ctx, cancel := context.WithCancel(quietCtx())
	cancel()
	if _, err := Run(ctx, bytes.NewReader(b.Bytes()), out, Options{Dims: dims}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRunLogsCoordinates(t *testing.T) {
	t.Parallel()

	dims := testDims(4, 2, 1, 1, 1)
	b := &twixtest.Builder{Format: twix.FormatVD, MeasID: 77}
	b.Add(map[int]uint16{twix.CounterLine: 1}, twixtest.Line(4, 1))

	var logs bytes.Buffer
	ctx := logger.WithContext(context.Background(), logger.JSON(&logs, slog.LevelDebug))
	out, err := cfl.New(dims)
	if err != nil {
		t.Fatalf("new array: %v", err)
	}
	if _, err := Run(ctx, bytes.NewReader(b.Bytes()), out, Options{Dims: dims, Acquisitions: 1}); err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, want := range []string{`"format":"VD"`, `"meas_id":77`, `"msg":"acquisition"`, `"run":`} {
		if !strings.Contains(logs.String(), want) {
			t.Fatalf("expected %s in logs:\n%s", want, logs.String())
		}
	}
}

func TestFileRoundTrip(t *testing.T) {
	t.Parallel()

	for _, format := range []twix.Format{twix.FormatVB, twix.FormatVD} {
		dir := t.TempDir()
		dims := testDims(8, 3, 2, 2, 4)

		b := &twixtest.Builder{Format: format}
		want := map[mri.Coordinate][]complex64{}
		tag := float32(0)
		for s := 0; s < 2; s++ {
			for z := 0; z < 2; z++ {
				for y := 0; y < 3; y++ {
					chans := make([][]complex64, 4)
					for c := range chans {
						tag++
						chans[c] = twixtest.Line(8, tag)
					}
					b.Add(map[int]uint16{
						twix.CounterLine:      uint16(y),
						twix.CounterPartition: uint16(z),
						twix.CounterSlice:     uint16(s),
					}, chans...)
					pos := mri.Coordinate{}.With(mri.Phase1, y).With(mri.Phase2, z).With(mri.Slice, s)
					want[pos] = append([]complex64(nil), flatten(chans)...)
				}
			}
		}

		in := b.WriteFile(t, dir)
		outName := filepath.Join(dir, "ksp")
		res, err := File(quietCtx(), in, outName, Options{Dims: dims})
		if err != nil {
			t.Fatalf("%s: convert: %v", format, err)
		}
		if res.Acquisitions != 12 {
			t.Fatalf("%s: acquisitions: got %d want 12", format, res.Acquisitions)
		}

		arr, err := cfl.Open(outName)
		if err != nil {
			t.Fatalf("%s: open output: %v", format, err)
		}
		if arr.Dims() != dims {
			t.Fatalf("%s: dims: got %v want %v", format, arr.Dims(), dims)
		}
		for pos, line := range want {
			for c := 0; c < 4; c++ {
				for x := 0; x < 8; x++ {
					v, err := arr.At(pos.With(mri.Coil, c).With(mri.Read, x))
					if err != nil {
						t.Fatalf("%s: at: %v", format, err)
					}
					if v != line[c*8+x] {
						t.Fatalf("%s: value at %v coil %d x %d: got %v want %v", format, pos, c, x, v, line[c*8+x])
					}
				}
			}
		}
		if err := arr.Close(); err != nil {
			t.Fatalf("%s: close: %v", format, err)
		}
	}
}

func TestFileMissingInput(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, err := File(quietCtx(), filepath.Join(dir, "missing.dat"), filepath.Join(dir, "out"), Options{Dims: testDims(4, 1, 1, 1, 1)})
	if err == nil {
		t.Fatal("expected error for missing input")
	}
}

func flatten(chans [][]complex64) []complex64 {
	var out []complex64
	for _, c := range chans {
		out = append(out, c...)
	}
	return out
}

func TestExtentsDims(t *testing.T) {
	t.Parallel()

	d := Extents{Readout: 256, Phase1: 128, Channels: 32}.Dims()
	want := testDims(256, 128, 1, 1, 32)
	if d != want {
		t.Fatalf("dims mismatch: got %v want %v", d, want)
	}
	if (Extents{Slices: -1}).Dims().Validate() == nil {
		t.Fatal("negative extent should fail validation")
	}
}

func TestRunRejectsOverflowingExtents(t *testing.T) {
	t.Parallel()

	dims := mri.Singleton().With(mri.Phase1, 274177).With(mri.Phase2, 67280421310721)
	if _, err := cfl.New(dims); err == nil {
		t.Fatal("expected allocation of wrapping extents to fail")
	}

	b := &twixtest.Builder{Format: twix.FormatVB}
	b.Add(map[int]uint16{twix.CounterLine: 5}, twixtest.Line(1, 1))
	out, err := cfl.New(mri.Singleton())
	if err != nil {
		t.Fatalf("new array: %v", err)
	}
	if _, err := Run(quietCtx(), bytes.NewReader(b.Bytes()), out, Options{Dims: dims}); err == nil {
		t.Fatal("expected error for wrapping extents")
	}
}
