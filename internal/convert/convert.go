// Package convert drives the conversion of a twix container into a CFL
// array: it detects the container format, reads acquisitions one at a time
// and scatters each into the output array at its loop-counter position.
package convert

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"

	"github.com/samcharles93/twixread/internal/cfl"
	"github.com/samcharles93/twixread/internal/logger"
	"github.com/samcharles93/twixread/internal/mri"
	"github.com/samcharles93/twixread/internal/twix"
)

// Options configures one conversion.
type Options struct {
	// Dims are the output extents. Read and Coil must match the container.
	Dims mri.Dims
	// Acquisitions is the number of ADCs to read. Zero means
	// Phase1 x Phase2 x Slice.
	Acquisitions int
}

// Total returns the number of acquisitions to read.
func (o Options) Total() int {
	if o.Acquisitions > 0 {
		return o.Acquisitions
	}
	return o.Dims.Get(mri.Phase1) * o.Dims.Get(mri.Phase2) * o.Dims.Get(mri.Slice)
}

// Validate checks the extents and acquisition count.
func (o Options) Validate() error {
	if err := o.Dims.Validate(); err != nil {
		return err
	}
	if o.Acquisitions < 0 {
		return fmt.Errorf("invalid acquisition count %d", o.Acquisitions)
	}
	return nil
}

// Result summarises a finished conversion.
type Result struct {
	RunID        string               `json:"run_id"`
	Format       twix.Format          `json:"format"`
	Header       twix.ContainerHeader `json:"header"`
	Dims         mri.Dims             `json:"dims"`
	Acquisitions int                  `json:"acquisitions"`
}

// Run converts the container in rs into out. rs is read from the start;
// out must have the extents in opts.Dims.
func Run(ctx context.Context, rs io.ReadSeeker, out *cfl.Array, opts Options) (Result, error) {
	if err := opts.Validate(); err != nil {
		return Result{}, err
	}
	if out.Dims() != opts.Dims {
		return Result{}, fmt.Errorf("output extents %v do not match configured extents %v", out.Dims(), opts.Dims)
	}

	res := Result{RunID: uuid.NewString(), Dims: opts.Dims}
	log := logger.FromContext(ctx).With("run", res.RunID)
	log.Debug("extents", "dims", opts.Dims, "acquisitions", opts.Total())

	hdr, format, err := twix.Detect(rs)
	if err != nil {
		return res, err
	}
	res.Header, res.Format = hdr, format
	log.Info("container detected", "format", format, "meas_id", hdr.MeasID, "file_id", hdr.FileID, "scans", hdr.Scans)
	log.Debug("first acquisition", "offset", hdr.DataStart(format))

	r, err := twix.NewReader(rs, format, opts.Dims.Get(mri.Read), opts.Dims.Get(mri.Coil))
	if err != nil {
		return res, err
	}

	block := opts.Dims.Select(mri.Read, mri.Coil)
	buf := make([]complex64, block.Size())

	total := opts.Total()
	for i := 0; i < total; i++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		acq, err := r.ReadAcquisition(buf)
		if err != nil {
			return res, err
		}
		log.Debug("acquisition", "index", acq.Index, "pos", acq.Coord)

		if err := Scatter(out, acq.Coord, block, buf); err != nil {
			return res, fmt.Errorf("acquisition %d: %w", acq.Index, err)
		}
		res.Acquisitions++
	}

	log.Info("conversion complete", "acquisitions", res.Acquisitions, "bytes", r.Offset())
	return res, nil
}

// Scatter writes one acquisition, a dense Read x Coil block, into out at
// pos. pos must be zero along Read and Coil. When two acquisitions share a
// position the later one wins.
func Scatter(out *cfl.Array, pos mri.Coordinate, block mri.Dims, buf []complex64) error {
	if pos.Get(mri.Read) != 0 || pos.Get(mri.Coil) != 0 {
		return fmt.Errorf("acquisition origin must be zero along read and coil, got %v", pos)
	}
	return out.CopyBlock(pos, block, buf)
}

// File converts the container at inPath into the CFL pair named outName.
// Both files are released on every return path.
func File(ctx context.Context, inPath, outName string, opts Options) (res Result, err error) {
	if err := opts.Validate(); err != nil {
		return Result{}, err
	}

	in, err := os.Open(inPath)
	if err != nil {
		return Result{}, fmt.Errorf("open input: %w", err)
	}
	defer func() { _ = in.Close() }()

	out, err := cfl.Create(outName, opts.Dims)
	if err != nil {
		return Result{}, fmt.Errorf("create output: %w", err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close output: %w", cerr)
		}
	}()

	return Run(ctx, in, out, opts)
}
