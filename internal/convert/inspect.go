package convert

import (
	"errors"
	"fmt"
	"io"

	"github.com/samcharles93/twixread/internal/mri"
	"github.com/samcharles93/twixread/internal/twix"
)

// Report describes a container without converting it.
type Report struct {
	Format       twix.Format          `json:"format"`
	Header       twix.ContainerHeader `json:"header"`
	DataStart    int64                `json:"data_start"`
	Acquisitions []AcquisitionInfo    `json:"acquisitions,omitempty"`
}

// AcquisitionInfo is the decoded header of one acquisition.
type AcquisitionInfo struct {
	Index        int            `json:"index"`
	Samples      int            `json:"samples"`
	Channels     int            `json:"channels"`
	EvalInfo     [2]uint32      `json:"eval_info"`
	ColumnCenter int            `json:"column_center"`
	Position     map[string]int `json:"position"`
}

// InspectOptions selects how much of the container Inspect reads.
type InspectOptions struct {
	// Scan is the number of acquisitions to decode. Zero reads the header only.
	Scan int
	// Readout and Channels must match the container when Scan > 0.
	Readout  int
	Channels int
}

// Inspect detects the container format and decodes the headers of up to
// opts.Scan acquisitions. Reaching the end of the file early is not an
// error.
func Inspect(rs io.ReadSeeker, opts InspectOptions) (Report, error) {
	hdr, format, err := twix.Detect(rs)
	if err != nil {
		return Report{}, err
	}
	rep := Report{Format: format, Header: hdr, DataStart: hdr.DataStart(format)}
	if opts.Scan <= 0 {
		return rep, nil
	}

	r, err := twix.NewReader(rs, format, opts.Readout, opts.Channels)
	if err != nil {
		return rep, fmt.Errorf("scan acquisitions: %w", err)
	}
	buf := make([]complex64, r.BufferLen())
	for i := 0; i < opts.Scan; i++ {
		acq, err := r.ReadAcquisition(buf)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return rep, err
		}
		rep.Acquisitions = append(rep.Acquisitions, AcquisitionInfo{
			Index:        acq.Index,
			Samples:      int(acq.Record.Samples),
			Channels:     int(acq.Record.Channels),
			EvalInfo:     acq.Record.EvalInfo,
			ColumnCenter: int(acq.Record.ColumnCenter),
			Position:     positionMap(acq.Coord),
		})
	}
	return rep, nil
}

// positionMap names the non-zero dimensions of c.
func positionMap(c mri.Coordinate) map[string]int {
	out := make(map[string]int)
	for i, v := range c {
		if v != 0 {
			out[mri.Dim(i).String()] = v
		}
	}
	return out
}
