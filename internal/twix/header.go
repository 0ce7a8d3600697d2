package twix

import (
	"fmt"
	"io"
)

const (
	// ContainerHeaderSize is the number of bytes read from the start of the
	// file: four u32 fields followed by the u64 data-section offset.
	ContainerHeaderSize = 24

	// A header offset and scan count both below these limits identify the
	// VD container; anything else is treated as VB.
	vdMaxOffset = 10000
	vdMaxScans  = 64
)

// Format is the structural version of a twix container.
type Format int

const (
	FormatVB Format = iota
	FormatVD
)

func (f Format) String() string {
	switch f {
	case FormatVB:
		return "VB"
	case FormatVD:
		return "VD"
	default:
		return fmt.Sprintf("format(%d)", int(f))
	}
}

// MarshalText renders the format as "VB" or "VD".
func (f Format) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// ContainerHeader is the fixed header at the start of every twix file.
// After Detect, Offset holds the offset of the first acquisition relative to
// the data section (VD) or to the file start (VB).
type ContainerHeader struct {
	Offset     uint32 `json:"offset"`
	Scans      uint32 `json:"scans"`
	MeasID     uint32 `json:"meas_id"`
	FileID     uint32 `json:"file_id"`
	DataOffset uint64 `json:"data_offset"`
}

// DataStart returns the absolute file offset of the first acquisition for
// the given format.
func (h ContainerHeader) DataStart(f Format) int64 {
	if f == FormatVD {
		return int64(h.DataOffset) + int64(h.Offset)
	}
	return int64(h.Offset)
}

func decodeContainerHeader(b []byte) (ContainerHeader, error) {
	c := newCursor(b, 0)
	var h ContainerHeader
	var err error
	if h.Offset, err = c.u32("offset"); err != nil {
		return h, err
	}
	if h.Scans, err = c.u32("nscans"); err != nil {
		return h, err
	}
	if h.MeasID, err = c.u32("measid"); err != nil {
		return h, err
	}
	if h.FileID, err = c.u32("fileid"); err != nil {
		return h, err
	}
	if h.DataOffset, err = c.u64("datoff"); err != nil {
		return h, err
	}
	return h, nil
}

// classify applies the VD heuristic to a freshly read header.
func classify(h ContainerHeader) Format {
	if h.Offset < vdMaxOffset && h.Scans < vdMaxScans {
		return FormatVD
	}
	return FormatVB
}

// Detect reads the container header from the start of rs, classifies the
// container and leaves rs positioned at the first acquisition.
//
// For VD containers the offset field is re-read from the start of the data
// section, which carries its own header length. VB containers hold a single
// scan.
func Detect(rs io.ReadSeeker) (ContainerHeader, Format, error) {
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return ContainerHeader{}, 0, fmt.Errorf("seek container header: %w", err)
	}

	buf := make([]byte, ContainerHeaderSize)
	if _, err := io.ReadFull(rs, buf); err != nil {
		return ContainerHeader{}, 0, fmt.Errorf("read container header: %w", err)
	}
	hdr, err := decodeContainerHeader(buf)
	if err != nil {
		return ContainerHeader{}, 0, err
	}

	format := classify(hdr)
	if format == FormatVD {
		if _, err := rs.Seek(int64(hdr.DataOffset), io.SeekStart); err != nil {
			return ContainerHeader{}, 0, fmt.Errorf("seek data section: %w", err)
		}
		if _, err := io.ReadFull(rs, buf[:4]); err != nil {
			return ContainerHeader{}, 0, fmt.Errorf("read data section offset: %w", err)
		}
		if hdr.Offset, err = newCursor(buf[:4], 0).u32("offset"); err != nil {
			return ContainerHeader{}, 0, err
		}
	} else {
		hdr.Scans = 1
	}

	if _, err := rs.Seek(hdr.DataStart(format), io.SeekStart); err != nil {
		return ContainerHeader{}, 0, fmt.Errorf("seek first acquisition: %w", err)
	}
	return hdr, format, nil
}
