package twix

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/samcharles93/twixread/internal/mri"
)

const (
	// BytesPerSample is the encoded size of one complex sample (two float32).
	BytesPerSample = 8

	readerBufSize = 1 << 20
)

// Acquisition describes one ADC read by Reader.
type Acquisition struct {
	Index  int
	Record LoopCounters
	Coord  mri.Coordinate
}

// Reader reads acquisitions sequentially from a container whose format has
// already been detected. It never seeks.
type Reader struct {
	r        *bufio.Reader
	format   Format
	layout   layout
	readout  int
	channels int

	scanHdr []byte
	chanHdr []byte
	raw     []byte

	off   int64
	count int
}

// NewReader returns a Reader for acquisitions of readout samples on each of
// channels receive channels. r must be positioned at an acquisition start,
// as left by Detect.
func NewReader(r io.Reader, format Format, readout, channels int) (*Reader, error) {
	if readout < 1 || readout > math.MaxUint16 {
		return nil, fmt.Errorf("invalid readout extent %d", readout)
	}
	if channels < 1 {
		return nil, fmt.Errorf("invalid channel extent %d", channels)
	}
	l := format.layout()
	return &Reader{
		r:        bufio.NewReaderSize(r, readerBufSize),
		format:   format,
		layout:   l,
		readout:  readout,
		channels: channels,
		scanHdr:  make([]byte, l.scanHeaderSize),
		chanHdr:  make([]byte, l.channelHeaderSize),
		raw:      make([]byte, readout*BytesPerSample),
	}, nil
}

// Format returns the container format the reader decodes.
func (r *Reader) Format() Format { return r.format }

// Offset returns the number of bytes consumed since the reader was created.
func (r *Reader) Offset() int64 { return r.off }

// BufferLen returns the number of samples ReadAcquisition expects in buf.
func (r *Reader) BufferLen() int { return r.readout * r.channels }

// ReadAcquisition reads the next acquisition into buf, channel after
// channel, each channel occupying readout consecutive samples.
//
// The position is taken from the first channel only; all channels of one
// acquisition are assumed to carry the same loop counters.
func (r *Reader) ReadAcquisition(buf []complex64) (Acquisition, error) {
	if len(buf) != r.BufferLen() {
		return Acquisition{}, fmt.Errorf("sample buffer holds %d samples, need %d", len(buf), r.BufferLen())
	}

	acq := Acquisition{Index: r.count}
	if err := r.readFull(r.scanHdr); err != nil {
		return acq, fmt.Errorf("acquisition %d: read scan header: %w", acq.Index, err)
	}

	for ch := 0; ch < r.channels; ch++ {
		if err := r.readFull(r.chanHdr); err != nil {
			return acq, fmt.Errorf("acquisition %d channel %d: read channel header: %w", acq.Index, ch, err)
		}

		rec, err := r.record()
		if err != nil {
			return acq, fmt.Errorf("acquisition %d channel %d: %w", acq.Index, ch, err)
		}
		if ch == 0 {
			acq.Record = rec
			acq.Coord = rec.Coordinate()
		}
		if err := r.check(rec); err != nil {
			return acq, fmt.Errorf("acquisition %d channel %d: %w", acq.Index, ch, err)
		}

		if err := r.readFull(r.raw); err != nil {
			return acq, fmt.Errorf("acquisition %d channel %d: read samples: %w", acq.Index, ch, err)
		}
		decodeSamples(buf[ch*r.readout:(ch+1)*r.readout], r.raw)
	}

	r.count++
	return acq, nil
}

func (r *Reader) record() (LoopCounters, error) {
	block := r.chanHdr
	if r.layout.recordIn == inScanHeader {
		block = r.scanHdr
	}
	return decodeLoopCounters(block, r.layout.recordOffset)
}

func (r *Reader) check(rec LoopCounters) error {
	if int(rec.Samples) != r.readout {
		return fmt.Errorf("%w: header declares %d samples, readout extent is %d",
			ErrFormatMismatch, rec.Samples, r.readout)
	}
	if rec.Channels != 0 && int(rec.Channels) != r.channels {
		return fmt.Errorf("%w: header declares %d channels, channel extent is %d",
			ErrFormatMismatch, rec.Channels, r.channels)
	}
	return nil
}

func (r *Reader) readFull(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	n, err := io.ReadFull(r.r, b)
	r.off += int64(n)
	return err
}

func decodeSamples(dst []complex64, raw []byte) {
	for i := range dst {
		re := math.Float32frombits(binary.LittleEndian.Uint32(raw[8*i:]))
		im := math.Float32frombits(binary.LittleEndian.Uint32(raw[8*i+4:]))
		dst[i] = complex(re, im)
	}
}
