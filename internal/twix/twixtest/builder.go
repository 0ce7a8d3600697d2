// Package twixtest builds synthetic twix containers for tests.
package twixtest

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/samcharles93/twixread/internal/twix"
)

const (
	// VBHeaderOffset is the offset of the first acquisition in VB containers
	// produced by Builder. It is above the VD detection limit.
	VBHeaderOffset = 10240
	// VDDataOffset is where Builder places the VD data section.
	VDDataOffset = 64
	// VDSectionHeader is the length of the VD data-section header.
	VDSectionHeader = 32
)

// Acquisition is one synthetic ADC.
type Acquisition struct {
	Counters [twix.NumLoopCounters]uint16
	// Channels holds one line of samples per channel.
	Channels [][]complex64
	// Samples overrides the declared sample count when non-zero.
	Samples uint16
	// DeclaredChannels overrides the declared channel count when non-zero.
	DeclaredChannels uint16
}

// Builder assembles a container in memory.
type Builder struct {
	Format twix.Format
	MeasID uint32
	FileID uint32
	Acqs   []Acquisition
}

// Add appends an acquisition with the given loop counters and channel data.
func (b *Builder) Add(counters map[int]uint16, channels ...[]complex64) *Builder {
	var acq Acquisition
	for k, v := range counters {
		acq.Counters[k] = v
	}
	acq.Channels = channels
	b.Acqs = append(b.Acqs, acq)
	return b
}

// Bytes encodes the container.
func (b *Builder) Bytes() []byte {
	var buf bytes.Buffer
	if b.Format == twix.FormatVD {
		b.writeVDHeader(&buf)
	} else {
		b.writeVBHeader(&buf)
	}
	for _, acq := range b.Acqs {
		b.writeAcquisition(&buf, acq)
	}
	return buf.Bytes()
}

// WriteFile writes the container into dir and returns its path.
func (b *Builder) WriteFile(t testing.TB, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "meas.dat")
	if err := os.WriteFile(path, b.Bytes(), 0o644); err != nil {
		t.Fatalf("write container: %v", err)
	}
	return path
}

func (b *Builder) writeVBHeader(buf *bytes.Buffer) {
	hdr := make([]byte, VBHeaderOffset)
	binary.LittleEndian.PutUint32(hdr[0:], VBHeaderOffset)
	binary.LittleEndian.PutUint32(hdr[4:], 0)
	binary.LittleEndian.PutUint32(hdr[8:], b.MeasID)
	binary.LittleEndian.PutUint32(hdr[12:], b.FileID)
	buf.Write(hdr)
}

func (b *Builder) writeVDHeader(buf *bytes.Buffer) {
	hdr := make([]byte, VDDataOffset+VDSectionHeader)
	binary.LittleEndian.PutUint32(hdr[0:], 0)
	binary.LittleEndian.PutUint32(hdr[4:], 1)
	binary.LittleEndian.PutUint32(hdr[8:], b.MeasID)
	binary.LittleEndian.PutUint32(hdr[12:], b.FileID)
	binary.LittleEndian.PutUint64(hdr[16:], VDDataOffset)
	binary.LittleEndian.PutUint32(hdr[VDDataOffset:], VDSectionHeader)
	buf.Write(hdr)
}

func (b *Builder) writeAcquisition(buf *bytes.Buffer, acq Acquisition) {
	f := b.Format
	rec := EncodeRecord(acq)

	if f.ScanHeaderSize() > 0 {
		scan := make([]byte, f.ScanHeaderSize())
		copy(scan[f.RecordOffset():], rec)
		buf.Write(scan)
	}
	for _, samples := range acq.Channels {
		ch := make([]byte, f.ChannelHeaderSize())
		if f == twix.FormatVB {
			copy(ch[f.RecordOffset():], rec)
		}
		buf.Write(ch)
		buf.Write(EncodeSamples(samples))
	}
}

// EncodeRecord encodes the loop-counter record of acq.
func EncodeRecord(acq Acquisition) []byte {
	out := make([]byte, twix.RecordSize)
	samples := acq.Samples
	if samples == 0 && len(acq.Channels) > 0 {
		samples = uint16(len(acq.Channels[0]))
	}
	channels := acq.DeclaredChannels
	if channels == 0 {
		channels = uint16(len(acq.Channels))
	}
	binary.LittleEndian.PutUint16(out[8:], samples)
	binary.LittleEndian.PutUint16(out[10:], channels)
	for i, v := range acq.Counters {
		binary.LittleEndian.PutUint16(out[12+2*i:], v)
	}
	return out
}

// EncodeSamples encodes complex samples as little-endian float32 pairs.
func EncodeSamples(samples []complex64) []byte {
	out := make([]byte, len(samples)*twix.BytesPerSample)
	for i, s := range samples {
		binary.LittleEndian.PutUint32(out[8*i:], math.Float32bits(real(s)))
		binary.LittleEndian.PutUint32(out[8*i+4:], math.Float32bits(imag(s)))
	}
	return out
}

// Line returns n samples whose values encode tag, so every line written by
// a test is distinguishable.
func Line(n int, tag float32) []complex64 {
	out := make([]complex64, n)
	for i := range out {
		out[i] = complex(tag, float32(i))
	}
	return out
}
