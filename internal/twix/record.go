package twix

import "github.com/samcharles93/twixread/internal/mri"

const (
	// NumLoopCounters is the number of scanner loop counters per record.
	NumLoopCounters = 14
	// RecordSize is the encoded size of a LoopCounters record.
	RecordSize = 60
)

// LoopCounters is the part of a measurement data header that locates an
// acquisition within the scan.
type LoopCounters struct {
	EvalInfo     [2]uint32
	Samples      uint16
	Channels     uint16
	Counters     [NumLoopCounters]uint16
	ColumnCenter uint16
	Line         uint16
	Partition    uint16
}

// Loop counter slots, in scanner order.
const (
	CounterLine = iota
	CounterAcquisition
	CounterSlice
	CounterPartition
	CounterEcho
	CounterPhase
	CounterRepetition
	CounterSet
	CounterSeg
	CounterIda
	CounterIdb
	CounterIdc
	CounterIdd
	CounterIde
)

func decodeLoopCounters(block []byte, off int) (LoopCounters, error) {
	c := newCursor(block, off)
	var rec LoopCounters
	var err error
	if err = c.u32s("evalinfo", rec.EvalInfo[:]); err != nil {
		return rec, err
	}
	if rec.Samples, err = c.u16("samples"); err != nil {
		return rec, err
	}
	if rec.Channels, err = c.u16("channels"); err != nil {
		return rec, err
	}
	if err = c.u16s("loop counters", rec.Counters[:]); err != nil {
		return rec, err
	}
	if err = c.skip("reserved", 4); err != nil {
		return rec, err
	}
	if rec.ColumnCenter, err = c.u16("column center"); err != nil {
		return rec, err
	}
	if err = c.skip("reserved", 10); err != nil {
		return rec, err
	}
	if rec.Line, err = c.u16("line counter"); err != nil {
		return rec, err
	}
	if rec.Partition, err = c.u16("partition counter"); err != nil {
		return rec, err
	}
	return rec, nil
}

// Coordinate maps the loop counters onto output dimensions. Dimensions the
// scanner does not count along (read, coil and the rest) are left at zero.
func (rec LoopCounters) Coordinate() mri.Coordinate {
	var pos mri.Coordinate
	pos.Set(mri.Phase1, int(rec.Counters[CounterLine]))
	pos.Set(mri.Slice, int(rec.Counters[CounterSlice]))
	pos.Set(mri.Phase2, int(rec.Counters[CounterPartition]))
	pos.Set(mri.Echo, int(rec.Counters[CounterEcho]))
	pos.Set(mri.Time, int(rec.Counters[CounterRepetition]))
	pos.Set(mri.Time2, int(rec.Counters[CounterSet]))
	return pos
}
