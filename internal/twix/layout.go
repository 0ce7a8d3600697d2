package twix

// recordBlock names the header block that carries the loop-counter record.
type recordBlock int

const (
	inScanHeader recordBlock = iota
	inChannelHeader
)

// layout describes the per-acquisition block sizes of one container version.
type layout struct {
	scanHeaderSize    int
	channelHeaderSize int
	recordIn          recordBlock
	recordOffset      int
}

var (
	layoutVB = layout{
		scanHeaderSize:    0,
		channelHeaderSize: 128,
		recordIn:          inChannelHeader,
		recordOffset:      20,
	}
	layoutVD = layout{
		scanHeaderSize:    192,
		channelHeaderSize: 32,
		recordIn:          inScanHeader,
		recordOffset:      40,
	}
)

func (f Format) layout() layout {
	if f == FormatVD {
		return layoutVD
	}
	return layoutVB
}

// ScanHeaderSize returns the size of the per-acquisition header block.
func (f Format) ScanHeaderSize() int { return f.layout().scanHeaderSize }

// ChannelHeaderSize returns the size of the per-channel header block.
func (f Format) ChannelHeaderSize() int { return f.layout().channelHeaderSize }

// RecordOffset returns the byte offset of the loop-counter record within
// the block that holds it (scan header for VD, channel header for VB).
func (f Format) RecordOffset() int { return f.layout().recordOffset }
