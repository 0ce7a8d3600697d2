package twix

import (
	"encoding/binary"
	"fmt"
)

// cursor walks a header block that has already been read into memory.
// Every accessor names the field it decodes so a short block reports which
// field ran off the end.
type cursor struct {
	b   []byte
	off int
}

func newCursor(b []byte, off int) *cursor {
	return &cursor{b: b, off: off}
}

func (c *cursor) take(field string, n int) ([]byte, error) {
	if c.off < 0 || n < 0 || c.off+n > len(c.b) {
		return nil, fmt.Errorf("%w: %s needs %d bytes at offset %d, block is %d bytes",
			ErrShortBlock, field, n, c.off, len(c.b))
	}
	out := c.b[c.off : c.off+n]
	c.off += n
	return out, nil
}

func (c *cursor) skip(field string, n int) error {
	_, err := c.take(field, n)
	return err
}

func (c *cursor) u16(field string) (uint16, error) {
	b, err := c.take(field, 2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (c *cursor) u32(field string) (uint32, error) {
	b, err := c.take(field, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (c *cursor) u64(field string) (uint64, error) {
	b, err := c.take(field, 8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (c *cursor) u16s(field string, dst []uint16) error {
	b, err := c.take(field, 2*len(dst))
	if err != nil {
		return err
	}
	for i := range dst {
		dst[i] = binary.LittleEndian.Uint16(b[2*i:])
	}
	return nil
}

func (c *cursor) u32s(field string, dst []uint32) error {
	b, err := c.take(field, 4*len(dst))
	if err != nil {
		return err
	}
	for i := range dst {
		dst[i] = binary.LittleEndian.Uint32(b[4*i:])
	}
	return nil
}
