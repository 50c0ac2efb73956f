// Package vramimg assembles VRAM image files in memory. A Builder wraps
// a blank register window and provides typed setters for each table, so
// demo content and fixtures can be produced without hand-computing byte
// offsets. Out-of-range table indexes are masked to the field widths the
// chip itself decodes.
package vramimg

import (
	"encoding/binary"

	"github.com/user-none/emud16/emu"
)

// Builder assembles a VRAM image.
type Builder struct {
	data [emu.VRAMWindowSize]byte
}

// New returns a Builder over a zeroed window.
func New() *Builder {
	return &Builder{}
}

// SetColor writes one palette entry.
func (b *Builder) SetColor(palette, index int, c emu.Color12) {
	off := emu.PaletteBase + 2*((palette&0x07)*emu.PaletteColors+(index&0x0F))
	binary.LittleEndian.PutUint16(b.data[off:off+2], uint16(c))
}

// SetTilePixel writes one 4-bit color index into a tile. The high
// nibble of each byte is the left pixel of the pair.
func (b *Builder) SetTilePixel(tile, x, y int, ci uint8) {
	off := emu.TileBase + (tile&0x1FF)*emu.TileBytes + (y&7)*4 + (x&7)/2
	if x&1 == 0 {
		b.data[off] = (b.data[off] & 0x0F) | (ci&0x0F)<<4
	} else {
		b.data[off] = (b.data[off] & 0xF0) | ci&0x0F
	}
}

// SetSolidTile fills every pixel of a tile with one color index.
func (b *Builder) SetSolidTile(tile int, ci uint8) {
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			b.SetTilePixel(tile, x, y, ci)
		}
	}
}

// TileFromStrings draws a tile from eight rows of eight hex digits.
// '.' and ' ' mean color index 0.
func (b *Builder) TileFromStrings(tile int, rows [8]string) {
	for y, row := range rows {
		for x := 0; x < 8 && x < len(row); x++ {
			b.SetTilePixel(tile, x, y, hexDigit(row[x]))
		}
	}
}

func hexDigit(c byte) uint8 {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	default:
		return 0
	}
}

// SetBGCell writes one background map cell.
func (b *Builder) SetBGCell(cx, cy int, tile uint8) {
	off := emu.BGMapBase + (cy&(emu.BGMapHeight-1))*emu.BGMapWidth + cx&(emu.BGMapWidth-1)
	b.data[off] = tile
}

// FillBG sets every background cell to the same tile.
func (b *Builder) FillBG(tile uint8) {
	for cy := 0; cy < emu.BGMapHeight; cy++ {
		for cx := 0; cx < emu.BGMapWidth; cx++ {
			b.SetBGCell(cx, cy, tile)
		}
	}
}

// SetUICell writes one UI map cell. Rows 0-4 are the top band, 5-9 the
// bottom band.
func (b *Builder) SetUICell(col, row int, tile uint8) {
	if col < 0 || col >= emu.UIMapWidth || row < 0 || row >= emu.UIMapHeight {
		return
	}
	b.data[emu.UIMapBase+row*emu.UIMapWidth+col] = tile
}

// SetSprite writes one sprite descriptor.
func (b *Builder) SetSprite(i int, d emu.SpriteDesc) {
	off := emu.SpriteTableBase + 4*(i&(emu.NumSprites-1))
	binary.LittleEndian.PutUint32(b.data[off:off+4], uint32(d))
}

// Bytes returns a copy of the assembled image.
func (b *Builder) Bytes() []byte {
	out := make([]byte, emu.VRAMWindowSize)
	copy(out, b.data[:])
	return out
}
