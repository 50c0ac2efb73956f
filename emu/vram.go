package emu

import "encoding/binary"

// Shared-RAM layout of the VRAM window. The host assembles content here
// and the refresh engine copies it into the on-chip store once per frame
// as 16-bit little-endian elements.
const (
	PaletteBase = 0x00000
	PaletteSize = 0x100 // 8 palettes x 16 colors x 2 bytes

	TileBase = 0x01000
	TileSize = 0x4000 // 512 tiles x 32 bytes

	BGMapBase = 0x05000
	BGMapSize = 0x1000 // 64x64 cells, 1 byte each

	UIMapBase = 0x06000
	UIMapSize = 400 // 40x10 cells, 1 byte each

	SpriteTableBase = 0x07000
	SpriteTableSize = 0x200 // 128 descriptors x 4 bytes

	// VRAMWindowSize covers all regions through the sprite table's
	// reserved padding. Content images must be at least this large.
	VRAMWindowSize = 0x07400
)

// Table geometry.
const (
	NumPalettes   = 8
	PaletteColors = 16

	NumTiles  = 512
	TileBytes = 32 // 8x8 pixels at 4bpp, 2 pixels per byte

	BGMapWidth  = 64
	BGMapHeight = 64

	UIMapWidth  = 40
	UIMapHeight = 10

	NumSprites = 128
)

// Color12 is a packed 12-bit RGB color in a 16-bit slot:
//
//	bits 11-8  red
//	bits  7-4  green
//	bits  3-0  blue
//
// The top nibble is ignored.
type Color12 uint16

// RGB12 packs three 4-bit channels into a Color12.
func RGB12(r, g, b uint8) Color12 {
	return Color12(uint16(r&0x0F)<<8 | uint16(g&0x0F)<<4 | uint16(b&0x0F))
}

// R4 returns the 4-bit red channel.
func (c Color12) R4() uint8 { return uint8(c>>8) & 0x0F }

// G4 returns the 4-bit green channel.
func (c Color12) G4() uint8 { return uint8(c>>4) & 0x0F }

// B4 returns the 4-bit blue channel.
func (c Color12) B4() uint8 { return uint8(c) & 0x0F }

// RGB8 expands the channels to 8 bits by replicating each nibble into
// the low half (0xC becomes 0xCC), so full intensity maps to 0xFF.
func (c Color12) RGB8() (r, g, b uint8) {
	r = c.R4()
	g = c.G4()
	b = c.B4()
	return r<<4 | r, g<<4 | g, b<<4 | b
}

// DefaultSkyColor is emitted for transparent background pixels in place
// of a palette entry.
const DefaultSkyColor = Color12(0x8DF) // RGB (0x88, 0xDD, 0xFF)

// SpriteDesc is a packed 32-bit sprite descriptor:
//
//	bit  31     enable
//	bit  30     vertical flip
//	bit  29     horizontal flip
//	bits 28-26  palette (0-7)
//	bits 25-17  tile index (0-511)
//	bits 16-9   Y position (0-255)
//	bits  8-0   X position (0-511)
type SpriteDesc uint32

// Descriptor field masks and shifts.
const (
	spriteEnableBit = 1 << 31
	spriteVFlipBit  = 1 << 30
	spriteHFlipBit  = 1 << 29

	spritePaletteShift = 26
	spriteTileShift    = 17
	spriteYShift       = 9
)

// MakeSpriteDesc packs descriptor fields. Out-of-range values are
// masked to their field width.
func MakeSpriteDesc(enable, vflip, hflip bool, palette, tile, y, x int) SpriteDesc {
	var d uint32
	if enable {
		d |= spriteEnableBit
	}
	if vflip {
		d |= spriteVFlipBit
	}
	if hflip {
		d |= spriteHFlipBit
	}
	d |= uint32(palette&0x07) << spritePaletteShift
	d |= uint32(tile&0x1FF) << spriteTileShift
	d |= uint32(y&0xFF) << spriteYShift
	d |= uint32(x & 0x1FF)
	return SpriteDesc(d)
}

// Enabled reports whether the sprite is drawn.
func (s SpriteDesc) Enabled() bool { return s&spriteEnableBit != 0 }

// VFlip reports whether the tile is mirrored vertically.
func (s SpriteDesc) VFlip() bool { return s&spriteVFlipBit != 0 }

// HFlip reports whether the tile is mirrored horizontally.
func (s SpriteDesc) HFlip() bool { return s&spriteHFlipBit != 0 }

// Palette returns the palette selector (0-7).
func (s SpriteDesc) Palette() int { return int(s>>spritePaletteShift) & 0x07 }

// Tile returns the tile index (0-511).
func (s SpriteDesc) Tile() int { return int(s>>spriteTileShift) & 0x1FF }

// Y returns the screen Y position of the top edge (0-255).
func (s SpriteDesc) Y() int { return int(s>>spriteYShift) & 0xFF }

// X returns the screen X position of the left edge (0-511).
func (s SpriteDesc) X() int { return int(s) & 0x1FF }

// vramStore holds the on-chip copy of the five VRAM regions. It is
// loaded from the content image at power-up and thereafter written only
// by the refresh engine, one 16-bit element at a time. The compositor
// reads it every clock.
type vramStore struct {
	palettes [NumPalettes * PaletteColors]Color12
	tiles    [NumTiles * TileBytes]uint8
	bgMap    [BGMapWidth * BGMapHeight]uint8
	uiMap    [UIMapWidth * UIMapHeight]uint8
	sprites  [NumSprites]SpriteDesc
}

// loadImage initializes every region from a content image laid out per
// the shared-RAM map. The image must cover the VRAM window.
func (v *vramStore) loadImage(img []byte) {
	for i := range v.palettes {
		v.palettes[i] = Color12(binary.LittleEndian.Uint16(img[PaletteBase+2*i:]))
	}
	copy(v.tiles[:], img[TileBase:TileBase+TileSize])
	copy(v.bgMap[:], img[BGMapBase:BGMapBase+BGMapSize])
	copy(v.uiMap[:], img[UIMapBase:UIMapBase+UIMapSize])
	for i := range v.sprites {
		v.sprites[i] = SpriteDesc(binary.LittleEndian.Uint32(img[SpriteTableBase+4*i:]))
	}
}

// Element writers used by the refresh engine. Element i is the i-th
// 16-bit word of the region in shared RAM.

func (v *vramStore) writePaletteElement(i int, val uint16) {
	v.palettes[i] = Color12(val)
}

func (v *vramStore) writeTileElement(i int, val uint16) {
	v.tiles[2*i] = uint8(val)
	v.tiles[2*i+1] = uint8(val >> 8)
}

func (v *vramStore) writeBGMapElement(i int, val uint16) {
	v.bgMap[2*i] = uint8(val)
	v.bgMap[2*i+1] = uint8(val >> 8)
}

func (v *vramStore) writeUIMapElement(i int, val uint16) {
	v.uiMap[2*i] = uint8(val)
	v.uiMap[2*i+1] = uint8(val >> 8)
}

// writeSpriteElement stores one half of a descriptor: even elements are
// the low 16 bits, odd elements the high 16 bits.
func (v *vramStore) writeSpriteElement(i int, val uint16) {
	d := uint32(v.sprites[i/2])
	if i%2 == 0 {
		d = d&0xFFFF0000 | uint32(val)
	} else {
		d = d&0x0000FFFF | uint32(val)<<16
	}
	v.sprites[i/2] = SpriteDesc(d)
}

// Read helpers used by the compositor.

func (v *vramStore) color(palette, index int) Color12 {
	return v.palettes[palette*PaletteColors+index]
}

// tilePixel returns the 4-bit color index of pixel (px, py) of a tile.
// Rows are 4 bytes; the high nibble of each byte holds the left pixel
// of the pair.
func (v *vramStore) tilePixel(tile, px, py int) uint8 {
	b := v.tiles[tile*TileBytes+py*4+px/2]
	if px%2 == 0 {
		return b >> 4
	}
	return b & 0x0F
}

func (v *vramStore) bgCell(cx, cy int) uint8 {
	return v.bgMap[cy*BGMapWidth+cx]
}

func (v *vramStore) uiCell(col, row int) uint8 {
	return v.uiMap[row*UIMapWidth+col]
}

func (v *vramStore) sprite(i int) SpriteDesc {
	return v.sprites[i]
}
