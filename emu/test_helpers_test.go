package emu

import "encoding/binary"

// createBlankImage creates an all-zero content image covering the VRAM
// window. With the default registers every pixel of it composites to
// the sky color.
func createBlankImage() []byte {
	return make([]byte, VRAMWindowSize)
}

// createPatternImage creates a content image where every byte of every
// region carries a value derived from its offset, so tests can verify
// that refresh copies land at the right place.
func createPatternImage() []byte {
	img := make([]byte, VRAMWindowSize)
	for i := range img {
		img[i] = byte((i >> 3) ^ i)
	}
	return img
}

// setColor writes one palette entry into a content image.
func setColor(img []byte, palette, index int, c Color12) {
	off := PaletteBase + 2*(palette*PaletteColors+index)
	binary.LittleEndian.PutUint16(img[off:], uint16(c))
}

// setTilePixel writes one 4-bit pixel of a tile into a content image.
func setTilePixel(img []byte, tile, px, py int, ci uint8) {
	off := TileBase + tile*TileBytes + py*4 + px/2
	if px%2 == 0 {
		img[off] = img[off]&0x0F | ci<<4
	} else {
		img[off] = img[off]&0xF0 | ci&0x0F
	}
}

// setSolidTile fills a tile with a single color index.
func setSolidTile(img []byte, tile int, ci uint8) {
	b := ci<<4 | ci&0x0F
	for i := 0; i < TileBytes; i++ {
		img[TileBase+tile*TileBytes+i] = b
	}
}

// setBGCell writes one background map cell into a content image.
func setBGCell(img []byte, cx, cy int, tile uint8) {
	img[BGMapBase+cy*BGMapWidth+cx] = tile
}

// setUICell writes one UI map cell into a content image.
func setUICell(img []byte, col, row int, tile uint8) {
	img[UIMapBase+row*UIMapWidth+col] = tile
}

// setSprite writes one sprite descriptor into a content image.
func setSprite(img []byte, slot int, desc SpriteDesc) {
	binary.LittleEndian.PutUint32(img[SpriteTableBase+4*slot:], uint32(desc))
}

// createTestEmulator builds an emulator around a blank image.
func createTestEmulator() *Emulator {
	e, _ := NewEmulator(createBlankImage(), RegionNTSC)
	return &e
}

// createSolidImage builds an image that composites to a single palette
// color on every pixel: tile 1 is solid color index 1, the whole
// background map points at it, and palette 0 entry 1 holds c. The UI
// maps stay zero, so the bands are transparent and the background
// shows through everywhere.
func createSolidImage(c Color12) []byte {
	img := createBlankImage()
	setColor(img, 0, 1, c)
	setSolidTile(img, 1, 1)
	for cy := 0; cy < BGMapHeight; cy++ {
		for cx := 0; cx < BGMapWidth; cx++ {
			setBGCell(img, cx, cy, 1)
		}
	}
	return img
}

// framebufferColor reads the RGBA channels of one framebuffer pixel.
func framebufferColor(e *Emulator, x, y int) (r, g, b uint8) {
	fb := e.GetFramebuffer()
	off := y*e.GetFramebufferStride() + x*4
	return fb[off], fb[off+1], fb[off+2]
}
