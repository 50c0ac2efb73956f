package emu

// UI band geometry: map rows 0-4 overlay the top 40 pixel rows, rows
// 5-9 the bottom 40. The middle of the screen is never touched by the
// UI layer.
const (
	uiBandRows   = 5
	uiBandHeight = uiBandRows * 8
	uiBottomY    = MaxScreenHeight - uiBandHeight
)

// bgExtent is the scrolled background's wrap-around extent in pixels
// (64 cells x 8 pixels).
const bgExtent = BGMapWidth * 8

// renderPixel computes the composited color at (x, y): background
// first, then sprites in ascending index order, then the UI bands.
// It reads only the store and the register file, never the bus, so
// pixels flow at full rate no matter what arbitration is doing.
func (p *PPU) renderPixel(x, y int) Color12 {
	c := p.backgroundPixel(x, y)
	if sc, ok := p.spritePixel(x, y); ok {
		c = sc
	}
	if uc, ok := p.uiPixel(x, y); ok {
		c = uc
	}
	return c
}

// backgroundPixel resolves the scrolled background layer. A transparent
// tile pixel shows the default sky color rather than a palette entry.
func (p *PPU) backgroundPixel(x, y int) Color12 {
	ex := (x + p.scrollX) & (bgExtent - 1)
	ey := (y + p.scrollY) & (bgExtent - 1)
	tile := p.store.bgCell(ex/8, ey/8)
	ci := p.store.tilePixel(int(tile), ex%8, ey%8)
	if ci == p.bgTransparent {
		return DefaultSkyColor
	}
	return p.store.color(p.bgPalette, int(ci))
}

// spritePixel scans all 128 descriptors in ascending order; every
// enabled, covering, opaque hit overwrites the last, so the highest
// index wins. Position math wraps in the descriptor's field width
// (9-bit X, 8-bit Y), letting sprites slide in from the top and left
// edges.
func (p *PPU) spritePixel(x, y int) (Color12, bool) {
	var c Color12
	hit := false
	for i := 0; i < NumSprites; i++ {
		s := p.store.sprite(i)
		if !s.Enabled() {
			continue
		}
		lx := (x - s.X()) & 0x1FF
		if lx >= 8 {
			continue
		}
		ly := (y - s.Y()) & 0xFF
		if ly >= 8 {
			continue
		}
		if s.HFlip() {
			lx = 7 - lx
		}
		if s.VFlip() {
			ly = 7 - ly
		}
		ci := p.store.tilePixel(s.Tile(), lx, ly)
		if ci == p.spriteTransparent {
			continue
		}
		c = p.store.color(s.Palette(), int(ci))
		hit = true
	}
	return c, hit
}

// uiPixel resolves the fixed top/bottom bands. Cells are 8x8 with no
// scrolling; each band has its own palette selector. Transparency
// follows the background convention.
func (p *PPU) uiPixel(x, y int) (Color12, bool) {
	var row, pal int
	switch {
	case y < uiBandHeight:
		row = y / 8
		pal = p.uiPaletteTop
	case y >= uiBottomY:
		row = uiBandRows + (y-uiBottomY)/8
		pal = p.uiPaletteBottom
	default:
		return 0, false
	}
	tile := p.store.uiCell(x/8, row)
	ci := p.store.tilePixel(int(tile), x%8, y%8)
	if ci == p.bgTransparent {
		return 0, false
	}
	return p.store.color(pal, int(ci)), true
}
