package emu

// BusIn carries the host-side bus signals the chip samples each clock.
type BusIn struct {
	Grant      bool   // host has granted the bus
	AddrStrobe bool   // host address strobe; active while the host runs its own bus cycle
	ReadData   uint16 // data the memory drives for the in-flight read
}

// BusOut carries the bus signals the chip presents each clock.
type BusOut struct {
	Request     bool
	Acknowledge bool
	DriveEnable bool // the chip's bus drivers are on
	Addr        uint32
	WriteData   uint16
	ReadStrobe  bool
	WriteStrobe bool
}

// PixelOut is one raster dot: 8-bit channels plus the valid strobe.
type PixelOut struct {
	R, G, B uint8
	Valid   bool
}

// PPU models the video chip: a register file, the on-chip copy of
// video memory, the arbitration and refresh state machines, and the
// per-dot compositor. All state lives in the struct; independent
// instances share nothing.
type PPU struct {
	store   vramStore
	scan    scanCounter
	arb     busArbiter
	refresh refreshEngine

	// Register file, latched between cycles by the driver.
	scrollX           int
	scrollY           int
	bgPalette         int
	uiPaletteTop      int
	uiPaletteBottom   int
	bgTransparent     uint8
	spriteTransparent uint8
}

// NewPPU builds a powered-up chip. The content image, when non-nil,
// must cover the VRAM window; it seeds the store the way the power-up
// load does, so frame 0 already shows real content.
func NewPPU(image []byte) *PPU {
	p := &PPU{}
	p.Reset()
	if image != nil {
		p.store.loadImage(image)
	}
	return p
}

// Reset is synchronous and global: both state machines to their
// initial states, scan position to the top-left, registers to their
// power-on values. The store is not cleared; refresh will overwrite it
// within a frame anyway.
func (p *PPU) Reset() {
	p.scan.reset()
	p.arb.reset()
	p.refresh.reset()
	p.scrollX = 0
	p.scrollY = 0
	p.bgPalette = 0
	p.uiPaletteTop = 0
	p.uiPaletteBottom = 0
	p.bgTransparent = 0
	p.spriteTransparent = 0
}

// Tick advances the chip exactly one clock. The refresh engine steps
// first (it observes the previous cycle's arbiter status and done
// pulse), then the arbiter consumes the sampled bus inputs, then the
// compositor emits the dot for the current scan position, and finally
// the scan counter advances.
func (p *PPU) Tick(in BusIn) (BusOut, PixelOut) {
	x, y := p.scan.x, p.scan.y

	p.refresh.step(p.scan.frameStart(), &p.arb, &p.store)
	p.arb.step(p.refresh.busWanted, in.Grant, in.AddrStrobe, in.ReadData)

	c := p.renderPixel(x, y)
	r, g, b := c.RGB8()

	p.scan.advance()

	return BusOut{
			Request:     p.arb.request(),
			Acknowledge: p.arb.acknowledge(),
			DriveEnable: p.arb.driveEnable(),
			Addr:        p.arb.busAddr(),
			WriteData:   p.arb.busWriteData(),
			ReadStrobe:  p.arb.readStrobe(),
			WriteStrobe: p.arb.writeStrobe(),
		}, PixelOut{
			R: r, G: g, B: b,
			Valid: true,
		}
}

// Register file access.

// SetScroll sets the background scroll offsets, wrapped to the map
// extent.
func (p *PPU) SetScroll(x, y int) {
	p.scrollX = x & (bgExtent - 1)
	p.scrollY = y & (bgExtent - 1)
}

// Scroll returns the current background scroll offsets.
func (p *PPU) Scroll() (x, y int) {
	return p.scrollX, p.scrollY
}

// SetBGPalette selects the palette used by the background layer.
func (p *PPU) SetBGPalette(pal int) {
	p.bgPalette = pal & (NumPalettes - 1)
}

// SetUIPalettes selects the palettes for the top and bottom UI bands.
func (p *PPU) SetUIPalettes(top, bottom int) {
	p.uiPaletteTop = top & (NumPalettes - 1)
	p.uiPaletteBottom = bottom & (NumPalettes - 1)
}

// SetTransparency sets the color index treated as transparent in the
// background/UI context and the sprite context.
func (p *PPU) SetTransparency(bg, sprite uint8) {
	p.bgTransparent = bg & 0x0F
	p.spriteTransparent = sprite & 0x0F
}

// Transparency returns the per-context transparent indices.
func (p *PPU) Transparency() (bg, sprite uint8) {
	return p.bgTransparent, p.spriteTransparent
}

// SetWaitStates sets the ReadWait/WriteWait length of the bus engine.
func (p *PPU) SetWaitStates(n int) {
	if n < 0 {
		n = 0
	}
	if n > 15 {
		n = 15
	}
	p.arb.waitStates = n
}

// Introspection for tests and tools.

// ScanX returns the current raster X position.
func (p *PPU) ScanX() int { return p.scan.x }

// ScanY returns the current raster Y position.
func (p *PPU) ScanY() int { return p.scan.y }

// ArbitrationState returns the bus FSM state.
func (p *PPU) ArbitrationState() BusState { return p.arb.state }

// RefreshState returns the refresh FSM state.
func (p *PPU) RefreshState() RefreshState { return p.refresh.state }

// Refreshed reports whether the current frame's refresh pass has
// completed.
func (p *PPU) Refreshed() bool { return p.refresh.refreshed }

// BusWanted reports the refresh engine's ownership demand.
func (p *PPU) BusWanted() bool { return p.refresh.busWanted }

// StallCycles returns the consecutive cycles spent waiting for a bus
// grant. It only grows while the host withholds the bus; there is no
// timeout.
func (p *PPU) StallCycles() uint64 { return p.arb.stallCycles }

// RefreshPasses returns the number of completed refresh passes.
func (p *PPU) RefreshPasses() uint64 { return p.refresh.passes }

// RefreshReads returns the total element reads issued by the refresh
// engine.
func (p *PPU) RefreshReads() uint64 { return p.refresh.reads }
