package emu

import (
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"

	"github.com/cespare/xxhash/v2"
	emucore "github.com/user-none/eblitui/api"
)

// Compile-time interface checks.
var _ emucore.Emulator = (*Emulator)(nil)
var _ emucore.SaveStater = (*Emulator)(nil)
var _ emucore.MemoryInspector = (*Emulator)(nil)
var _ emucore.MemoryMapper = (*Emulator)(nil)

// Core identity reported to front-ends.
const (
	Name    = "emud16"
	Version = "1.0.0"
)

const sampleRate = 48000

// Save state format constants
const (
	stateVersion    = 1
	stateMagic      = "emud16SState"
	stateHeaderSize = 22 // magic(12) + version(2) + imageCRC(4) + dataCRC(4)
)

// Wait states applied by the slow-bus core option. At this latency a
// refresh pass no longer fits inside one frame, so the picture tears
// the way an overloaded board does.
const slowBusWaitStates = 8

// Emulator couples the video chip with the host-side bus model and
// assembles its pixel stream into an RGBA framebuffer.
type Emulator struct {
	ppu  *PPU
	host *hostBus

	// Chip outputs of the most recent cycle, fed back to the host at
	// the start of the next one.
	bus BusOut

	framebuffer *image.RGBA

	region Region
	info   ContentInfo
	known  bool // image found in the content database

	transparent15 bool
	slowBus       bool

	buttons     uint32
	prevButtons uint32

	frame uint64

	// The chip has no sound hardware; front-ends still expect a
	// buffer, so hand out one frame of silence.
	audioBuffer []int16
}

// NewEmulator creates and initializes the emulator components. Short
// images are zero-padded to the VRAM window; the shared RAM beyond the
// image stays cleared.
func NewEmulator(img []byte, region Region) (Emulator, error) {
	if len(img) == 0 {
		return Emulator{}, errors.New("empty content image")
	}
	if len(img) > RAMSize {
		return Emulator{}, errors.New("content image exceeds shared memory")
	}

	padded := img
	if len(padded) < VRAMWindowSize {
		padded = make([]byte, VRAMWindowSize)
		copy(padded, img)
	}

	host := newHostBus(img)
	ppu := NewPPU(padded)

	info, known := LookupContent(host.GetImageCRC32())

	e := Emulator{
		ppu:         ppu,
		host:        host,
		framebuffer: image.NewRGBA(image.Rect(0, 0, ScreenWidth, MaxScreenHeight)),
		region:      region,
		info:        info,
		known:       known,
		audioBuffer: make([]int16, 2*(sampleRate/60)),
	}
	e.applyContentConfig()
	return e, nil
}

// applyContentConfig programs the register file from the content
// database entry, with the transparency option taking precedence over
// the recorded convention.
func (e *Emulator) applyContentConfig() {
	if e.transparent15 {
		e.ppu.SetTransparency(15, 15)
	} else {
		e.ppu.SetTransparency(e.info.BG.transparentIndex(), e.info.Sprite.transparentIndex())
	}
	e.ppu.SetBGPalette(e.info.BGPalette)
	e.ppu.SetUIPalettes(e.info.UITop, e.info.UIBottom)
	if e.slowBus {
		e.ppu.SetWaitStates(slowBusWaitStates)
	} else {
		e.ppu.SetWaitStates(DefaultWaitStates)
	}
}

// Reset returns the machine to its power-on posture. Shared RAM and
// the store keep the loaded content.
func (e *Emulator) Reset() {
	e.ppu.Reset()
	e.host.resetSignals()
	e.bus = BusOut{}
	e.frame = 0
	e.applyContentConfig()
}

// StepCycle advances the whole machine one clock: the host reacts to
// the chip outputs of the previous cycle, then the chip ticks, and the
// emitted dot lands in the framebuffer at the scan position it was
// rendered for.
func (e *Emulator) StepCycle() {
	x, y := e.ppu.ScanX(), e.ppu.ScanY()

	e.host.service(e.bus)
	out, px := e.ppu.Tick(e.host.busIn())
	e.bus = out

	if px.Valid {
		off := y*e.framebuffer.Stride + x*4
		pix := e.framebuffer.Pix
		pix[off] = px.R
		pix[off+1] = px.G
		pix[off+2] = px.B
		pix[off+3] = 0xFF
	}
}

// RunFrame executes one frame: applies held input, then steps the
// machine for exactly one frame of cycles.
func (e *Emulator) RunFrame() {
	e.applyInput()
	for i := 0; i < CyclesPerFrame; i++ {
		e.StepCycle()
	}
	e.frame++
}

// Pan speeds in pixels per frame.
const (
	panSpeed     = 1
	fastPanSpeed = 4
)

// applyInput converts held buttons into scroll register updates. The
// d-pad pans the background, button 1 speeds the pan up, and Start
// snaps back to the origin on press.
func (e *Emulator) applyInput() {
	up := e.buttons&(1<<emucore.ButtonUp) != 0
	down := e.buttons&(1<<emucore.ButtonDown) != 0
	left := e.buttons&(1<<emucore.ButtonLeft) != 0
	right := e.buttons&(1<<emucore.ButtonRight) != 0
	fast := e.buttons&(1<<4) != 0

	step := panSpeed
	if fast {
		step = fastPanSpeed
	}

	dx, dy := 0, 0
	if left {
		dx -= step
	}
	if right {
		dx += step
	}
	if up {
		dy -= step
	}
	if down {
		dy += step
	}

	// Edge detect re-center (bit 7).
	centerNow := e.buttons&(1<<7) != 0
	centerPrev := e.prevButtons&(1<<7) != 0
	switch {
	case centerNow && !centerPrev:
		e.ppu.SetScroll(0, 0)
	case dx != 0 || dy != 0:
		sx, sy := e.ppu.Scroll()
		e.ppu.SetScroll(sx+dx, sy+dy)
	}

	e.prevButtons = e.buttons
}

// SetInput stores a button bitmask for the given player. Only player 0
// is wired; the pan is applied at the start of the next frame.
func (e *Emulator) SetInput(player int, buttons uint32) {
	if player != 0 {
		return
	}
	e.buttons = buttons
}

// GetFramebuffer returns raw RGBA pixel data for the current frame.
func (e *Emulator) GetFramebuffer() []byte {
	return e.framebuffer.Pix
}

// GetFramebufferStride returns the stride (bytes per row) of the framebuffer.
func (e *Emulator) GetFramebufferStride() int {
	return e.framebuffer.Stride
}

// GetActiveHeight returns the active display height.
func (e *Emulator) GetActiveHeight() int {
	return MaxScreenHeight
}

// GetRegion returns the emulator's region setting.
func (e *Emulator) GetRegion() Region {
	return e.region
}

// GetTiming returns FPS and scanline count.
func (e *Emulator) GetTiming() emucore.Timing {
	t := GetTimingForRegion(e.region)
	return emucore.Timing{
		FPS:       t.FPS,
		Scanlines: t.Scanlines,
	}
}

// SetRegion updates the emulator's region configuration. Timing is
// identical across regions, so only the catalogue setting changes.
func (e *Emulator) SetRegion(region Region) {
	e.region = region
}

// SetOption applies a core option change identified by key.
func (e *Emulator) SetOption(key string, value string) {
	switch key {
	case "transparent_15":
		e.transparent15 = value == "true"
		e.applyContentConfig()
	case "slow_bus":
		e.slowBus = value == "true"
		e.applyContentConfig()
	}
}

// Close releases any resources held by the emulator.
func (e *Emulator) Close() {}

// GetAudioSamples returns one frame of silent 16-bit stereo PCM.
func (e *Emulator) GetAudioSamples() []int16 {
	return e.audioBuffer
}

// FrameCount returns the number of frames run since power-on or reset.
func (e *Emulator) FrameCount() uint64 {
	return e.frame
}

// FrameHash returns a fingerprint of the current framebuffer contents,
// for change detection and golden comparisons.
func (e *Emulator) FrameHash() uint64 {
	return xxhash.Sum64(e.framebuffer.Pix)
}

// PPU exposes the chip model for cycle-level inspection.
func (e *Emulator) PPU() *PPU {
	return e.ppu
}

// ChipDrivesBus reports the chip's drive-enable rail after the most
// recent cycle.
func (e *Emulator) ChipDrivesBus() bool {
	return e.bus.DriveEnable
}

// HostDrivesBus reports the host's drive-enable rail after the most
// recent cycle.
func (e *Emulator) HostDrivesBus() bool {
	return e.host.driveEnabled
}

// SetBusNeverGrant withholds the host's bus grant forever when set,
// stalling the chip in its request state. Fault-injection hook.
func (e *Emulator) SetBusNeverGrant(v bool) {
	e.host.neverGrant = v
}

// SetBusQuiesceDelay sets how many cycles the host holds its address
// strobe after granting.
func (e *Emulator) SetBusQuiesceDelay(n int) {
	if n < 0 {
		n = 0
	}
	e.host.quiesceDelay = n
}

// WriteSharedRAM stores bytes into shared memory, modeling the host
// updating content between frames. The next refresh pass makes the
// change visible.
func (e *Emulator) WriteSharedRAM(addr uint32, data []byte) {
	e.host.writeBytes(addr, data)
}

// ReadSharedRAM copies shared memory into buf and returns the number
// of bytes read.
func (e *Emulator) ReadSharedRAM(addr uint32, buf []byte) uint32 {
	return e.host.readBytes(addr, buf)
}

// GetImageCRC32 returns the CRC32 of the loaded content image.
func (e *Emulator) GetImageCRC32() uint32 {
	return e.host.GetImageCRC32()
}

// ContentTitle returns the catalogue title of the loaded image, or the
// empty string for unknown content.
func (e *Emulator) ContentTitle() string {
	if !e.known {
		return ""
	}
	return e.info.Title
}

// =============================================================================
// Save State Serialization
// =============================================================================

// SerializeSize returns the total size in bytes needed for a save state.
func SerializeSize() int {
	// Header: 22 bytes
	// Store: 256 palettes + 16KB tiles + 4KB bg map + 400 UI map + 512 sprites
	// Registers + scan position: 13 bytes
	// Bus arbiter: 22 bytes; refresh engine: 22 bytes
	// Bus output latch: 11 bytes; host signals: 8 bytes
	// Shared RAM: 1MB; frame counter: 8 bytes

	return stateHeaderSize + // 22
		PaletteSize + // store palettes (256)
		TileSize + // tile atlas (16KB)
		BGMapSize + // background map (4KB)
		UIMapSize + // UI map (400)
		SpriteTableSize + // sprite table (512)
		9 + // registers
		4 + // scan position
		22 + // bus arbiter
		22 + // refresh engine
		11 + // bus output latch
		8 + // host signals
		RAMSize + // shared RAM (1MB)
		8 // frame counter
}

// Serialize creates a save state and returns it as a byte slice.
func (e *Emulator) Serialize() ([]byte, error) {
	size := SerializeSize()
	data := make([]byte, size)

	// Write header
	copy(data[0:12], stateMagic)
	binary.LittleEndian.PutUint16(data[12:14], stateVersion)
	binary.LittleEndian.PutUint32(data[14:18], e.host.GetImageCRC32())
	// Data CRC will be written at the end

	offset := stateHeaderSize
	offset = e.serializeStore(data, offset)
	offset = e.serializeRegisters(data, offset)
	offset = e.serializeArbiter(data, offset)
	offset = e.serializeRefresh(data, offset)
	offset = e.serializeBusLatch(data, offset)
	offset = e.serializeHost(data, offset)
	binary.LittleEndian.PutUint64(data[offset:], e.frame)

	// Calculate and write data CRC32 (over everything after header)
	dataCRC := crc32.ChecksumIEEE(data[stateHeaderSize:])
	binary.LittleEndian.PutUint32(data[18:22], dataCRC)

	return data, nil
}

// Deserialize restores emulator state from a save state byte slice.
// The region setting and core options are preserved.
func (e *Emulator) Deserialize(data []byte) error {
	if err := e.VerifyState(data); err != nil {
		return err
	}

	offset := stateHeaderSize
	offset = e.deserializeStore(data, offset)
	offset = e.deserializeRegisters(data, offset)
	offset = e.deserializeArbiter(data, offset)
	offset = e.deserializeRefresh(data, offset)
	offset = e.deserializeBusLatch(data, offset)
	offset = e.deserializeHost(data, offset)
	e.frame = binary.LittleEndian.Uint64(data[offset:])

	return nil
}

// VerifyState checks if a save state is valid without loading it.
func (e *Emulator) VerifyState(data []byte) error {
	expectedSize := SerializeSize()
	if len(data) < expectedSize {
		return errors.New("save state too short")
	}

	if string(data[0:12]) != stateMagic {
		return errors.New("invalid save state magic")
	}

	version := binary.LittleEndian.Uint16(data[12:14])
	if version > stateVersion {
		return errors.New("unsupported save state version")
	}

	imageCRC := binary.LittleEndian.Uint32(data[14:18])
	if imageCRC != e.host.GetImageCRC32() {
		return errors.New("save state is for a different content image")
	}

	expectedCRC := binary.LittleEndian.Uint32(data[18:22])
	actualCRC := crc32.ChecksumIEEE(data[stateHeaderSize:])
	if expectedCRC != actualCRC {
		return errors.New("save state data is corrupted")
	}

	return nil
}

func putBool(data []byte, offset int, v bool) int {
	if v {
		data[offset] = 1
	} else {
		data[offset] = 0
	}
	return offset + 1
}

// serializeStore writes the five store tables to the data buffer
func (e *Emulator) serializeStore(data []byte, offset int) int {
	v := &e.ppu.store

	// Palettes (256 bytes)
	for _, c := range v.palettes {
		binary.LittleEndian.PutUint16(data[offset:], uint16(c))
		offset += 2
	}

	// Tile atlas (16KB)
	copy(data[offset:], v.tiles[:])
	offset += len(v.tiles)

	// Background map (4KB)
	copy(data[offset:], v.bgMap[:])
	offset += len(v.bgMap)

	// UI map (400 bytes)
	copy(data[offset:], v.uiMap[:])
	offset += len(v.uiMap)

	// Sprite table (512 bytes)
	for _, s := range v.sprites {
		binary.LittleEndian.PutUint32(data[offset:], uint32(s))
		offset += 4
	}

	return offset
}

// deserializeStore reads the five store tables from the data buffer
func (e *Emulator) deserializeStore(data []byte, offset int) int {
	v := &e.ppu.store

	for i := range v.palettes {
		v.palettes[i] = Color12(binary.LittleEndian.Uint16(data[offset:]))
		offset += 2
	}

	copy(v.tiles[:], data[offset:offset+len(v.tiles)])
	offset += len(v.tiles)

	copy(v.bgMap[:], data[offset:offset+len(v.bgMap)])
	offset += len(v.bgMap)

	copy(v.uiMap[:], data[offset:offset+len(v.uiMap)])
	offset += len(v.uiMap)

	for i := range v.sprites {
		v.sprites[i] = SpriteDesc(binary.LittleEndian.Uint32(data[offset:]))
		offset += 4
	}

	return offset
}

// serializeRegisters writes the register file and scan position
func (e *Emulator) serializeRegisters(data []byte, offset int) int {
	p := e.ppu

	binary.LittleEndian.PutUint16(data[offset:], uint16(p.scrollX))
	offset += 2
	binary.LittleEndian.PutUint16(data[offset:], uint16(p.scrollY))
	offset += 2
	data[offset] = uint8(p.bgPalette)
	offset++
	data[offset] = uint8(p.uiPaletteTop)
	offset++
	data[offset] = uint8(p.uiPaletteBottom)
	offset++
	data[offset] = p.bgTransparent
	offset++
	data[offset] = p.spriteTransparent
	offset++

	binary.LittleEndian.PutUint16(data[offset:], uint16(p.scan.x))
	offset += 2
	binary.LittleEndian.PutUint16(data[offset:], uint16(p.scan.y))
	offset += 2

	return offset
}

// deserializeRegisters reads the register file and scan position
func (e *Emulator) deserializeRegisters(data []byte, offset int) int {
	p := e.ppu

	p.scrollX = int(binary.LittleEndian.Uint16(data[offset:]))
	offset += 2
	p.scrollY = int(binary.LittleEndian.Uint16(data[offset:]))
	offset += 2
	p.bgPalette = int(data[offset])
	offset++
	p.uiPaletteTop = int(data[offset])
	offset++
	p.uiPaletteBottom = int(data[offset])
	offset++
	p.bgTransparent = data[offset]
	offset++
	p.spriteTransparent = data[offset]
	offset++

	p.scan.x = int(binary.LittleEndian.Uint16(data[offset:]))
	offset += 2
	p.scan.y = int(binary.LittleEndian.Uint16(data[offset:]))
	offset += 2

	return offset
}

// serializeArbiter writes the bus FSM state
func (e *Emulator) serializeArbiter(data []byte, offset int) int {
	a := &e.ppu.arb

	data[offset] = uint8(a.state)
	offset++
	data[offset] = uint8(a.waitStates)
	offset++
	data[offset] = uint8(a.waitCount)
	offset++
	offset = putBool(data, offset, a.pending)
	offset = putBool(data, offset, a.isWrite)
	binary.LittleEndian.PutUint32(data[offset:], a.addr)
	offset += 4
	binary.LittleEndian.PutUint16(data[offset:], a.wrData)
	offset += 2
	binary.LittleEndian.PutUint16(data[offset:], a.rdData)
	offset += 2
	offset = putBool(data, offset, a.done)
	binary.LittleEndian.PutUint64(data[offset:], a.stallCycles)
	offset += 8

	return offset
}

// deserializeArbiter reads the bus FSM state
func (e *Emulator) deserializeArbiter(data []byte, offset int) int {
	a := &e.ppu.arb

	a.state = BusState(data[offset])
	offset++
	a.waitStates = int(data[offset])
	offset++
	a.waitCount = int(data[offset])
	offset++
	a.pending = data[offset] != 0
	offset++
	a.isWrite = data[offset] != 0
	offset++
	a.addr = binary.LittleEndian.Uint32(data[offset:])
	offset += 4
	a.wrData = binary.LittleEndian.Uint16(data[offset:])
	offset += 2
	a.rdData = binary.LittleEndian.Uint16(data[offset:])
	offset += 2
	a.done = data[offset] != 0
	offset++
	a.stallCycles = binary.LittleEndian.Uint64(data[offset:])
	offset += 8

	return offset
}

// serializeRefresh writes the refresh FSM state
func (e *Emulator) serializeRefresh(data []byte, offset int) int {
	r := &e.ppu.refresh

	data[offset] = uint8(r.state)
	offset++
	data[offset] = uint8(r.region)
	offset++
	binary.LittleEndian.PutUint16(data[offset:], uint16(r.elem))
	offset += 2
	offset = putBool(data, offset, r.refreshed)
	offset = putBool(data, offset, r.busWanted)
	binary.LittleEndian.PutUint64(data[offset:], r.passes)
	offset += 8
	binary.LittleEndian.PutUint64(data[offset:], r.reads)
	offset += 8

	return offset
}

// deserializeRefresh reads the refresh FSM state
func (e *Emulator) deserializeRefresh(data []byte, offset int) int {
	r := &e.ppu.refresh

	r.state = RefreshState(data[offset])
	offset++
	r.region = int(data[offset])
	offset++
	r.elem = int(binary.LittleEndian.Uint16(data[offset:]))
	offset += 2
	r.refreshed = data[offset] != 0
	offset++
	r.busWanted = data[offset] != 0
	offset++
	r.passes = binary.LittleEndian.Uint64(data[offset:])
	offset += 8
	r.reads = binary.LittleEndian.Uint64(data[offset:])
	offset += 8

	return offset
}

// serializeBusLatch writes the chip outputs of the most recent cycle
func (e *Emulator) serializeBusLatch(data []byte, offset int) int {
	offset = putBool(data, offset, e.bus.Request)
	offset = putBool(data, offset, e.bus.Acknowledge)
	offset = putBool(data, offset, e.bus.DriveEnable)
	offset = putBool(data, offset, e.bus.ReadStrobe)
	offset = putBool(data, offset, e.bus.WriteStrobe)
	binary.LittleEndian.PutUint32(data[offset:], e.bus.Addr)
	offset += 4
	binary.LittleEndian.PutUint16(data[offset:], e.bus.WriteData)
	offset += 2

	return offset
}

// deserializeBusLatch reads the chip outputs of the most recent cycle
func (e *Emulator) deserializeBusLatch(data []byte, offset int) int {
	e.bus.Request = data[offset] != 0
	offset++
	e.bus.Acknowledge = data[offset] != 0
	offset++
	e.bus.DriveEnable = data[offset] != 0
	offset++
	e.bus.ReadStrobe = data[offset] != 0
	offset++
	e.bus.WriteStrobe = data[offset] != 0
	offset++
	e.bus.Addr = binary.LittleEndian.Uint32(data[offset:])
	offset += 4
	e.bus.WriteData = binary.LittleEndian.Uint16(data[offset:])
	offset += 2

	return offset
}

// serializeHost writes the host signals and shared RAM
func (e *Emulator) serializeHost(data []byte, offset int) int {
	h := e.host

	offset = putBool(data, offset, h.grant)
	offset = putBool(data, offset, h.addrStrobe)
	offset = putBool(data, offset, h.driveEnabled)
	offset = putBool(data, offset, h.neverGrant)
	data[offset] = uint8(h.quiesceDelay)
	offset++
	data[offset] = uint8(h.quiesceCount)
	offset++
	binary.LittleEndian.PutUint16(data[offset:], h.readData)
	offset += 2

	copy(data[offset:], h.ram[:])
	offset += len(h.ram)

	return offset
}

// deserializeHost reads the host signals and shared RAM
func (e *Emulator) deserializeHost(data []byte, offset int) int {
	h := e.host

	h.grant = data[offset] != 0
	offset++
	h.addrStrobe = data[offset] != 0
	offset++
	h.driveEnabled = data[offset] != 0
	offset++
	h.neverGrant = data[offset] != 0
	offset++
	h.quiesceDelay = int(data[offset])
	offset++
	h.quiesceCount = int(data[offset])
	offset++
	h.readData = binary.LittleEndian.Uint16(data[offset:])
	offset += 2

	copy(h.ram[:], data[offset:offset+len(h.ram)])
	offset += len(h.ram)

	return offset
}

// =============================================================================
// MemoryInspector interface
// =============================================================================

// ReadMemory reads from a flat address into buf and returns the number
// of bytes read. The flat map is simply the 1MB shared RAM.
func (e *Emulator) ReadMemory(addr uint32, buf []byte) uint32 {
	return e.host.readBytes(addr, buf)
}

// =============================================================================
// MemoryMapper interface
// =============================================================================

// MemoryMap returns a list of available memory regions with sizes.
func (e *Emulator) MemoryMap() []emucore.MemoryRegion {
	return []emucore.MemoryRegion{
		{Type: emucore.MemorySystemRAM, Size: RAMSize},
	}
}

// ReadRegion returns a copy of the specified memory region.
func (e *Emulator) ReadRegion(regionType int) []byte {
	switch regionType {
	case emucore.MemorySystemRAM:
		out := make([]byte, RAMSize)
		copy(out, e.host.ram[:])
		return out
	default:
		return nil
	}
}

// WriteRegion writes data to the specified memory region.
func (e *Emulator) WriteRegion(regionType int, data []byte) {
	switch regionType {
	case emucore.MemorySystemRAM:
		copy(e.host.ram[:], data)
	}
}
