package emu

import (
	"encoding/binary"
	"hash/crc32"
	"testing"

	emucore "github.com/user-none/eblitui/api"
)

// TestNewEmulator_EmptyImage tests rejection of empty content
func TestNewEmulator_EmptyImage(t *testing.T) {
	_, err := NewEmulator(nil, RegionNTSC)
	if err == nil {
		t.Error("NewEmulator should reject an empty image")
	}

	_, err = NewEmulator([]byte{}, RegionNTSC)
	if err == nil {
		t.Error("NewEmulator should reject a zero-length image")
	}
}

// TestNewEmulator_ShortImagePadded tests that images smaller than the
// VRAM window are zero-padded rather than rejected
func TestNewEmulator_ShortImagePadded(t *testing.T) {
	img := []byte{0x11, 0x22, 0x33, 0x44}
	e, err := NewEmulator(img, RegionNTSC)
	if err != nil {
		t.Fatalf("NewEmulator failed: %v", err)
	}

	// The short image seeds palette entry 0; everything past it is zero.
	if e.PPU().store.palettes[0] != 0x2211 {
		t.Errorf("palette 0: expected 0x2211, got 0x%04X", uint16(e.PPU().store.palettes[0]))
	}
	if e.PPU().store.palettes[2] != 0 {
		t.Errorf("palette 2: expected 0, got 0x%04X", uint16(e.PPU().store.palettes[2]))
	}

	// The CRC is taken over the original bytes, not the padded window.
	if e.GetImageCRC32() != crc32.ChecksumIEEE(img) {
		t.Error("image CRC should cover the original bytes")
	}
}

// TestEmulator_FramebufferSky tests that a blank image composites to
// the sky color on every pixel
func TestEmulator_FramebufferSky(t *testing.T) {
	e := createTestEmulator()
	e.RunFrame()

	positions := [][2]int{{0, 0}, {160, 120}, {319, 239}}
	for _, pos := range positions {
		r, g, b := framebufferColor(e, pos[0], pos[1])
		if r != 0x88 || g != 0xDD || b != 0xFF {
			t.Errorf("pixel (%d,%d): expected sky 88 DD FF, got %02X %02X %02X",
				pos[0], pos[1], r, g, b)
		}
	}
}

// TestEmulator_FramebufferContent tests a solid-color image landing in
// the framebuffer
func TestEmulator_FramebufferContent(t *testing.T) {
	e, err := NewEmulator(createSolidImage(0xF00), RegionNTSC)
	if err != nil {
		t.Fatalf("NewEmulator failed: %v", err)
	}
	e.RunFrame()

	r, g, b := framebufferColor(&e, 50, 100)
	if r != 0xFF || g != 0x00 || b != 0x00 {
		t.Errorf("pixel (50,100): expected FF 00 00, got %02X %02X %02X", r, g, b)
	}
}

// TestEmulator_RunFrame tests the frame loop bookkeeping
func TestEmulator_RunFrame(t *testing.T) {
	e := createTestEmulator()

	e.RunFrame()
	if e.FrameCount() != 1 {
		t.Errorf("frame count: expected 1, got %d", e.FrameCount())
	}
	if e.PPU().ScanX() != 0 || e.PPU().ScanY() != 0 {
		t.Errorf("scan position should wrap to (0,0), got (%d,%d)",
			e.PPU().ScanX(), e.PPU().ScanY())
	}

	e.RunFrame()
	if e.FrameCount() != 2 {
		t.Errorf("frame count: expected 2, got %d", e.FrameCount())
	}
}

// TestEmulator_ExactlyOneBusDriver tests the handover invariant: on
// every cycle of a frame, including both handovers, exactly one agent
// drives the bus
func TestEmulator_ExactlyOneBusDriver(t *testing.T) {
	e := createTestEmulator()

	for i := 0; i < 2*CyclesPerFrame; i++ {
		e.StepCycle()
		chip := e.ChipDrivesBus()
		host := e.HostDrivesBus()
		if chip == host {
			t.Fatalf("cycle %d: chip=%v host=%v, exactly one must drive", i, chip, host)
		}
	}
}

// TestEmulator_Reset tests the power-on posture after a reset
func TestEmulator_Reset(t *testing.T) {
	e := createTestEmulator()
	e.PPU().SetScroll(17, 23)
	for i := 0; i < 1000; i++ {
		e.StepCycle()
	}
	e.frame = 5

	e.Reset()

	if e.FrameCount() != 0 {
		t.Errorf("frame count: expected 0, got %d", e.FrameCount())
	}
	if e.PPU().ScanX() != 0 || e.PPU().ScanY() != 0 {
		t.Error("scan position should reset to (0,0)")
	}
	sx, sy := e.PPU().Scroll()
	if sx != 0 || sy != 0 {
		t.Errorf("scroll: expected (0,0), got (%d,%d)", sx, sy)
	}
	if e.PPU().ArbitrationState() != BusIdle {
		t.Errorf("arbiter: expected Idle, got %v", e.PPU().ArbitrationState())
	}
	if e.PPU().RefreshState() != RefreshIdle {
		t.Errorf("refresh: expected Idle, got %v", e.PPU().RefreshState())
	}
	if !e.HostDrivesBus() {
		t.Error("host should drive the bus after reset")
	}

	// The machine runs normally again from the reset state.
	e.RunFrame()
	if !e.PPU().Refreshed() {
		t.Error("refresh should complete in the first frame after reset")
	}
}

// TestEmulator_SharedRAMVisibility tests the once-per-frame content
// path: a host write shows up after the next refresh pass
func TestEmulator_SharedRAMVisibility(t *testing.T) {
	e, err := NewEmulator(createSolidImage(0x111), RegionNTSC)
	if err != nil {
		t.Fatalf("NewEmulator failed: %v", err)
	}
	e.RunFrame()

	r, g, b := framebufferColor(&e, 50, 100)
	if r != 0x11 || g != 0x11 || b != 0x11 {
		t.Fatalf("initial frame: expected 11 11 11, got %02X %02X %02X", r, g, b)
	}

	// The host recolors palette 0 entry 1.
	var word [2]byte
	binary.LittleEndian.PutUint16(word[:], 0x0F0)
	e.WriteSharedRAM(PaletteBase+2, word[:])

	e.RunFrame()
	r, g, b = framebufferColor(&e, 50, 100)
	if r != 0x00 || g != 0xFF || b != 0x00 {
		t.Errorf("after update: expected 00 FF 00, got %02X %02X %02X", r, g, b)
	}
}

// TestEmulator_NeverGrantFreezesContent tests that a withheld grant
// keeps the store, and so the picture, at its last refreshed state
func TestEmulator_NeverGrantFreezesContent(t *testing.T) {
	e, err := NewEmulator(createSolidImage(0x111), RegionNTSC)
	if err != nil {
		t.Fatalf("NewEmulator failed: %v", err)
	}
	e.RunFrame()

	var word [2]byte
	binary.LittleEndian.PutUint16(word[:], 0x0F0)
	e.WriteSharedRAM(PaletteBase+2, word[:])
	e.SetBusNeverGrant(true)

	e.RunFrame()
	r, g, b := framebufferColor(&e, 50, 100)
	if r != 0x11 || g != 0x11 || b != 0x11 {
		t.Errorf("stalled frame: expected stale 11 11 11, got %02X %02X %02X", r, g, b)
	}

	e.SetBusNeverGrant(false)
	e.RunFrame()
	r, g, b = framebufferColor(&e, 50, 100)
	if r != 0x00 || g != 0xFF || b != 0x00 {
		t.Errorf("after grant returns: expected 00 FF 00, got %02X %02X %02X", r, g, b)
	}
}

// TestEmulator_InputPansBackground tests d-pad panning
func TestEmulator_InputPansBackground(t *testing.T) {
	e := createTestEmulator()

	e.SetInput(0, 1<<emucore.ButtonRight)
	e.RunFrame()
	sx, sy := e.PPU().Scroll()
	if sx != 1 || sy != 0 {
		t.Errorf("right pan: expected (1,0), got (%d,%d)", sx, sy)
	}

	e.SetInput(0, 1<<emucore.ButtonDown)
	e.RunFrame()
	sx, sy = e.PPU().Scroll()
	if sx != 1 || sy != 1 {
		t.Errorf("down pan: expected (1,1), got (%d,%d)", sx, sy)
	}

	// Released input stops the pan.
	e.SetInput(0, 0)
	e.RunFrame()
	sx, sy = e.PPU().Scroll()
	if sx != 1 || sy != 1 {
		t.Errorf("no input: expected (1,1), got (%d,%d)", sx, sy)
	}
}

// TestEmulator_InputFastPan tests the speed button
func TestEmulator_InputFastPan(t *testing.T) {
	e := createTestEmulator()

	e.SetInput(0, 1<<emucore.ButtonRight|1<<4)
	e.RunFrame()
	sx, _ := e.PPU().Scroll()
	if sx != fastPanSpeed {
		t.Errorf("fast pan: expected %d, got %d", fastPanSpeed, sx)
	}
}

// TestEmulator_InputPanWraps tests that panning wraps at the map extent
func TestEmulator_InputPanWraps(t *testing.T) {
	e := createTestEmulator()
	e.PPU().SetScroll(0, 0)

	e.SetInput(0, 1<<emucore.ButtonLeft)
	e.RunFrame()
	sx, _ := e.PPU().Scroll()
	if sx != bgExtent-1 {
		t.Errorf("left pan from 0: expected %d, got %d", bgExtent-1, sx)
	}
}

// TestEmulator_InputRecenterEdge tests re-center edge detection
func TestEmulator_InputRecenterEdge(t *testing.T) {
	e := createTestEmulator()
	e.PPU().SetScroll(17, 23)

	// Press re-centers.
	e.SetInput(0, 1<<7)
	e.RunFrame()
	sx, sy := e.PPU().Scroll()
	if sx != 0 || sy != 0 {
		t.Errorf("re-center: expected (0,0), got (%d,%d)", sx, sy)
	}

	// Holding does not re-trigger.
	e.PPU().SetScroll(3, 3)
	e.RunFrame()
	sx, sy = e.PPU().Scroll()
	if sx != 3 || sy != 3 {
		t.Errorf("held button: expected (3,3), got (%d,%d)", sx, sy)
	}

	// Release and press again triggers.
	e.SetInput(0, 0)
	e.RunFrame()
	e.SetInput(0, 1<<7)
	e.RunFrame()
	sx, sy = e.PPU().Scroll()
	if sx != 0 || sy != 0 {
		t.Errorf("second press: expected (0,0), got (%d,%d)", sx, sy)
	}
}

// TestEmulator_InputIgnoresOtherPlayers tests that only player 0 is
// wired
func TestEmulator_InputIgnoresOtherPlayers(t *testing.T) {
	e := createTestEmulator()

	e.SetInput(1, 1<<emucore.ButtonRight)
	e.RunFrame()
	sx, sy := e.PPU().Scroll()
	if sx != 0 || sy != 0 {
		t.Errorf("player 1 input should be ignored, got (%d,%d)", sx, sy)
	}
}

// TestEmulator_OptionTransparent15 tests the transparency override
func TestEmulator_OptionTransparent15(t *testing.T) {
	e := createTestEmulator()

	bg, sprite := e.PPU().Transparency()
	if bg != 0 || sprite != 0 {
		t.Fatalf("defaults: expected 0/0, got %d/%d", bg, sprite)
	}

	e.SetOption("transparent_15", "true")
	bg, sprite = e.PPU().Transparency()
	if bg != 15 || sprite != 15 {
		t.Errorf("override on: expected 15/15, got %d/%d", bg, sprite)
	}

	e.SetOption("transparent_15", "false")
	bg, sprite = e.PPU().Transparency()
	if bg != 0 || sprite != 0 {
		t.Errorf("override off: expected 0/0, got %d/%d", bg, sprite)
	}
}

// TestEmulator_OptionSlowBus tests the wait-state option
func TestEmulator_OptionSlowBus(t *testing.T) {
	e := createTestEmulator()

	e.SetOption("slow_bus", "true")
	if e.ppu.arb.waitStates != slowBusWaitStates {
		t.Errorf("slow bus: expected %d wait states, got %d", slowBusWaitStates, e.ppu.arb.waitStates)
	}

	e.SetOption("slow_bus", "false")
	if e.ppu.arb.waitStates != DefaultWaitStates {
		t.Errorf("normal bus: expected %d wait states, got %d", DefaultWaitStates, e.ppu.arb.waitStates)
	}

	// Unknown keys are ignored.
	e.SetOption("bogus", "true")
}

// TestEmulator_Timing tests the reported output timing
func TestEmulator_Timing(t *testing.T) {
	e := createTestEmulator()

	timing := e.GetTiming()
	if timing.FPS != 60 {
		t.Errorf("FPS: expected 60, got %d", timing.FPS)
	}
	if timing.Scanlines != MaxScreenHeight {
		t.Errorf("scanlines: expected %d, got %d", MaxScreenHeight, timing.Scanlines)
	}
}

// TestEmulator_RegionSetting tests the catalogue region setting
func TestEmulator_RegionSetting(t *testing.T) {
	e := createTestEmulator()

	if e.GetRegion() != RegionNTSC {
		t.Errorf("region: expected NTSC, got %v", e.GetRegion())
	}

	e.SetRegion(RegionPAL)
	if e.GetRegion() != RegionPAL {
		t.Errorf("region: expected PAL, got %v", e.GetRegion())
	}

	// Timing is identical across regions.
	if e.GetTiming().FPS != 60 {
		t.Error("PAL region must not change the fixed timing")
	}
}

// TestEmulator_FramebufferGeometry tests the framebuffer surface
func TestEmulator_FramebufferGeometry(t *testing.T) {
	e := createTestEmulator()

	if e.GetFramebufferStride() != ScreenWidth*4 {
		t.Errorf("stride: expected %d, got %d", ScreenWidth*4, e.GetFramebufferStride())
	}
	if e.GetActiveHeight() != MaxScreenHeight {
		t.Errorf("active height: expected %d, got %d", MaxScreenHeight, e.GetActiveHeight())
	}
	if len(e.GetFramebuffer()) != ScreenWidth*MaxScreenHeight*4 {
		t.Errorf("framebuffer length: expected %d, got %d",
			ScreenWidth*MaxScreenHeight*4, len(e.GetFramebuffer()))
	}
}

// TestEmulator_AudioSilence tests the placeholder audio stream
func TestEmulator_AudioSilence(t *testing.T) {
	e := createTestEmulator()

	samples := e.GetAudioSamples()
	if len(samples) != 2*(sampleRate/60) {
		t.Errorf("sample count: expected %d, got %d", 2*(sampleRate/60), len(samples))
	}
	for i, s := range samples {
		if s != 0 {
			t.Errorf("sample %d: expected silence, got %d", i, s)
			break
		}
	}
}

// TestEmulator_FrameHash tests the framebuffer fingerprint
func TestEmulator_FrameHash(t *testing.T) {
	e, err := NewEmulator(createSolidImage(0x111), RegionNTSC)
	if err != nil {
		t.Fatalf("NewEmulator failed: %v", err)
	}

	e.RunFrame()
	h1 := e.FrameHash()
	e.RunFrame()
	if e.FrameHash() != h1 {
		t.Error("identical frames should hash identically")
	}

	var word [2]byte
	binary.LittleEndian.PutUint16(word[:], 0x0F0)
	e.WriteSharedRAM(PaletteBase+2, word[:])
	e.RunFrame()
	if e.FrameHash() == h1 {
		t.Error("a recolored frame should hash differently")
	}
}

// TestEmulator_ContentTitle tests database-driven titles
func TestEmulator_ContentTitle(t *testing.T) {
	e := createTestEmulator()
	if e.ContentTitle() != "" {
		t.Errorf("unknown image: expected empty title, got %q", e.ContentTitle())
	}
}

// =============================================================================
// Save state tests
// =============================================================================

// TestSerializeSize verifies consistent size returned
func TestSerializeSize(t *testing.T) {
	size1 := SerializeSize()
	size2 := SerializeSize()

	if size1 != size2 {
		t.Errorf("SerializeSize not consistent: %d vs %d", size1, size2)
	}

	if size1 < stateHeaderSize+RAMSize {
		t.Errorf("SerializeSize too small: %d", size1)
	}
}

// TestSerializeDeserializeRoundTrip tests save state round-trip
func TestSerializeDeserializeRoundTrip(t *testing.T) {
	base := createTestEmulator()

	// Run partway into a frame so FSM state is mid-flight, then leave
	// marks in RAM and the register file.
	for i := 0; i < 100; i++ {
		base.StepCycle()
	}
	base.WriteSharedRAM(0x8000, []byte{0xAB, 0xCD})
	base.PPU().SetScroll(40, 30)

	state, err := base.Serialize()
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}

	// Trash the live state.
	base.WriteSharedRAM(0x8000, []byte{0xFF, 0xFF})
	base.PPU().SetScroll(0, 0)
	base.RunFrame()

	err = base.Deserialize(state)
	if err != nil {
		t.Fatalf("Deserialize failed: %v", err)
	}

	buf := make([]byte, 2)
	base.ReadSharedRAM(0x8000, buf)
	if buf[0] != 0xAB || buf[1] != 0xCD {
		t.Errorf("RAM: expected AB CD, got %02X %02X", buf[0], buf[1])
	}
	sx, sy := base.PPU().Scroll()
	if sx != 40 || sy != 30 {
		t.Errorf("scroll: expected (40,30), got (%d,%d)", sx, sy)
	}
	if base.PPU().ScanX() != 100 || base.PPU().ScanY() != 0 {
		t.Errorf("scan: expected (100,0), got (%d,%d)", base.PPU().ScanX(), base.PPU().ScanY())
	}
}

// TestDeserialize_ResumesDeterministically tests that a state restored
// into a fresh emulator replays exactly: after a full frame both
// machines paint identical pixels
func TestDeserialize_ResumesDeterministically(t *testing.T) {
	img := createSolidImage(0x37A)
	e1, err := NewEmulator(img, RegionNTSC)
	if err != nil {
		t.Fatalf("NewEmulator failed: %v", err)
	}

	// Stop mid-arbitration, mid-scanline.
	for i := 0; i < 100; i++ {
		e1.StepCycle()
	}
	state, err := e1.Serialize()
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}

	e2, err := NewEmulator(img, RegionNTSC)
	if err != nil {
		t.Fatalf("NewEmulator failed: %v", err)
	}
	if err := e2.Deserialize(state); err != nil {
		t.Fatalf("Deserialize failed: %v", err)
	}

	// A full frame of cycles repaints every pixel on both machines.
	for i := 0; i < CyclesPerFrame; i++ {
		e1.StepCycle()
		e2.StepCycle()
	}
	if e1.FrameHash() != e2.FrameHash() {
		t.Error("restored machine diverged from the original")
	}
}

// TestVerifyState_ValidState tests that a valid state passes verification
func TestVerifyState_ValidState(t *testing.T) {
	base := createTestEmulator()

	state, err := base.Serialize()
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}

	err = base.VerifyState(state)
	if err != nil {
		t.Errorf("VerifyState should pass for valid state: %v", err)
	}
}

// TestVerifyState_InvalidMagic tests wrong magic bytes rejection
func TestVerifyState_InvalidMagic(t *testing.T) {
	base := createTestEmulator()

	state, err := base.Serialize()
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}

	state[0] = 'X'

	err = base.VerifyState(state)
	if err == nil {
		t.Error("VerifyState should reject invalid magic bytes")
	}
}

// TestVerifyState_UnsupportedVersion tests future version rejection
func TestVerifyState_UnsupportedVersion(t *testing.T) {
	base := createTestEmulator()

	state, err := base.Serialize()
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}

	binary.LittleEndian.PutUint16(state[12:14], 9999)

	err = base.VerifyState(state)
	if err == nil {
		t.Error("VerifyState should reject unsupported version")
	}
}

// TestVerifyState_CorruptData tests bad CRC32 rejection
func TestVerifyState_CorruptData(t *testing.T) {
	base := createTestEmulator()

	state, err := base.Serialize()
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}

	state[stateHeaderSize+5] ^= 0xFF

	err = base.VerifyState(state)
	if err == nil {
		t.Error("VerifyState should reject corrupted data")
	}
}

// TestVerifyState_WrongImage tests mismatched image CRC32 rejection
func TestVerifyState_WrongImage(t *testing.T) {
	base1 := createTestEmulator()

	state, err := base1.Serialize()
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}

	e2, err := NewEmulator(createPatternImage(), RegionNTSC)
	if err != nil {
		t.Fatalf("NewEmulator failed: %v", err)
	}

	err = e2.VerifyState(state)
	if err == nil {
		t.Error("VerifyState should reject state from a different image")
	}
}

// TestVerifyState_TooShort tests rejection of truncated data
func TestVerifyState_TooShort(t *testing.T) {
	base := createTestEmulator()

	state := make([]byte, stateHeaderSize-1)

	err := base.VerifyState(state)
	if err == nil {
		t.Error("VerifyState should reject data smaller than header")
	}
}

// TestDeserialize_PreservesRegion tests that region is NOT changed by load
func TestDeserialize_PreservesRegion(t *testing.T) {
	img := createBlankImage()
	ntscEmu, _ := NewEmulator(img, RegionNTSC)

	state, err := ntscEmu.Serialize()
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}

	palEmu, _ := NewEmulator(img, RegionPAL)
	if palEmu.GetRegion() != RegionPAL {
		t.Fatal("Initial region should be PAL")
	}

	err = palEmu.Deserialize(state)
	if err != nil {
		t.Fatalf("Deserialize failed: %v", err)
	}

	if palEmu.GetRegion() != RegionPAL {
		t.Errorf("Region should be preserved as PAL, got %v", palEmu.GetRegion())
	}
}

// TestSerialize_StateIntegrity tests that serialized state has correct format
func TestSerialize_StateIntegrity(t *testing.T) {
	base := createTestEmulator()

	state, err := base.Serialize()
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}

	if len(state) != SerializeSize() {
		t.Errorf("state length: expected %d, got %d", SerializeSize(), len(state))
	}

	if string(state[0:12]) != stateMagic {
		t.Errorf("Magic bytes: expected %q, got %q", stateMagic, string(state[0:12]))
	}

	version := binary.LittleEndian.Uint16(state[12:14])
	if version != stateVersion {
		t.Errorf("Version: expected %d, got %d", stateVersion, version)
	}

	imageCRC := binary.LittleEndian.Uint32(state[14:18])
	if imageCRC != base.GetImageCRC32() {
		t.Errorf("Image CRC32: expected 0x%08X, got 0x%08X", base.GetImageCRC32(), imageCRC)
	}

	dataCRC := binary.LittleEndian.Uint32(state[18:22])
	calculatedCRC := crc32.ChecksumIEEE(state[stateHeaderSize:])
	if dataCRC != calculatedCRC {
		t.Errorf("Data CRC32: expected 0x%08X, got 0x%08X", calculatedCRC, dataCRC)
	}
}

// =============================================================================
// Memory inspection tests
// =============================================================================

// TestEmulator_ReadMemory tests the flat inspection map
func TestEmulator_ReadMemory(t *testing.T) {
	e := createTestEmulator()
	e.WriteSharedRAM(0x2000, []byte{0xDE, 0xAD})

	buf := make([]byte, 2)
	n := e.ReadMemory(0x2000, buf)
	if n != 2 {
		t.Errorf("read count: expected 2, got %d", n)
	}
	if buf[0] != 0xDE || buf[1] != 0xAD {
		t.Errorf("read back: expected DE AD, got %02X %02X", buf[0], buf[1])
	}

	// Reads past the end truncate.
	buf = make([]byte, 16)
	n = e.ReadMemory(RAMSize-8, buf)
	if n != 8 {
		t.Errorf("truncated read: expected 8, got %d", n)
	}
}

// TestEmulator_MemoryMap tests the advertised regions
func TestEmulator_MemoryMap(t *testing.T) {
	e := createTestEmulator()

	regions := e.MemoryMap()
	if len(regions) != 1 {
		t.Fatalf("expected 1 region, got %d", len(regions))
	}
	if regions[0].Type != emucore.MemorySystemRAM {
		t.Errorf("region type: expected SystemRAM, got %v", regions[0].Type)
	}
	if regions[0].Size != RAMSize {
		t.Errorf("region size: expected %d, got %d", RAMSize, regions[0].Size)
	}
}

// TestEmulator_ReadWriteRegion tests region snapshots
func TestEmulator_ReadWriteRegion(t *testing.T) {
	e := createTestEmulator()
	e.WriteSharedRAM(0x3000, []byte{0x55})

	data := e.ReadRegion(emucore.MemorySystemRAM)
	if len(data) != RAMSize {
		t.Fatalf("region length: expected %d, got %d", RAMSize, len(data))
	}
	if data[0x3000] != 0x55 {
		t.Errorf("region content: expected 0x55, got 0x%02X", data[0x3000])
	}

	data[0x3000] = 0x66
	e.WriteRegion(emucore.MemorySystemRAM, data)
	buf := make([]byte, 1)
	e.ReadSharedRAM(0x3000, buf)
	if buf[0] != 0x66 {
		t.Errorf("after write back: expected 0x66, got 0x%02X", buf[0])
	}

	if e.ReadRegion(12345) != nil {
		t.Error("unknown region should return nil")
	}
}

// =============================================================================
// End-to-End Scenarios
// =============================================================================

// TestEmulator_ComposedScene tests a full frame compositing background,
// overlapping sprites, and a UI strip from one content image
func TestEmulator_ComposedScene(t *testing.T) {
	img := createBlankImage()

	setColor(img, 0, 1, 0x0F0)
	setColor(img, 1, 2, 0xF00)
	setColor(img, 1, 3, 0x00F)
	setColor(img, 2, 4, 0xFF0)

	setSolidTile(img, 1, 1)
	setSolidTile(img, 2, 2)
	setSolidTile(img, 3, 3)
	setTilePixel(img, 3, 0, 0, 0) // hole in the upper sprite
	setSolidTile(img, 4, 4)

	// Checkerboard background: even cells green, odd cells empty (sky)
	for cy := 0; cy < BGMapHeight; cy++ {
		for cx := 0; cx < BGMapWidth; cx++ {
			if (cx+cy)%2 == 0 {
				setBGCell(img, cx, cy, 1)
			}
		}
	}

	// Two overlapping sprites: slot 9 covers slot 2's lower-right corner
	setSprite(img, 2, MakeSpriteDesc(true, false, false, 1, 2, 100, 120))
	setSprite(img, 9, MakeSpriteDesc(true, false, false, 1, 3, 104, 124))

	// UI strip across the topmost cell row
	for col := 0; col < UIMapWidth; col++ {
		setUICell(img, col, 0, 4)
	}

	e, err := NewEmulator(img, RegionNTSC)
	if err != nil {
		t.Fatalf("NewEmulator failed: %v", err)
	}
	e.PPU().SetUIPalettes(2, 0)
	e.RunFrame()

	testCases := []struct {
		name    string
		x, y    int
		r, g, b uint8
	}{
		{"background tile", 12, 44, 0x00, 0xFF, 0x00},
		{"empty cell shows sky", 4, 44, 0x88, 0xDD, 0xFF},
		{"lower sprite alone", 121, 101, 0xFF, 0x00, 0x00},
		{"higher sprite wins overlap", 126, 106, 0x00, 0x00, 0xFF},
		{"lower sprite through hole", 124, 104, 0xFF, 0x00, 0x00},
		{"UI strip over background", 8, 4, 0xFF, 0xFF, 0x00},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r, g, b := framebufferColor(&e, tc.x, tc.y)
			if r != tc.r || g != tc.g || b != tc.b {
				t.Errorf("(%d,%d): expected %02X %02X %02X, got %02X %02X %02X",
					tc.x, tc.y, tc.r, tc.g, tc.b, r, g, b)
			}
		})
	}
}

// TestEmulator_SpriteMovesViaSharedRAM tests that host writes to the
// descriptor table reach the screen through the per-frame refresh, and
// stop reaching it when the bus is withheld
func TestEmulator_SpriteMovesViaSharedRAM(t *testing.T) {
	img := createBlankImage()
	setColor(img, 1, 1, 0xF0F)
	setSolidTile(img, 1, 1)
	setSprite(img, 0, MakeSpriteDesc(true, false, false, 1, 1, 60, 100))

	e, err := NewEmulator(img, RegionNTSC)
	if err != nil {
		t.Fatalf("NewEmulator failed: %v", err)
	}

	e.RunFrame()
	if r, _, b := framebufferColor(&e, 100, 60); r != 0xFF || b != 0xFF {
		t.Fatal("sprite not visible at its initial position")
	}

	// Host moves the sprite in shared RAM. The descriptor table is the
	// last refresh region, copied after the raster has already passed
	// scanline 60, so the move appears one full frame later.
	moved := make([]byte, 4)
	binary.LittleEndian.PutUint32(moved, uint32(MakeSpriteDesc(true, false, false, 1, 1, 60, 140)))
	e.WriteSharedRAM(SpriteTableBase, moved)

	e.RunFrame()
	e.RunFrame()
	if r, _, b := framebufferColor(&e, 140, 60); r != 0xFF || b != 0xFF {
		t.Error("sprite did not move after the descriptor rewrite")
	}
	if r, g, b := framebufferColor(&e, 100, 60); r != 0x88 || g != 0xDD || b != 0xFF {
		t.Error("old sprite position should show sky")
	}

	// With the bus withheld the rewrite never reaches the store
	e.SetBusNeverGrant(true)
	binary.LittleEndian.PutUint32(moved, uint32(MakeSpriteDesc(true, false, false, 1, 1, 60, 180)))
	e.WriteSharedRAM(SpriteTableBase, moved)

	e.RunFrame()
	if r, _, b := framebufferColor(&e, 140, 60); r != 0xFF || b != 0xFF {
		t.Error("stalled refresh should leave the sprite at its last copied position")
	}
	if r, g, b := framebufferColor(&e, 180, 60); r != 0x88 || g != 0xDD || b != 0xFF {
		t.Error("new position should not appear while the bus is withheld")
	}
}
