package emu

// TransparencyConvention identifies which palette entry a content set
// treats as transparent.
type TransparencyConvention int

const (
	TransparentEntry0  TransparencyConvention = iota // early content sets
	TransparentEntry15                               // late content sets
)

// transparentIndex returns the palette entry for the convention.
func (t TransparencyConvention) transparentIndex() uint8 {
	if t == TransparentEntry15 {
		return 15
	}
	return 0
}

// ContentInfo records how a known content image was authored.
type ContentInfo struct {
	Title     string
	BG        TransparencyConvention // background/UI context
	Sprite    TransparencyConvention // sprite context
	BGPalette int                    // background palette selector
	UITop     int                    // top band palette selector
	UIBottom  int                    // bottom band palette selector
}

// contentDatabase maps CRC32 hashes of published VRAM images to their
// authoring conventions. Early releases kept entry 0 transparent in
// both contexts; the late tool chain moved both to entry 15.
var contentDatabase = map[uint32]ContentInfo{
	// Sky Garden (demo, rev A)
	0x6f1c22d4: {Title: "Sky Garden", BG: TransparentEntry0, Sprite: TransparentEntry0},
	// Sky Garden (demo, rev B)
	0xa83e07b1: {Title: "Sky Garden", BG: TransparentEntry0, Sprite: TransparentEntry0},
	// Sprite Stress 128
	0x1be4c9f0: {Title: "Sprite Stress 128", BG: TransparentEntry0, Sprite: TransparentEntry0},
	// Scroll Field Test
	0x42d80a17: {Title: "Scroll Field Test", BG: TransparentEntry0, Sprite: TransparentEntry0},
	// Starfall
	0x9d55e2c8: {Title: "Starfall", BG: TransparentEntry0, Sprite: TransparentEntry0, UITop: 1, UIBottom: 1},
	// Cavern Run
	0x30a6fd45: {Title: "Cavern Run", BG: TransparentEntry0, Sprite: TransparentEntry0, BGPalette: 2},
	// Tilemark Bench
	0xc7902e8a: {Title: "Tilemark Bench", BG: TransparentEntry0, Sprite: TransparentEntry0},
	// Harbor Lights
	0x58cf13d9: {Title: "Harbor Lights", BG: TransparentEntry15, Sprite: TransparentEntry15, UITop: 3, UIBottom: 3},
	// Glyph Garden
	0xe2047b6c: {Title: "Glyph Garden", BG: TransparentEntry15, Sprite: TransparentEntry15},
	// Meteor Path
	0x74b1a9e3: {Title: "Meteor Path", BG: TransparentEntry15, Sprite: TransparentEntry15, BGPalette: 1},
	// Ribbon Dancer
	0x0bd8561f: {Title: "Ribbon Dancer", BG: TransparentEntry15, Sprite: TransparentEntry15, UITop: 2, UIBottom: 4},
	// Night Market
	0x95e30c72: {Title: "Night Market", BG: TransparentEntry15, Sprite: TransparentEntry15, BGPalette: 3, UITop: 1, UIBottom: 1},
}

// LookupContent returns the authoring conventions for an image CRC.
// Unknown images get the early-convention defaults.
func LookupContent(crc uint32) (ContentInfo, bool) {
	if info, ok := contentDatabase[crc]; ok {
		return info, true
	}
	return ContentInfo{}, false
}
