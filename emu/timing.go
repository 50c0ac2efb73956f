package emu

import (
	"hash/crc32"

	emucore "github.com/user-none/eblitui/api"
)

// Region is an alias for emucore.Region so internal code compiles unchanged.
type Region = emucore.Region

const (
	RegionNTSC = emucore.RegionNTSC
	RegionPAL  = emucore.RegionPAL
)

// RasterTiming holds the fixed output timing. One clock per dot with
// no blanking intervals, so the dot clock is exactly width x height x
// fps.
type RasterTiming struct {
	DotClockHz int // pixel clock frequency
	Scanlines  int // visible scanlines per frame
	FPS        int // frames per second
}

// The board shipped with a single 4.608 MHz dot clock worldwide.
var fixedTiming = RasterTiming{
	DotClockHz: CyclesPerFrame * 60,
	Scanlines:  MaxScreenHeight,
	FPS:        60,
}

// GetTimingForRegion returns the raster timing. Region selection
// affects cataloguing only; the chip has no PAL variant.
func GetTimingForRegion(r Region) RasterTiming {
	return fixedTiming
}

// DefaultRegion returns the default region (NTSC).
func DefaultRegion() Region {
	return RegionNTSC
}

// DetectRegionFromImage returns the region for a content image based on
// CRC32 lookup. Returns (detected region, true) if found in the
// database, (NTSC, false) if not found.
func DetectRegionFromImage(image []byte) (Region, bool) {
	crc := crc32.ChecksumIEEE(image)
	if _, ok := contentDatabase[crc]; ok {
		return RegionNTSC, true
	}
	return RegionNTSC, false
}
