package adapter

import (
	emucore "github.com/user-none/eblitui/api"
	"github.com/user-none/emud16/emu"
)

// Compile-time interface check.
var _ emucore.CoreFactory = (*Factory)(nil)

// Factory implements emucore.CoreFactory for the mud-16 emulator.
type Factory struct{}

// SystemInfo returns system metadata for UI configuration.
func (f *Factory) SystemInfo() emucore.SystemInfo {
	return emucore.SystemInfo{
		Name:            "emud16",
		ConsoleName:     "mud-16",
		Extensions:      []string{".m16"},
		ScreenWidth:     emu.ScreenWidth,
		MaxScreenHeight: emu.MaxScreenHeight,
		AspectRatio:     320.0 / 240.0,
		SampleRate:      48000,
		Buttons: []emucore.Button{
			{Name: "Fast", ID: 4, DefaultKey: "J", DefaultPad: "A"},
			{Name: "Center", ID: 7, DefaultKey: "Enter", DefaultPad: "Start"},
		},
		Players: 1,
		CoreOptions: []emucore.CoreOption{
			{
				Key:         "transparent_15",
				Label:       "Transparent Entry 15",
				Description: "Treat palette entry 15 as transparent in both contexts (late tool chain images)",
				Type:        emucore.CoreOptionBool,
				Default:     "false",
				Category:    emucore.CoreOptionCategoryVideo,
			},
			{
				Key:         "slow_bus",
				Label:       "Slow Memory Bus",
				Description: "Emulate the 8-wait-state memory fitted to early boards",
				Type:        emucore.CoreOptionBool,
				Default:     "false",
				Category:    emucore.CoreOptionCategoryVideo,
			},
		},
		DataDirName:   "emud16",
		CoreName:      emu.Name,
		CoreVersion:   emu.Version,
		SerializeSize: emu.SerializeSize(),
	}
}

// CreateEmulator creates a new emulator instance with the given content
// image and region.
func (f *Factory) CreateEmulator(img []byte, region emucore.Region) (emucore.Emulator, error) {
	e, err := emu.NewEmulator(img, region)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// DetectRegion auto-detects the region from image data.
// The bool return indicates whether the image was found in the database.
func (f *Factory) DetectRegion(img []byte) (emucore.Region, bool) {
	return emu.DetectRegionFromImage(img)
}
