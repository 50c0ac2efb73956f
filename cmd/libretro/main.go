package main

import (
	libretro "github.com/user-none/eblitui/libretro"
	"github.com/user-none/emud16/adapter"
)

func init() {
	libretro.RegisterFactory(&adapter.Factory{}, []libretro.RetropadMapping{
		{RetroID: libretro.JoypadA, BitID: 4},     // Fast pan
		{RetroID: libretro.JoypadStart, BitID: 7}, // Re-center
	})
}

func main() {}
