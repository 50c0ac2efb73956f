package vramimg

import "github.com/user-none/emud16/emu"

// Demo tile assignments.
const (
	demoTileGrass  = 1
	demoTileDirt   = 2
	demoTileStone  = 3
	demoTileShip   = 4
	demoTileFlower = 5
	demoTilePanel  = 6
	demoTileEdge   = 7
)

// Demo builds a small deterministic scene exercising every table: a
// scrolling-ready landscape, UI bars top and bottom, and a handful of
// sprites including flipped and edge-wrapped ones.
func Demo() []byte {
	b := New()

	// Palette 0: landscape. Index 0 is transparent and shows the sky.
	b.SetColor(0, 1, emu.RGB12(0x3, 0xA, 0x3))
	b.SetColor(0, 2, emu.RGB12(0x1, 0x7, 0x1))
	b.SetColor(0, 3, emu.RGB12(0x8, 0x4, 0x2))
	b.SetColor(0, 4, emu.RGB12(0x5, 0x3, 0x1))
	b.SetColor(0, 5, emu.RGB12(0x9, 0x9, 0x9))
	b.SetColor(0, 6, emu.RGB12(0x5, 0x5, 0x5))
	b.SetColor(0, 7, emu.RGB12(0xF, 0xD, 0x3))

	// UI bar colors share palette 0 (the bands default to the
	// background selector) at indexes the landscape leaves free.
	b.SetColor(0, 8, emu.RGB12(0xF, 0xF, 0xF))
	b.SetColor(0, 9, emu.RGB12(0x0, 0x6, 0xA))
	b.SetColor(0, 10, emu.RGB12(0x0, 0x3, 0x8))

	// Palette 1: sprites.
	b.SetColor(1, 1, emu.RGB12(0xF, 0xF, 0xF))
	b.SetColor(1, 2, emu.RGB12(0xF, 0x3, 0x3))
	b.SetColor(1, 3, emu.RGB12(0x8, 0x1, 0x1))
	b.SetColor(1, 4, emu.RGB12(0xF, 0xD, 0x3))

	b.TileFromStrings(demoTileGrass, [8]string{
		"11111111",
		"12111121",
		"11111111",
		"11121111",
		"11111211",
		"21111111",
		"11111112",
		"11211111",
	})
	b.TileFromStrings(demoTileDirt, [8]string{
		"33333333",
		"33433333",
		"33333343",
		"34333333",
		"33333433",
		"33343333",
		"33333334",
		"43333333",
	})
	b.TileFromStrings(demoTileStone, [8]string{
		"66666666",
		"65555556",
		"65555556",
		"65555556",
		"65555556",
		"65555556",
		"65555556",
		"66666666",
	})
	b.TileFromStrings(demoTileShip, [8]string{
		"...11...",
		"..1221..",
		".122221.",
		"12233221",
		"12233221",
		".122221.",
		"..1441..",
		"...11...",
	})
	b.TileFromStrings(demoTileFlower, [8]string{
		"........",
		"...77...",
		"..7777..",
		"...77...",
		"...11...",
		"...11...",
		"........",
		"........",
	})
	b.SetSolidTile(demoTilePanel, 9)
	b.TileFromStrings(demoTileEdge, [8]string{
		"88888888",
		"99999999",
		"99999999",
		"99999999",
		"99999999",
		"99999999",
		"99999999",
		"aaaaaaaa",
	})

	// Landscape: open sky down to row 24, grass at 24, dirt below,
	// stone pillars every eighth column, flowers scattered on a fixed
	// stride.
	for cy := 24; cy < emu.BGMapHeight; cy++ {
		tile := uint8(demoTileDirt)
		if cy == 24 {
			tile = demoTileGrass
		}
		for cx := 0; cx < emu.BGMapWidth; cx++ {
			b.SetBGCell(cx, cy, tile)
		}
	}
	for cx := 4; cx < emu.BGMapWidth; cx += 8 {
		b.SetBGCell(cx, 22, demoTileStone)
		b.SetBGCell(cx, 23, demoTileStone)
	}
	for cx := 1; cx < emu.BGMapWidth; cx += 5 {
		b.SetBGCell(cx, 23, demoTileFlower)
	}

	// UI: a full bar on the outermost row of each band, edge trim one
	// row in. Untouched cells stay transparent so the scene shows
	// through the rest of both bands.
	for col := 0; col < emu.UIMapWidth; col++ {
		b.SetUICell(col, 0, demoTilePanel)
		b.SetUICell(col, 1, demoTileEdge)
		b.SetUICell(col, 8, demoTileEdge)
		b.SetUICell(col, 9, demoTilePanel)
	}

	// Sprites: a staggered squadron, one mirrored, one sliding in off
	// the left edge through X wrap-around.
	b.SetSprite(0, emu.MakeSpriteDesc(true, false, false, 1, demoTileShip, 96, 60))
	b.SetSprite(1, emu.MakeSpriteDesc(true, false, false, 1, demoTileShip, 116, 90))
	b.SetSprite(2, emu.MakeSpriteDesc(true, false, true, 1, demoTileShip, 136, 60))
	b.SetSprite(3, emu.MakeSpriteDesc(true, false, false, 1, demoTileShip, 112, 508))
	b.SetSprite(4, emu.MakeSpriteDesc(true, true, false, 1, demoTileFlower, 100, 160))

	return b.Bytes()
}
