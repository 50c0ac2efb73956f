// Command framedump runs a VRAM image headlessly for a number of frames
// and writes each frame as a PNG, printing its hash. Useful for
// regression comparisons and for inspecting content without a display.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"strings"

	xdraw "golang.org/x/image/draw"

	"github.com/user-none/emud16/emu"
	"github.com/user-none/emud16/vramimg"
	"github.com/user-none/emud16/vramloader"
)

func main() {
	imgPath := flag.String("image", "", "path to VRAM image file (built-in demo scene if not provided)")
	outDir := flag.String("out", ".", "output directory for PNG frames")
	frames := flag.Int("frames", 1, "number of frames to run")
	scale := flag.Int("scale", 1, "integer upscale factor for output PNGs")
	transparent15 := flag.Bool("transparent-15", false, "treat palette entry 15 as transparent in both contexts")
	slowBus := flag.Bool("slow-bus", false, "emulate the 8-wait-state memory fitted to early boards")
	flag.Parse()

	data := vramimg.Demo()
	name := "demo"
	if *imgPath != "" {
		var err error
		data, name, err = vramloader.LoadImage(*imgPath)
		if err != nil {
			log.Fatal(err)
		}
		name = strings.TrimSuffix(name, filepath.Ext(name))
	}

	region, _ := emu.DetectRegionFromImage(data)
	e, err := emu.NewEmulator(data, region)
	if err != nil {
		log.Fatal(err)
	}
	if *transparent15 {
		e.SetOption("transparent_15", "true")
	}
	if *slowBus {
		e.SetOption("slow_bus", "true")
	}

	if info, ok := emu.LookupContent(e.GetImageCRC32()); ok {
		fmt.Printf("content: %s\n", info.Title)
	}

	for i := 0; i < *frames; i++ {
		e.RunFrame()
		fmt.Printf("frame %03d hash %016x\n", i, e.FrameHash())

		path := filepath.Join(*outDir, fmt.Sprintf("%s_%03d.png", name, i))
		if err := writeFrame(&e, path, *scale); err != nil {
			log.Fatal(err)
		}
	}
}

// writeFrame encodes the current framebuffer as a PNG, upscaled with
// nearest-neighbor so pixels stay square.
func writeFrame(e *emu.Emulator, path string, scale int) error {
	h := e.GetActiveHeight()
	src := &image.RGBA{
		Pix:    e.GetFramebuffer(),
		Stride: e.GetFramebufferStride(),
		Rect:   image.Rect(0, 0, emu.ScreenWidth, h),
	}

	var out image.Image = src
	if scale > 1 {
		dst := image.NewRGBA(image.Rect(0, 0, emu.ScreenWidth*scale, h*scale))
		xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Over, nil)
		out = dst
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return png.Encode(f, out)
}
