//go:build !libretro && !ios

package main

import (
	"flag"
	"log"

	"github.com/user-none/eblitui/standalone"
	"github.com/user-none/emud16/adapter"
)

func main() {
	imgPath := flag.String("image", "", "path to VRAM image file (opens UI if not provided)")
	regionFlag := flag.String("region", "auto", "region: auto, ntsc, or pal")
	transparent15 := flag.Bool("transparent-15", false, "treat palette entry 15 as transparent in both contexts")
	slowBus := flag.Bool("slow-bus", false, "emulate the 8-wait-state memory fitted to early boards")
	flag.Parse()

	factory := &adapter.Factory{}

	if *imgPath != "" {
		options := map[string]string{}
		if *transparent15 {
			options["transparent_15"] = "true"
		}
		if *slowBus {
			options["slow_bus"] = "true"
		}
		if err := standalone.RunDirect(factory, *imgPath, *regionFlag, options); err != nil {
			log.Fatal(err)
		}
		return
	}

	if err := standalone.Run(factory); err != nil {
		log.Fatal(err)
	}
}
