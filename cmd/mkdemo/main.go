// Command mkdemo writes the built-in demo scene to a .m16 VRAM image
// file that the emulator front-ends can load.
package main

import (
	"flag"
	"log"
	"os"

	"github.com/user-none/emud16/vramimg"
)

func main() {
	out := flag.String("o", "demo.m16", "output file path")
	flag.Parse()

	if err := os.WriteFile(*out, vramimg.Demo(), 0644); err != nil {
		log.Fatal(err)
	}
}
