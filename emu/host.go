package emu

import (
	"encoding/binary"
	"hash/crc32"
)

// RAMSize is the shared memory capacity: a 20-bit address space.
const RAMSize = 1 << 20

// DefaultQuiesceDelay is how many cycles the host keeps its address
// strobe active after granting, finishing its in-flight bus cycle.
const DefaultQuiesceDelay = 2

// hostBus models the agent on the far side of the connector: the host
// CPU's bus interface unit and the 1 MB shared RAM behind it. The
// video chip never owns this memory; it borrows the bus once per frame
// to snapshot the VRAM window.
type hostBus struct {
	ram [RAMSize]uint8

	imageCRC32 uint32 // CRC of the loaded content image

	// Grant policy. On seeing a request the host asserts grant on the
	// next cycle but keeps the address strobe active for quiesceDelay
	// further cycles.
	quiesceDelay int
	quiesceCount int
	grant        bool
	addrStrobe   bool
	neverGrant   bool // withhold the bus forever (stall fault injection)

	driveEnabled bool // the host's own bus drivers

	readData uint16 // value the RAM last drove onto the data bus
}

// newHostBus builds the host with the content image loaded at address
// zero. Short images leave the rest of RAM cleared.
func newHostBus(image []byte) *hostBus {
	h := &hostBus{}
	copy(h.ram[:], image)
	h.imageCRC32 = crc32.ChecksumIEEE(image)
	h.resetSignals()
	return h
}

// resetSignals returns the bus interface to its power-on posture: host
// driving, no grant, strobe running. RAM contents are untouched.
func (h *hostBus) resetSignals() {
	h.quiesceDelay = DefaultQuiesceDelay
	h.quiesceCount = 0
	h.grant = false
	h.addrStrobe = true
	h.driveEnabled = true
	h.readData = 0
}

// service performs the host half of a clock: react to the chip outputs
// of the previous cycle, then let the RAM answer any strobes. This
// mirrors the board's phasing, where the host acts while the clock is
// low and the chip samples on the rising edge.
func (h *hostBus) service(prev BusOut) {
	// Driver handover tracks acknowledge with one cycle of latency.
	h.driveEnabled = !prev.Acknowledge

	// Grant policy.
	if prev.Request && !h.neverGrant {
		h.grant = true
		if h.quiesceCount < h.quiesceDelay {
			h.quiesceCount++
			h.addrStrobe = true
		} else {
			h.addrStrobe = false
		}
	} else {
		// Host is running its own bus cycles.
		h.grant = false
		h.quiesceCount = 0
		h.addrStrobe = true
	}

	// RAM answers while the chip drives the strobes. A0 is not wired
	// on a 16-bit bus, so words are even-aligned.
	if prev.DriveEnable {
		addr := prev.Addr &^ 1
		if prev.ReadStrobe {
			h.readData = binary.LittleEndian.Uint16(h.ram[addr:])
		}
		if prev.WriteStrobe {
			binary.LittleEndian.PutUint16(h.ram[addr:], prev.WriteData)
		}
	}
}

// busIn assembles the chip-side view of the host's signals.
func (h *hostBus) busIn() BusIn {
	return BusIn{
		Grant:      h.grant,
		AddrStrobe: h.addrStrobe,
		ReadData:   h.readData,
	}
}

// Host-side memory access, used for content updates between frames and
// by the memory inspection surfaces. These model the host writing its
// own RAM and bypass the chip entirely.

func (h *hostBus) readBytes(addr uint32, buf []byte) uint32 {
	var count uint32
	for i := range buf {
		cur := addr + uint32(i)
		if cur >= RAMSize {
			return count
		}
		buf[i] = h.ram[cur]
		count++
	}
	return count
}

func (h *hostBus) writeBytes(addr uint32, data []byte) {
	if addr >= RAMSize {
		return
	}
	copy(h.ram[addr:], data)
}

// GetImageCRC32 returns the CRC32 of the loaded content image.
func (h *hostBus) GetImageCRC32() uint32 {
	return h.imageCRC32
}
