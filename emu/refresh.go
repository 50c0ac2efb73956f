package emu

// RefreshState identifies the refresh FSM state.
type RefreshState int

const (
	RefreshIdle    RefreshState = iota // waiting for the next frame start
	RefreshAcquire                     // bus wanted raised, arbitration in progress
	RefreshCopy                        // streaming elements region by region
)

func (s RefreshState) String() string {
	switch s {
	case RefreshIdle:
		return "Idle"
	case RefreshAcquire:
		return "Acquire"
	case RefreshCopy:
		return "Copy"
	}
	return "Unknown"
}

// refreshRegions lists the five copy regions in visitation order:
// shared-RAM base and the number of 16-bit elements.
var refreshRegions = [...]struct {
	base  uint32
	elems int
}{
	{PaletteBase, PaletteSize / 2},
	{TileBase, TileSize / 2},
	{BGMapBase, BGMapSize / 2},
	{UIMapBase, UIMapSize / 2},
	{SpriteTableBase, SpriteTableSize / 2},
}

// RefreshElements is the element count of one full pass: 128 palette
// entries, 8192 tile word-pairs, 2048 background map pairs, 200 UI map
// pairs and 256 sprite descriptor halves.
const RefreshElements = PaletteSize/2 + TileSize/2 + BGMapSize/2 + UIMapSize/2 + SpriteTableSize/2

// refreshEngine snapshots the five VRAM regions from shared memory into
// the store, once per frame, through single-element read transactions
// on the arbiter. A pass armed at frame start must run to completion
// before the next one may begin; frame starts that find a pass still
// running are skipped and the store stays partially stale until the
// pass catches up.
type refreshEngine struct {
	state  RefreshState
	region int // cursor into refreshRegions
	elem   int // element index within the region

	refreshed bool // this frame's pass has completed
	busWanted bool // ownership demand fed to the arbiter

	passes uint64 // completed full passes
	reads  uint64 // element reads issued
}

func (r *refreshEngine) reset() {
	r.state = RefreshIdle
	r.region = 0
	r.elem = 0
	r.refreshed = false
	r.busWanted = false
	r.passes = 0
	r.reads = 0
}

// storeElement routes a completed element read into the store table the
// cursor points at.
func (r *refreshEngine) storeElement(v *vramStore, region, elem int, val uint16) {
	switch region {
	case 0:
		v.writePaletteElement(elem, val)
	case 1:
		v.writeTileElement(elem, val)
	case 2:
		v.writeBGMapElement(elem, val)
	case 3:
		v.writeUIMapElement(elem, val)
	case 4:
		v.writeSpriteElement(elem, val)
	}
}

// issueRead queues the read for the element at the cursor.
func (r *refreshEngine) issueRead(arb *busArbiter) {
	reg := refreshRegions[r.region]
	arb.startRead(reg.base + uint32(2*r.elem))
	r.reads++
}

// advance moves the cursor one element, reporting true when the pass is
// complete.
func (r *refreshEngine) advance() bool {
	r.elem++
	if r.elem == refreshRegions[r.region].elems {
		r.elem = 0
		r.region++
	}
	return r.region == len(refreshRegions)
}

// step advances the engine one clock. It runs before the arbiter in the
// tick, so arbiter state and the done pulse are those of the previous
// cycle.
func (r *refreshEngine) step(frameStart bool, arb *busArbiter, v *vramStore) {
	// Arm a new pass at frame start. A pass still running keeps going
	// and the new frame shows whatever the store holds.
	if frameStart && r.state == RefreshIdle {
		r.refreshed = false
		r.busWanted = true
		r.region = 0
		r.elem = 0
		r.state = RefreshAcquire
	}

	switch r.state {
	case RefreshAcquire:
		if arb.state == BusMaster {
			r.state = RefreshCopy
			r.issueRead(arb)
		}

	case RefreshCopy:
		if !arb.done {
			return
		}
		r.storeElement(v, r.region, r.elem, arb.rdData)
		if r.advance() {
			r.refreshed = true
			r.busWanted = false
			r.passes++
			r.state = RefreshIdle
			return
		}
		r.issueRead(arb)
	}
}
