package emu

// BusState identifies the current arbitration FSM state.
type BusState int

const (
	BusIdle         BusState = iota // host owns the bus
	BusRequest                      // request asserted, waiting for grant
	BusSeize                        // acknowledge asserted, host drivers shutting off
	BusMaster                       // bus owned, between transfers
	BusReadRequest                  // address + read strobe driven for one cycle
	BusReadWait                     // wait states, then latch read data
	BusWriteRequest                 // address + data + write strobe for one cycle
	BusWriteWait                    // wait states, then done
	BusRelease                      // acknowledge dropped, host drivers coming back
)

func (s BusState) String() string {
	switch s {
	case BusIdle:
		return "Idle"
	case BusRequest:
		return "RequestBus"
	case BusSeize:
		return "SeizeBus"
	case BusMaster:
		return "BusMaster"
	case BusReadRequest:
		return "ReadRequest"
	case BusReadWait:
		return "ReadWait"
	case BusWriteRequest:
		return "WriteRequest"
	case BusWriteWait:
		return "WriteWait"
	case BusRelease:
		return "ReleaseBus"
	}
	return "Unknown"
}

// DefaultWaitStates is the reset value for the memory-latency setting.
const DefaultWaitStates = 1

// busArbiter negotiates bus ownership with the host and runs one
// transfer at a time on behalf of the refresh engine.
//
// Handover is glitch-free by one cycle of deliberate skew: acknowledge
// rises in SeizeBus but the arbiter's own drivers turn on only at
// BusMaster, one cycle later, by which time the host has shut its
// drivers off. On the way out acknowledge drops in ReleaseBus while
// the drivers stay on for that cycle, covering the host's one-cycle
// re-enable latency.
type busArbiter struct {
	state BusState

	waitStates int // extra ReadWait/WriteWait cycles per transfer
	waitCount  int

	// Transfer queued by the refresh engine, consumed in BusMaster.
	pending bool
	isWrite bool
	addr    uint32
	wrData  uint16

	rdData uint16 // latched at the end of ReadWait
	done   bool   // one-cycle completion pulse

	// Consecutive cycles spent in RequestBus without a grant. There is
	// no timeout: a host that never grants stalls the arbiter forever,
	// and this counter is the only external evidence.
	stallCycles uint64
}

func (a *busArbiter) reset() {
	a.state = BusIdle
	a.waitStates = DefaultWaitStates
	a.waitCount = 0
	a.pending = false
	a.isWrite = false
	a.addr = 0
	a.wrData = 0
	a.rdData = 0
	a.done = false
	a.stallCycles = 0
}

// startRead queues a read transfer. Only legal in BusMaster with no
// transfer pending.
func (a *busArbiter) startRead(addr uint32) {
	a.pending = true
	a.isWrite = false
	a.addr = addr & 0xFFFFF
}

// startWrite queues a write transfer.
func (a *busArbiter) startWrite(addr uint32, data uint16) {
	a.pending = true
	a.isWrite = true
	a.addr = addr & 0xFFFFF
	a.wrData = data
}

// step advances the FSM one clock. busWanted is the refresh engine's
// ownership demand; grant, addrStrobe and readData are the host-side
// bus inputs sampled this cycle.
func (a *busArbiter) step(busWanted, grant, addrStrobe bool, readData uint16) {
	a.done = false

	switch a.state {
	case BusIdle:
		if busWanted {
			a.state = BusRequest
		}

	case BusRequest:
		// Grant alone is not enough: the host must also have finished
		// its in-flight bus cycle, signalled by the address strobe
		// going inactive.
		if grant && !addrStrobe {
			a.state = BusSeize
			a.stallCycles = 0
		} else {
			a.stallCycles++
		}

	case BusSeize:
		a.state = BusMaster

	case BusMaster:
		switch {
		case a.pending && a.isWrite:
			a.state = BusWriteRequest
		case a.pending:
			a.state = BusReadRequest
		case !busWanted:
			a.state = BusRelease
		}

	case BusReadRequest:
		a.waitCount = a.waitStates
		a.state = BusReadWait

	case BusReadWait:
		if !busWanted {
			a.pending = false
			a.state = BusRelease
		} else if a.waitCount > 0 {
			a.waitCount--
		} else {
			a.rdData = readData
			a.pending = false
			a.done = true
			a.state = BusMaster
		}

	case BusWriteRequest:
		a.waitCount = a.waitStates
		a.state = BusWriteWait

	case BusWriteWait:
		if !busWanted {
			a.pending = false
			a.state = BusRelease
		} else if a.waitCount > 0 {
			a.waitCount--
		} else {
			a.pending = false
			a.done = true
			a.state = BusMaster
		}

	case BusRelease:
		a.state = BusIdle
	}
}

// Output signal derivation. All outputs are functions of the state
// reached this cycle.

func (a *busArbiter) request() bool {
	switch a.state {
	case BusRequest, BusSeize, BusMaster, BusReadRequest, BusReadWait, BusWriteRequest, BusWriteWait:
		return true
	}
	return false
}

func (a *busArbiter) acknowledge() bool {
	switch a.state {
	case BusSeize, BusMaster, BusReadRequest, BusReadWait, BusWriteRequest, BusWriteWait:
		return true
	}
	return false
}

func (a *busArbiter) driveEnable() bool {
	switch a.state {
	case BusMaster, BusReadRequest, BusReadWait, BusWriteRequest, BusWriteWait, BusRelease:
		return true
	}
	return false
}

func (a *busArbiter) readStrobe() bool { return a.state == BusReadRequest }

func (a *busArbiter) writeStrobe() bool { return a.state == BusWriteRequest }

// busAddr returns the driven address. Valid while a transfer is in
// flight; zero otherwise.
func (a *busArbiter) busAddr() uint32 {
	switch a.state {
	case BusReadRequest, BusReadWait, BusWriteRequest, BusWriteWait:
		return a.addr
	}
	return 0
}

func (a *busArbiter) busWriteData() uint16 {
	switch a.state {
	case BusWriteRequest, BusWriteWait:
		return a.wrData
	}
	return 0
}
