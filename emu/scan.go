package emu

// Raster geometry. One clock per pixel, no blanking intervals.
const (
	ScreenWidth     = 320
	MaxScreenHeight = 240

	// CyclesPerFrame is the clock count between frame starts.
	CyclesPerFrame = ScreenWidth * MaxScreenHeight
)

// scanCounter tracks the raster position. X advances every clock and
// wraps at the screen width, carrying into Y, which wraps at the screen
// height.
type scanCounter struct {
	x int
	y int
}

func (s *scanCounter) reset() {
	s.x = 0
	s.y = 0
}

// frameStart reports whether the counter sits at the top-left pixel.
// The refresh engine arms off this condition.
func (s *scanCounter) frameStart() bool {
	return s.x == 0 && s.y == 0
}

func (s *scanCounter) advance() {
	s.x++
	if s.x == ScreenWidth {
		s.x = 0
		s.y++
		if s.y == MaxScreenHeight {
			s.y = 0
		}
	}
}
