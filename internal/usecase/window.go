package usecase

import (
	"context"
	"sync"
	"time"
)

const (
	// RecentCarouselSize is the number of cards the recently-added carousel shows
	RecentCarouselSize = 6

	// CarouselTransition is how long the recently-added carousel stays locked after a move
	CarouselTransition = 150 * time.Millisecond

	// SlideInterval is the handpicked slider's auto-advance period
	SlideInterval = 5 * time.Second
)

// Window returns count items of list starting at start and wrapping around the end:
// result[i] = list[(start+i) mod len(list)]. An empty list yields an empty window.
func Window[T any](list []T, start, count int) []T {
	n := len(list)
	if n == 0 || count <= 0 {
		return []T{}
	}

	start = mod(start, n)
	out := make([]T, count)
	for i := range out {
		out[i] = list[(start+i)%n]
	}
	return out
}

func mod(a, n int) int {
	r := a % n
	if r < 0 {
		r += n
	}
	return r
}

// VisibleCount maps a viewport width in CSS pixels to the number of handpicked cards shown
func VisibleCount(width int) int {
	switch {
	case width < 768:
		return 2
	case width < 1024:
		return 3
	case width < 1280:
		return 4
	default:
		return 6
	}
}

// NextRecent and PrevRecent move the recently-added carousel by one card, wrapping in both directions
func NextRecent(start, length int) int {
	if length <= 0 {
		return 0
	}
	return mod(start+1, length)
}

// PrevRecent is the inverse of NextRecent
func PrevRecent(start, length int) int {
	if length <= 0 {
		return 0
	}
	return mod(start-1, length)
}

// NextSlide advances the handpicked slider by one. Once the last full window is showing
// it wraps to 0. When every item already fits, the slider does not move.
func NextSlide(start, length, visible int) int {
	if visible >= length {
		return 0
	}
	if start >= length-visible {
		return 0
	}
	if start < 0 {
		return 0
	}
	return start + 1
}

// PrevSlide moves the handpicked slider back by one, wrapping from 0 to the last full window
func PrevSlide(start, length, visible int) int {
	if visible >= length {
		return 0
	}
	if start <= 0 {
		return length - visible
	}
	if start > length-visible {
		return length - visible
	}
	return start - 1
}

// Slider is the handpicked slider state. Run advances it on a fixed interval;
// manual moves restart the interval.
//
// The HTTP surface is stateless and only publishes NextSlide/PrevSlide and SlideInterval;
// Slider and Carousel are the in-process state machines for consumers that hold the
// carousel themselves, such as a server-rendered page or a kiosk loop.
type Slider struct {
	mu       sync.Mutex
	start    int
	length   int
	visible  int
	interval time.Duration
	reset    chan struct{}
}

// NewSlider creates a slider over length items showing visible at once
func NewSlider(length, visible int, interval time.Duration) *Slider {
	if interval <= 0 {
		interval = SlideInterval
	}
	return &Slider{
		length:   length,
		visible:  visible,
		interval: interval,
		reset:    make(chan struct{}, 1),
	}
}

// Start returns the index of the first visible item
func (s *Slider) Start() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.start
}

// SetVisible changes the visible count, e.g. after a viewport resize
func (s *Slider) SetVisible(visible int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visible = visible
}

// SetLength replaces the item count and rewinds to the first item
func (s *Slider) SetLength(length int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.length = length
	s.start = 0
	s.kick()
}

// Next advances by one slide and restarts the auto-advance interval
func (s *Slider) Next() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.start = NextSlide(s.start, s.length, s.visible)
	s.kick()
	return s.start
}

// Prev moves back by one slide and restarts the auto-advance interval
func (s *Slider) Prev() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.start = PrevSlide(s.start, s.length, s.visible)
	s.kick()
	return s.start
}

// kick signals Run to restart its timer. Callers hold mu.
func (s *Slider) kick() {
	select {
	case s.reset <- struct{}{}:
	default:
	}
}

// Run auto-advances the slider until ctx is cancelled. onAdvance, if set,
// receives the new start index after each automatic move.
func (s *Slider) Run(ctx context.Context, onAdvance func(start int)) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.reset:
			ticker.Reset(s.interval)
		case <-ticker.C:
			s.mu.Lock()
			s.start = NextSlide(s.start, s.length, s.visible)
			start := s.start
			s.mu.Unlock()
			if onAdvance != nil {
				onAdvance(start)
			}
		}
	}
}

// Carousel is the recently-added carousel state. Moves are applied after the
// transition delay and further moves are ignored until then.
type Carousel struct {
	mu         sync.Mutex
	start      int
	length     int
	locked     bool
	transition time.Duration
}

// NewCarousel creates a carousel over length items
func NewCarousel(length int, transition time.Duration) *Carousel {
	if transition <= 0 {
		transition = CarouselTransition
	}
	return &Carousel{length: length, transition: transition}
}

// Start returns the index of the first visible item
func (c *Carousel) Start() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.start
}

// Locked reports whether a transition is in flight
func (c *Carousel) Locked() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.locked
}

// Next schedules a move forward. It returns false when the move was ignored.
func (c *Carousel) Next() bool {
	return c.move(NextRecent)
}

// Prev schedules a move backward. It returns false when the move was ignored.
func (c *Carousel) Prev() bool {
	return c.move(PrevRecent)
}

func (c *Carousel) move(step func(start, length int) int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.length == 0 || c.locked {
		return false
	}

	c.locked = true
	target := step(c.start, c.length)
	time.AfterFunc(c.transition, func() {
		c.mu.Lock()
		c.start = target
		c.locked = false
		c.mu.Unlock()
	})
	return true
}
