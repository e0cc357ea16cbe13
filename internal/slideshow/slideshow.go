// Package slideshow cycles through a fixed set of slides on a timer, fading
// the outgoing slide out before the incoming one fades in.
package slideshow

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const (
	DefaultInterval = 2 * time.Second
	DefaultFade     = 500 * time.Millisecond
)

// Slideshow tracks which of n slides is showing. It is driven by the caller's
// clock and is not safe for concurrent use.
type Slideshow struct {
	n        int
	interval time.Duration
	fade     time.Duration

	started   bool
	index     int
	prev      int
	changedAt time.Time
}

// New returns a slideshow over n slides. Zero or negative durations select
// the defaults.
func New(n int, interval, fade time.Duration) *Slideshow {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if fade <= 0 {
		fade = DefaultFade
	}
	// Out and in fades must fit inside one interval.
	if 2*fade > interval {
		fade = interval / 2
	}
	return &Slideshow{n: n, interval: interval, fade: fade, prev: -1}
}

// Len returns the number of slides.
func (s *Slideshow) Len() int { return s.n }

// Start anchors the timer at now. Advance calls it implicitly.
func (s *Slideshow) Start(now time.Time) {
	s.started = true
	s.index, s.prev = 0, -1
	s.changedAt = now
}

// Advance moves to (i+1) % n for every full interval elapsed since the last
// change and returns the current index, or -1 when there are no slides.
func (s *Slideshow) Advance(now time.Time) int {
	if s.n <= 0 {
		return -1
	}
	if !s.started {
		s.Start(now)
		return s.index
	}
	for now.Sub(s.changedAt) >= s.interval {
		s.prev = s.index
		s.index = (s.index + 1) % s.n
		s.changedAt = s.changedAt.Add(s.interval)
	}
	return s.index
}

// Visible returns the slide to draw at now and its opacity in [0,1]. Right
// after a change the previous slide fades out, then the new one fades in.
func (s *Slideshow) Visible(now time.Time) (index int, alpha float64) {
	i := s.Advance(now)
	if i < 0 {
		return -1, 0
	}
	e := now.Sub(s.changedAt)
	switch {
	case s.prev >= 0 && e < s.fade:
		return s.prev, clamp(1 - float64(e)/float64(s.fade))
	case s.prev >= 0 && e < 2*s.fade:
		return i, clamp(float64(e-s.fade) / float64(s.fade))
	case s.prev < 0 && e < s.fade:
		return i, clamp(float64(e) / float64(s.fade))
	}
	return i, 1
}

// Alpha returns the opacity of the visible slide at now.
func (s *Slideshow) Alpha(now time.Time) float64 {
	_, a := s.Visible(now)
	return a
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

// LoadDir lists the PNG and JPEG files in dir, sorted by name.
func LoadDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read slides: %w", err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".png", ".jpg", ".jpeg":
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(out)
	if len(out) == 0 {
		return nil, fmt.Errorf("read slides: no images in %s", dir)
	}
	return out, nil
}
