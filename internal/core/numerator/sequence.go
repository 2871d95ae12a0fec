package numerator

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// Sequence hands out numbers in memory. Numbers are gapless within one run.
type Sequence struct {
	mu      sync.Mutex
	cfg     Config
	current int64
}

// NewSequence returns a sequence whose first number is after + 1.
func NewSequence(cfg Config, after int64) *Sequence {
	return &Sequence{cfg: cfg, current: after}
}

// Resume returns a sequence continuing after the highest number among existing
// codes. Codes with another prefix or format are ignored.
func Resume(cfg Config, existing []any) *Sequence {
	var highest int64
	for _, v := range existing {
		code, ok := v.(string)
		if !ok {
			continue
		}
		if num := ParseNumber(cfg, code); num > highest {
			highest = num
		}
	}
	return NewSequence(cfg, highest)
}

// Next returns the next formatted number.
func (s *Sequence) Next() string {
	s.mu.Lock()
	s.current++
	num := s.current
	s.mu.Unlock()
	return Format(s.cfg, num)
}

// Current returns the last issued number, 0 when none was issued.
func (s *Sequence) Current() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Format creates the final number string: PREFIX-00042.
func Format(cfg Config, num int64) string {
	if cfg.Prefix == "" {
		return fmt.Sprintf("%0*d", cfg.width(), num)
	}
	return fmt.Sprintf("%s-%0*d", cfg.Prefix, cfg.width(), num)
}

// ParseNumber extracts the numeric part of a code formatted with cfg.
// Returns -1 if parsing fails.
func ParseNumber(cfg Config, formatted string) int64 {
	digits := formatted
	if cfg.Prefix != "" {
		rest, ok := strings.CutPrefix(formatted, cfg.Prefix+"-")
		if !ok {
			return -1
		}
		digits = rest
	}
	num, err := strconv.ParseInt(digits, 10, 64)
	if err != nil || num < 0 {
		return -1
	}
	return num
}
