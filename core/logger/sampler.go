package logger

import (
	"strconv"
	"strings"
	"sync/atomic"
)

// ratioSampler lets num out of every den events through. A zero ratio
// disables sampling and lets everything pass.
type ratioSampler struct {
	ratio atomic.Uint64 // num<<32 | den
	seen  atomic.Uint64
}

func newRatioSampler(num, den int) *ratioSampler {
	s := &ratioSampler{}
	s.Set(num, den)
	return s
}

func (s *ratioSampler) Set(num, den int) {
	var r uint64
	if num > 0 && den > 0 {
		num = min(num, den)
		r = uint64(num)<<32 | uint64(den)
	}
	s.ratio.Store(r)
	s.seen.Store(0)
}

func (s *ratioSampler) Allow() bool {
	r := s.ratio.Load()
	if r == 0 {
		return true
	}
	num, den := r>>32, r&0xffffffff
	return (s.seen.Add(1)-1)%den < num
}

// parseRatio accepts "num/den" or "den" (meaning 1/den). Invalid or
// non-positive input yields 0, 0.
func parseRatio(raw string) (int, int) {
	raw = strings.TrimSpace(raw)
	if a, b, ok := strings.Cut(raw, "/"); ok {
		num, err1 := strconv.Atoi(strings.TrimSpace(a))
		den, err2 := strconv.Atoi(strings.TrimSpace(b))
		if err1 != nil || err2 != nil || num <= 0 || den <= 0 {
			return 0, 0
		}
		return num, den
	}
	den, err := strconv.Atoi(raw)
	if err != nil || den <= 0 {
		return 0, 0
	}
	return 1, den
}
