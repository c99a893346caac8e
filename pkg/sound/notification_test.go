package sound

import (
	"math"
	"testing"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/stretchr/testify/assert"
)

func drain(s beep.Streamer) (count int, peak float64) {
	buf := make([][2]float64, 512)
	for {
		n, ok := s.Stream(buf)
		for _, smp := range buf[:n] {
			peak = math.Max(peak, math.Abs(smp[0]))
		}
		count += n
		if !ok {
			return count, peak
		}
	}
}

func TestChimeLength(t *testing.T) {
	sr := beep.SampleRate(8000)
	count, peak := drain(Chime(sr))

	want := sr.N(120*time.Millisecond) + sr.N(180*time.Millisecond)
	assert.Equal(t, want, count)
	assert.Greater(t, peak, 0.0)
	assert.LessOrEqual(t, peak, 0.3)
}

func TestToneDecays(t *testing.T) {
	sr := beep.SampleRate(8000)
	s := tone(sr, 440, 100*time.Millisecond)

	buf := make([][2]float64, sr.N(100*time.Millisecond))
	n, _ := s.Stream(buf)
	assert.Equal(t, len(buf), n)

	head, tail := 0.0, 0.0
	for i := 0; i < n/10; i++ {
		head = math.Max(head, math.Abs(buf[i][0]))
		tail = math.Max(tail, math.Abs(buf[n-1-i][0]))
	}
	assert.Greater(t, head, tail*3)
}
