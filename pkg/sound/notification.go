package sound

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"
)

const sampleRate = beep.SampleRate(44100)

type SoundNotifier struct {
	mu sync.Mutex
}

func NewSoundNotifier() (*SoundNotifier, error) {
	// Initialize speaker with default settings
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		return nil, fmt.Errorf("failed to initialize audio: %w", err)
	}
	return &SoundNotifier{}, nil
}

// tone is a sine wave at freq Hz that decays to silence over d.
func tone(sr beep.SampleRate, freq float64, d time.Duration) beep.Streamer {
	total := sr.N(d)
	pos := 0
	return beep.Take(total, beep.StreamerFunc(func(samples [][2]float64) (n int, ok bool) {
		for i := range samples {
			t := float64(pos) / float64(sr)
			env := math.Exp(-5 * float64(pos) / float64(total))
			v := 0.3 * env * math.Sin(2*math.Pi*freq*t)
			samples[i][0], samples[i][1] = v, v
			pos++
		}
		return len(samples), true
	}))
}

// Chime is the two-note sound played when a video is docked.
func Chime(sr beep.SampleRate) beep.Streamer {
	return beep.Seq(
		tone(sr, 880, 120*time.Millisecond),
		tone(sr, 1318.5, 180*time.Millisecond),
	)
}

// PlayChime plays the chime and waits for it to finish.
func (s *SoundNotifier) PlayChime() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	done := make(chan struct{})
	speaker.Play(beep.Seq(Chime(sampleRate), beep.Callback(func() {
		close(done)
	})))

	select {
	case <-done:
		return nil
	case <-time.After(2 * time.Second):
		return fmt.Errorf("chime playback timed out")
	}
}

func (s *SoundNotifier) Close() {
	speaker.Close()
}
