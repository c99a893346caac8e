package pip

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pipdock/internal/input"
	"pipdock/internal/wm"
	"pipdock/internal/wm/wmtest"
	"pipdock/pkg/logger"
)

type fakeKeys struct {
	mu   sync.Mutex
	err  error
	sent []input.Chord
	to   []wm.Window
}

func (k *fakeKeys) Send(ctx context.Context, chord input.Chord, target wm.Window) error {
	k.mu.Lock()
	k.sent = append(k.sent, chord)
	k.to = append(k.to, target)
	k.mu.Unlock()
	return k.err
}

func (k *fakeKeys) count() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.sent)
}

var (
	video = wm.Window{ID: "0x100", Title: "Lofi beats - YouTube - Google Chrome", PID: 10}
	other = wm.Window{ID: "0x200", Title: "Inbox - Google Chrome", PID: 10}
	pipW  = wm.Window{ID: "0x300", Title: "Picture in Picture", PID: 10}

	primary   = wm.Monitor{Name: "DP-1", Rect: wm.Rect{X: 0, Y: 0, Width: 2560, Height: 1440}, Primary: true}
	secondary = wm.Monitor{Name: "HDMI-1", Rect: wm.Rect{X: 1920, Y: 0, Width: 1920, Height: 1080}}
)

func fastSettings() Settings {
	s := DefaultSettings()
	s.PollInterval = 5 * time.Millisecond
	s.DiscoveryInterval = time.Millisecond
	return s
}

func newController(f *wmtest.Fake, k *fakeKeys, s Settings) *Controller {
	return NewController(f, k, nil, logger.Nop(), s)
}

func TestFindActiveVideoWindow(t *testing.T) {
	tests := []struct {
		name    string
		windows []wm.Window
		active  wm.Window
		want    wm.Window
		found   bool
	}{
		{
			name:    "foreground video window",
			windows: []wm.Window{other, video},
			active:  video,
			want:    video,
			found:   true,
		},
		{
			name:    "video window in background",
			windows: []wm.Window{other, video},
			active:  other,
		},
		{
			name:    "pip window is never a source",
			windows: []wm.Window{{ID: "0x1", Title: "Picture in Picture - YouTube - Google Chrome"}},
			active:  wm.Window{ID: "0x1"},
		},
		{
			name:    "other browser",
			windows: []wm.Window{{ID: "0x2", Title: "Lofi beats - YouTube - Mozilla Firefox"}},
			active:  wm.Window{ID: "0x2"},
		},
		{
			name:    "marker is case sensitive",
			windows: []wm.Window{{ID: "0x3", Title: "youtube tips - Google Chrome"}},
			active:  wm.Window{ID: "0x3"},
		},
		{
			name:    "no foreground window",
			windows: []wm.Window{video},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &wmtest.Fake{Script: [][]wm.Window{tt.windows}, Active: tt.active}
			c := newController(f, &fakeKeys{}, fastSettings())

			got, ok := c.FindActiveVideoWindow(context.Background())
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFindActiveVideoWindowEmptySuffixMatchesAnyBrowser(t *testing.T) {
	firefox := wm.Window{ID: "0x2", Title: "Lofi beats - YouTube - Mozilla Firefox"}
	f := &wmtest.Fake{Script: [][]wm.Window{{firefox}}, Active: firefox}
	s := fastSettings()
	s.BrowserSuffix = ""

	got, ok := newController(f, &fakeKeys{}, s).FindActiveVideoWindow(context.Background())
	require.True(t, ok)
	assert.Equal(t, firefox, got)
}

func TestFindActiveVideoWindowProcessAllowList(t *testing.T) {
	edge := wm.Window{ID: "0x9", Title: "Lofi beats - YouTube - Google Chrome", PID: 42}
	s := fastSettings()
	s.BrowserProcesses = []string{"chrome.exe"}

	t.Run("allowed", func(t *testing.T) {
		f := &wmtest.Fake{Script: [][]wm.Window{{edge}}, Active: edge}
		c := NewController(f, &fakeKeys{}, wmtest.Processes{42: "Chrome"}, logger.Nop(), s)
		_, ok := c.FindActiveVideoWindow(context.Background())
		assert.True(t, ok)
	})

	t.Run("rejected", func(t *testing.T) {
		f := &wmtest.Fake{Script: [][]wm.Window{{edge}}, Active: edge}
		c := NewController(f, &fakeKeys{}, wmtest.Processes{42: "msedge.exe"}, logger.Nop(), s)
		_, ok := c.FindActiveVideoWindow(context.Background())
		assert.False(t, ok)
	})

	t.Run("unknown pid", func(t *testing.T) {
		f := &wmtest.Fake{Script: [][]wm.Window{{edge}}, Active: edge}
		c := NewController(f, &fakeKeys{}, wmtest.Processes{}, logger.Nop(), s)
		_, ok := c.FindActiveVideoWindow(context.Background())
		assert.False(t, ok)
	})
}

func TestFindActiveVideoWindowEnumerationError(t *testing.T) {
	f := &wmtest.Fake{WindowsErr: errors.New("display gone"), Active: video}
	_, ok := newController(f, &fakeKeys{}, fastSettings()).FindActiveVideoWindow(context.Background())
	assert.False(t, ok)
}

func TestRequestPiP(t *testing.T) {
	f := &wmtest.Fake{FocusErr: errors.New("focus stolen")}
	k := &fakeKeys{}
	c := newController(f, k, fastSettings())

	require.NoError(t, c.RequestPiP(context.Background(), video))
	assert.Equal(t, []wm.Window{video}, f.Focused())
	require.Equal(t, 1, k.count())
	assert.Equal(t, "alt+p", k.sent[0].String())
	assert.Equal(t, video, k.to[0])
}

func TestRequestPiPSendError(t *testing.T) {
	k := &fakeKeys{err: errors.New("no xtest")}
	err := newController(&wmtest.Fake{}, k, fastSettings()).RequestPiP(context.Background(), video)
	assert.ErrorContains(t, err, "failed to send PiP hotkey")
}

func TestRequestPiPCancelledDuringDelay(t *testing.T) {
	s := fastSettings()
	s.PreTriggerDelay = time.Hour
	k := &fakeKeys{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := newController(&wmtest.Fake{}, k, s).RequestPiP(ctx, video)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, k.count())
}

func TestLocatePiPWindow(t *testing.T) {
	t.Run("third attempt", func(t *testing.T) {
		f := &wmtest.Fake{Script: [][]wm.Window{{video}, {video}, {video, pipW}}}
		got, ok := newController(f, &fakeKeys{}, fastSettings()).LocatePiPWindow(context.Background())
		require.True(t, ok)
		assert.Equal(t, pipW, got)
		assert.Equal(t, 3, f.Enumerations())
	})

	t.Run("case insensitive exact title", func(t *testing.T) {
		lower := wm.Window{ID: "0x4", Title: "picture in picture"}
		f := &wmtest.Fake{Script: [][]wm.Window{{lower}}}
		got, ok := newController(f, &fakeKeys{}, fastSettings()).LocatePiPWindow(context.Background())
		require.True(t, ok)
		assert.Equal(t, lower, got)
	})

	t.Run("substring is not a match", func(t *testing.T) {
		f := &wmtest.Fake{Script: [][]wm.Window{{{ID: "0x5", Title: "Picture in Picture - YouTube"}}}}
		_, ok := newController(f, &fakeKeys{}, fastSettings()).LocatePiPWindow(context.Background())
		assert.False(t, ok)
	})

	t.Run("budget exhausted", func(t *testing.T) {
		f := &wmtest.Fake{Script: [][]wm.Window{{video}}}
		_, ok := newController(f, &fakeKeys{}, fastSettings()).LocatePiPWindow(context.Background())
		assert.False(t, ok)
		assert.Equal(t, 5, f.Enumerations())
	})

	t.Run("enumeration errors use up attempts", func(t *testing.T) {
		f := &wmtest.Fake{WindowsErr: errors.New("boom")}
		s := fastSettings()
		s.DiscoveryAttempts = 2
		_, ok := newController(f, &fakeKeys{}, s).LocatePiPWindow(context.Background())
		assert.False(t, ok)
		assert.Equal(t, []string{"Windows", "Windows"}, f.Calls())
	})

	t.Run("zero interval", func(t *testing.T) {
		f := &wmtest.Fake{Script: [][]wm.Window{{}, {pipW}}}
		s := fastSettings()
		s.DiscoveryInterval = 0
		_, ok := newController(f, &fakeKeys{}, s).LocatePiPWindow(context.Background())
		assert.True(t, ok)
	})
}

func TestRelocate(t *testing.T) {
	f := &wmtest.Fake{}
	s := fastSettings()
	s.HideFromTaskbar = true

	got, err := newController(f, &fakeKeys{}, s).Relocate(context.Background(), pipW, secondary.Rect, 0.25)
	require.NoError(t, err)

	// 0.25 of 1920x1080 is 480x270, centered on a monitor at x=1920: 1920+(1920-480)/2 = 2640.
	want := wm.Rect{X: 2640, Y: 405, Width: 480, Height: 270}
	assert.Equal(t, want, got)
	require.Len(t, f.Applied(), 1)
	assert.Equal(t, wmtest.Applied{
		Window:    pipW,
		Placement: wm.Placement{Rect: want, AlwaysOnTop: true, SkipTaskbar: true},
	}, f.Applied()[0])
}

func TestRelocateError(t *testing.T) {
	f := &wmtest.Fake{ApplyErr: errors.New("BadWindow")}
	_, err := newController(f, &fakeKeys{}, fastSettings()).Relocate(context.Background(), pipW, secondary.Rect, 0.5)
	assert.ErrorContains(t, err, "BadWindow")
}

func TestAttemptEndToEnd(t *testing.T) {
	f := &wmtest.Fake{
		Script:   [][]wm.Window{{other, video}, {other, video}, {other, video, pipW}},
		Active:   video,
		Displays: []wm.Monitor{primary, secondary},
	}
	k := &fakeKeys{}
	s := fastSettings()
	s.Scale = 0.25

	res := newController(f, k, s).Attempt(context.Background())

	assert.Equal(t, OutcomeActivated, res.Outcome)
	assert.Equal(t, video, res.Source)
	assert.Equal(t, pipW, res.PiP)
	assert.Equal(t, secondary, res.Monitor)
	// x = 1920 + (1920-480)/2, y = (1080-270)/2.
	assert.Equal(t, wm.Rect{X: 2640, Y: 405, Width: 480, Height: 270}, res.Target)
	assert.NoError(t, res.Err)
	assert.Equal(t, 1, k.count())
	assert.Equal(t, []string{
		"Windows", "ActiveWindow", "FocusWindow",
		"Windows", "Windows", "Monitors", "Apply",
	}, f.Calls())
}

func TestPollAndTriggerOutcomes(t *testing.T) {
	tests := []struct {
		name string
		fake *wmtest.Fake
		keys *fakeKeys
		want Outcome
	}{
		{
			name: "nothing in front",
			fake: &wmtest.Fake{Script: [][]wm.Window{{other}}, Active: other},
			want: OutcomeIdle,
		},
		{
			name: "hotkey fails",
			fake: &wmtest.Fake{Script: [][]wm.Window{{video}}, Active: video},
			keys: &fakeKeys{err: errors.New("denied")},
			want: OutcomeFailed,
		},
		{
			name: "pip never appears",
			fake: &wmtest.Fake{Script: [][]wm.Window{{video}}, Active: video},
			want: OutcomeNoPiPWindow,
		},
		{
			name: "single monitor",
			fake: &wmtest.Fake{
				Script:   [][]wm.Window{{video}, {video, pipW}},
				Active:   video,
				Displays: []wm.Monitor{primary},
			},
			want: OutcomeNoSecondary,
		},
		{
			name: "monitor query fails",
			fake: &wmtest.Fake{
				Script:      [][]wm.Window{{video}, {video, pipW}},
				Active:      video,
				MonitorsErr: errors.New("randr"),
			},
			want: OutcomeFailed,
		},
		{
			name: "apply fails",
			fake: &wmtest.Fake{
				Script:   [][]wm.Window{{video}, {video, pipW}},
				Active:   video,
				Displays: []wm.Monitor{primary, secondary},
				ApplyErr: errors.New("BadMatch"),
			},
			want: OutcomeFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			keys := tt.keys
			if keys == nil {
				keys = &fakeKeys{}
			}
			got := newController(tt.fake, keys, fastSettings()).PollAndTrigger(context.Background())
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want != OutcomeIdle, got.Latches())
		})
	}
}

func TestNoSecondarySkipsApply(t *testing.T) {
	f := &wmtest.Fake{
		Script:   [][]wm.Window{{video}, {video, pipW}},
		Active:   video,
		Displays: []wm.Monitor{primary},
	}
	newController(f, &fakeKeys{}, fastSettings()).Attempt(context.Background())
	assert.Empty(t, f.Applied())
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "activated", OutcomeActivated.String())
	assert.Equal(t, "no_secondary", OutcomeNoSecondary.String())
	assert.Equal(t, "outcome(42)", Outcome(42).String())
}
