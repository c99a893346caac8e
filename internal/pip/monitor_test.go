package pip

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pipdock/internal/wm"
	"pipdock/internal/wm/wmtest"
	"pipdock/pkg/logger"
)

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) add(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) snapshot() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

func waitDone(t *testing.T, m *Monitor) {
	t.Helper()
	select {
	case <-m.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("monitor did not stop")
	}
}

func TestMonitorLatchesAfterActivation(t *testing.T) {
	f := &wmtest.Fake{
		Script:   [][]wm.Window{{}, {}, {video}, {video}, {video, pipW}},
		Active:   video,
		Displays: []wm.Monitor{primary, secondary},
	}
	k := &fakeKeys{}
	s := fastSettings()
	s.Scale = 0.25
	m := NewMonitor(newController(f, k, s), s.PollInterval, logger.Nop())

	rec := &recorder{}
	m.OnStatus(rec.add)

	require.NoError(t, m.Start(context.Background()))
	waitDone(t, m)

	assert.False(t, m.Running())
	assert.Equal(t, 1, k.count())
	require.Len(t, f.Applied(), 1)
	// x = 1920 + (1920-480)/2, y = (1080-270)/2.
	assert.Equal(t, wm.Rect{X: 2640, Y: 405, Width: 480, Height: 270}, f.Applied()[0].Placement.Rect)

	events := rec.snapshot()
	require.Len(t, events, 2)
	assert.True(t, events[0].Running)
	assert.False(t, events[1].Running)
	require.NotNil(t, events[1].Result)
	assert.Equal(t, OutcomeActivated, events[1].Result.Outcome)

	// Latched: nothing more happens after the run ends.
	calls := f.CallCount()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, calls, f.CallCount())
}

func TestMonitorLatchesOnNoPiPWindow(t *testing.T) {
	f := &wmtest.Fake{Script: [][]wm.Window{{video}}, Active: video}
	k := &fakeKeys{}
	s := fastSettings()
	m := NewMonitor(newController(f, k, s), s.PollInterval, logger.Nop())

	require.NoError(t, m.Start(context.Background()))
	waitDone(t, m)

	assert.Equal(t, 1, k.count())
	assert.Equal(t, 1+s.DiscoveryAttempts, f.Enumerations())
}

func TestMonitorStartTwice(t *testing.T) {
	f := &wmtest.Fake{}
	m := NewMonitor(newController(f, &fakeKeys{}, fastSettings()), 5*time.Millisecond, logger.Nop())

	require.NoError(t, m.Start(context.Background()))
	defer m.Stop()

	assert.ErrorIs(t, m.Start(context.Background()), ErrAlreadyRunning)
	assert.True(t, m.Running())
}

func TestMonitorStopIsLive(t *testing.T) {
	f := &wmtest.Fake{Script: [][]wm.Window{{other}}, Active: other}
	m := NewMonitor(newController(f, &fakeKeys{}, fastSettings()), 5*time.Millisecond, logger.Nop())

	rec := &recorder{}
	m.OnStatus(rec.add)

	require.NoError(t, m.Start(context.Background()))
	assert.Eventually(t, func() bool { return f.Enumerations() >= 3 }, 2*time.Second, time.Millisecond)

	m.Stop()
	assert.False(t, m.Running())

	calls := f.CallCount()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, calls, f.CallCount(), "no window system calls after Stop")

	events := rec.snapshot()
	require.Len(t, events, 2)
	assert.Nil(t, events[1].Result)
}

func TestMonitorStopDuringDiscovery(t *testing.T) {
	f := &wmtest.Fake{Script: [][]wm.Window{{video}}, Active: video}
	s := fastSettings()
	s.DiscoveryInterval = time.Hour
	k := &fakeKeys{}
	m := NewMonitor(newController(f, k, s), s.PollInterval, logger.Nop())

	rec := &recorder{}
	m.OnStatus(rec.add)

	require.NoError(t, m.Start(context.Background()))
	assert.Eventually(t, func() bool { return k.count() == 1 }, 2*time.Second, time.Millisecond)

	m.Stop()
	calls := f.CallCount()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, calls, f.CallCount())

	// A cancelled run is not a latched outcome.
	events := rec.snapshot()
	require.Len(t, events, 2)
	assert.Nil(t, events[1].Result)
}

func TestMonitorRestartAfterStop(t *testing.T) {
	f := &wmtest.Fake{}
	m := NewMonitor(newController(f, &fakeKeys{}, fastSettings()), 5*time.Millisecond, logger.Nop())

	require.NoError(t, m.Start(context.Background()))
	m.Stop()
	require.NoError(t, m.Start(context.Background()))
	assert.True(t, m.Running())
	m.Stop()
	assert.False(t, m.Running())
}

func TestMonitorStopWhenIdle(t *testing.T) {
	m := NewMonitor(newController(&wmtest.Fake{}, &fakeKeys{}, fastSettings()), time.Second, logger.Nop())
	m.Stop()
	assert.False(t, m.Running())
}

func TestMonitorParentContextCancel(t *testing.T) {
	f := &wmtest.Fake{}
	m := NewMonitor(newController(f, &fakeKeys{}, fastSettings()), 5*time.Millisecond, logger.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, m.Start(ctx))
	cancel()
	waitDone(t, m)
	assert.False(t, m.Running())
}

func TestMonitorDoneAfterListeners(t *testing.T) {
	f := &wmtest.Fake{Script: [][]wm.Window{{video}}, Active: video}
	s := fastSettings()
	m := NewMonitor(newController(f, &fakeKeys{}, s), s.PollInterval, logger.Nop())

	var reported atomic.Bool
	m.OnStatus(func(ev Event) {
		if ev.Result != nil {
			time.Sleep(10 * time.Millisecond)
			reported.Store(true)
		}
	})

	require.NoError(t, m.Start(context.Background()))
	waitDone(t, m)
	assert.True(t, reported.Load())
}

func TestMonitorStartRefusedWhileStopEventPending(t *testing.T) {
	f := &wmtest.Fake{Script: [][]wm.Window{{video}}, Active: video}
	s := fastSettings()
	m := NewMonitor(newController(f, &fakeKeys{}, s), s.PollInterval, logger.Nop())

	inStop := make(chan struct{}, 1)
	release := make(chan struct{})
	rec := &recorder{}
	m.OnStatus(func(ev Event) {
		if !ev.Running && ev.Result != nil {
			select {
			case inStop <- struct{}{}:
			default:
			}
			<-release
		}
		rec.add(ev)
	})

	require.NoError(t, m.Start(context.Background()))
	select {
	case <-inStop:
	case <-time.After(2 * time.Second):
		t.Fatal("run did not latch")
	}

	// The first run is still delivering its stop event.
	assert.ErrorIs(t, m.Start(context.Background()), ErrAlreadyRunning)
	assert.True(t, m.Running())

	close(release)
	waitDone(t, m)
	assert.False(t, m.Running())

	require.NoError(t, m.Start(context.Background()))
	m.Stop()

	events := rec.snapshot()
	require.GreaterOrEqual(t, len(events), 4)
	assert.True(t, events[0].Running)
	assert.False(t, events[1].Running)
	assert.True(t, events[2].Running)
	assert.False(t, events[len(events)-1].Running)
}
