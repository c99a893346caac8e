package wm

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pipdock/pkg/logger"
)

func TestInferMonitors(t *testing.T) {
	tests := []struct {
		name    string
		primary Rect
		virtual Rect
		want    []Monitor
	}{
		{
			name:    "single display",
			primary: Rect{Width: 1920, Height: 1080},
			virtual: Rect{Width: 1920, Height: 1080},
			want:    []Monitor{{Name: "primary", Rect: Rect{Width: 1920, Height: 1080}, Primary: true}},
		},
		{
			name:    "secondary to the right",
			primary: Rect{Width: 1920, Height: 1080},
			virtual: Rect{Width: 3840, Height: 1080},
			want: []Monitor{
				{Name: "primary", Rect: Rect{Width: 1920, Height: 1080}, Primary: true},
				{Name: "secondary", Rect: Rect{X: 1920, Width: 1920, Height: 1080}},
			},
		},
		{
			name:    "secondary to the left",
			primary: Rect{Width: 2560, Height: 1440},
			virtual: Rect{X: -1920, Width: 4480, Height: 1440},
			want: []Monitor{
				{Name: "primary", Rect: Rect{Width: 2560, Height: 1440}, Primary: true},
				{Name: "secondary", Rect: Rect{X: -1920, Width: 1920, Height: 1440}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InferMonitors(tt.primary, tt.virtual))
		})
	}
}

func TestNormalizeProcessName(t *testing.T) {
	assert.Equal(t, "chrome", NormalizeProcessName(`C:\Program Files\Google\Chrome\chrome.exe`))
	assert.Equal(t, "chrome", NormalizeProcessName("Chrome.EXE"))
	assert.Equal(t, "firefox", NormalizeProcessName("/usr/lib/firefox/firefox"))
}

func TestX11IDRoundTrip(t *testing.T) {
	id, err := parseX11ID(formatX11ID(0x4a00007))
	require.NoError(t, err)
	assert.EqualValues(t, 0x4a00007, id)

	_, err = parseX11ID("not-a-window")
	assert.Error(t, err)
}

type hyprScript struct {
	replies map[string]string
	calls   [][]string
}

func (s *hyprScript) run(ctx context.Context, args ...string) ([]byte, error) {
	s.calls = append(s.calls, args)
	if out, ok := s.replies[args[0]]; ok {
		return []byte(out), nil
	}
	if args[0] == "fail" {
		return nil, errors.New("boom")
	}
	return []byte("ok"), nil
}

func newScriptedHyprland(replies map[string]string) (*Hyprland, *hyprScript) {
	s := &hyprScript{replies: replies}
	return &Hyprland{log: logger.Nop(), run: s.run}, s
}

func TestHyprlandWindowsSkipsHidden(t *testing.T) {
	h, _ := newScriptedHyprland(map[string]string{
		"clients": `[
			{"address":"0x1","mapped":true,"hidden":false,"class":"google-chrome","title":"Cat Video - YouTube - Google Chrome","pid":42},
			{"address":"0x2","mapped":true,"hidden":true,"class":"kitty","title":"shell","pid":7},
			{"address":"0x3","mapped":false,"hidden":false,"class":"x","title":"unmapped","pid":8}
		]`,
	})

	windows, err := h.Windows(context.Background())
	require.NoError(t, err)
	require.Len(t, windows, 1)
	assert.Equal(t, Window{ID: "0x1", Title: "Cat Video - YouTube - Google Chrome", Class: "google-chrome", PID: 42}, windows[0])
}

func TestHyprlandActiveWindowEmpty(t *testing.T) {
	h, _ := newScriptedHyprland(map[string]string{"activewindow": `{}`})

	_, err := h.ActiveWindow(context.Background())
	assert.ErrorIs(t, err, ErrNoWindow)
}

func TestHyprlandMonitorsUseLogicalSize(t *testing.T) {
	h, _ := newScriptedHyprland(map[string]string{
		"monitors": `[
			{"id":0,"name":"DP-1","width":3840,"height":2160,"x":0,"y":0,"scale":2},
			{"id":1,"name":"HDMI-A-1","width":1920,"height":1080,"x":1920,"y":0,"scale":1}
		]`,
	})

	monitors, err := h.Monitors(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Monitor{
		{Name: "DP-1", Rect: Rect{Width: 1920, Height: 1080}, Primary: true},
		{Name: "HDMI-A-1", Rect: Rect{X: 1920, Width: 1920, Height: 1080}},
	}, monitors)
}

func TestHyprlandApplyBatchesDispatchers(t *testing.T) {
	h, s := newScriptedHyprland(map[string]string{
		"clients": `[{"address":"0xabc","mapped":true,"title":"Picture in Picture","pinned":false}]`,
	})

	err := h.Apply(context.Background(), Window{ID: "0xabc"}, Placement{
		Rect:        Rect{X: 2640, Y: 405, Width: 480, Height: 270},
		AlwaysOnTop: true,
	})
	require.NoError(t, err)

	last := s.calls[len(s.calls)-1]
	require.Equal(t, "--batch", last[0])
	batch := last[1]
	assert.Contains(t, batch, "dispatch setfloating address:0xabc")
	assert.Contains(t, batch, "dispatch resizewindowpixel exact 480 270,address:0xabc")
	assert.Contains(t, batch, "dispatch movewindowpixel exact 2640 405,address:0xabc")
	assert.True(t, strings.HasSuffix(batch, "dispatch pin address:0xabc"))
}

func TestHyprlandApplyDoesNotUnpin(t *testing.T) {
	h, s := newScriptedHyprland(map[string]string{
		"clients": `[{"address":"0xabc","mapped":true,"pinned":true}]`,
	})

	require.NoError(t, h.Apply(context.Background(), Window{ID: "0xabc"}, Placement{AlwaysOnTop: true}))
	assert.NotContains(t, s.calls[len(s.calls)-1][1], "pin address")
}
