package notify

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pipdock/pkg/logger"
)

func TestShowStopsAtFirstWorkingBackend(t *testing.T) {
	var tried []string
	n := &NotifyService{
		log: logger.Nop(),
		chain: []deliverer{
			{name: "a", send: func(string, string, NotificationType) error { tried = append(tried, "a"); return errors.New("down") }},
			{name: "b", send: func(string, string, NotificationType) error { tried = append(tried, "b"); return nil }},
			{name: "c", send: func(string, string, NotificationType) error { tried = append(tried, "c"); return nil }},
		},
		last: func(string, string, NotificationType) error { t.Fatal("fallback used"); return nil },
	}

	require.NoError(t, n.Info("PiP moved"))
	assert.Equal(t, []string{"a", "b"}, tried)
}

func TestShowFallsBack(t *testing.T) {
	var got string
	var gotType NotificationType = -1
	n := &NotifyService{
		log:   logger.Nop(),
		chain: []deliverer{{name: "a", send: func(string, string, NotificationType) error { return errors.New("down") }}},
		last: func(title, message string, nType NotificationType) error {
			got, gotType = title+": "+message, nType
			return nil
		},
	}

	require.NoError(t, n.Error("no secondary monitor"))
	assert.Equal(t, "pipdock: no secondary monitor", got)
	assert.Equal(t, Error, gotType)
}

func TestExecuteNotifyCommandPassesArguments(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses sh")
	}
	out := filepath.Join(t.TempDir(), "out.txt")
	n := NewNotifyService(`printf '%s|%s' > `+out, logger.Nop())

	require.NoError(t, n.executeNotifyCommand(appName, "it's moved", Info))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "INFO|it's moved", string(data))
}

func TestCommandIsFirstInChain(t *testing.T) {
	n := NewNotifyService("true", logger.Nop())
	require.NotEmpty(t, n.chain)
	assert.Equal(t, "command", n.chain[0].name)

	n = NewNotifyService("", logger.Nop())
	assert.Equal(t, "beeep", n.chain[0].name)
}

func TestPrintToTerminal(t *testing.T) {
	var buf bytes.Buffer
	stderr = &buf
	defer func() { stderr = os.Stderr }()

	n := NewNotifyService("", logger.Nop())
	require.NoError(t, n.printToTerminal(appName, "PiP window not found", Error))
	assert.Contains(t, buf.String(), "pipdock - Error: PiP window not found")
}

func TestWriteToLogFileAppends(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	if runtime.GOOS != "linux" {
		t.Skip("cache dir override is XDG only")
	}

	n := NewNotifyService("", logger.Nop())
	require.NoError(t, n.writeToLogFile(appName, "first", Info))
	require.NoError(t, n.writeToLogFile(appName, "second", Error))

	path, err := notificationLogPath()
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "pipdock - INFO: first")
	assert.Contains(t, string(data), "pipdock - ERROR: second")
}

func TestDesktopToolArguments(t *testing.T) {
	for _, tool := range desktopTools {
		args := tool.args(appName, "Moved to HDMI-1", Error)
		joined := strings.Join(args, " ")
		assert.Contains(t, joined, "Moved to HDMI-1", tool.name)
		assert.Contains(t, joined, "pipdock Error", tool.name)
	}
	assert.Equal(t, "normal", urgency(Info))
	assert.Equal(t, "critical", urgency(Error))
}

func TestSystemNotificationWithoutTools(t *testing.T) {
	n := NewNotifyService("", logger.Nop())
	n.lookPath = func(string) (string, error) { return "", errors.New("not found") }

	assert.ErrorContains(t, n.trySystemNotification(appName, "hello", Info), "no notification tools")
}

func TestCmdSafeDropsShellOperators(t *testing.T) {
	assert.Equal(t, "Lofi beats  rm -rf  50 - YouTube", cmdSafe(`Lofi beats & rm -rf | "50%" - YouTube`))
	assert.Equal(t, "plain title", cmdSafe("plain title"))
}

func TestExecuteNotifyCommandExportsEnvironment(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses sh")
	}
	out := filepath.Join(t.TempDir(), "out.txt")
	n := NewNotifyService(`printf '%s|%s' "$PIPDOCK_NOTIFY_TYPE" "$PIPDOCK_NOTIFY_MESSAGE" > `+out+`; true`, logger.Nop())

	require.NoError(t, n.executeNotifyCommand(appName, `a "quoted" & piped | title`, Error))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, `ERROR|a "quoted" & piped | title`, string(data))
}
