package notify

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/gen2brain/beeep"

	"pipdock/pkg/logger"
)

const appName = "pipdock"

// NotificationType represents the type of notification
type NotificationType int

const (
	Error NotificationType = iota
	Info
)

func (t NotificationType) String() string {
	if t == Error {
		return "ERROR"
	}
	return "INFO"
}

// deliverer is one way of getting a message in front of the user.
type deliverer struct {
	name string
	send func(title, message string, nType NotificationType) error
}

// NotifyService handles system notifications
type NotifyService struct {
	log           *logger.Logger
	notifyCommand string
	chain         []deliverer
	last          func(title, message string, nType NotificationType) error
	lookPath      func(file string) (string, error)
}

// NewNotifyService creates a new notification service. Delivery is tried in
// order: the configured command, the desktop notification API, the
// notify-send family of tools, then stderr or a log file.
func NewNotifyService(notifyCommand string, log *logger.Logger) *NotifyService {
	n := &NotifyService{
		log:           log,
		notifyCommand: notifyCommand,
		lookPath:      exec.LookPath,
	}
	if notifyCommand != "" {
		n.chain = append(n.chain, deliverer{name: "command", send: n.executeNotifyCommand})
	}
	n.chain = append(n.chain,
		deliverer{name: "beeep", send: beeepNotify},
		deliverer{name: "system", send: n.trySystemNotification},
	)
	n.last = n.fallback
	return n
}

// Show displays a notification of the specified type
func (n *NotifyService) Show(message string, nType NotificationType) error {
	for _, d := range n.chain {
		err := d.send(appName, message, nType)
		if err == nil {
			n.log.Debug("Notification delivered", "via", d.name, "type", nType.String())
			return nil
		}
		n.log.Debug("Notification backend failed", "via", d.name, "error", err)
	}
	return n.last(appName, message, nType)
}

func (n *NotifyService) Info(message string) error {
	return n.Show(message, Info)
}

func (n *NotifyService) Error(message string) error {
	return n.Show(message, Error)
}

func (n *NotifyService) fallback(title, message string, nType NotificationType) error {
	// If running in terminal, print directly
	if isRunningInTerminal() {
		return n.printToTerminal(title, message, nType)
	}
	// Last resort: log file
	return n.writeToLogFile(title, message, nType)
}

func beeepNotify(title, message string, nType NotificationType) error {
	if nType == Error {
		return beeep.Alert(title+" Error", message, "")
	}
	return beeep.Notify(title, message, "")
}

// executeNotifyCommand runs the user's command with the type and message as
// positional arguments. Both are also exported as PIPDOCK_NOTIFY_TYPE and
// PIPDOCK_NOTIFY_MESSAGE, which is the only lossless form under cmd.exe.
func (n *NotifyService) executeNotifyCommand(title, message string, nType NotificationType) error {
	n.log.Debug("Executing notify command", "notifyCommand", n.notifyCommand, "nType", nType.String())

	var cmd *exec.Cmd
	if runtime.GOOS == "windows" {
		cmd = exec.Command("cmd", "/C", n.notifyCommand, nType.String(), cmdSafe(message))
	} else {
		cmd = exec.Command("sh", "-c", n.notifyCommand+` "$1" "$2"`, "sh", nType.String(), message)
	}
	cmd.Env = append(os.Environ(),
		"PIPDOCK_NOTIFY_TYPE="+nType.String(),
		"PIPDOCK_NOTIFY_MESSAGE="+message,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("notify command failed: %w: %s", err, out)
	}
	return nil
}

// cmdSafe drops the characters cmd.exe expands or treats as operators, since
// cmd /C re-parses its arguments.
func cmdSafe(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '"', '%', '^', '!', '&', '|', '<', '>', '\r', '\n':
			return -1
		}
		return r
	}, s)
}
