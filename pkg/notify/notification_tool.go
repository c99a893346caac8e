package notify

import (
	"context"
	"fmt"
	"os/exec"
	"time"
)

const toolTimeout = 5 * time.Second

// desktopTool is a notification CLI found on many Linux desktops.
type desktopTool struct {
	name string
	args func(title, message string, nType NotificationType) []string
}

func urgency(nType NotificationType) string {
	if nType == Error {
		return "critical"
	}
	return "normal"
}

func heading(title string, nType NotificationType) string {
	if nType == Error {
		return title + " Error"
	}
	return title
}

var desktopTools = []desktopTool{
	{
		name: "notify-send",
		args: func(title, message string, nType NotificationType) []string {
			return []string{"-u", urgency(nType), "-a", appName, "-i", "video-display", heading(title, nType), message}
		},
	},
	{
		name: "dunstify",
		args: func(title, message string, nType NotificationType) []string {
			return []string{"-u", urgency(nType), "-a", appName, "-t", "5000", heading(title, nType), message}
		},
	},
	{
		name: "kdialog",
		args: func(title, message string, nType NotificationType) []string {
			return []string{"--title", heading(title, nType), "--passivepopup", message, "5"}
		},
	},
	{
		name: "zenity",
		args: func(title, message string, nType NotificationType) []string {
			return []string{"--notification", "--text", heading(title, nType) + ": " + message}
		},
	},
}

// trySystemNotification uses the first installed tool that exits cleanly.
func (n *NotifyService) trySystemNotification(title, message string, nType NotificationType) error {
	for _, tool := range desktopTools {
		path, err := n.lookPath(tool.name)
		if err != nil {
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), toolTimeout)
		err = exec.CommandContext(ctx, path, tool.args(title, message, nType)...).Run()
		cancel()
		if err == nil {
			return nil
		}
		n.log.Debug("Notification tool failed", "tool", tool.name, "error", err)
	}
	return fmt.Errorf("no notification tools available")
}
