package app

import (
	"fmt"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"pipdock/internal/pip"
	"pipdock/pkg/logger"
)

const appID = "io.github.pipdock"

// App is the desktop front end: a status line, Start/Stop buttons, the log
// panel and a tray icon.
type App struct {
	runner *Runner
	log    *logger.Logger

	fyneApp fyne.App
	window  fyne.Window
	panel   *LogPanel

	// UI elements
	status   *widget.Label
	startBtn *widget.Button
	stopBtn  *widget.Button
}

func NewApp(runner *Runner, log *logger.Logger) *App {
	return &App{
		runner: runner,
		log:    log,
		panel:  NewLogPanel(),
	}
}

// Run builds the window and blocks until the user quits.
func (a *App) Run() error {
	a.log.Info("Starting pipdock GUI")

	a.fyneApp = fyneapp.NewWithID(appID)
	a.fyneApp.SetIcon(theme.MediaVideoIcon())
	a.window = a.fyneApp.NewWindow("pipdock")

	a.log.AddWriter(NewPanelWriter(a.panel))
	a.buildUI()

	if desk, ok := a.fyneApp.(desktop.App); ok {
		a.setupSystemTray(desk)
		// Closing the window hides it to the tray.
		a.window.SetCloseIntercept(func() {
			a.window.Hide()
		})
	}

	a.runner.OnStatus(a.onStatus)
	a.window.ShowAndRun()

	a.log.Info("GUI closed")
	return nil
}

func (a *App) buildUI() {
	a.status = widget.NewLabel("Monitoring stopped")
	a.startBtn = widget.NewButtonWithIcon("Start", theme.MediaPlayIcon(), a.start)
	a.stopBtn = widget.NewButtonWithIcon("Stop", theme.MediaStopIcon(), a.stop)
	a.stopBtn.Disable()

	clearBtn := widget.NewButton("Clear log", a.panel.Clear)

	buttons := container.NewHBox(a.startBtn, a.stopBtn, clearBtn)
	content := container.NewBorder(
		container.NewVBox(a.status, buttons), // top
		nil,                                  // bottom
		nil,                                  // left
		nil,                                  // right
		container.NewScroll(a.panel.textArea),
	)

	a.window.SetContent(content)
	a.window.Resize(fyne.NewSize(640, 420))
}

func (a *App) setupSystemTray(desk desktop.App) {
	quit := fyne.NewMenuItem("Quit", func() {
		a.runner.Stop()
		a.fyneApp.Quit()
	})
	quit.IsQuit = true

	menu := fyne.NewMenu("pipdock",
		fyne.NewMenuItem("Minimize", func() {
			a.window.Hide()
		}),
		fyne.NewMenuItem("Show", func() {
			a.window.Show()
		}),
		fyne.NewMenuItem("Restore", func() {
			a.window.Show()
			a.window.RequestFocus()
		}),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Start", a.start),
		fyne.NewMenuItem("Stop", a.stop),
		fyne.NewMenuItemSeparator(),
		quit,
	)
	desk.SetSystemTrayMenu(menu)
	desk.SetSystemTrayIcon(theme.MediaVideoIcon())
}

func (a *App) start() {
	if err := a.runner.Start(); err != nil {
		a.log.Warn("Start ignored", "error", err)
	}
}

func (a *App) stop() {
	a.runner.Stop()
}

func (a *App) onStatus(ev pip.Event) {
	if ev.Running {
		a.status.SetText("Monitoring: waiting for a video in the foreground")
		a.startBtn.Disable()
		a.stopBtn.Enable()
		return
	}

	a.status.SetText(statusText(ev.Result))
	a.startBtn.Enable()
	a.stopBtn.Disable()
}

func statusText(res *pip.Result) string {
	if res == nil {
		return "Monitoring stopped"
	}
	switch res.Outcome {
	case pip.OutcomeActivated:
		return fmt.Sprintf("Docked on %s (%dx%d at %d,%d)",
			monitorLabel(res.Monitor), res.Target.Width, res.Target.Height, res.Target.X, res.Target.Y)
	case pip.OutcomeNoSecondary:
		return "Picture-in-picture opened, no secondary monitor"
	case pip.OutcomeNoPiPWindow:
		return "Picture-in-picture window did not appear"
	default:
		return fmt.Sprintf("Stopped: %s", res.Outcome)
	}
}
