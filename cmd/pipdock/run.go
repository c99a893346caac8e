package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"pipdock/internal/app"
	"pipdock/internal/pip"
)

func runGUI() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	s.serve(ctx)
	return app.NewApp(s.runner, s.log).Run()
}

func RunCmd() *cobra.Command {
	var once bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Monitor without a window",
		Long: `Starts monitoring immediately and keeps the control socket open so
'pipdock start', 'stop', 'status' and 'trigger' can drive it. With --once the
process exits as soon as the first run finishes.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHeadless(once)
		},
	}
	cmd.Flags().BoolVar(&once, "once", false, "exit after the first run finishes")
	return cmd
}

func runHeadless(once bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	var (
		mu   sync.Mutex
		last *pip.Result
	)
	s.runner.OnStatus(func(ev pip.Event) {
		if ev.Running {
			return
		}
		mu.Lock()
		last = ev.Result
		mu.Unlock()
	})

	s.serve(ctx)
	if err := s.runner.Start(); err != nil {
		return err
	}

	if !once {
		<-ctx.Done()
		s.log.Info("Shutting down", "reason", context.Cause(ctx))
		return nil
	}

	select {
	case <-s.runner.Done():
	case <-ctx.Done():
		return nil
	}

	mu.Lock()
	defer mu.Unlock()
	if last == nil {
		return nil
	}
	if last.Outcome == pip.OutcomeFailed || last.Outcome == pip.OutcomeNoPiPWindow {
		return fmt.Errorf("run finished: %s", last.Outcome)
	}
	fmt.Println(last.Outcome)
	return nil
}
