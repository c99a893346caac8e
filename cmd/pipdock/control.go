package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"pipdock/internal/ipc"
	"pipdock/internal/storage"
	"pipdock/pkg/config"
)

// controlCmd forwards one command to the running instance.
func controlCmd(command, short string) *cobra.Command {
	return &cobra.Command{
		Use:   command,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := newLogger(false)
			if err != nil {
				return err
			}
			defer log.Close()

			resp, err := ipc.SendCommand(ipc.SocketPath(), command, log)
			if err != nil {
				return err
			}
			if resp.Status != "success" {
				return fmt.Errorf("%s", resp.Message)
			}
			fmt.Println(resp.Message)
			return nil
		},
	}
}

func HistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent picture-in-picture runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := storage.DefaultPath()
			if err != nil {
				return err
			}
			db, err := storage.Open(path)
			if err != nil {
				return err
			}
			defer db.Close()

			entries, err := db.Recent(limit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Println("No runs recorded yet")
				return nil
			}

			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TIME\tOUTCOME\tMONITOR\tTARGET\tVIDEO")
			for _, a := range entries {
				target := "-"
				if a.Target.Width > 0 {
					target = fmt.Sprintf("%dx%d+%d+%d", a.Target.Width, a.Target.Height, a.Target.X, a.Target.Y)
				}
				outcome := a.Outcome
				if a.Error != "" {
					outcome += " (" + a.Error + ")"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
					a.Timestamp.Local().Format(time.DateTime), outcome, orDash(a.Monitor), target, orDash(a.SourceTitle))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of runs to show")
	return cmd
}

func ConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the configuration",
	}

	var asYAML bool
	printCmd := &cobra.Command{
		Use:   "print",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := newLogger(false)
			if err != nil {
				return err
			}
			defer log.Close()

			cfg, err := config.FindConfig(configPath, log)
			if err != nil {
				return err
			}
			data, err := cfg.Marshal(asYAML)
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		},
	}
	printCmd.Flags().BoolVar(&asYAML, "yaml", false, "print as YAML")

	validateCmd := &cobra.Command{
		Use:   "validate [file]",
		Short: "Check a configuration file without starting pipdock",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := newLogger(false)
			if err != nil {
				return err
			}
			defer log.Close()

			path := configPath
			if len(args) == 1 {
				path = args[0]
			}
			if path == "" {
				if path, err = config.DefaultPath(); err != nil {
					return err
				}
			}

			cfg := config.DefaultConfig(log)
			if err := cfg.LoadFromFile(path, log); err != nil {
				return err
			}
			fmt.Printf("%s is valid\n", path)
			return nil
		},
	}

	cmd.AddCommand(printCmd, validateCmd)
	return cmd
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
