package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"workman/app"
	"workman/config"
	"workman/log"
	"workman/session"
)

var (
	version        = "0.1.0"
	shellFlag      string
	scrollbackFlag int
	exportFlag     string
	rootCmd        = &cobra.Command{
		Use:   "workman",
		Short: "workman - a dashboard for git projects, their worktrees and a shell in each.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
				return fmt.Errorf("workman needs an interactive terminal")
			}

			log.Initialize()
			defer log.Close()
			log.InitDebug()
			defer log.CloseDebug()

			cfg := config.LoadConfig()

			// Flags override config
			if shellFlag != "" {
				cfg.Shell = shellFlag
			}
			if scrollbackFlag > 0 {
				cfg.ScrollbackLines = scrollbackFlag
			}

			ctx, stop := signal.NotifyContext(context.Background(), shutdownSignals...)
			defer stop()

			registry := session.NewRegistry(
				session.WithShell(cfg.Shell),
				session.WithScrollback(cfg.ScrollbackLines),
			)
			return app.Run(ctx, app.Options{
				Config:     cfg,
				Save:       config.SaveConfig,
				Registry:   registry,
				ExportPath: exportFlag,
			})
		},
	}

	resetCmd = &cobra.Command{
		Use:   "reset",
		Short: "Forget every project. Worktrees stay on disk.",
		RunE: func(cmd *cobra.Command, args []string) error {
			log.Initialize()
			defer log.Close()

			cfg := config.LoadConfig()
			n := len(cfg.Projects)
			cfg.Projects = nil
			if err := config.SaveConfig(cfg); err != nil {
				return fmt.Errorf("failed to reset config: %w", err)
			}
			fmt.Printf("Removed %d project(s) from the dashboard\n", n)
			return nil
		},
	}

	debugCmd = &cobra.Command{
		Use:   "debug",
		Short: "Print debug information like config paths",
		RunE: func(cmd *cobra.Command, args []string) error {
			log.Initialize()
			defer log.Close()

			cfg := config.LoadConfig()

			configPath, err := config.ConfigPath()
			if err != nil {
				return fmt.Errorf("failed to get config path: %w", err)
			}
			configJson, _ := json.MarshalIndent(cfg, "", "  ")

			fmt.Printf("Config: %s\n%s\n", configPath, configJson)
			fmt.Printf("Log: %s\n", log.LogFileName())
			fmt.Printf("Shell: %s\n", session.ResolveShell(cfg.Shell))

			return nil
		},
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of workman",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("workman version %s\n", version)
		},
	}
)

// shutdownSignals stop the dashboard the same way quitting does, so every shell
// is terminated. SIGHUP arrives when the host terminal is closed.
var shutdownSignals = []os.Signal{syscall.SIGTERM, syscall.SIGHUP}

func init() {
	rootCmd.Flags().StringVarP(&shellFlag, "shell", "s", "",
		"Shell to start in worktrees (defaults to $SHELL, then /bin/sh)")
	rootCmd.Flags().IntVar(&scrollbackFlag, "scrollback", 0,
		"Lines of history kept per shell")
	rootCmd.Flags().StringVar(&exportFlag, "export-path", app.DefaultExportPath,
		"File that Ctrl+L writes the last error log to")

	rootCmd.AddCommand(debugCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(resetCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
