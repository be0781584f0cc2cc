package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harrylevesque/schoolportal/internal/config"
	"github.com/harrylevesque/schoolportal/internal/gateway"
	"github.com/harrylevesque/schoolportal/internal/local"
	"github.com/harrylevesque/schoolportal/internal/portal"
	"github.com/harrylevesque/schoolportal/internal/utils"
)

var (
	serverFlag  string
	dirFlag     string
	offlineFlag bool
	verbose     bool

	app *portal.Portal
)

var rootCmd = &cobra.Command{
	Use:           "portal",
	Short:         "School portal client",
	Long:          `Browse and manage the school portal. Falls back to local data when the API is unreachable.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		p, err := buildPortal()
		if err != nil {
			return err
		}
		app = p
		return nil
	},
}

func buildPortal() (*portal.Portal, error) {
	cfg, err := config.LoadClient()
	if err != nil {
		return nil, err
	}
	if serverFlag != "" {
		cfg.Server = serverFlag
	}
	if dirFlag != "" {
		cfg.DataDir = dirFlag
	}
	if cfg.DataDir == "" {
		cfg.DataDir = utils.GetClientDataDir()
	}
	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}

	logger, _, err := utils.NewLogger(level, "text", "")
	if err != nil {
		return nil, err
	}

	persisted, err := local.NewFileStorage(filepath.Join(cfg.DataDir, "storage.json"))
	if err != nil {
		return nil, err
	}
	session, err := local.NewFileStorage(filepath.Join(cfg.DataDir, "session.json"))
	if err != nil {
		return nil, err
	}

	var gw *gateway.Client
	if !offlineFlag {
		gw = gateway.NewClient(gateway.Config{
			BaseURL:        cfg.Server,
			ProbeTimeout:   cfg.ProbeTimeout,
			RequestTimeout: cfg.RequestTimeout,
		}, nil)
	}
	return portal.New(gw, persisted, session, portal.Options{
		Logger: logger,
		OnFallback: func(ev portal.FallbackEvent) {
			if verbose {
				color.Yellow("(%s: using local data, %s)", ev.Operation, ev.Reason)
			}
		},
	}), nil
}

func ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

func main() {
	rootCmd.PersistentFlags().StringVar(&serverFlag, "server", "", "API base URL (default $PORTAL_SERVER or http://localhost:3000)")
	rootCmd.PersistentFlags().StringVar(&dirFlag, "dir", "", "directory for local data (default ~/.schoolportal)")
	rootCmd.PersistentFlags().BoolVar(&offlineFlag, "offline", false, "never contact the API")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log fallbacks and requests")

	if err := rootCmd.Execute(); err != nil {
		color.New(color.FgRed).Fprintln(os.Stderr, messageOf(err))
		os.Exit(1)
	}
}

func messageOf(err error) string {
	msg := utils.MessageOf(err, "")
	if msg == "" {
		return "Error: " + err.Error()
	}
	return msg
}

func printSource(src portal.Source) {
	if src != portal.SourceRemote {
		color.New(color.Faint).Printf("[%s]\n", src)
	}
}

func field(label, value string) {
	if strings.TrimSpace(value) == "" {
		return
	}
	fmt.Printf("  %-12s %s\n", label+":", value)
}
