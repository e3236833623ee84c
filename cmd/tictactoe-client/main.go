package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/lox/tictactoe-client/internal/client"
	"github.com/lox/tictactoe-client/internal/tui"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version       kong.VersionFlag `short:"v" help:"Show version"`
	Config        string           `short:"c" default:"tictactoe-client.hcl" help:"Path to HCL configuration file"`
	Host          string           `short:"H" env:"TICTACTOE_HOST" help:"Server host, e.g. localhost:8080 (overrides config)"`
	Secure        bool             `help:"Use wss:// for bare hosts (overrides config)"`
	LogLevel      string           `short:"l" help:"Log level: debug, info, warn or error (overrides config)"`
	LogFile       string           `help:"Log file path (overrides config)"`
	NoColor       bool             `help:"Disable colours"`
	NoMouse       bool             `help:"Disable mouse support"`
	IndexAsString bool             `help:"Send move indexes as strings for older servers"`
}

// loadConfig reads the config file and applies command line overrides.
func (c *CLI) loadConfig() (*client.ClientConfig, error) {
	cfg, err := client.LoadClientConfig(c.Config)
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}

	if c.Host != "" {
		cfg.Server.Host = c.Host
	}
	if c.Secure {
		cfg.Server.Secure = true
	}
	if c.LogLevel != "" {
		cfg.UI.LogLevel = c.LogLevel
	}
	if c.LogFile != "" {
		cfg.UI.LogFile = c.LogFile
	}
	if c.NoColor {
		cfg.UI.Color = false
	}
	if c.NoMouse {
		cfg.UI.Mouse = false
	}
	if c.IndexAsString {
		cfg.Protocol.IndexAsString = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newLogger writes to w at the configured level; the terminal belongs to
// the TUI.
func newLogger(w io.Writer, level string) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{ReportTimestamp: true})
	parsed, err := log.ParseLevel(level)
	if err != nil {
		parsed = log.InfoLevel
	}
	logger.SetLevel(parsed)
	return logger
}

func (c *CLI) Run() error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}

	logFile, err := os.OpenFile(cfg.UI.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = logFile.Close() }()

	logger := newLogger(logFile, cfg.UI.LogLevel)
	logger.Info("Starting tictactoe client",
		"version", version,
		"host", cfg.Server.Host,
		"config", c.Config)

	tui.ConfigureColor(cfg.UI.Color)

	wsClient, err := client.New(cfg.Options(), logger)
	if err != nil {
		return err
	}

	// Ctrl+C while dialing cancels the dial; once the TUI runs it owns the keys.
	dialCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = wsClient.Connect(dialCtx)
	stop()
	if err != nil {
		return err
	}
	defer func() { _ = wsClient.Close() }()

	model := tui.NewTUIModel(wsClient, logger)
	model.AddEvent("Connected to " + wsClient.Endpoint())

	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if cfg.UI.Mouse {
		opts = append(opts, tea.WithMouseCellMotion())
	}

	if _, err := tea.NewProgram(model, opts...).Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("tictactoe-client"),
		kong.Description("Terminal client for a two-player tic-tac-toe server"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
