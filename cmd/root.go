// Package cmd wires the steamshelf command line.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/lepinkainen/humanlog"
	"github.com/spf13/viper"

	"github.com/lepinkainen/steamshelf/internal/config"
)

const (
	appName        = "steamshelf"
	appDescription = "Browse a Steam game library through a small Steam Web API proxy."
	debugLogFile   = "steamshelf.log"
)

// Environment variables bound to config keys. Everything else comes from
// config.yaml or flags.
var envBindings = map[string]string{
	"server.port":            "PORT",
	"server.allowed_origins": "ALLOWED_ORIGINS",
}

var (
	stdout   io.Writer = os.Stdout
	logLevel           = slog.LevelInfo
)

// CLI represents the complete command structure for steamshelf
type CLI struct {
	Debug bool `help:"Enable debug logging"`

	Serve  ServeCmd  `cmd:"" help:"Run the Steam Web API proxy"`
	Browse BrowseCmd `cmd:"" help:"Browse a Steam game library through the proxy"`
}

func newParser(cli *CLI, options ...kong.Option) (*kong.Kong, error) {
	options = append([]kong.Option{
		kong.Name(appName),
		kong.Description(appDescription),
		kong.UsageOnError(),
	}, options...)
	return kong.New(cli, options...)
}

// Execute runs the Kong-based CLI
func Execute() {
	var cli CLI
	parser, err := newParser(&cli)
	if err != nil {
		panic(err)
	}

	ctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	initLogging(os.Stdout, cli.Debug)
	if err := initConfig(); err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	if err := ctx.Run(); err != nil {
		slog.Error("Command failed", "error", err)
		os.Exit(1)
	}
}

func initLogging(w io.Writer, debug bool) {
	logLevel = slog.LevelInfo
	if debug {
		logLevel = slog.LevelDebug
	}

	handler := humanlog.NewHandler(w, &humanlog.Options{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}

// redirectLogging moves logging off the terminal while the browser owns
// it: into debugLogFile with --debug, nowhere otherwise.
func redirectLogging() (func(), error) {
	previous := slog.Default()
	restore := func() { slog.SetDefault(previous) }

	if logLevel > slog.LevelDebug {
		slog.SetDefault(slog.New(humanlog.NewHandler(io.Discard, &humanlog.Options{Level: logLevel})))
		return restore, nil
	}

	f, err := os.OpenFile(debugLogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open debug log: %w", err)
	}
	slog.SetDefault(slog.New(humanlog.NewHandler(f, &humanlog.Options{Level: logLevel})))
	return func() {
		restore()
		_ = f.Close()
	}, nil
}

// initConfig loads .env, binds the environment, reads an optional
// config.yaml and fills the config package.
func initConfig() error {
	if err := godotenv.Load(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			slog.Warn("Failed to load .env file", "error", err)
		}
	} else {
		slog.Debug("Loaded .env file")
	}

	config.SetDefaults()

	for key, env := range envBindings {
		if err := viper.BindEnv(key, env); err != nil {
			return fmt.Errorf("bind %s: %w", env, err)
		}
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("read config file: %w", err)
		}
		slog.Debug("Config file not found, using defaults and environment")
	}

	config.InitConfig()
	return nil
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
