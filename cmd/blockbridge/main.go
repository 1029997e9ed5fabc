// blockbridge drives a game server mod over its WebSocket command protocol.
//
// Usage:
//
//	blockbridge watch                 - Connect and log everything the server sends
//	blockbridge exec <command...>     - Run a raw server command (denylist applies)
//	blockbridge chat <message...>     - Send a chat message
//	blockbridge tp <x> <y> <z>        - Teleport the player
//	blockbridge pos                   - Print the player position
//	blockbridge repl                  - Interactive block-command shell
//
// Global flags:
//
//	--config <path>    - Config file (default search: ~/.blockbridge/config.yaml, ./configs/blockbridge.yaml)
//	--endpoint <url>   - Override the server endpoint
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sessamekesh/blockbridge/pkg/bridge"
	"github.com/sessamekesh/blockbridge/pkg/config"
	"github.com/sessamekesh/blockbridge/pkg/handlers"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	flagConfigPath string
	flagEndpoint   string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "blockbridge",
	Short: "Send block-scripting commands to a game server mod",
	Long: `blockbridge speaks the mod's WebSocket protocol: JSON commands out,
typed responses back, and the legacy collaboration calls.

Examples:
  blockbridge watch
  blockbridge exec time set night
  blockbridge tp 0 10 0
  blockbridge repl --endpoint ws://192.168.1.20:3002/ws`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigPath, "config", "", "Path to config file")
	rootCmd.PersistentFlags().StringVar(&flagEndpoint, "endpoint", "", "WebSocket endpoint of the game server mod")

	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(execCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(tpCmd)
	rootCmd.AddCommand(posCmd)
	rootCmd.AddCommand(replCmd)
}

func createLogger() *zap.Logger {
	logger := zap.Must(zap.NewProduction())
	if os.Getenv("APP_ENV") != "production" {
		logger = zap.Must(zap.NewDevelopment())
	}
	return logger
}

type session struct {
	bridge *bridge.Bridge
	logger *zap.Logger
	ctx    context.Context

	release func()
}

func (s *session) Close() {
	s.bridge.Disconnect()
	s.release()
	s.logger.Sync()
}

// openSession loads config, starts the bridge and waits until the socket is open.
func openSession() (*session, error) {
	if err := config.LoadEnvFile(); err != nil {
		return nil, err
	}

	cfg, err := config.Load(flagConfigPath)
	if err != nil {
		return nil, err
	}
	if flagEndpoint != "" {
		cfg.Connection.Endpoint = flagEndpoint
	}

	logger := createLogger()
	bridgeConfig, err := cfg.ToBridgeConfig(logger)
	if err != nil {
		return nil, err
	}

	b, err := bridge.CreateBridge(bridgeConfig)
	if err != nil {
		return nil, err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	go b.Start(ctx)

	s := &session{
		bridge:  b,
		logger:  logger,
		ctx:     ctx,
		release: stop,
	}

	b.Connect(ctx)
	if err := waitConnected(ctx, b); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func waitConnected(ctx context.Context, b *bridge.Bridge) error {
	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()

	for {
		switch state := b.State(); state {
		case handlers.ConnectionState_Connected:
			return nil
		case handlers.ConnectionState_TimedOut, handlers.ConnectionState_Error, handlers.ConnectionState_Disconnected:
			return fmt.Errorf("could not connect to game server (state: %s)", state)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
