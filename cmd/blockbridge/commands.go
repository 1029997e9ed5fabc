package main

import (
	"context"
	goerrs "errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sessamekesh/blockbridge/pkg/bridge"
	"github.com/sessamekesh/blockbridge/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	flagPosTimeout time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Connect and log server messages until interrupted",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()

		s.logger.Info("Watching server messages, press Ctrl+C to stop")
		<-s.ctx.Done()
		return nil
	},
}

var execCmd = &cobra.Command{
	Use:   "exec <command...>",
	Short: "Run a raw server command",
	Long: `Run a raw server command. Commands that could take the server down or
change who may use it (stop, op, ban, ...) are refused locally.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()

		return s.bridge.ExecuteCommand(strings.Join(args, " "))
	},
}

var chatCmd = &cobra.Command{
	Use:   "chat <message...>",
	Short: "Send a chat message",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()

		return s.bridge.SendChat(strings.Join(args, " "))
	},
}

var tpCmd = &cobra.Command{
	Use:   "tp <x> <y> <z>",
	Short: "Teleport the player (y=0 is the flat-world surface)",
	Args:  cobra.ExactArgs(3),
	RunE: func(_ *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()

		return s.bridge.Teleport(args[0], args[1], args[2])
	},
}

var posCmd = &cobra.Command{
	Use:   "pos",
	Short: "Print the player position in server coordinates",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()

		return printPosition(s.ctx, s.bridge, s.logger, os.Stdout, flagPosTimeout)
	},
}

// printPosition asks for a correlated position and, only when that times out,
// falls back to the cached reporter for mods that do not echo requestId.
func printPosition(ctx context.Context, b *bridge.Bridge, logger *zap.Logger, out io.Writer, fallbackWait time.Duration) error {
	pos, err := b.AwaitPlayerPosition(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		var timeout *errors.RequestTimeout
		if !goerrs.As(err, &timeout) {
			return err
		}

		logger.Warn("Awaited position query timed out, falling back to cached reporter", zap.Error(err))
		b.PlayerPosition()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(fallbackWait):
		}
		pos = b.Cache().PlayerPosition()
	}

	_, err = fmt.Fprintf(out, "%g %g %g\n", pos.X, pos.Y, pos.Z)
	return err
}

func init() {
	posCmd.Flags().DurationVar(&flagPosTimeout, "fallback-wait", 500*time.Millisecond, "How long to wait for an uncorrelated response")
}
