package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sessamekesh/blockbridge/pkg/bridge"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const replHelp = `commands:
  place <block> <x> <y> <z>          remove <x> <y> <z>
  fill <block> <x1> <y1> <z1> <x2> <y2> <z2>
  tp <x> <y> <z>                     spawn
  move <direction> [steps]           chat <message...>
  exec <command...>                  time <day|night|...>
  weather <clear|rain|thunder>       summon <entity> <x> <y> <z>
  give <item> [count]                mode <gamemode>
  invite <player>                    accept <code>
  openworld <name>
  pos | block <x> <y> <z> | invites | world     (reporters, previous value)
  await-pos | await-world                       (wait for this query's answer)
  state | help | quit`

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Interactive shell over the block command surface",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()

		// Piped scripts get no banner or prompts.
		interactive := term.IsTerminal(int(os.Stdin.Fd()))
		if interactive {
			fmt.Println(replHelp)
		}
		return runRepl(s.ctx, s.bridge, os.Stdin, os.Stdout, interactive)
	},
}

func runRepl(ctx context.Context, b *bridge.Bridge, in io.Reader, out io.Writer, prompt bool) error {
	scanner := bufio.NewScanner(in)
	for {
		if prompt {
			fmt.Fprint(out, "> ")
		}
		if !scanner.Scan() {
			return scanner.Err()
		}
		if ctx.Err() != nil {
			return nil
		}

		quit, err := runLine(ctx, b, scanner.Text(), out)
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
		}
		if quit {
			return nil
		}
	}
}

// arg returns the i-th argument or nil, so missing values take command defaults.
func arg(args []string, i int) any {
	if i < len(args) {
		return args[i]
	}
	return nil
}

func runLine(ctx context.Context, b *bridge.Bridge, line string, out io.Writer) (bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]
	rest := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), fields[0]))

	switch cmd {
	case "quit", "exit":
		return true, nil
	case "help":
		fmt.Fprintln(out, replHelp)
		return false, nil
	case "state":
		fmt.Fprintf(out, "%s %+v\n", b.State(), b.Cache().Snapshot())
		return false, nil
	case "place":
		return false, b.PlaceBlock(arg(args, 0), arg(args, 1), arg(args, 2), arg(args, 3))
	case "remove":
		return false, b.RemoveBlock(arg(args, 0), arg(args, 1), arg(args, 2))
	case "fill":
		return false, b.FillBlocks(arg(args, 0), arg(args, 1), arg(args, 2), arg(args, 3), arg(args, 4), arg(args, 5), arg(args, 6))
	case "tp":
		return false, b.Teleport(arg(args, 0), arg(args, 1), arg(args, 2))
	case "spawn":
		return false, b.TeleportToSpawn()
	case "move":
		return false, b.MovePlayer(arg(args, 0), arg(args, 1))
	case "chat":
		return false, b.SendChat(rest)
	case "exec":
		return false, b.ExecuteCommand(rest)
	case "time":
		return false, b.SetTime(arg(args, 0))
	case "weather":
		return false, b.SetWeather(arg(args, 0))
	case "summon":
		return false, b.SummonEntity(arg(args, 0), arg(args, 1), arg(args, 2), arg(args, 3))
	case "give":
		return false, b.GiveItem(arg(args, 0), arg(args, 1))
	case "mode":
		return false, b.SetGameMode(arg(args, 0))
	case "invite":
		return false, b.SendInvitation(rest)
	case "accept":
		return false, b.AcceptInvitation(rest)
	case "openworld":
		return false, b.OpenWorld(rest)
	case "pos":
		pos := b.PlayerPosition()
		fmt.Fprintf(out, "%g %g %g\n", pos.X, pos.Y, pos.Z)
		return false, nil
	case "block":
		fmt.Fprintln(out, b.BlockAt(arg(args, 0), arg(args, 1), arg(args, 2)))
		return false, nil
	case "invites":
		fmt.Fprintln(out, b.InvitationCount())
		return false, nil
	case "world":
		fmt.Fprintln(out, b.CurrentWorld())
		return false, nil
	case "await-pos":
		pos, err := b.AwaitPlayerPosition(ctx)
		if err != nil {
			return false, err
		}
		fmt.Fprintf(out, "%g %g %g\n", pos.X, pos.Y, pos.Z)
		return false, nil
	case "await-world":
		world, err := b.AwaitCurrentWorld(ctx)
		if err != nil {
			return false, err
		}
		fmt.Fprintln(out, world)
		return false, nil
	}

	return false, fmt.Errorf("unknown command %q (try help)", cmd)
}
