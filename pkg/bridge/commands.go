package bridge

import (
	"strings"

	"github.com/sessamekesh/blockbridge/pkg/coords"
	"github.com/sessamekesh/blockbridge/pkg/errors"
	"github.com/sessamekesh/blockbridge/pkg/message/outbound"
	utils "github.com/sessamekesh/blockbridge/pkg/util"
	"go.uber.org/zap"
)

// Block arguments arrive loosely typed from the scripting runtime, so every
// entry point takes `any` and sanitizes before encoding.

const (
	DefaultBlock     = "stone"
	DefaultEntity    = "pig"
	DefaultItem      = "diamond"
	DefaultDirection = "forward"
	DefaultTime      = "day"
	DefaultWeather   = "clear"
	DefaultGameMode  = "creative"
)

var moveDirections = []string{"forward", "back", "left", "right", "up", "down"}

func (b *Bridge) serverPosition(x, y, z any) coords.Position {
	return b.config.WorldScheme.ToServer(coords.Position{
		X: b.sanitizer.Number(x, 0),
		Y: b.sanitizer.Number(y, 0),
		Z: b.sanitizer.Number(z, 0),
	})
}

// nameArg is for identifiers like block and item names, where blank means default.
func (b *Bridge) nameArg(v any, fallback string) string {
	name := strings.TrimSpace(b.sanitizer.String(v, fallback))
	if name == "" {
		return fallback
	}
	return name
}

func withPosition(builder *outbound.CommandBuilder, pos coords.Position) *outbound.CommandBuilder {
	return builder.Arg("x", pos.X).Arg("y", pos.Y).Arg("z", pos.Z)
}

func (b *Bridge) PlaceBlock(block, x, y, z any) error {
	return b.sendCommand(withPosition(
		outbound.NewCommand("placeBlock").Arg("block", b.nameArg(block, DefaultBlock)),
		b.serverPosition(x, y, z)).Build())
}

func (b *Bridge) RemoveBlock(x, y, z any) error {
	return b.sendCommand(withPosition(outbound.NewCommand("removeBlock"), b.serverPosition(x, y, z)).Build())
}

func (b *Bridge) FillBlocks(block, x1, y1, z1, x2, y2, z2 any) error {
	from := b.serverPosition(x1, y1, z1)
	to := b.serverPosition(x2, y2, z2)
	return b.sendCommand(outbound.NewCommand("fillBlocks").
		Arg("block", b.nameArg(block, DefaultBlock)).
		Arg("x1", from.X).Arg("y1", from.Y).Arg("z1", from.Z).
		Arg("x2", to.X).Arg("y2", to.Y).Arg("z2", to.Z).
		Build())
}

func (b *Bridge) Teleport(x, y, z any) error {
	return b.sendCommand(withPosition(outbound.NewCommand("teleport"), b.serverPosition(x, y, z)).Build())
}

// TeleportToSpawn uses absolute coordinates and skips the world scheme.
func (b *Bridge) TeleportToSpawn() error {
	return b.sendCommand(withPosition(outbound.NewCommand("teleport"), coords.Clamp(coords.Spawn)).Build())
}

func (b *Bridge) MovePlayer(direction, steps any) error {
	dir := strings.ToLower(b.nameArg(direction, DefaultDirection))
	if !utils.Contains(dir, moveDirections) {
		b.log.Warn("Unknown move direction, using default", zap.String("direction", dir))
		dir = DefaultDirection
	}

	n := b.sanitizer.Integer(steps, 1)
	if n < 1 {
		n = 1
	}

	return b.sendCommand(outbound.NewCommand("movePlayer").Arg("direction", dir).Arg("steps", n).Build())
}

func (b *Bridge) SendChat(message any) error {
	return b.sendCommand(outbound.NewCommand("chat").Arg("message", b.sanitizer.Message(message)).Build())
}

// ExecuteCommand forwards a raw server command. Denylisted commands are never
// sent; the user gets a chat warning and *errors.CommandRejected comes back.
func (b *Bridge) ExecuteCommand(raw any) error {
	command := strings.TrimSpace(b.sanitizer.String(raw, ""))
	if command == "" {
		return &errors.EmptyArgument{Operation: "executeCommand"}
	}

	if err := b.denylist.Check(command); err != nil {
		b.log.Warn("Blocked denylisted command", zap.String("command", command), zap.Error(err))
		if rejected, ok := err.(*errors.CommandRejected); ok {
			if echoErr := b.SendChat("Command '" + rejected.Token + "' is not allowed"); echoErr != nil {
				b.log.Debug("Could not echo rejection to chat", zap.Error(echoErr))
			}
		}
		return err
	}

	return b.sendCommand(outbound.NewCommand("executeCommand").Arg("command", command).Build())
}

func (b *Bridge) SetTime(time any) error {
	return b.sendCommand(outbound.NewCommand("setTime").Arg("time", b.nameArg(time, DefaultTime)).Build())
}

func (b *Bridge) SetWeather(weather any) error {
	return b.sendCommand(outbound.NewCommand("setWeather").Arg("weather", b.nameArg(weather, DefaultWeather)).Build())
}

func (b *Bridge) SummonEntity(entity, x, y, z any) error {
	return b.sendCommand(withPosition(
		outbound.NewCommand("summonEntity").Arg("entity", b.nameArg(entity, DefaultEntity)),
		b.serverPosition(x, y, z)).Build())
}

func (b *Bridge) GiveItem(item, count any) error {
	n := b.sanitizer.Integer(count, 1)
	if n < 1 {
		n = 1
	}
	return b.sendCommand(outbound.NewCommand("giveItem").
		Arg("item", b.nameArg(item, DefaultItem)).
		Arg("count", n).
		Build())
}

func (b *Bridge) SetGameMode(mode any) error {
	return b.sendCommand(outbound.NewCommand("setGameMode").Arg("mode", b.nameArg(mode, DefaultGameMode)).Build())
}
