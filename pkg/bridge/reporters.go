package bridge

import (
	"github.com/sessamekesh/blockbridge/pkg/coords"
	"github.com/sessamekesh/blockbridge/pkg/message/outbound"
	"go.uber.org/zap"
)

// Reporters fire a query and return immediately with whatever the cache holds,
// which is the answer to the previous query of the same kind. Use the Await*
// helpers for a value that matches this call.

func (b *Bridge) fireQuery(cmd *outbound.Command) {
	if err := b.sendCommand(cmd); err != nil {
		b.log.Debug("Reporter query not sent", zap.String("command", cmd.Name()), zap.Error(err))
	}
}

func playerPosCommand() *outbound.Command {
	return outbound.NewCommand("getPlayerPos").Build()
}

func (b *Bridge) blockAtCommand(x, y, z any) *outbound.Command {
	return withPosition(outbound.NewCommand("getBlock"), b.serverPosition(x, y, z)).Build()
}

func invitationsCommand() *outbound.Command {
	return outbound.NewCommand("getInvitations").Build()
}

func currentWorldCommand() *outbound.Command {
	return outbound.NewCommand("getCurrentWorld").Build()
}

// PlayerPosition is reported in raw server coordinates.
func (b *Bridge) PlayerPosition() coords.Position {
	b.fireQuery(playerPosCommand())
	return b.cache.PlayerPosition()
}

func (b *Bridge) PlayerX() float64 {
	return b.PlayerPosition().X
}

func (b *Bridge) PlayerY() float64 {
	return b.PlayerPosition().Y
}

func (b *Bridge) PlayerZ() float64 {
	return b.PlayerPosition().Z
}

func (b *Bridge) BlockAt(x, y, z any) string {
	b.fireQuery(b.blockAtCommand(x, y, z))
	return b.cache.LastBlockInfo()
}

func (b *Bridge) InvitationCount() int {
	b.fireQuery(invitationsCommand())
	return b.cache.InvitationCount()
}

func (b *Bridge) CurrentWorld() string {
	b.fireQuery(currentWorldCommand())
	return b.cache.CurrentWorld()
}
