package bridge

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sessamekesh/blockbridge/pkg/coords"
	"github.com/sessamekesh/blockbridge/pkg/errors"
	"github.com/sessamekesh/blockbridge/pkg/message/inbound"
	"github.com/sessamekesh/blockbridge/pkg/message/outbound"
	"go.uber.org/zap"
)

// Query sends cmd tagged with a fresh requestId and waits for the response
// that echoes it. Start must be running for the response to be seen.
func (b *Bridge) Query(ctx context.Context, cmd *outbound.Command) (*inbound.InboundMessage, error) {
	if !b.conn.IsConnected() {
		return nil, &errors.NotConnected{State: b.conn.State().String()}
	}

	requestId := uuid.NewString()
	response, err := b.pending.Register(requestId, cmd.Name(), b.getNowTime())
	if err != nil {
		return nil, err
	}

	log := b.log.With(zap.String("command", cmd.Name()), zap.String("requestId", requestId))

	if err := b.sendCommand(cmd.WithRequestId(requestId)); err != nil {
		b.pending.Remove(requestId)
		return nil, err
	}

	timer := time.NewTimer(b.config.RequestTimeout)
	defer timer.Stop()

	select {
	case msg, ok := <-response:
		if !ok {
			log.Debug("Query cancelled by connection loss")
			return nil, &errors.NotConnected{State: b.conn.State().String()}
		}
		if msg.MessageType == inbound.InboundMessageType_Error {
			return nil, &errors.ServerError{Command: cmd.Name(), Message: msg.Message}
		}
		return msg, nil
	case <-timer.C:
		b.pending.Remove(requestId)
		log.Warn("Query timed out", zap.Duration("timeout", b.config.RequestTimeout))
		return nil, &errors.RequestTimeout{
			RequestId: requestId,
			Command:   cmd.Name(),
			Timeout:   b.config.RequestTimeout,
		}
	case <-ctx.Done():
		b.pending.Remove(requestId)
		return nil, ctx.Err()
	}
}

func (b *Bridge) queryExpecting(ctx context.Context, cmd *outbound.Command, want inbound.InboundMessageType) (*inbound.InboundMessage, error) {
	msg, err := b.Query(ctx, cmd)
	if err != nil {
		return nil, err
	}
	if msg.Format != inbound.InboundFormat_Structured || msg.MessageType != want {
		return nil, &errors.UnexpectedResponse{Command: cmd.Name(), TypeName: msg.TypeName}
	}
	return msg, nil
}

func (b *Bridge) AwaitPlayerPosition(ctx context.Context) (coords.Position, error) {
	msg, err := b.queryExpecting(ctx, playerPosCommand(), inbound.InboundMessageType_PlayerPos)
	if err != nil {
		return coords.Position{}, err
	}
	return msg.PlayerPosition()
}

func (b *Bridge) AwaitBlockAt(ctx context.Context, x, y, z any) (string, error) {
	msg, err := b.queryExpecting(ctx, b.blockAtCommand(x, y, z), inbound.InboundMessageType_BlockInfo)
	if err != nil {
		return "", err
	}
	return msg.BlockInfo()
}

func (b *Bridge) AwaitInvitationCount(ctx context.Context) (int, error) {
	msg, err := b.queryExpecting(ctx, invitationsCommand(), inbound.InboundMessageType_Invitations)
	if err != nil {
		return 0, err
	}
	return msg.InvitationCount()
}

func (b *Bridge) AwaitCurrentWorld(ctx context.Context) (string, error) {
	msg, err := b.queryExpecting(ctx, currentWorldCommand(), inbound.InboundMessageType_CurrentWorld)
	if err != nil {
		return "", err
	}
	return msg.World()
}
