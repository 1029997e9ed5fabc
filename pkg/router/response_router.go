package router

import (
	"fmt"

	"github.com/sessamekesh/blockbridge/internal"
	"github.com/sessamekesh/blockbridge/pkg/message/inbound"
	"github.com/sessamekesh/blockbridge/pkg/state"
	"go.uber.org/zap"
)

type ResponseRouterParams struct {
	Writer *state.ClientStateWriter

	// Optional, correlated responses are not resolved without one
	Pending *internal.PendingRequestStore

	Logger *zap.Logger
}

// ResponseRouter is the single writer of the client state cache. HandleMessage
// is meant to be called from one goroutine.
type ResponseRouter struct {
	writer     *state.ClientStateWriter
	pending    *internal.PendingRequestStore
	serializer inbound.InboundMessageSerializer

	log *zap.Logger
}

func CreateResponseRouter(params ResponseRouterParams) (*ResponseRouter, error) {
	if params.Writer == nil {
		return nil, fmt.Errorf("response router requires a state writer")
	}

	logger := params.Logger
	if logger == nil {
		logger = zap.Must(zap.NewDevelopment())
	}

	return &ResponseRouter{
		writer:     params.Writer,
		pending:    params.Pending,
		serializer: inbound.InboundMessageSerializer{},
		log:        logger.With(zap.String("component", "ResponseRouter")),
	}, nil
}

// HandleMessage parses one inbound frame and applies it to the cache. Bad
// input is logged and returned, never panicked on.
func (r *ResponseRouter) HandleMessage(raw []byte) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			r.log.Error("Recovered from panic while handling message", zap.Any("panic", recovered), zap.ByteString("raw", raw))
			err = fmt.Errorf("panic while handling message: %v", recovered)
		}
	}()

	msg, parseErr := r.serializer.Parse(raw)
	if parseErr != nil {
		r.log.Warn("Dropping malformed message", zap.ByteString("raw", raw), zap.Error(parseErr))
		return parseErr
	}

	if msg.Format == inbound.InboundFormat_LegacyCall {
		r.log.Info("Received legacy call",
			zap.String("namespace", msg.LegacyCall.Namespace),
			zap.String("method", msg.LegacyCall.Method),
			zap.String("argument", msg.LegacyCall.Argument))
		return nil
	}

	handleErr := r.handleStructured(msg)
	if handleErr != nil {
		r.log.Warn("Ignoring message with unexpected shape", zap.String("type", msg.TypeName), zap.Error(handleErr))
	}

	r.resolvePending(msg)
	return handleErr
}

func (r *ResponseRouter) handleStructured(msg *inbound.InboundMessage) error {
	switch msg.MessageType {
	case inbound.InboundMessageType_PlayerPos:
		pos, err := msg.PlayerPosition()
		if err != nil {
			return err
		}
		r.writer.SetPlayerPosition(pos)
		r.log.Debug("Updated player position", zap.Float64("x", pos.X), zap.Float64("y", pos.Y), zap.Float64("z", pos.Z))
	case inbound.InboundMessageType_BlockInfo:
		info, err := msg.BlockInfo()
		if err != nil {
			return err
		}
		r.writer.SetLastBlockInfo(info)
	case inbound.InboundMessageType_Invitations:
		count, err := msg.InvitationCount()
		if err != nil {
			return err
		}
		r.writer.SetInvitationCount(count)
	case inbound.InboundMessageType_CurrentWorld:
		world, err := msg.World()
		if err != nil {
			return err
		}
		r.writer.SetCurrentWorld(world)
	case inbound.InboundMessageType_Error:
		r.log.Warn("Server reported an error", zap.String("message", msg.Message))
	case inbound.InboundMessageType_Welcome:
		r.log.Info("Server welcome", zap.String("message", msg.Message))
	default:
		r.log.Info("Unhandled message type", zap.String("type", msg.TypeName))
	}

	return nil
}

func (r *ResponseRouter) resolvePending(msg *inbound.InboundMessage) {
	if r.pending == nil || msg.RequestId == "" {
		return
	}

	if err := r.pending.Resolve(msg.RequestId, msg); err != nil {
		// Late answer to a query that already timed out, or an id we never sent.
		r.log.Debug("No pending request for response", zap.String("requestId", msg.RequestId), zap.Error(err))
	}
}
