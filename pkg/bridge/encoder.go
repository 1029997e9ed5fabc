package bridge

import (
	"github.com/sessamekesh/blockbridge/pkg/errors"
	"github.com/sessamekesh/blockbridge/pkg/message/legacy"
	"github.com/sessamekesh/blockbridge/pkg/message/outbound"
	"go.uber.org/zap"
)

// sendCommand is at-most-once: when the socket is not open the command is
// dropped and *errors.NotConnected returned.
func (b *Bridge) sendCommand(cmd *outbound.Command) error {
	if !b.conn.IsConnected() {
		b.log.Debug("Dropping command, not connected", zap.String("command", cmd.Name()), zap.Stringer("state", b.conn.State()))
		return &errors.NotConnected{State: b.conn.State().String()}
	}

	raw, err := b.serializer.SerializeMessage(&outbound.OutboundMessage{
		MessageType: outbound.OutboundMessageType_Command,
		Command:     cmd,
	})
	if err != nil {
		b.log.Error("Failed to serialize command", zap.String("command", cmd.Name()), zap.Error(err))
		return err
	}

	return b.conn.Send(raw)
}

func (b *Bridge) sendLegacyCall(namespace string, method string, arg any) error {
	argument, err := b.sanitizer.NonEmpty(namespace+"."+method, arg)
	if err != nil {
		b.log.Warn("Refusing legacy call with empty argument", zap.String("namespace", namespace), zap.String("method", method))
		return err
	}

	if !b.conn.IsConnected() {
		b.log.Debug("Dropping legacy call, not connected", zap.String("method", method), zap.Stringer("state", b.conn.State()))
		return &errors.NotConnected{State: b.conn.State().String()}
	}

	raw, err := b.serializer.SerializeMessage(&outbound.OutboundMessage{
		MessageType: outbound.OutboundMessageType_LegacyCall,
		LegacyCall: &legacy.LegacyCall{
			Namespace: namespace,
			Method:    method,
			Argument:  argument,
		},
	})
	if err != nil {
		return err
	}

	return b.conn.Send(raw)
}
