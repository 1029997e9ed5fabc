package outbound

import (
	"encoding/json"
	"math"
	"strconv"

	"github.com/sessamekesh/blockbridge/pkg/errors"
	"github.com/sessamekesh/blockbridge/pkg/message/legacy"
)

type OutboundMessageType uint8

const (
	OutboundMessageType_Command OutboundMessageType = iota
	OutboundMessageType_LegacyCall

	OutboundMessageType_NONE
)

// Command is immutable once built; build it with NewCommand.
type Command struct {
	name      string
	args      map[string]string
	requestId string
}

func (c *Command) Name() string {
	return c.name
}

func (c *Command) RequestId() string {
	return c.requestId
}

// Arg returns a wire argument and whether it was set.
func (c *Command) Arg(key string) (string, bool) {
	v, has := c.args[key]
	return v, has
}

func (c *Command) Args() map[string]string {
	out := make(map[string]string, len(c.args))
	for k, v := range c.args {
		out[k] = v
	}
	return out
}

// WithRequestId returns a copy tagged with a correlation token.
func (c *Command) WithRequestId(requestId string) *Command {
	return &Command{
		name:      c.name,
		args:      c.Args(),
		requestId: requestId,
	}
}

type CommandBuilder struct {
	name string
	args map[string]string
}

func NewCommand(name string) *CommandBuilder {
	return &CommandBuilder{
		name: name,
		args: make(map[string]string),
	}
}

// Arg stores v in its wire form. The protocol is string-typed for every value.
func (b *CommandBuilder) Arg(key string, v any) *CommandBuilder {
	b.args[key] = FormatArg(v)
	return b
}

func (b *CommandBuilder) Build() *Command {
	args := make(map[string]string, len(b.args))
	for k, v := range b.args {
		args[k] = v
	}
	return &Command{
		name: b.name,
		args: args,
	}
}

func FormatArg(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return "0"
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return FormatArg(float64(t))
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(raw)
}

type OutboundMessage struct {
	MessageType OutboundMessageType
	Command     *Command
	LegacyCall  *legacy.LegacyCall
}

type commandWire struct {
	Command   string            `json:"command"`
	Args      map[string]string `json:"args"`
	RequestId string            `json:"requestId,omitempty"`
}

type OutboundMessageSerializer struct{}

func (s OutboundMessageSerializer) serializeCommand(cmd *Command) ([]byte, error) {
	if cmd.name == "" {
		return nil, &errors.MissingFieldError{
			MessageName: "OutboundMessage::Command",
			FieldName:   "Name",
		}
	}

	args := cmd.args
	if args == nil {
		args = map[string]string{}
	}

	return json.Marshal(commandWire{
		Command:   cmd.name,
		Args:      args,
		RequestId: cmd.requestId,
	})
}

func (s OutboundMessageSerializer) SerializeMessage(msg *OutboundMessage) ([]byte, error) {
	switch msg.MessageType {
	case OutboundMessageType_Command:
		if msg.Command == nil {
			return nil, &errors.MissingFieldError{
				MessageName: "OutboundMessage",
				FieldName:   "Command",
			}
		}
		return s.serializeCommand(msg.Command)
	case OutboundMessageType_LegacyCall:
		if msg.LegacyCall == nil {
			return nil, &errors.MissingFieldError{
				MessageName: "OutboundMessage",
				FieldName:   "LegacyCall",
			}
		}
		text, err := msg.LegacyCall.Format()
		if err != nil {
			return nil, err
		}
		return []byte(text), nil
	}

	return nil, &errors.InvalidEnumValue{
		EnumName: "OutboundMessage::MessageType",
		IntValue: uint8(msg.MessageType),
	}
}
