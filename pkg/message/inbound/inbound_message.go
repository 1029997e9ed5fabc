package inbound

import (
	"bytes"
	"encoding/json"
	goerrs "errors"
	"math"
	"strings"

	"github.com/sessamekesh/blockbridge/pkg/coords"
	"github.com/sessamekesh/blockbridge/pkg/errors"
	"github.com/sessamekesh/blockbridge/pkg/message/legacy"
)

type InboundFormat uint8

const (
	InboundFormat_Structured InboundFormat = iota
	InboundFormat_LegacyCall
)

type InboundMessageType uint8

const (
	InboundMessageType_PlayerPos InboundMessageType = iota
	InboundMessageType_BlockInfo
	InboundMessageType_Invitations
	InboundMessageType_CurrentWorld
	InboundMessageType_Error
	InboundMessageType_Welcome

	InboundMessageType_Unknown
)

func typeNameToMessageType(name string) InboundMessageType {
	switch name {
	case "playerPos":
		return InboundMessageType_PlayerPos
	case "blockInfo":
		return InboundMessageType_BlockInfo
	case "invitations":
		return InboundMessageType_Invitations
	case "currentWorld":
		return InboundMessageType_CurrentWorld
	case "error":
		return InboundMessageType_Error
	case "welcome":
		return InboundMessageType_Welcome
	}

	return InboundMessageType_Unknown
}

// InboundMessage is one of two variants, selected by Format. Structured
// messages fill TypeName/Data/Message; legacy ones fill LegacyCall.
type InboundMessage struct {
	Format      InboundFormat
	MessageType InboundMessageType
	TypeName    string
	Data        json.RawMessage
	Message     string
	RequestId   string

	LegacyCall *legacy.LegacyCall
}

type envelopeWire struct {
	Type      *string         `json:"type"`
	Data      json.RawMessage `json:"data"`
	Message   string          `json:"message"`
	RequestId string          `json:"requestId"`
}

type InboundMessageSerializer struct{}

func (s InboundMessageSerializer) Parse(raw []byte) (*InboundMessage, error) {
	trimmed := bytes.TrimSpace(raw)

	if json.Valid(trimmed) {
		return s.parseStructured(trimmed)
	}

	if call, ok := legacy.Parse(string(trimmed)); ok {
		return &InboundMessage{
			Format:      InboundFormat_LegacyCall,
			MessageType: InboundMessageType_Unknown,
			LegacyCall:  call,
		}, nil
	}

	return nil, &errors.MalformedMessage{
		Raw:    string(raw),
		Reason: goerrs.New("neither JSON nor a legacy call"),
	}
}

func (s InboundMessageSerializer) parseStructured(raw []byte) (*InboundMessage, error) {
	var envelope envelopeWire
	if err := json.Unmarshal(raw, &envelope); err != nil {
		// Valid JSON that is not an object, or has a mistyped field.
		return nil, &errors.MalformedMessage{Raw: string(raw), Reason: err}
	}

	if envelope.Type == nil {
		return nil, &errors.MalformedMessage{
			Raw: string(raw),
			Reason: &errors.MissingFieldError{
				MessageName: "InboundMessage",
				FieldName:   "type",
			},
		}
	}

	return &InboundMessage{
		Format:      InboundFormat_Structured,
		MessageType: typeNameToMessageType(*envelope.Type),
		TypeName:    *envelope.Type,
		Data:        envelope.Data,
		Message:     envelope.Message,
		RequestId:   envelope.RequestId,
	}, nil
}

func (m *InboundMessage) hasData() bool {
	return len(m.Data) > 0 && !bytes.Equal(m.Data, []byte("null"))
}

func (m *InboundMessage) dataObject() (map[string]any, error) {
	if !m.hasData() {
		return nil, &errors.MissingFieldError{MessageName: m.TypeName, FieldName: "data"}
	}

	var obj map[string]any
	if err := json.Unmarshal(m.Data, &obj); err != nil {
		return nil, &errors.InvalidFieldType{MessageName: m.TypeName, FieldName: "data", ExpectedType: "object"}
	}
	return obj, nil
}

func (m *InboundMessage) numberField(obj map[string]any, field string) (float64, error) {
	v, has := obj[field]
	if !has || v == nil {
		return 0, &errors.MissingFieldError{MessageName: m.TypeName, FieldName: "data." + field}
	}
	n, ok := v.(float64)
	if !ok {
		return 0, &errors.InvalidFieldType{MessageName: m.TypeName, FieldName: "data." + field, ExpectedType: "number"}
	}
	return n, nil
}

// PlayerPosition decodes a playerPos payload. All three axes must be numeric.
func (m *InboundMessage) PlayerPosition() (coords.Position, error) {
	obj, err := m.dataObject()
	if err != nil {
		return coords.Position{}, err
	}

	x, err := m.numberField(obj, "x")
	if err != nil {
		return coords.Position{}, err
	}
	y, err := m.numberField(obj, "y")
	if err != nil {
		return coords.Position{}, err
	}
	z, err := m.numberField(obj, "z")
	if err != nil {
		return coords.Position{}, err
	}

	return coords.Position{X: x, Y: y, Z: z}, nil
}

// BlockInfo returns string data as-is and any other JSON value in compact form.
func (m *InboundMessage) BlockInfo() (string, error) {
	if !m.hasData() {
		return "", &errors.MissingFieldError{MessageName: m.TypeName, FieldName: "data"}
	}

	var text string
	if err := json.Unmarshal(m.Data, &text); err == nil {
		return text, nil
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, m.Data); err != nil {
		return "", &errors.InvalidFieldType{MessageName: m.TypeName, FieldName: "data", ExpectedType: "JSON value"}
	}
	return compact.String(), nil
}

func (m *InboundMessage) InvitationCount() (int, error) {
	obj, err := m.dataObject()
	if err != nil {
		return 0, err
	}
	count, err := m.numberField(obj, "count")
	if err != nil {
		return 0, err
	}
	if count < 0 || count > math.MaxInt32 || count != math.Trunc(count) {
		return 0, &errors.InvalidFieldType{MessageName: m.TypeName, FieldName: "data.count", ExpectedType: "non-negative integer"}
	}
	return int(count), nil
}

func (m *InboundMessage) World() (string, error) {
	obj, err := m.dataObject()
	if err != nil {
		return "", err
	}
	v, has := obj["world"]
	if !has || v == nil {
		return "", &errors.MissingFieldError{MessageName: m.TypeName, FieldName: "data.world"}
	}
	world, ok := v.(string)
	if !ok || strings.TrimSpace(world) == "" {
		return "", &errors.InvalidFieldType{MessageName: m.TypeName, FieldName: "data.world", ExpectedType: "non-empty string"}
	}
	return world, nil
}
