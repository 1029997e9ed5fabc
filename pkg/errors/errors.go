package errors

import (
	"fmt"
	"time"
)

type NotConnected struct {
	State string
}

func (e *NotConnected) Error() string {
	return fmt.Sprintf("Cannot send message while connection state is %s", e.State)
}

type ConnectTimeout struct {
	Endpoint string
	Timeout  time.Duration
}

func (e *ConnectTimeout) Error() string {
	return fmt.Sprintf("No open event from %s within %s", e.Endpoint, e.Timeout)
}

type CommandRejected struct {
	Command string
	Token   string
}

func (e *CommandRejected) Error() string {
	return fmt.Sprintf("Command '%s' is denylisted (token=%s)", e.Command, e.Token)
}

type MalformedMessage struct {
	Raw    string
	Reason error
}

func (e *MalformedMessage) Error() string {
	return fmt.Sprintf("Malformed inbound message (%d bytes): %v", len(e.Raw), e.Reason)
}

func (e *MalformedMessage) Unwrap() error {
	return e.Reason
}

type InvalidEnumValue struct {
	EnumName string
	IntValue uint8
}

func (e *InvalidEnumValue) Error() string {
	return fmt.Sprintf("Invalid enum value=%d (enum: %s)", e.IntValue, e.EnumName)
}

type MissingFieldError struct {
	MessageName string
	FieldName   string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("Missing field %s in message type %s", e.FieldName, e.MessageName)
}

type InvalidFieldType struct {
	MessageName  string
	FieldName    string
	ExpectedType string
}

func (e *InvalidFieldType) Error() string {
	return fmt.Sprintf("Field %s in message type %s is not a %s", e.FieldName, e.MessageName, e.ExpectedType)
}

type EmptyArgument struct {
	Operation string
}

func (e *EmptyArgument) Error() string {
	return fmt.Sprintf("Operation %s requires a non-empty argument", e.Operation)
}

type RequestTimeout struct {
	RequestId string
	Command   string
	Timeout   time.Duration
}

func (e *RequestTimeout) Error() string {
	return fmt.Sprintf("No response to %s (requestId=%s) within %s", e.Command, e.RequestId, e.Timeout)
}

type ServerError struct {
	Command string
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("Server rejected %s: %s", e.Command, e.Message)
}

type UnexpectedResponse struct {
	Command  string
	TypeName string
}

func (e *UnexpectedResponse) Error() string {
	return fmt.Sprintf("Unexpected response type '%s' to %s", e.TypeName, e.Command)
}
