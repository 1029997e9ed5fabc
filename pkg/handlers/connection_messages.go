package handlers

// Raw socket traffic
type InboundFrame struct {
	RecvTimestamp int64
	IsText        bool
	Data          []byte
}

// Connection lifecycle
type StateEvent struct {
	OldState  ConnectionState
	NewState  ConnectionState
	Timestamp int64
	Error     error
}
