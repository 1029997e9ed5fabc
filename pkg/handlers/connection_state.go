package handlers

// ConnectionState is owned by the transport; everyone else observes it through
// StateEvent or the transport's State() accessor.
type ConnectionState uint8

const (
	ConnectionState_Disconnected ConnectionState = iota
	ConnectionState_Connecting
	ConnectionState_Connected
	ConnectionState_TimedOut
	ConnectionState_Error
)

func (s ConnectionState) String() string {
	switch s {
	case ConnectionState_Disconnected:
		return "disconnected"
	case ConnectionState_Connecting:
		return "connecting"
	case ConnectionState_Connected:
		return "connected"
	case ConnectionState_TimedOut:
		return "timed out"
	case ConnectionState_Error:
		return "error"
	}
	return "unknown"
}
