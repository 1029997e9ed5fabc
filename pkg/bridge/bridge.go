package bridge

import (
	"context"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sessamekesh/blockbridge/internal"
	"github.com/sessamekesh/blockbridge/pkg/coords"
	"github.com/sessamekesh/blockbridge/pkg/handlers"
	"github.com/sessamekesh/blockbridge/pkg/message/outbound"
	"github.com/sessamekesh/blockbridge/pkg/router"
	"github.com/sessamekesh/blockbridge/pkg/state"
	"github.com/sessamekesh/blockbridge/pkg/transport"
	"github.com/sessamekesh/blockbridge/pkg/validate"
	"go.uber.org/zap"
)

const (
	DefaultRequestTimeout     = 10 * time.Second
	DefaultMaxPendingRequests = 64
)

// Connection is the slice of the transport the bridge depends on.
type Connection interface {
	Connect(ctx context.Context) bool
	IsConnected() bool
	State() handlers.ConnectionState
	Send(data []byte) error
	Close() error
}

type BridgeConfig struct {
	Endpoint       string
	ConnectTimeout time.Duration

	WorldScheme      coords.WorldScheme
	MaxMessageLength int
	// Added to validate.DefaultDeniedCommands, which are always denied
	ExtraDeniedCommands []string

	RequestTimeout     time.Duration
	MaxPendingRequests int

	IncomingMessageBufferLength int
	MaxReadMessageSize          int64

	// Optional, websocket.DefaultDialer otherwise
	Dialer *websocket.Dialer

	Logger *zap.Logger
}

// Bridge turns block invocations into server commands and server responses
// into reporter values. Commands may be issued from any goroutine; inbound
// processing happens on the goroutine running Start.
type Bridge struct {
	config BridgeConfig

	conn    Connection
	cache   *state.ClientStateCache
	router  *router.ResponseRouter
	pending *internal.PendingRequestStore

	sanitizer  *validate.Sanitizer
	denylist   *validate.Denylist
	serializer outbound.OutboundMessageSerializer

	incomingFrames <-chan handlers.InboundFrame
	stateChanges   <-chan handlers.StateEvent

	startTime time.Time
	log       *zap.Logger
}

func CreateBridge(config BridgeConfig) (*Bridge, error) {
	logger := config.Logger
	if logger == nil {
		logger = zap.Must(zap.NewDevelopment())
	}

	incomingMessageBufferLength := 256
	if config.IncomingMessageBufferLength > 0 {
		incomingMessageBufferLength = config.IncomingMessageBufferLength
	}
	if config.RequestTimeout <= 0 {
		config.RequestTimeout = DefaultRequestTimeout
	}
	if config.MaxPendingRequests <= 0 {
		config.MaxPendingRequests = DefaultMaxPendingRequests
	}
	if config.WorldScheme == coords.WorldScheme_NONE {
		config.WorldScheme = coords.WorldScheme_Flat
	}

	incomingFrames := make(chan handlers.InboundFrame, incomingMessageBufferLength)
	stateChanges := make(chan handlers.StateEvent, 32)

	b := &Bridge{
		config:         config,
		incomingFrames: incomingFrames,
		stateChanges:   stateChanges,
		startTime:      time.Now(),
		log:            logger.With(zap.String("component", "Bridge")),
	}

	conn, err := transport.CreateWebsocketConnection(&handlers.ConnectionHandler{
		Name:                 "game-server",
		GetNowTimestamp:      b.getNowTime,
		IncomingFrameChannel: incomingFrames,
		StateChangeChannel:   stateChanges,
	}, transport.WebsocketConnectionParams{
		Endpoint:           config.Endpoint,
		ConnectTimeout:     config.ConnectTimeout,
		MaxReadMessageSize: config.MaxReadMessageSize,
		Dialer:             config.Dialer,
		Logger:             logger,
	})
	if err != nil {
		return nil, err
	}
	b.conn = conn

	cache, writer := state.CreateClientStateCache()
	b.cache = cache
	b.pending = internal.CreatePendingRequestStore(config.MaxPendingRequests)

	b.router, err = router.CreateResponseRouter(router.ResponseRouterParams{
		Writer:  writer,
		Pending: b.pending,
		Logger:  logger,
	})
	if err != nil {
		return nil, err
	}

	b.sanitizer = validate.CreateSanitizer(validate.SanitizerParams{
		MaxMessageLength: config.MaxMessageLength,
		Logger:           logger,
	})
	b.denylist = validate.CreateDenylist(config.ExtraDeniedCommands)

	return b, nil
}

func (b *Bridge) getNowTime() int64 {
	return time.Since(b.startTime).Microseconds()
}

// Connect starts connecting unless a socket is already pending or open. ctx
// bounds the lifetime of the resulting connection.
func (b *Bridge) Connect(ctx context.Context) bool {
	return b.conn.Connect(ctx)
}

func (b *Bridge) Disconnect() error {
	return b.conn.Close()
}

func (b *Bridge) IsConnected() bool {
	return b.conn.IsConnected()
}

func (b *Bridge) State() handlers.ConnectionState {
	return b.conn.State()
}

// Cache exposes read access to the last known server state.
func (b *Bridge) Cache() *state.ClientStateCache {
	return b.cache
}

func (b *Bridge) WorldScheme() coords.WorldScheme {
	return b.config.WorldScheme
}

// Start runs the inbound loop until ctx is done. It is the only goroutine that
// writes to the client state cache.
func (b *Bridge) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			b.log.Info("Stopping bridge event loop")
			if cancelled := b.pending.CancelAll(); cancelled > 0 {
				b.log.Info("Cancelled pending requests on shutdown", zap.Int("count", cancelled))
			}
			return
		case frame := <-b.incomingFrames:
			if !frame.IsText {
				b.log.Warn("Dropping binary frame", zap.Int("size", len(frame.Data)))
				continue
			}
			// Errors are already logged by the router.
			b.router.HandleMessage(frame.Data)
		case ev := <-b.stateChanges:
			b.handleStateChange(ev)
		}
	}
}

func (b *Bridge) handleStateChange(ev handlers.StateEvent) {
	fields := []zap.Field{zap.Stringer("from", ev.OldState), zap.Stringer("to", ev.NewState)}
	if ev.Error != nil {
		fields = append(fields, zap.Error(ev.Error))
	}

	switch ev.NewState {
	case handlers.ConnectionState_TimedOut, handlers.ConnectionState_Error:
		b.log.Warn("Connection state changed", fields...)
	default:
		b.log.Info("Connection state changed", fields...)
	}

	if ev.OldState == handlers.ConnectionState_Connected && ev.NewState != handlers.ConnectionState_Connected {
		if cancelled := b.pending.CancelAll(); cancelled > 0 {
			b.log.Info("Cancelled pending requests after losing connection", zap.Int("count", cancelled))
		}
	}
}
