package transport

import (
	"context"
	goerrs "errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sessamekesh/blockbridge/pkg/errors"
	"github.com/sessamekesh/blockbridge/pkg/handlers"
	utils "github.com/sessamekesh/blockbridge/pkg/util"
	"go.uber.org/zap"
)

const DefaultConnectTimeout = 5 * time.Second

type WebsocketConnectionParams struct {
	Endpoint       string
	ConnectTimeout time.Duration

	MaxReadMessageSize int64

	// Optional, websocket.DefaultDialer otherwise
	Dialer *websocket.Dialer

	Logger *zap.Logger
}

// websocketConnection owns the single socket to the game server mod. There is
// no reconnection and no outbound queue: a send while not connected is dropped.
type websocketConnection struct {
	params  WebsocketConnectionParams
	handler *handlers.ConnectionHandler
	dialer  *websocket.Dialer

	mut_state sync.RWMutex
	state     handlers.ConnectionState
	conn      *websocket.Conn
	// Bumped on every connect/close so a late dial or read loop can tell it is stale.
	generation uint64

	mut_write sync.Mutex

	log       *zap.Logger
	stringGen *utils.RandomStringGenerator
}

func validateEndpoint(endpoint string) error {
	u, err := url.Parse(endpoint)
	if err != nil {
		return err
	}
	if !utils.Contains(u.Scheme, []string{"ws", "wss"}) {
		return fmt.Errorf("invalid ws url: %s", endpoint)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host in ws url: %s", endpoint)
	}
	return nil
}

func isTimeout(err error) bool {
	var netErr net.Error
	return goerrs.As(err, &netErr) && netErr.Timeout()
}

func CreateWebsocketConnection(handler *handlers.ConnectionHandler, params WebsocketConnectionParams) (*websocketConnection, error) {
	if err := validateEndpoint(params.Endpoint); err != nil {
		return nil, err
	}

	logger := params.Logger
	if logger == nil {
		logger = zap.Must(zap.NewDevelopment())
	}
	if params.ConnectTimeout <= 0 {
		params.ConnectTimeout = DefaultConnectTimeout
	}

	dialer := params.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}

	return &websocketConnection{
		params:  params,
		handler: handler,
		dialer:  dialer,

		mut_state: sync.RWMutex{},
		state:     handlers.ConnectionState_Disconnected,

		mut_write: sync.Mutex{},

		log:       logger.With(zap.String("handler", handler.Name), zap.String("endpoint", params.Endpoint)),
		stringGen: utils.CreateRandomStringGenerator(time.Now().UnixMicro()),
	}, nil
}

func (ws *websocketConnection) State() handlers.ConnectionState {
	ws.mut_state.RLock()
	defer ws.mut_state.RUnlock()
	return ws.state
}

func (ws *websocketConnection) IsConnected() bool {
	return ws.State() == handlers.ConnectionState_Connected
}

// Connect starts a dial unless one is pending or open, and reports whether it did.
// The connection lives until ctx is cancelled, Close is called, or the server hangs up.
func (ws *websocketConnection) Connect(ctx context.Context) bool {
	ws.mut_state.Lock()
	if ws.state == handlers.ConnectionState_Connecting || ws.state == handlers.ConnectionState_Connected {
		state := ws.state
		ws.mut_state.Unlock()
		ws.log.Debug("Ignoring connect request", zap.Stringer("state", state))
		return false
	}
	ws.generation++
	generation := ws.generation
	ws.transitionLocked(handlers.ConnectionState_Connecting, nil)
	ws.mut_state.Unlock()

	go ws.dial(ctx, generation)
	return true
}

func (ws *websocketConnection) dial(ctx context.Context, generation uint64) {
	log := ws.log.With(zap.String("wsConnId", ws.stringGen.GetRandomString(6)))
	log.Info("Opening WebSocket connection", zap.Duration("timeout", ws.params.ConnectTimeout))

	dialCtx, dialRelease := context.WithTimeout(ctx, ws.params.ConnectTimeout)
	defer dialRelease()

	conn, _, err := ws.dialer.DialContext(dialCtx, ws.params.Endpoint, nil)
	if err != nil {
		nextState := handlers.ConnectionState_Error
		var stateErr error = err
		switch {
		case ctx.Err() != nil:
			nextState = handlers.ConnectionState_Disconnected
		case goerrs.Is(dialCtx.Err(), context.DeadlineExceeded) || isTimeout(err):
			nextState = handlers.ConnectionState_TimedOut
			stateErr = &errors.ConnectTimeout{Endpoint: ws.params.Endpoint, Timeout: ws.params.ConnectTimeout}
		}
		log.Warn("Failed to open WebSocket connection", zap.Stringer("state", nextState), zap.Error(err))

		ws.mut_state.Lock()
		if ws.generation == generation {
			ws.transitionLocked(nextState, stateErr)
		}
		ws.mut_state.Unlock()
		return
	}

	ws.mut_state.Lock()
	if ws.generation != generation {
		// Closed while the handshake was in flight.
		ws.mut_state.Unlock()
		log.Info("Discarding WebSocket opened after close request")
		conn.Close()
		return
	}
	ws.conn = conn
	ws.transitionLocked(handlers.ConnectionState_Connected, nil)
	ws.mut_state.Unlock()

	log.Info("WebSocket connection open")

	if ws.params.MaxReadMessageSize > 0 {
		conn.SetReadLimit(ws.params.MaxReadMessageSize)
	}

	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			log.Info("Context cancelled, closing WebSocket connection")
			ws.closeGeneration(generation)
		case <-done:
		}
	}()

	ws.readLoop(ctx, conn, generation, log)
	close(done)
}

func (ws *websocketConnection) readLoop(ctx context.Context, conn *websocket.Conn, generation uint64, log *zap.Logger) {
	expectedCloseErrors := []int{websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived}

	defer func() {
		conn.Close()
		ws.mut_state.Lock()
		if ws.generation == generation {
			ws.conn = nil
			ws.transitionLocked(handlers.ConnectionState_Disconnected, nil)
		}
		ws.mut_state.Unlock()
	}()

	for {
		msgType, payload, msgErr := conn.ReadMessage()
		if msgErr != nil {
			if websocket.IsCloseError(msgErr, expectedCloseErrors...) {
				closeError, ok := msgErr.(*websocket.CloseError)
				if ok {
					log.Info("Received close from server", zap.Int("closeCode", closeError.Code), zap.String("closeMsg", closeError.Text))
				} else {
					log.Info("Received close from server")
				}
				return
			}

			if websocket.IsUnexpectedCloseError(msgErr, expectedCloseErrors...) {
				log.Warn("Received unexpected close from server", zap.Error(msgErr))
				return
			}

			// So hacky...
			if strings.Contains(msgErr.Error(), "use of closed network connection") {
				log.Info("Closing connection, probably from a client-initiated close")
				return
			}

			log.Error("Received unexpected WebSocket error on message read", zap.Error(msgErr))
			return
		}

		frame := handlers.InboundFrame{
			RecvTimestamp: ws.handler.GetNowTimestamp(),
			IsText:        msgType == websocket.TextMessage,
			Data:          payload,
		}

		select {
		case <-ctx.Done():
			return
		case ws.handler.IncomingFrameChannel <- frame:
		}
	}
}

// Send transmits one text frame. It never buffers: if the socket is not open
// the payload is dropped and *errors.NotConnected is returned.
func (ws *websocketConnection) Send(data []byte) error {
	ws.mut_state.RLock()
	state := ws.state
	conn := ws.conn
	ws.mut_state.RUnlock()

	if state != handlers.ConnectionState_Connected || conn == nil {
		return &errors.NotConnected{State: state.String()}
	}

	ws.mut_write.Lock()
	defer ws.mut_write.Unlock()

	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		ws.log.Warn("Failed to write WebSocket message", zap.Int("size", len(data)), zap.Error(err))
		return err
	}
	return nil
}

func (ws *websocketConnection) Close() error {
	ws.mut_state.RLock()
	generation := ws.generation
	ws.mut_state.RUnlock()

	return ws.closeGeneration(generation)
}

func (ws *websocketConnection) closeGeneration(generation uint64) error {
	ws.mut_state.Lock()
	if ws.generation != generation {
		ws.mut_state.Unlock()
		return nil
	}
	conn := ws.conn
	ws.conn = nil
	ws.generation++
	ws.transitionLocked(handlers.ConnectionState_Disconnected, nil)
	ws.mut_state.Unlock()

	if conn == nil {
		return nil
	}

	ws.log.Info("Closing WebSocket connection")

	ws.mut_write.Lock()
	writeErr := conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	ws.mut_write.Unlock()

	closeErr := conn.Close()
	if writeErr != nil && !goerrs.Is(writeErr, websocket.ErrCloseSent) {
		ws.log.Debug("Failed to send close frame", zap.Error(writeErr))
	}
	return closeErr
}

// transitionLocked must be called with mut_state held.
func (ws *websocketConnection) transitionLocked(next handlers.ConnectionState, err error) {
	prev := ws.state
	if prev == next {
		return
	}
	ws.state = next

	event := handlers.StateEvent{
		OldState:  prev,
		NewState:  next,
		Timestamp: ws.handler.GetNowTimestamp(),
		Error:     err,
	}

	select {
	case ws.handler.StateChangeChannel <- event:
	default:
		ws.log.Warn("State change channel full, dropping event", zap.Stringer("old", prev), zap.Stringer("new", next))
	}
}
