package handlers

type ConnectionHandler struct {
	Name            string
	GetNowTimestamp func() int64

	IncomingFrameChannel chan<- InboundFrame
	StateChangeChannel   chan<- StateEvent
}
