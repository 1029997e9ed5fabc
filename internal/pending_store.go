package internal

import (
	"fmt"
	"sync"

	"github.com/sessamekesh/blockbridge/pkg/message/inbound"
)

type DuplicateRequestIdError struct {
	Id string
}

func (e *DuplicateRequestIdError) Error() string {
	return fmt.Sprintf("Attempted to register request with duplicate ID %s", e.Id)
}

type MissingRequestIdError struct {
	Id string
}

func (e *MissingRequestIdError) Error() string {
	return fmt.Sprintf("Missing pending request with id=%s", e.Id)
}

type TooManyPendingRequestsError struct {
	Max int
}

func (e *TooManyPendingRequestsError) Error() string {
	return fmt.Sprintf("Too many requests in flight (max %d) - cannot register new request", e.Max)
}

type pendingRequest struct {
	CommandName string
	CreatedTime int64
	Response    chan *inbound.InboundMessage
}

// PendingRequestStore tracks commands sent with a requestId that are still
// waiting for the server to echo it back.
type PendingRequestStore struct {
	MaxPending int

	mut_requests sync.Mutex
	requests     map[string]*pendingRequest
}

func CreatePendingRequestStore(maxPending int) *PendingRequestStore {
	return &PendingRequestStore{
		MaxPending:   maxPending,
		mut_requests: sync.Mutex{},
		requests:     make(map[string]*pendingRequest),
	}
}

// Register returns a channel that receives exactly one response, or is closed
// without a value if the request is cancelled.
func (store *PendingRequestStore) Register(requestId string, commandName string, timestamp int64) (<-chan *inbound.InboundMessage, error) {
	store.mut_requests.Lock()
	defer store.mut_requests.Unlock()

	if _, has := store.requests[requestId]; has {
		return nil, &DuplicateRequestIdError{Id: requestId}
	}

	if len(store.requests) >= store.MaxPending {
		return nil, &TooManyPendingRequestsError{Max: store.MaxPending}
	}

	response := make(chan *inbound.InboundMessage, 1)
	store.requests[requestId] = &pendingRequest{
		CommandName: commandName,
		CreatedTime: timestamp,
		Response:    response,
	}

	return response, nil
}

func (store *PendingRequestStore) Has(requestId string) bool {
	store.mut_requests.Lock()
	defer store.mut_requests.Unlock()

	_, has := store.requests[requestId]
	return has
}

// Resolve delivers msg to the waiter for requestId and forgets the request.
func (store *PendingRequestStore) Resolve(requestId string, msg *inbound.InboundMessage) error {
	store.mut_requests.Lock()
	defer store.mut_requests.Unlock()

	request, has := store.requests[requestId]
	if !has {
		return &MissingRequestIdError{Id: requestId}
	}
	delete(store.requests, requestId)

	request.Response <- msg
	close(request.Response)
	return nil
}

func (store *PendingRequestStore) Remove(requestId string) {
	store.mut_requests.Lock()
	defer store.mut_requests.Unlock()
	delete(store.requests, requestId)
}

// CancelAll closes every outstanding response channel. Returns how many were cancelled.
func (store *PendingRequestStore) CancelAll() int {
	store.mut_requests.Lock()
	defer store.mut_requests.Unlock()

	cancelled := len(store.requests)
	for requestId, request := range store.requests {
		close(request.Response)
		delete(store.requests, requestId)
	}
	return cancelled
}

func (store *PendingRequestStore) Len() int {
	store.mut_requests.Lock()
	defer store.mut_requests.Unlock()
	return len(store.requests)
}
