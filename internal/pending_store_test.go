package internal

import (
	goerrs "errors"
	"testing"

	"github.com/sessamekesh/blockbridge/pkg/message/inbound"
)

func TestRegisterAndResolve(t *testing.T) {
	store := CreatePendingRequestStore(4)

	ch, err := store.Register("a", "getPlayerPos", 10)
	if err != nil {
		t.Fatalf("Register() failed: %v", err)
	}
	if !store.Has("a") || store.Len() != 1 {
		t.Fatalf("request not tracked after Register()")
	}

	msg := &inbound.InboundMessage{TypeName: "playerPos", RequestId: "a"}
	if err := store.Resolve("a", msg); err != nil {
		t.Fatalf("Resolve() failed: %v", err)
	}

	got, ok := <-ch
	if !ok || got != msg {
		t.Fatalf("response channel yielded %v, %v", got, ok)
	}
	if _, ok := <-ch; ok {
		t.Fatalf("response channel not closed after resolve")
	}
	if store.Has("a") {
		t.Fatalf("request still tracked after Resolve()")
	}
}

func TestRegisterRejectsDuplicatesAndOverflow(t *testing.T) {
	store := CreatePendingRequestStore(2)

	if _, err := store.Register("a", "x", 0); err != nil {
		t.Fatalf("Register() failed: %v", err)
	}

	_, err := store.Register("a", "x", 0)
	var dup *DuplicateRequestIdError
	if !goerrs.As(err, &dup) {
		t.Fatalf("duplicate Register() error = %v", err)
	}

	if _, err := store.Register("b", "x", 0); err != nil {
		t.Fatalf("Register() failed: %v", err)
	}
	_, err = store.Register("c", "x", 0)
	var tooMany *TooManyPendingRequestsError
	if !goerrs.As(err, &tooMany) {
		t.Fatalf("overflow Register() error = %v", err)
	}
}

func TestResolveUnknownRequest(t *testing.T) {
	store := CreatePendingRequestStore(2)
	err := store.Resolve("nope", &inbound.InboundMessage{})
	var missing *MissingRequestIdError
	if !goerrs.As(err, &missing) {
		t.Fatalf("Resolve() error = %v, want MissingRequestIdError", err)
	}
}

func TestCancelAllClosesChannels(t *testing.T) {
	store := CreatePendingRequestStore(4)
	a, _ := store.Register("a", "x", 0)
	b, _ := store.Register("b", "x", 0)

	if n := store.CancelAll(); n != 2 {
		t.Fatalf("CancelAll() = %d, want 2", n)
	}
	for _, ch := range []<-chan *inbound.InboundMessage{a, b} {
		if _, ok := <-ch; ok {
			t.Fatalf("cancelled channel yielded a value")
		}
	}
	if store.Len() != 0 {
		t.Fatalf("Len() = %d after CancelAll()", store.Len())
	}
}
