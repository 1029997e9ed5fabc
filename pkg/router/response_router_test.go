package router

import (
	goerrs "errors"
	"testing"

	"github.com/sessamekesh/blockbridge/internal"
	"github.com/sessamekesh/blockbridge/pkg/coords"
	"github.com/sessamekesh/blockbridge/pkg/errors"
	"github.com/sessamekesh/blockbridge/pkg/state"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newTestRouter(t *testing.T) (*ResponseRouter, *state.ClientStateCache, *internal.PendingRequestStore, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	cache, writer := state.CreateClientStateCache()
	pending := internal.CreatePendingRequestStore(8)

	r, err := CreateResponseRouter(ResponseRouterParams{
		Writer:  writer,
		Pending: pending,
		Logger:  zap.New(core),
	})
	if err != nil {
		t.Fatalf("CreateResponseRouter() failed: %v", err)
	}
	return r, cache, pending, logs
}

func TestCreateRequiresWriter(t *testing.T) {
	if _, err := CreateResponseRouter(ResponseRouterParams{}); err == nil {
		t.Fatalf("CreateResponseRouter() accepted nil writer")
	}
}

func TestPlayerPosOverwritesPosition(t *testing.T) {
	r, cache, _, _ := newTestRouter(t)

	if err := r.HandleMessage([]byte(`{"type":"playerPos","data":{"x":100.5,"y":65,"z":-200.3}}`)); err != nil {
		t.Fatalf("HandleMessage() failed: %v", err)
	}

	want := coords.Position{X: 100.5, Y: 65, Z: -200.3}
	if got := cache.PlayerPosition(); got != want {
		t.Fatalf("PlayerPosition() = %+v, want %+v", got, want)
	}
}

func TestMalformedMessageLeavesCacheUntouched(t *testing.T) {
	r, cache, _, logs := newTestRouter(t)
	r.HandleMessage([]byte(`{"type":"currentWorld","data":{"world":"lab"}}`))
	before := cache.Snapshot()

	err := r.HandleMessage([]byte("not json"))
	var malformed *errors.MalformedMessage
	if !goerrs.As(err, &malformed) {
		t.Fatalf("HandleMessage() error = %v, want MalformedMessage", err)
	}
	if cache.Snapshot() != before {
		t.Fatalf("cache changed after malformed message: %+v", cache.Snapshot())
	}

	warnings := logs.FilterMessage("Dropping malformed message").All()
	if len(warnings) != 1 {
		t.Fatalf("expected one malformed warning, got %d", len(warnings))
	}
	if raw, ok := warnings[0].ContextMap()["raw"]; !ok || raw != "not json" {
		t.Fatalf("warning raw field = %v", raw)
	}
}

func TestShapeValidationKeepsPreviousValues(t *testing.T) {
	r, cache, _, _ := newTestRouter(t)
	r.HandleMessage([]byte(`{"type":"playerPos","data":{"x":1,"y":2,"z":3}}`))
	r.HandleMessage([]byte(`{"type":"blockInfo","data":"stone"}`))
	r.HandleMessage([]byte(`{"type":"invitations","data":{"count":2}}`))
	r.HandleMessage([]byte(`{"type":"currentWorld","data":{"world":"lab"}}`))
	before := cache.Snapshot()

	for _, raw := range []string{
		`{"type":"playerPos","data":{"x":"far","y":2,"z":3}}`,
		`{"type":"playerPos","data":{"x":9}}`,
		`{"type":"blockInfo"}`,
		`{"type":"blockInfo","data":null}`,
		`{"type":"invitations","data":{"count":"many"}}`,
		`{"type":"invitations"}`,
		`{"type":"currentWorld","data":{"name":"lab"}}`,
		`{"type":"currentWorld","data":{"world":42}}`,
	} {
		if err := r.HandleMessage([]byte(raw)); err == nil {
			t.Fatalf("HandleMessage(%s) accepted bad shape", raw)
		}
		if cache.Snapshot() != before {
			t.Fatalf("HandleMessage(%s) changed cache to %+v", raw, cache.Snapshot())
		}
	}
}

func TestBlockInfoAndCollaborationUpdates(t *testing.T) {
	r, cache, _, _ := newTestRouter(t)

	r.HandleMessage([]byte(`{"type":"blockInfo","data":{"id":"oak_log"}}`))
	if got := cache.LastBlockInfo(); got != `{"id":"oak_log"}` {
		t.Fatalf("LastBlockInfo() = %q", got)
	}
	r.HandleMessage([]byte(`{"type":"blockInfo","data":"minecraft:grass_block"}`))
	if got := cache.LastBlockInfo(); got != "minecraft:grass_block" {
		t.Fatalf("LastBlockInfo() = %q", got)
	}

	r.HandleMessage([]byte(`{"type":"invitations","data":{"count":5}}`))
	if cache.InvitationCount() != 5 {
		t.Fatalf("InvitationCount() = %d", cache.InvitationCount())
	}

	r.HandleMessage([]byte(`{"type":"currentWorld","data":{"world":"castle"}}`))
	if cache.CurrentWorld() != "castle" {
		t.Fatalf("CurrentWorld() = %q", cache.CurrentWorld())
	}
}

func TestInformationalMessagesAreLogged(t *testing.T) {
	r, cache, _, logs := newTestRouter(t)

	for _, raw := range []string{
		`{"type":"welcome","message":"hello"}`,
		`{"type":"error","message":"unknown block"}`,
		`{"type":"achievement","data":{}}`,
		"collaboration.invitationReceived(alex)",
	} {
		if err := r.HandleMessage([]byte(raw)); err != nil {
			t.Fatalf("HandleMessage(%s) failed: %v", raw, err)
		}
	}

	if cache.Snapshot() != (state.ClientState{}) {
		t.Fatalf("informational messages changed cache: %+v", cache.Snapshot())
	}
	if logs.FilterMessage("Server welcome").Len() != 1 {
		t.Fatalf("welcome not logged")
	}
	if logs.FilterMessage("Server reported an error").Len() != 1 {
		t.Fatalf("error not logged")
	}
	if logs.FilterMessage("Unhandled message type").Len() != 1 {
		t.Fatalf("unknown type not logged")
	}
	if logs.FilterMessage("Received legacy call").Len() != 1 {
		t.Fatalf("legacy call not logged")
	}
}

func TestCorrelatedResponseResolvesPendingAfterCacheUpdate(t *testing.T) {
	r, cache, pending, _ := newTestRouter(t)

	ch, err := pending.Register("req-1", "getCurrentWorld", 0)
	if err != nil {
		t.Fatalf("Register() failed: %v", err)
	}

	if err := r.HandleMessage([]byte(`{"type":"currentWorld","data":{"world":"lab"},"requestId":"req-1"}`)); err != nil {
		t.Fatalf("HandleMessage() failed: %v", err)
	}

	msg, ok := <-ch
	if !ok {
		t.Fatalf("pending request was cancelled instead of resolved")
	}
	if msg.RequestId != "req-1" || msg.TypeName != "currentWorld" {
		t.Fatalf("resolved with %+v", msg)
	}
	if cache.CurrentWorld() != "lab" {
		t.Fatalf("cache not updated before resolve")
	}
	if pending.Len() != 0 {
		t.Fatalf("pending request not removed")
	}

	// An echo nobody waits for is ignored.
	if err := r.HandleMessage([]byte(`{"type":"currentWorld","data":{"world":"lab"},"requestId":"req-1"}`)); err != nil {
		t.Fatalf("HandleMessage() failed on unmatched requestId: %v", err)
	}
}
