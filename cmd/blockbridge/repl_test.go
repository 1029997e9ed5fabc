package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/sessamekesh/blockbridge/internal/testserver"
	"github.com/sessamekesh/blockbridge/pkg/bridge"
	"go.uber.org/zap"
)

func startReplBridge(t *testing.T) (*bridge.Bridge, *testserver.Server, context.Context) {
	t.Helper()
	server := testserver.Start(t)

	b, err := bridge.CreateBridge(bridge.BridgeConfig{
		Endpoint:       server.URL,
		ConnectTimeout: time.Second,
		Logger:         zap.NewNop(),
	})
	if err != nil {
		t.Fatalf("CreateBridge() failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go b.Start(ctx)

	b.Connect(ctx)
	if err := waitConnected(ctx, b); err != nil {
		t.Fatalf("waitConnected() failed: %v", err)
	}
	return b, server, ctx
}

func TestReplDispatchesCommands(t *testing.T) {
	b, server, ctx := startReplBridge(t)

	input := strings.Join([]string{
		"tp 1 2 3",
		"place glass 0 0 0",
		"chat hello   there",
		"exec stop",
		"invite alex",
		"bogus",
		"",
		"quit",
		"chat never sent",
	}, "\n")

	var out bytes.Buffer
	if err := runRepl(ctx, b, strings.NewReader(input), &out, false); err != nil {
		t.Fatalf("runRepl() failed: %v", err)
	}

	got := server.WaitForMessages(t, 5, time.Second)
	time.Sleep(50 * time.Millisecond)
	got = server.Received()
	if len(got) != 5 {
		t.Fatalf("server received %d messages, want 5: %v", len(got), got)
	}

	var tp struct {
		Command string            `json:"command"`
		Args    map[string]string `json:"args"`
	}
	json.Unmarshal([]byte(got[0]), &tp)
	if tp.Command != "teleport" || tp.Args["y"] != "-58" {
		t.Fatalf("tp sent %s", got[0])
	}
	if !strings.Contains(got[2], `"message":"hello   there"`) {
		t.Fatalf("chat sent %s", got[2])
	}
	// exec stop is refused and only echoed as a chat warning.
	if strings.Contains(got[3], "executeCommand") || !strings.Contains(got[3], `"command":"chat"`) {
		t.Fatalf("denylisted exec sent %s", got[3])
	}
	if got[4] != "collaboration.invite(alex)" {
		t.Fatalf("invite sent %s", got[4])
	}

	if !strings.Contains(out.String(), "unknown command \"bogus\"") {
		t.Fatalf("missing unknown command error in output %q", out.String())
	}
	if !strings.Contains(out.String(), "is denylisted") {
		t.Fatalf("missing rejection in output %q", out.String())
	}
}

func TestReplReporters(t *testing.T) {
	b, server, ctx := startReplBridge(t)

	var out bytes.Buffer
	runLine(ctx, b, "pos", &out)
	server.WaitForMessages(t, 1, time.Second)
	server.Push(t, `{"type":"playerPos","data":{"x":4,"y":-60,"z":5}}`)

	deadline := time.Now().Add(time.Second)
	for b.Cache().PlayerPosition().X != 4 {
		if time.Now().After(deadline) {
			t.Fatalf("position never cached")
		}
		time.Sleep(5 * time.Millisecond)
	}

	out.Reset()
	runLine(ctx, b, "pos", &out)
	if out.String() != "4 -60 5\n" {
		t.Fatalf("pos printed %q", out.String())
	}
}
