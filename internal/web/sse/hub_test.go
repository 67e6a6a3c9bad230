package sse

import (
	"testing"
	"time"

	"github.com/mcoot/fogwalk/internal/testutil"
)

func TestFormatSSEMessage(t *testing.T) {
	tests := []struct {
		name      string
		eventName string
		data      string
		expected  string
	}{
		{
			name:      "single line data",
			eventName: "player:update",
			data:      `{"x":1}`,
			expected:  "event: player:update\ndata: {\"x\":1}\n\n",
		},
		{
			name:      "multi-line data",
			eventName: "map:update",
			data:      "{\n  \"size\": 3\n}",
			expected:  "event: map:update\ndata: {\ndata:   \"size\": 3\ndata: }\n\n",
		},
		{
			name:      "empty data",
			eventName: "ping",
			data:      "",
			expected:  "event: ping\ndata: \n\n",
		},
		{
			name:      "data with carriage returns",
			eventName: "test",
			data:      "line1\r\nline2",
			expected:  "event: test\ndata: line1\ndata: line2\n\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := formatSSEMessage(tt.eventName, tt.data)
			if string(result) != tt.expected {
				t.Errorf("formatSSEMessage(%q, %q)\ngot:  %q\nwant: %q",
					tt.eventName, tt.data, string(result), tt.expected)
			}
		})
	}
}

func TestSplitLines(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"single line", "hello", []string{"hello"}},
		{"two lines", "line1\nline2", []string{"line1", "line2"}},
		{"trailing newline", "line1\n", []string{"line1"}},
		{"empty string", "", []string{""}},
		{"crlf line endings", "line1\r\nline2\r\n", []string{"line1", "line2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := splitLines(tt.input)
			if len(result) != len(tt.expected) {
				t.Errorf("splitLines(%q) returned %d lines, want %d",
					tt.input, len(result), len(tt.expected))
				return
			}
			for i, line := range result {
				if line != tt.expected[i] {
					t.Errorf("splitLines(%q)[%d] = %q, want %q",
						tt.input, i, line, tt.expected[i])
				}
			}
		})
	}
}

func waitForClients(t *testing.T, hub *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for hub.ClientCount() != want {
		if time.Now().After(deadline) {
			t.Fatalf("ClientCount() = %d, want %d", hub.ClientCount(), want)
		}
		time.Sleep(time.Millisecond)
	}
}

func receive(t *testing.T, client *Client) (string, bool) {
	t.Helper()
	select {
	case msg := <-client.send:
		return string(msg), true
	case <-time.After(100 * time.Millisecond):
		return "", false
	}
}

func TestHub_RegisterAndBroadcast(t *testing.T) {
	hub := NewHub("w1", testutil.NopLogger())
	go hub.Run()
	defer hub.Close()

	client := NewClient(hub, "player1", false)
	hub.Register(client)
	waitForClients(t, hub, 1)

	hub.BroadcastEvent("test-event", "test data")

	msg, ok := receive(t, client)
	if !ok {
		t.Fatal("client did not receive message")
	}
	if expected := "event: test-event\ndata: test data\n\n"; msg != expected {
		t.Errorf("client received %q, want %q", msg, expected)
	}
}

func TestHub_Unregister(t *testing.T) {
	hub := NewHub("w1", testutil.NopLogger())
	go hub.Run()
	defer hub.Close()

	client := NewClient(hub, "player1", false)
	hub.Register(client)
	waitForClients(t, hub, 1)

	hub.Unregister(client)
	waitForClients(t, hub, 0)

	if _, open := <-client.send; open {
		t.Error("send channel still open after unregister")
	}
}

func TestHub_SendEventIsAddressed(t *testing.T) {
	hub := NewHub("w1", testutil.NopLogger())
	go hub.Run()
	defer hub.Close()

	owner := NewClient(hub, "player1", false)
	other := NewClient(hub, "player2", false)
	watcher := NewClient(hub, "player3", true)
	hub.Register(owner)
	hub.Register(other)
	hub.Register(watcher)
	waitForClients(t, hub, 3)

	hub.SendEvent("player1", "player:update", "{}")

	if _, ok := receive(t, owner); !ok {
		t.Error("owner did not receive its update")
	}
	if _, ok := receive(t, watcher); !ok {
		t.Error("watcher did not receive the update")
	}
	if msg, ok := receive(t, other); ok {
		t.Errorf("other player received %q", msg)
	}
}

func TestHub_CloseDisconnectsClients(t *testing.T) {
	hub := NewHub("w1", testutil.NopLogger())
	go hub.Run()

	client := NewClient(hub, "player1", false)
	hub.Register(client)
	waitForClients(t, hub, 1)

	hub.Close()
	hub.Close()

	select {
	case _, open := <-client.send:
		if open {
			t.Error("expected closed channel")
		}
	case <-time.After(time.Second):
		t.Fatal("client channel not closed")
	}

	// Registering against a stopped hub must not block
	late := NewClient(hub, "player2", false)
	hub.Register(late)
	if _, open := <-late.send; open {
		t.Error("late client channel should be closed")
	}
}

func TestHubManager_GetOrCreateHub(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())
	defer manager.Close()

	hub1 := manager.GetOrCreateHub("w1")
	if hub1 == nil {
		t.Fatal("GetOrCreateHub returned nil")
	}
	if hub2 := manager.GetOrCreateHub("w1"); hub1 != hub2 {
		t.Error("GetOrCreateHub returned different hub for same world")
	}
	if hub3 := manager.GetOrCreateHub("w2"); hub3 == hub1 {
		t.Error("GetOrCreateHub returned same hub for different world")
	}
}

func TestHubManager_GetHub(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())
	defer manager.Close()

	if hub := manager.GetHub("missing"); hub != nil {
		t.Error("GetHub returned non-nil for non-existent hub")
	}

	created := manager.GetOrCreateHub("w1")
	if got := manager.GetHub("w1"); got != created {
		t.Error("GetHub returned different hub than GetOrCreateHub")
	}
}

func TestHubManager_RemoveHub(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())

	manager.GetOrCreateHub("w1")
	manager.RemoveHub("w1")

	if got := manager.GetHub("w1"); got != nil {
		t.Error("Hub still exists after RemoveHub")
	}

	// Removing non-existent hub should not panic
	manager.RemoveHub("missing")
}

func TestHubManager_CleanupEmptyHubs(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())
	defer manager.Close()

	manager.GetOrCreateHub("empty")

	active := manager.GetOrCreateHub("active")
	active.Register(NewClient(active, "player1", false))
	waitForClients(t, active, 1)

	manager.CleanupEmptyHubs()

	if manager.GetHub("empty") != nil {
		t.Error("Empty hub still exists after cleanup")
	}
	if manager.GetHub("active") == nil {
		t.Error("Active hub was removed during cleanup")
	}
}
