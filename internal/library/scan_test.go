package library

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/websocket"
)

// socketServer serves the RomM platform table and a scripted socket.io endpoint.
func socketServer(t *testing.T, finish string, received chan<- string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/platforms", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, []platform{{ID: 7, Slug: "win", FSSlug: "pc"}})
	})
	mux.Handle("/ws/socket.io/", websocket.Handler(func(ws *websocket.Conn) {
		assert.Equal(t, "4", ws.Request().URL.Query().Get("EIO"))
		_, _, ok := ws.Request().BasicAuth()
		assert.True(t, ok, "websocket handshake carries basic auth")

		_ = websocket.Message.Send(ws, `0{"sid":"abc","pingInterval":25000}`)

		var msg string
		if !assert.NoError(t, websocket.Message.Receive(ws, &msg)) {
			return
		}
		received <- msg
		_ = websocket.Message.Send(ws, `40{"sid":"def"}`)

		if !assert.NoError(t, websocket.Message.Receive(ws, &msg)) {
			return
		}
		received <- msg

		_ = websocket.Message.Send(ws, packetPing)
		if !assert.NoError(t, websocket.Message.Receive(ws, &msg)) {
			return
		}
		received <- msg

		_ = websocket.Message.Send(ws, `42["scan:scanning_platform",{"name":"PC"}]`)
		if finish != "" {
			_ = websocket.Message.Send(ws, `42["`+finish+`",{}]`)
		}
		// Hold the connection open until the client leaves
		_ = websocket.Message.Receive(ws, &msg)
	}))
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestRommClient_Scan(t *testing.T) {
	received := make(chan string, 3)
	srv := socketServer(t, "scan:done", received)
	client := newTestClient(srv.URL)

	require.NoError(t, client.Scan(context.Background(), []string{"pc"}, ScanQuick))

	assert.Equal(t, packetConnect, <-received)

	event := <-received
	require.True(t, strings.HasPrefix(event, packetEvent))
	var frame []json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(event, packetEvent)), &frame))
	require.Len(t, frame, 2)
	assert.JSONEq(t, `"scan"`, string(frame[0]))
	var req scanRequest
	require.NoError(t, json.Unmarshal(frame[1], &req))
	assert.Equal(t, []int64{7}, req.Platforms)
	assert.Equal(t, ScanQuick, req.Type)
	assert.Equal(t, []string{"sgdb", "igdb", "hltb"}, req.APIs)

	assert.Equal(t, packetPong, <-received)
}

func TestRommClient_Scan_Stop(t *testing.T) {
	received := make(chan string, 3)
	srv := socketServer(t, "scan:stop", received)

	require.NoError(t, newTestClient(srv.URL).Scan(context.Background(), []string{"pc"}, ScanHashes))
	<-received
	event := <-received
	assert.Contains(t, event, `"type":"hashes"`)
	assert.Contains(t, event, `"apis":[]`)
}

func TestRommClient_Scan_Timeout(t *testing.T) {
	received := make(chan string, 3)
	srv := socketServer(t, "", received)
	client := NewRommClient(RommConfig{
		URL: srv.URL, Username: "admin", Password: "secret",
		ScanTimeout: 200 * time.Millisecond,
	}, testLogger())

	err := client.Scan(context.Background(), []string{"pc"}, ScanQuick)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRommClient_Scan_Unreachable(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/platforms", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, []platform{{ID: 7, FSSlug: "pc"}})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := NewRommClient(RommConfig{URL: srv.URL, WebsocketURL: "ws://127.0.0.1:1"}, testLogger())
	err := client.Scan(context.Background(), []string{"pc"}, ScanQuick)
	assert.ErrorIs(t, err, ErrServiceUnavailable)
}
