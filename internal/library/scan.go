package library

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"golang.org/x/net/websocket"
)

const socketIOPath = "/ws/socket.io/?EIO=4&transport=websocket"

// Engine.IO / Socket.IO packet prefixes.
const (
	packetPing    = "2"
	packetPong    = "3"
	packetConnect = "40"
	packetEvent   = "42"
)

type scanRequest struct {
	Platforms []int64  `json:"platforms"`
	Type      ScanType `json:"type"`
	APIs      []string `json:"apis"`
}

// Scan asks RomM to scan the given platforms and waits until the scan
// finishes, stops, or the scan timeout elapses.
func (c *RommClient) Scan(ctx context.Context, platforms []string, scanType ScanType) error {
	ids := make([]int64, 0, len(platforms))
	for _, slug := range platforms {
		id, err := c.platformID(ctx, slug)
		if err != nil {
			return err
		}
		ids = append(ids, id)
	}

	apis := []string{}
	if scanType != ScanHashes {
		apis = []string{"sgdb", "igdb", "hltb"}
	}
	payload, err := json.Marshal([]any{"scan", scanRequest{Platforms: ids, Type: scanType, APIs: apis}})
	if err != nil {
		return fmt.Errorf("encode scan request: %w", err)
	}

	cfg, err := websocket.NewConfig(c.websocketURL+socketIOPath, c.baseURL)
	if err != nil {
		return fmt.Errorf("websocket config: %w", err)
	}
	if c.username != "" || c.password != "" {
		cred := base64.StdEncoding.EncodeToString([]byte(c.username + ":" + c.password))
		cfg.Header.Set("Authorization", "Basic "+cred)
	}

	ctx, cancel := context.WithTimeout(ctx, c.scanTimeout)
	defer cancel()

	ws, err := cfg.DialContext(ctx)
	if err != nil {
		return fmt.Errorf("%w: dial websocket: %v", ErrServiceUnavailable, err)
	}
	defer func() { _ = ws.Close() }()

	// Unblock reads when the context ends
	stop := context.AfterFunc(ctx, func() { _ = ws.SetDeadline(time.Now()) })
	defer stop()

	var msg string
	if err := websocket.Message.Receive(ws, &msg); err != nil {
		return fmt.Errorf("read open packet: %w", err)
	}
	if err := websocket.Message.Send(ws, packetConnect); err != nil {
		return fmt.Errorf("send connect: %w", err)
	}
	if err := websocket.Message.Receive(ws, &msg); err != nil {
		return fmt.Errorf("read connect ack: %w", err)
	}
	if err := websocket.Message.Send(ws, packetEvent+string(payload)); err != nil {
		return fmt.Errorf("send scan: %w", err)
	}
	c.log.Info("library scan started", "platforms", platforms, "type", scanType)

	for {
		if err := websocket.Message.Receive(ws, &msg); err != nil {
			if ctx.Err() != nil {
				return fmt.Errorf("wait for scan: %w", ctx.Err())
			}
			return fmt.Errorf("read scan event: %w", err)
		}

		switch {
		case msg == packetPing:
			if err := websocket.Message.Send(ws, packetPong); err != nil {
				return fmt.Errorf("send pong: %w", err)
			}
		case strings.Contains(msg, `"scan:done"`):
			c.log.Info("library scan finished", "platforms", platforms, "type", scanType)
			return nil
		case strings.Contains(msg, `"scan:stop"`):
			c.log.Warn("library scan stopped", "platforms", platforms, "type", scanType)
			return nil
		}
	}
}

var _ Scanner = (*RommClient)(nil)
