// wsprobe connects to a dashboard realtime server and streams received
// events to the console. It sends a ping, a subscribe, and an echo after
// connecting, then prints everything the server pushes until interrupted.
//
// Usage: go run ./cmd/wsprobe --url ws://localhost:8080 --client probe-1
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
)

func main() {
	url := flag.String("url", "ws://localhost:8080", "server base URL")
	client := flag.String("client", "probe-1", "client identifier")
	verbose := flag.Bool("verbose", false, "print full event JSON")
	flag.Parse()

	// Setup logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal")
		cancel()
	}()

	endpoint := fmt.Sprintf("%s/ws/%s", *url, *client)
	logger.Info("connecting", "endpoint", endpoint)

	ws, _, err := websocket.DefaultDialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		logger.Error("dial failed", "error", err)
		os.Exit(1)
	}
	defer ws.Close()

	// Exercise the inbound surface once.
	frames := []map[string]string{
		{"type": "ping", "timestamp": time.Now().Format(time.RFC3339Nano)},
		{"type": "subscribe", "event_type": "batch_report_progress"},
		{"type": "echo", "payload": "wsprobe says hello"},
	}
	for _, f := range frames {
		if err := ws.WriteJSON(f); err != nil {
			logger.Error("write failed", "frame_type", f["type"], "error", err)
			os.Exit(1)
		}
	}

	// Reader goroutine prints events until the socket dies.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			_, data, err := ws.ReadMessage()
			if err != nil {
				logger.Info("connection closed", "error", err)
				return
			}
			printEvent(data, *verbose, logger)
		}
	}()

	select {
	case <-ctx.Done():
		ws.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second),
		)
		select {
		case <-done:
		case <-time.After(2 * time.Second):
		}
	case <-done:
	}

	logger.Info("wsprobe stopped")
}

func printEvent(data []byte, verbose bool, logger *slog.Logger) {
	if verbose {
		fmt.Println(string(data))
		return
	}

	var event struct {
		Type      string `json:"type"`
		Status    string `json:"status"`
		Message   string `json:"message"`
		BatchID   string `json:"batch_id"`
		Progress  int    `json:"progress"`
		Total     int    `json:"total"`
		ErrorCode string `json:"error_code"`
	}
	if err := json.Unmarshal(data, &event); err != nil {
		fmt.Println(string(data))
		return
	}

	switch event.Type {
	case "batch_report_progress":
		logger.Info("batch progress",
			"batch_id", event.BatchID,
			"status", event.Status,
			"progress", fmt.Sprintf("%d/%d", event.Progress, event.Total),
			"message", event.Message,
		)
	case "error":
		logger.Warn("server error event",
			"code", event.ErrorCode,
			"message", event.Message,
		)
	default:
		logger.Info("event",
			"type", event.Type,
			"status", event.Status,
			"message", event.Message,
		)
	}
}
