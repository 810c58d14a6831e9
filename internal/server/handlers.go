package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/reportdash/realtime/internal/batch"
	"github.com/reportdash/realtime/internal/connection"
	"github.com/reportdash/realtime/internal/model"
)

// handleWebsocket runs one client session: admit, greet, read frames until
// the peer goes away, then clean up and tell everyone else.
func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	clientID := r.PathValue("client_id")
	if clientID == "" {
		http.Error(w, "client_id required", http.StatusBadRequest)
		return
	}

	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "client_id", clientID, "error", err)
		return
	}

	conn := connection.NewConn(ws, s.cfg.Websocket.WriteTimeout)

	if err := s.reg.Admit(conn, clientID); err != nil {
		if errors.Is(err, connection.ErrCapacityExceeded) {
			// The refusal is delivered on the socket, not via HTTP: the
			// upgrade already succeeded.
			e := model.NewErrorEvent(
				"Connection limit exceeded. Please try again later.",
				model.CodeConnectionLimit,
				nil,
			)
			e.StampIfEmpty(time.Now())
			conn.WriteEvent(e)
		}
		conn.Close()
		return
	}

	conn.SetReadLimit(s.cfg.Websocket.ReadLimit)

	s.notifier.SendTo(clientID, model.NewConnectionEvent(
		"connected",
		clientID,
		"WebSocket connection established",
		s.reg.ActiveCount(),
	))

	for {
		data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		if err := s.dispatcher.Handle(clientID, data); err != nil {
			s.logger.Error("frame handling failed",
				"client_id", clientID,
				"error", err,
			)
		}
	}

	s.reg.Remove(conn, clientID)
	conn.Close()

	s.notifier.Broadcast(model.NewConnectionEvent(
		"disconnected",
		clientID,
		fmt.Sprintf("Client %s disconnected", clientID),
		s.reg.ActiveCount(),
	), clientID)
}

// batchGenerateRequest is the POST /api/reports/batch/generate body.
type batchGenerateRequest struct {
	ReportIDs       []string `json:"report_ids"`
	OutputFormat    string   `json:"output_format"`
	AsyncGeneration bool     `json:"async_generation"`
	ClientID        string   `json:"client_id"`
}

func (s *Server) handleBatchGenerate(w http.ResponseWriter, r *http.Request) {
	var req batchGenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	switch req.OutputFormat {
	case "", s.cfg.Reports.OutputFormat:
	default:
		writeJSONError(w, http.StatusBadRequest,
			fmt.Sprintf("output_format %q not available, server renders %q",
				req.OutputFormat, s.cfg.Reports.OutputFormat))
		return
	}

	batchID, err := s.sup.Create(req.ReportIDs, req.ClientID)
	if err != nil {
		if errors.Is(err, batch.ErrEmptyBatch) {
			writeJSONError(w, http.StatusBadRequest, "report_ids must not be empty")
			return
		}
		writeJSONError(w, http.StatusInternalServerError, "failed to create batch job")
		return
	}

	if req.AsyncGeneration {
		go func() {
			if err := s.sup.Run(s.baseCtx, batchID); err != nil {
				s.logger.Error("batch run failed", "batch_id", batchID, "error", err)
			}
		}()
	} else {
		if err := s.sup.Run(r.Context(), batchID); err != nil {
			writeJSONError(w, http.StatusInternalServerError, "batch run failed")
			return
		}
	}

	snap, _ := s.sup.GetStatus(batchID)
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleBatchStatus(w http.ResponseWriter, r *http.Request) {
	batchID := r.PathValue("batch_id")

	snap, ok := s.sup.GetStatus(batchID)
	if !ok {
		writeJSONError(w, http.StatusNotFound, fmt.Sprintf("batch %s not found", batchID))
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats := s.reg.Stats()
	dstats := s.dispatcher.Stats()
	totalJobs, runningJobs := s.sup.Counts()

	writeJSON(w, http.StatusOK, struct {
		TotalConnections int64             `json:"total_connections"`
		ActiveCount      int               `json:"active_count"`
		MessagesSent     int64             `json:"messages_sent"`
		MessagesReceived int64             `json:"messages_received"`
		ParseErrors      int64             `json:"parse_errors"`
		UnknownFrames    int64             `json:"unknown_frames"`
		BatchJobs        int               `json:"batch_jobs"`
		RunningBatchJobs int               `json:"running_batch_jobs"`
		Connections      []connection.Info `json:"connections"`
	}{
		TotalConnections: stats.TotalConnections,
		ActiveCount:      stats.ActiveCount,
		MessagesSent:     stats.MessagesSent,
		MessagesReceived: stats.MessagesReceived,
		ParseErrors:      dstats.ParseErrors,
		UnknownFrames:    dstats.UnknownFrames,
		BatchJobs:        totalJobs,
		RunningBatchJobs: runningJobs,
		Connections:      s.reg.Snapshot(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	_, runningJobs := s.sup.Counts()

	health := struct {
		Status     string         `json:"status"`
		Components map[string]any `json:"components"`
	}{
		Status:     "healthy",
		Components: make(map[string]any),
	}
	health.Components["websocket"] = map[string]any{
		"active_connections": s.reg.ActiveCount(),
		"max_connections":    s.cfg.Websocket.MaxConnections,
	}
	health.Components["batch"] = map[string]any{
		"running_jobs": runningJobs,
	}

	writeJSON(w, http.StatusOK, health)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
