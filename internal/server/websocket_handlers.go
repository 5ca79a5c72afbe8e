package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gorilla/websocket"

	"github.com/MeKo-Tech/pdfmerge/internal/session"
	"github.com/MeKo-Tech/pdfmerge/internal/worker"
)

// WebSocket upgrader with reasonable defaults.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const (
	wsReadTimeout  = 60 * time.Second
	wsPingInterval = 30 * time.Second
	// wsReadLimitMB bounds a single inbound message on top of the upload limit
	// to leave room for base64 overhead.
	wsReadLimitMB = 2
)

// WebSocketFile is one file sent inline over the socket.
type WebSocketFile struct {
	Name string `json:"name"`
	Data []byte `json:"data"`
}

// WebSocketMergeRequest asks the server to merge files in order.
type WebSocketMergeRequest struct {
	Type  string          `json:"type"` // "merge"
	Files []WebSocketFile `json:"files"`
}

// WebSocketConnWriter is an interface for writing WebSocket messages.
type WebSocketConnWriter interface {
	WriteMessage(messageType int, data []byte) error
}

// WebSocketMergeResponse is a text frame sent back to the client. Merge
// progress uses Type "merge_event" with Status started, finished or error.
type WebSocketMergeResponse struct {
	Type      string             `json:"type"`
	Status    string             `json:"status,omitempty"`
	JobID     string             `json:"job_id,omitempty"`
	Pages     int                `json:"pages,omitempty"`
	Message   string             `json:"message,omitempty"`
	Report    *session.AddReport `json:"report,omitempty"`
	Error     string             `json:"error,omitempty"`
	ErrorType string             `json:"error_type,omitempty"`
}

// mergeWebSocketHandler handles WebSocket connections that stream merge progress.
func (s *Server) mergeWebSocketHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log().Error("Failed to upgrade connection to WebSocket", "error", err)
		return
	}
	defer func() { _ = conn.Close() }()

	websocketConnections.Inc()
	defer websocketConnections.Dec()

	s.log().Info("WebSocket connection established", "remote_addr", r.RemoteAddr)
	s.handleWebSocketConnection(conn)
}

// handleWebSocketConnection processes messages until the client goes away.
func (s *Server) handleWebSocketConnection(conn *websocket.Conn) {
	conn.SetReadLimit((s.maxUploadMB*4/3 + wsReadLimitMB) * 1024 * 1024)
	_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	})

	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(wsPingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(10*time.Second)); err != nil {
					return
				}
			}
		}
	}()

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log().Error("WebSocket error", "error", err)
			}
			return
		}
		websocketMessagesTotal.WithLabelValues("received").Inc()

		if messageType == websocket.TextMessage {
			s.handleWebSocketMessage(conn, data)
			_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
		}
	}
}

// handleWebSocketMessage decodes and dispatches a single client message.
func (s *Server) handleWebSocketMessage(conn WebSocketConnWriter, data []byte) {
	var req WebSocketMergeRequest
	if err := json.Unmarshal(data, &req); err != nil {
		s.sendWebSocketError(conn, "invalid_request", fmt.Sprintf("Failed to parse request: %v", err))
		return
	}

	switch req.Type {
	case "merge":
		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(s.app.Server.TimeoutSec)*time.Second)
		defer cancel()
		s.processWebSocketMerge(ctx, conn, req)
	default:
		s.sendWebSocketError(conn, "invalid_request", "Unsupported request type: "+req.Type)
	}
}

// processWebSocketMerge runs one merge, forwarding the add report and every
// worker event, then sends the merged PDF as a binary frame.
func (s *Server) processWebSocketMerge(ctx context.Context, conn WebSocketConnWriter, req WebSocketMergeRequest) {
	if len(req.Files) == 0 {
		s.sendWebSocketError(conn, "invalid_request", "No files provided")
		return
	}
	if s.runner.Busy() {
		mergeRequestsTotal.WithLabelValues("websocket", "rejected").Inc()
		s.sendWebSocketError(conn, "busy", worker.ErrBusy.Error())
		return
	}

	dir, err := s.uploadDir()
	if err != nil {
		s.sendWebSocketError(conn, "processing_error", "Failed to create working directory")
		return
	}
	defer func() { _ = os.RemoveAll(dir) }()

	paths := make([]string, 0, len(req.Files))
	for i, f := range req.Files {
		p, err := saveBytes(dir, i, f.Name, f.Data)
		if err != nil {
			s.sendWebSocketError(conn, "processing_error", fmt.Sprintf("Failed to store %s: %v", f.Name, err))
			return
		}
		paths = append(paths, p)
	}

	sess, _ := s.newSession(dir)
	defer func() { _ = sess.Close() }()

	report := sess.Add(ctx, paths)
	s.sendWebSocketResponse(conn, WebSocketMergeResponse{Type: "add_report", Report: &report})
	if sess.Len() < 2 {
		mergeRequestsTotal.WithLabelValues("websocket", "rejected").Inc()
		s.sendWebSocketError(conn, "invalid_request", report.Summary())
		return
	}

	out := filepath.Join(dir, mergedName)
	events, err := sess.Merge(ctx, out)
	if err != nil {
		kind := "invalid_request"
		if errors.Is(err, worker.ErrBusy) {
			kind = "busy"
		}
		mergeRequestsTotal.WithLabelValues("websocket", "rejected").Inc()
		s.sendWebSocketError(conn, kind, err.Error())
		return
	}

	var last worker.Event
	for ev := range events {
		last = ev
		s.sendWebSocketResponse(conn, WebSocketMergeResponse{
			Type:    "merge_event",
			Status:  string(ev.Type),
			JobID:   ev.JobID,
			Pages:   ev.Pages,
			Message: ev.Message,
		})
	}
	if last.Type != worker.EventFinished {
		mergeRequestsTotal.WithLabelValues("websocket", "error").Inc()
		return
	}
	mergeRequestsTotal.WithLabelValues("websocket", "success").Inc()

	pdfData, err := os.ReadFile(out)
	if err != nil {
		s.sendWebSocketError(conn, "processing_error", "Merged file is missing")
		return
	}
	if err := conn.WriteMessage(websocket.BinaryMessage, pdfData); err != nil {
		s.log().Error("Failed to send merged PDF", "error", err)
		return
	}
	websocketMessagesTotal.WithLabelValues("sent").Inc()
}

// sendWebSocketResponse sends a response message over WebSocket.
func (s *Server) sendWebSocketResponse(conn WebSocketConnWriter, response WebSocketMergeResponse) {
	data, err := json.Marshal(response)
	if err != nil {
		s.log().Error("Failed to marshal WebSocket response", "error", err)
		return
	}

	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		s.log().Error("Failed to send WebSocket message", "error", err)
		return
	}

	websocketMessagesTotal.WithLabelValues("sent").Inc()
}

// sendWebSocketError sends an error message over WebSocket.
func (s *Server) sendWebSocketError(conn WebSocketConnWriter, errorType, message string) {
	s.sendWebSocketResponse(conn, WebSocketMergeResponse{
		Type:      "error",
		Status:    "error",
		Error:     message,
		ErrorType: errorType,
	})
}
