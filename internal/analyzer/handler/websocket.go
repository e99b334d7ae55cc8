// File: websocket.go
// Title: Analyzer WebSocket Handler
// Description: Provides interactive analysis over a WebSocket connection.
//              Clients send analyze requests and receive the full analysis
//              result per message, suitable for editor integrations that
//              re-analyze on every keystroke.
// Author: AnderBEz
// Version: v0.1.0
// Created: 2026-08-15
// Modified: 2026-08-15
//
// Change History:
// - 2026-08-15 v0.1.0: Initial WebSocket handler

package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/AnderBEz/thuCompiler/internal/analyzer/service"
	"github.com/AnderBEz/thuCompiler/pkg/core/logging"
)

// WebSocket upgrader with permissive settings for local development
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// WebSocketHandler handles WebSocket connections for live analysis
type WebSocketHandler struct {
	service *service.Service
	logger  *logging.Logger
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(svc *service.Service) *WebSocketHandler {
	return &WebSocketHandler{
		service: svc,
		logger:  logging.New("analyzer-websocket"),
	}
}

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type    string          `json:"type"`    // "analyze", "tokenize", "ping"
	Payload json.RawMessage `json:"payload"` // Message-specific payload
}

// WSAnalyzePayload represents the analyze message payload
type WSAnalyzePayload struct {
	Source string `json:"source"`
}

// WSResponse represents a WebSocket response
type WSResponse struct {
	Type    string      `json:"type"`    // "result", "tokens", "error", "pong"
	Payload interface{} `json:"payload"` // Response-specific payload
}

// WSErrorPayload represents an error payload
type WSErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ServeHTTP handles WebSocket upgrade and connections
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("WebSocket upgrade failed", "error", err)
		return
	}
	h.handleConnection(conn)
}

// handleConnection handles a single WebSocket connection
func (h *WebSocketHandler) handleConnection(conn *websocket.Conn) {
	defer conn.Close()

	h.logger.Info("WebSocket connection established", "remote", conn.RemoteAddr().String())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set read deadline for ping/pong
	conn.SetReadDeadline(time.Now().Add(120 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(120 * time.Second))
		return nil
	})

	// Read messages in a loop. Analysis is fast enough to run inline on
	// the read loop, which also keeps responses ordered per connection.
	for {
		var msg WSMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Error("WebSocket read error", "error", err)
			} else {
				h.logger.Info("WebSocket connection closed")
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(120 * time.Second))

		switch msg.Type {
		case "ping":
			h.sendResponse(conn, WSResponse{Type: "pong", Payload: nil})

		case "analyze":
			var payload WSAnalyzePayload
			if err := json.Unmarshal(msg.Payload, &payload); err != nil {
				h.sendError(conn, "invalid_payload", "Invalid analyze payload")
				continue
			}
			h.handleAnalyzeMessage(ctx, conn, payload)

		case "tokenize":
			var payload WSAnalyzePayload
			if err := json.Unmarshal(msg.Payload, &payload); err != nil {
				h.sendError(conn, "invalid_payload", "Invalid tokenize payload")
				continue
			}
			h.handleTokenizeMessage(ctx, conn, payload)

		default:
			h.sendError(conn, "unknown_type", "Unknown message type: "+msg.Type)
		}
	}
}

// handleAnalyzeMessage runs a full analysis and sends the result
func (h *WebSocketHandler) handleAnalyzeMessage(ctx context.Context, conn *websocket.Conn, payload WSAnalyzePayload) {
	if payload.Source == "" {
		h.sendError(conn, "invalid_request", "Source required")
		return
	}

	analyzeCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	result, err := h.service.Analyze(analyzeCtx, payload.Source)
	if err != nil {
		var tooLarge *service.ErrSourceTooLarge
		if errors.As(err, &tooLarge) {
			h.sendError(conn, "source_too_large", err.Error())
			return
		}
		h.sendError(conn, "analysis_failed", err.Error())
		return
	}

	h.sendResponse(conn, WSResponse{Type: "result", Payload: result})
}

// handleTokenizeMessage runs the scanner only and sends the token stream
func (h *WebSocketHandler) handleTokenizeMessage(ctx context.Context, conn *websocket.Conn, payload WSAnalyzePayload) {
	if payload.Source == "" {
		h.sendError(conn, "invalid_request", "Source required")
		return
	}

	tokenizeCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	result, err := h.service.Tokenize(tokenizeCtx, payload.Source)
	if err != nil {
		var tooLarge *service.ErrSourceTooLarge
		if errors.As(err, &tooLarge) {
			h.sendError(conn, "source_too_large", err.Error())
			return
		}
		h.sendError(conn, "tokenize_failed", err.Error())
		return
	}

	h.sendResponse(conn, WSResponse{Type: "tokens", Payload: result})
}

// sendResponse sends a response message via WebSocket
func (h *WebSocketHandler) sendResponse(conn *websocket.Conn, resp WSResponse) {
	if err := conn.WriteJSON(resp); err != nil {
		h.logger.Error("WebSocket send error", "error", err)
	}
}

// sendError sends an error response via WebSocket
func (h *WebSocketHandler) sendError(conn *websocket.Conn, code, message string) {
	h.sendResponse(conn, WSResponse{
		Type: "error",
		Payload: WSErrorPayload{
			Code:    code,
			Message: message,
		},
	})
}
