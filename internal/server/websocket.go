package server

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/atlasocr/wasl/internal/extract"
)

// Keepalive timing for websocket connections.
const (
	wsReadWait   = 60 * time.Second
	wsPingPeriod = 30 * time.Second
	wsWriteWait  = 10 * time.Second
)

// upgrader with reasonable buffer defaults. Any origin may connect; the
// browser-facing policy is the CORS configuration on the REST routes.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// wsRequest is the opening text frame of one websocket extraction: the
// template to apply to the binary image frame that follows.
type wsRequest struct {
	TemplateID string `json:"template_id"`
}

// wsProgress is one streamed progress event.
type wsProgress struct {
	Type   string `json:"type"`
	Stage  string `json:"stage"`
	Detail string `json:"detail,omitempty"`
}

// wsResult is the closing frame of one extraction, also used for errors.
type wsResult struct {
	Type    string          `json:"type"`
	Success bool            `json:"success"`
	Result  *extract.Result `json:"result,omitempty"`
	Missing []string        `json:"missing_required,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// wsWriter is the connection surface the send helpers need.
type wsWriter interface {
	WriteMessage(messageType int, data []byte) error
}

// extractWebSocketHandler upgrades the connection and serves extractions
// until the client disconnects.
func (s *Server) extractWebSocketHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("websocket upgrade failed", "error", err)
		return
	}
	defer func() { _ = conn.Close() }()

	websocketConnections.Inc()
	defer websocketConnections.Dec()

	slog.Info("websocket connection established", "remote_addr", r.RemoteAddr)
	s.serveWebSocket(r.Context(), conn)
}

// serveWebSocket runs the request loop: each extraction is a text frame
// naming the template followed by a binary image frame. Bad frames produce
// an error frame and the loop continues; a broken connection ends it.
func (s *Server) serveWebSocket(ctx context.Context, conn *websocket.Conn) {
	_ = conn.SetReadDeadline(time.Now().Add(wsReadWait))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(wsReadWait))
		return nil
	})

	stop := make(chan struct{})
	defer close(stop)
	go pingLoop(conn, stop)

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Error("websocket read failed", "error", err)
			}
			return
		}
		websocketMessagesTotal.WithLabelValues("received").Inc()

		if messageType != websocket.TextMessage {
			s.sendWSError(conn, "expected a template_id frame")
			continue
		}

		var req wsRequest
		if err := json.Unmarshal(data, &req); err != nil {
			s.sendWSError(conn, "invalid request: "+err.Error())
			continue
		}
		if req.TemplateID == "" {
			s.sendWSError(conn, "no template_id provided")
			continue
		}
		if _, err := s.engine.Store().Get(req.TemplateID); err != nil {
			s.sendWSError(conn, err.Error())
			continue
		}

		s.sendWSProgress(conn, "awaiting_image", req.TemplateID)

		img, err := s.readWSImage(conn)
		if err != nil {
			return
		}
		if img == nil {
			continue
		}

		s.runWSExtraction(ctx, conn, img, req.TemplateID)
	}
}

// pingLoop keeps the connection alive until stop closes.
func pingLoop(conn *websocket.Conn, stop <-chan struct{}) {
	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(wsWriteWait)); err != nil {
				return
			}
		}
	}
}

// readWSImage reads and decodes the binary image frame following a request
// frame. A nil image with nil error means the frame was bad and the error
// frame already sent; a non-nil error means the connection is gone.
func (s *Server) readWSImage(conn *websocket.Conn) (image.Image, error) {
	messageType, data, err := conn.ReadMessage()
	if err != nil {
		return nil, err
	}
	websocketMessagesTotal.WithLabelValues("received").Inc()

	if messageType != websocket.BinaryMessage {
		s.sendWSError(conn, "expected a binary image frame")
		return nil, nil
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		s.sendWSError(conn, "invalid image format: "+err.Error())
		return nil, nil
	}
	return img, nil
}

// runWSExtraction runs one extraction and streams its progress and result.
func (s *Server) runWSExtraction(ctx context.Context, conn wsWriter, img image.Image, templateID string) {
	s.sendWSProgress(conn, "extracting", templateID)

	runCtx, cancel := s.boundedContext(ctx)
	defer cancel()

	start := time.Now()
	res, err := s.engine.ExtractImage(runCtx, img, templateID)
	elapsed := time.Since(start)
	if err != nil {
		extractionsTotal.WithLabelValues("websocket", "error").Inc()
		s.sendWSError(conn, "extraction failed: "+err.Error())
		return
	}

	extractionsTotal.WithLabelValues("websocket", "success").Inc()
	extractionDuration.WithLabelValues("websocket").Observe(elapsed.Seconds())
	fieldsResolved.WithLabelValues("websocket").Observe(float64(len(res.Fields)))

	s.sendWS(conn, wsResult{
		Type:    "result",
		Success: true,
		Result:  res,
		Missing: res.MissingRequired(),
	})
}

// sendWSProgress sends a progress frame.
func (s *Server) sendWSProgress(conn wsWriter, stage, detail string) {
	s.sendWS(conn, wsProgress{Type: "progress", Stage: stage, Detail: detail})
}

// sendWSError sends an error frame.
func (s *Server) sendWSError(conn wsWriter, message string) {
	s.sendWS(conn, wsResult{Type: "error", Error: message})
}

// sendWS marshals and sends one text frame.
func (s *Server) sendWS(conn wsWriter, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("failed to marshal websocket frame", "error", err)
		return
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		slog.Error("failed to send websocket frame", "error", err)
		return
	}
	websocketMessagesTotal.WithLabelValues("sent").Inc()
}
