package handlers

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/husnainkhadir/sop-generator/internal/stream"
)

type WSHandler struct {
	registry *stream.Registry
	log      *logrus.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(registry *stream.Registry, log *logrus.Logger) *WSHandler {
	return &WSHandler{
		registry: registry,
		log:      log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true }, // TODO: restrict origin in prod
		},
	}
}

type wsClientMsg struct {
	Type  string `json:"type"`
	Data  string `json:"data"`  // base64 audio bytes
	Final bool   `json:"final"` // no more audio follows on this connection
}

type wsConn struct {
	c  *websocket.Conn
	mu sync.Mutex
}

func (w *wsConn) writeText(b []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.c.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return w.c.WriteMessage(websocket.TextMessage, b)
}

func (w *wsConn) writeJSON(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return w.writeText(b)
}

// wsEmitter adapts a websocket connection to the session event contract.
type wsEmitter struct {
	wc *wsConn
}

func (e *wsEmitter) EmitTranscription(text string) error {
	return e.wc.writeJSON(map[string]string{"type": "transcription", "data": text})
}

func (e *wsEmitter) EmitError(message string) error {
	return e.wc.writeJSON(map[string]string{"type": "error", "message": message})
}

// Transcribe serves the live captioning socket. One registry session per
// connection; the session is torn down when the socket closes, discarding any
// audio that never reached a flush.
func (h *WSHandler) Transcribe(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// upgrade already wrote response in most cases
		return
	}
	defer conn.Close()

	wc := &wsConn{c: conn}
	identity := uuid.NewString()

	session, err := h.registry.Open(identity, &wsEmitter{wc: wc})
	if err != nil {
		_ = wc.writeText([]byte(`{"type":"error","message":"failed to open session"}`))
		return
	}
	defer h.registry.Close(identity)

	log := h.log.WithField("session_id", identity)
	log.Info("streaming session opened")

	_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, data, rerr := conn.ReadMessage()
		if rerr != nil {
			log.WithError(rerr).Debug("streaming session read ended")
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))

		var msg wsClientMsg
		if err := json.Unmarshal(data, &msg); err != nil {
			_ = wc.writeText([]byte(`{"type":"error","message":"invalid json"}`))
			continue
		}

		switch msg.Type {
		case "audio":
			chunk, err := decodeBase64Payload(msg.Data)
			if err != nil {
				_ = wc.writeText([]byte(`{"type":"error","message":"invalid base64 audio"}`))
				continue
			}
			if err := session.Append(chunk, msg.Final); err != nil {
				log.WithError(err).Warn("chunk rejected")
				return
			}

		default:
			_ = wc.writeText([]byte(`{"type":"error","message":"unknown message type"}`))
		}
	}
}
