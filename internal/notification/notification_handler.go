package notification

import (
	"context"
	"time"

	"github.com/coder/websocket"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const writeTimeout = 5 * time.Second

type Handler struct {
	hub    *Hub
	logger *zap.Logger
}

func NewHandler(hub *Hub, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("notification.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("notification.handler")
	}
	return &Handler{hub: hub, logger: l}
}

// Subscribe meng-upgrade koneksi ke WebSocket dan mendorong notifikasi
// company si pemanggil sampai klien menutup koneksi.
func (h *Handler) Subscribe(c *gin.Context) {
	companyID := c.GetString("company_id")

	conn, err := websocket.Accept(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket accept failed", zap.Error(err))
		return
	}
	defer conn.CloseNow()

	client := h.hub.register(companyID)
	defer h.hub.unregister(client)

	ctx := c.Request.Context()

	// Baca di goroutine terpisah hanya untuk mendeteksi close dari klien;
	// server tidak menerima pesan apa pun.
	readClosed := make(chan struct{})
	go func() {
		defer close(readClosed)
		for {
			if _, _, err := conn.Read(ctx); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusGoingAway, "server shutting down")
			return
		case <-readClosed:
			return
		case payload, ok := <-client.send:
			if !ok {
				conn.Close(websocket.StatusPolicyViolation, "client too slow")
				return
			}
			writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := conn.Write(writeCtx, websocket.MessageText, payload)
			cancel()
			if err != nil {
				h.logger.Debug("websocket write failed",
					zap.String("company_id", companyID),
					zap.Error(err),
				)
				return
			}
		}
	}
}
