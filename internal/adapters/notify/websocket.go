package notify

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// writeWait bounds a single write to the peer.
	writeWait = 10 * time.Second

	// pongWait bounds the silence between pongs from the peer.
	pongWait = 60 * time.Second

	// pingPeriod must stay below pongWait.
	pingPeriod = (pongWait * 9) / 10

	// maxMessageSize limits inbound frames. Listeners only receive.
	maxMessageSize = 512
)

// Stream writes every notification of sub to conn as a JSON text frame until
// the subscription closes, the peer goes away, or ctx ends. It closes conn
// before returning. Inbound frames are read and discarded so control frames
// are processed.
func Stream(ctx context.Context, conn *websocket.Conn, sub *Subscription, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	logger = logger.With(slog.String("subscriber_id", sub.ID))

	defer func() { _ = conn.Close() }()

	peerGone := make(chan struct{})

	go func() {
		defer close(peerGone)

		conn.SetReadLimit(maxMessageSize)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					logger.Warn("websocket read failed", slog.Any("error", err))
				}

				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			writeClose(conn, websocket.CloseGoingAway)
			return nil

		case <-peerGone:
			return nil

		case n, ok := <-sub.C():
			if !ok {
				writeClose(conn, websocket.CloseNormalClosure)
				return nil
			}

			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))

			if err := conn.WriteJSON(n); err != nil {
				if errors.Is(err, websocket.ErrCloseSent) {
					return nil
				}

				return err
			}

		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))

			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return err
			}
		}
	}
}

func writeClose(conn *websocket.Conn, code int) {
	msg := websocket.FormatCloseMessage(code, "")
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
}
