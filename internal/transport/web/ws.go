package web

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sandevgo/medrag/pkg/log"
)

const (
	wsReadLimit = maxBodyBytes
	wsPongWait  = 60 * time.Second
	wsWriteWait = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
}

// handleWS serves a conversation over one websocket. The session is taken from
// the cookie or created by the first turn and then kept for the connection.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.FromCtx(ctx)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	conn.SetReadLimit(wsReadLimit)
	_ = conn.SetReadDeadline(time.Now().Add(s.pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(s.pongWait))
	})

	done := make(chan struct{})
	defer close(done)
	go keepAlive(conn, s.pongWait*9/10, done)

	sessionID := s.sessionFromCookie(r)
	for {
		var req chatRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug().Err(err).Msg("websocket closed")
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(s.pongWait))
		if req.SessionID != "" {
			sessionID = req.SessionID
		}

		reply, err := s.chat.Handle(ctx, sessionID, req.Message)
		if err != nil {
			logger.Error().Err(err).Msg("turn failed")
			_ = conn.WriteJSON(errorResponse{Error: "internal error"})
			continue
		}
		if reply.Rejected {
			_ = conn.WriteJSON(errorResponse{Error: reply.Text})
			continue
		}

		sessionID = reply.SessionID
		if err := conn.WriteJSON(newChatResponse(reply)); err != nil {
			logger.Debug().Err(err).Msg("websocket write failed")
			return
		}
	}
}

// keepAlive pings the peer every period so idle clients answer with pongs
// and the read deadline keeps moving.
func keepAlive(conn *websocket.Conn, period time.Duration, done <-chan struct{}) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				return
			}
		}
	}
}
