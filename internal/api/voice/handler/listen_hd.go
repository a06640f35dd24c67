package voiceHandler

import (
	"KalaVaani/internal/entity"
	"KalaVaani/pkg/log"
	"KalaVaani/pkg/recovery"
	"net"
	"time"

	"github.com/gofiber/websocket/v2"
	"golang.org/x/net/context"
)

// handleListenStream keeps a continuous recognition stream open for one
// session. Binary frames are audio; the text frame "stop" ends the
// stream. Each processed frame answers with a partial transcript.
func (h *VoiceHandler) handleListenStream(c *websocket.Conn) {
	sessionID := c.Params("session_id")
	language := c.Query("language")

	user, ok := c.Locals("user").(entity.UserLoginData)
	if !ok {
		_ = c.WriteJSON(map[string]string{"error": "unauthorized"})
		return
	}

	ownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	_, err := h.voiceService.GetSession(ownCtx, user.ID, sessionID)
	cancel()
	if err != nil {
		_ = c.WriteJSON(map[string]string{"error": err.Error()})
		return
	}

	if err := h.voiceService.BeginListening(sessionID); err != nil {
		_ = c.WriteJSON(map[string]string{"error": err.Error()})
		return
	}
	defer h.voiceService.EndListening(sessionID)

	h.log.WithFields(log.Fields{
		"session_id": sessionID,
	}).Info("Listening stream opened")
	defer h.log.WithFields(log.Fields{
		"session_id": sessionID,
	}).Info("Listening stream closed")

	c.SetPingHandler(func(data string) error {
		if err := c.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(5*time.Second)); err != nil {
			h.log.Errorf("Error sending pong: %v", err)
		}
		return nil
	})

	// Ten seconds without a frame ends the attempt with the same kind a
	// failed recognition reports.
	silenceTimeout := 10 * time.Second

	for {
		if err := c.SetReadDeadline(time.Now().Add(silenceTimeout)); err != nil {
			h.log.Errorf("Error setting read deadline: %v", err)
			break
		}

		messageType, message, err := c.ReadMessage()
		if err != nil {
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				_ = c.WriteJSON(map[string]string{"error": string(recovery.KindSpeechNotRecognized)})
				break
			}
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				h.log.Errorf("Listening stream error: %v", err)
			}
			break
		}

		switch messageType {
		case websocket.BinaryMessage:
			partial, err := h.voiceService.StreamFrame(context.Background(), sessionID, language, message)
			if err != nil {
				if writeErr := c.WriteJSON(map[string]string{"error": err.Error()}); writeErr != nil {
					h.log.Errorf("Error sending error response: %v", writeErr)
					return
				}
				continue
			}

			if err := c.WriteJSON(partial); err != nil {
				h.log.Errorf("Error writing partial transcript: %v", err)
				return
			}
		case websocket.TextMessage:
			if string(message) == "stop" {
				return
			}
		}
	}
}
