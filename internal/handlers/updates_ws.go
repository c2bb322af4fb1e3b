package handlers

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/gul251/nutrimate-backend/internal/services"
)

var updatesUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS is enforced on the API routes; browsers cannot set
		// Authorization on WebSocket requests so the token rides in
		// the query string instead.
		return true
	},
}

// clientMessage is what a connected page sends to manage its topic
// subscriptions.
type clientMessage struct {
	Type  string `json:"type"`
	Topic string `json:"topic"`
}

// UpdatesWebSocket upgrades the connection and streams the user's own
// change events for the topics it subscribes to. The subscription lives
// until the socket closes; there is no automatic reconnect server-side.
func UpdatesWebSocket(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		token = extractBearerToken(r.Header.Get("Authorization"))
	}
	if token == "" {
		writeUnauthenticated(w)
		return
	}

	uid, ok, err := services.ValidateSession(token)
	if err != nil || !ok {
		writeUnauthenticated(w)
		return
	}

	conn, err := updatesUpgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ERROR: websocket upgrade failed: %v", err)
		return
	}

	uc := services.RegisterUserConnection(uid, conn)
	defer func() {
		services.UnregisterUserConnection(uc)
		conn.Close()
	}()

	conn.WriteJSON(map[string]string{"type": "connected"})

	for {
		var msg clientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("websocket read error for %s: %v", uid, err)
			}
			return
		}

		switch msg.Type {
		case "subscribe":
			if msg.Topic != "" {
				services.SubscribeToTopic(uid, msg.Topic)
			}
		case "unsubscribe":
			if msg.Topic != "" {
				services.UnsubscribeFromTopic(uid, msg.Topic)
			}
		}
	}
}
