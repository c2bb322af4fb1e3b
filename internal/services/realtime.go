package services

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gul251/nutrimate-backend/internal/database"
)

// Subscription topics a client can listen to.
const (
	TopicProfile   = "profile"
	TopicMealPlans = "mealPlans"
)

// UpdateEvent is the payload broadcast over Redis and WebSocket whenever a
// user's data changes. Data carries a fresh snapshot (profile document or
// meal-plan list); deliveries are unordered with respect to local writes,
// so consumers must treat it as eventually consistent.
type UpdateEvent struct {
	Type      string      `json:"type"`
	UserID    string      `json:"user_id"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp,omitempty"`
}

// UpdateConn is the minimal interface our WebSocket implementation must satisfy.
type UpdateConn interface {
	WriteJSON(v interface{}) error
	Close() error
}

// UserConnection tracks a single user's WebSocket connection and topic
// subscriptions. The subscription lives until UnregisterUserConnection.
type UserConnection struct {
	UID          string
	Conn         UpdateConn
	SubscribedTo map[string]struct{}
	mu           sync.RWMutex
}

// UpdateHub is a registry of user connections.
type UpdateHub struct {
	mu          sync.RWMutex
	connections map[string]*UserConnection
}

var (
	updateHub    = &UpdateHub{connections: make(map[string]*UserConnection)}
	redisStarted sync.Once
)

// RegisterUserConnection registers or replaces a user's connection.
func RegisterUserConnection(uid string, conn UpdateConn) *UserConnection {
	uc := &UserConnection{
		UID:          uid,
		Conn:         conn,
		SubscribedTo: make(map[string]struct{}),
	}

	updateHub.mu.Lock()
	updateHub.connections[uid] = uc
	updateHub.mu.Unlock()

	return uc
}

// UnregisterUserConnection removes a connection from the hub. If the uid
// has since registered a newer connection, that one is left in place so a
// stale teardown cannot silence the live socket.
func UnregisterUserConnection(uc *UserConnection) {
	if uc == nil {
		return
	}
	updateHub.mu.Lock()
	if updateHub.connections[uc.UID] == uc {
		delete(updateHub.connections, uc.UID)
	}
	updateHub.mu.Unlock()
}

// SubscribeToTopic tracks a topic subscription for fan-out.
func SubscribeToTopic(uid, topic string) {
	updateHub.mu.RLock()
	uc, ok := updateHub.connections[uid]
	updateHub.mu.RUnlock()
	if !ok {
		return
	}
	uc.mu.Lock()
	defer uc.mu.Unlock()
	uc.SubscribedTo[topic] = struct{}{}
}

// UnsubscribeFromTopic removes a topic subscription.
func UnsubscribeFromTopic(uid, topic string) {
	updateHub.mu.RLock()
	uc, ok := updateHub.connections[uid]
	updateHub.mu.RUnlock()
	if !ok {
		return
	}
	uc.mu.Lock()
	defer uc.mu.Unlock()
	delete(uc.SubscribedTo, topic)
}

// FanOutUpdateEvent delivers an event to the owning user's connection if it
// is subscribed to the event's topic.
func FanOutUpdateEvent(event UpdateEvent) {
	if event.UserID == "" || event.Type == "" {
		return
	}

	updateHub.mu.RLock()
	uc, ok := updateHub.connections[event.UserID]
	updateHub.mu.RUnlock()
	if !ok {
		return
	}

	uc.mu.RLock()
	_, subscribed := uc.SubscribedTo[event.Type]
	uc.mu.RUnlock()
	if !subscribed {
		return
	}

	if err := uc.Conn.WriteJSON(event); err != nil {
		log.Printf("error writing update event to websocket: %v", err)
	}
}

// StartRedisUpdateSubscriber ensures a single shared Redis listener per instance.
func StartRedisUpdateSubscriber(ctx context.Context) {
	redisStarted.Do(func() {
		go runRedisSubscriber(ctx)
	})
}

func runRedisSubscriber(ctx context.Context) {
	client := database.RedisClient
	if client == nil {
		log.Println("Redis client not initialized; update subscriber not started")
		return
	}

	backoff := time.Second

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		func() {
			pubsub := client.PSubscribe(ctx, "updates:user:*")
			defer pubsub.Close()

			log.Println("✅ Update Redis subscriber started (pattern: updates:user:*)")

			for {
				msg, err := pubsub.ReceiveMessage(ctx)
				if err != nil {
					log.Printf("Redis subscriber error: %v", err)
					time.Sleep(backoff)
					backoff *= 2
					if backoff > 30*time.Second {
						backoff = 30 * time.Second
					}
					return
				}

				backoff = time.Second

				var event UpdateEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					log.Printf("failed to unmarshal update event: %v", err)
					continue
				}

				FanOutUpdateEvent(event)
			}
		}()
	}
}

// PublishUpdateEvent publishes a change event to Redis; called after every
// successful profile or meal-plan mutation.
func PublishUpdateEvent(ctx context.Context, event UpdateEvent) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	channel := "updates:user:" + event.UserID
	return database.RedisClient.Publish(ctx, channel, data).Err()
}
