package websocket

import (
	"encoding/json"
	"time"
)

// Envelope - "конверт" сообщения. Type говорит фронтенду, что делать с Payload.
type Envelope struct {
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

func NewEnvelope(messageType string, payload interface{}) Envelope {
	return Envelope{Type: messageType, Payload: payload, Timestamp: time.Now().UTC()}
}

func (e Envelope) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// IncomingMessage - команда от браузера (например, подписка на заявку).
type IncomingMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// NotificationPayload - уведомление конкретному пользователю ("колокольчик").
type NotificationPayload struct {
	EventID   string    `json:"eventId"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	OrderID   uint64    `json:"orderId,omitempty"`
	MachineID uint64    `json:"machineId,omitempty"`
	Actor     ActorInfo `json:"actor"`
	Link      string    `json:"link,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type ActorInfo struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}
