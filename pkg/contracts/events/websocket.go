// Package events contains event contract definitions for WebSocket
// communication with dashboard pages.
package events

import (
	"time"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	// MessageTypeDataUpdate is sent after the dataset has been reloaded
	MessageTypeDataUpdate MessageType = "data_update"

	// Connection messages
	MessageTypeConnect MessageType = "connect"
	MessageTypeError   MessageType = "error"
)

// BaseMessage represents the base structure for all WebSocket messages
type BaseMessage struct {
	ID        string      `json:"id,omitempty"`
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	TraceID   string      `json:"trace_id,omitempty"`
}

// WebSocketMessage represents a complete WebSocket message
type WebSocketMessage struct {
	BaseMessage
	Data interface{} `json:"data,omitempty"`
}

// DataUpdate describes a reloaded dataset
type DataUpdate struct {
	Source       string    `json:"source"`
	Observations int       `json:"observations"`
	Companies    int       `json:"companies"`
	LoadedAt     time.Time `json:"loaded_at"`
	Error        string    `json:"error,omitempty"`
}
