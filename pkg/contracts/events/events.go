// Package events contains the event contract definitions for WebSocket
// communication in the orders reporting service.
package events

import (
	"time"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	// Dataset lifecycle messages
	MessageTypeDatasetUploaded   MessageType = "dataset:uploaded"
	MessageTypeDatasetRecomputed MessageType = "dataset:recomputed"
	MessageTypeDatasetExported   MessageType = "dataset:exported"
	MessageTypeDatasetDeleted    MessageType = "dataset:deleted"

	// Connection messages
	MessageTypeConnect    MessageType = "connection"
	MessageTypeDisconnect MessageType = "disconnect"
	MessageTypeError      MessageType = "error"
)

// Message represents a complete WebSocket message
type Message struct {
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	TraceID   string      `json:"trace_id,omitempty"`
	Data      interface{} `json:"data,omitempty"`
}

// DatasetEvent is the payload for dataset lifecycle messages
type DatasetEvent struct {
	DatasetID string `json:"dataset_id"`
	Filename  string `json:"filename,omitempty"`
	Rows      int    `json:"rows,omitempty"`
	Format    string `json:"format,omitempty"`
}

// NewMessage builds a message stamped with the current time
func NewMessage(msgType MessageType, data interface{}) Message {
	return Message{
		Type:      msgType,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}
