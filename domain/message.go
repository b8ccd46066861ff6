// Package domain contains core concepts of the chat delivery subsystem.
// This file defines Message entities and their delivery states.
// Messages are immutable except for their retry-state fields.
package domain

import (
	"time"
)

// DeliveryState is the send outcome of a message.
type DeliveryState string

const (
	SentOK   DeliveryState = "SENT_OK"
	Failed   DeliveryState = "FAILED"
	Retrying DeliveryState = "RETRYING"
)

// Message represents a chat event as served by the backend.
// ID is opaque and totally ordered consistent with insertion order
// within a chat. Only FailedToSend and RetryCount ever change.
type Message struct {
	ID           string    `json:"id"`
	ChatID       string    `json:"chatId"`
	SenderID     *string   `json:"senderId"` // nil means system message
	Sender       string    `json:"sender"`
	Text         string    `json:"text"`
	CreatedAt    time.Time `json:"createdAt"`
	FailedToSend bool      `json:"failedToSend"`
	RetryCount   int       `json:"retryCount"`
}

// State projects the persisted retry flags onto a delivery state.
// Retrying is never persisted, it only exists while a retry is in flight.
func (m Message) State() DeliveryState {
	if m.FailedToSend {
		return Failed
	}
	return SentOK
}

// System reports whether the message was authored by the platform
// rather than a participant.
func (m Message) System() bool {
	return m.SenderID == nil
}
