// Package queue defines message payloads exchanged over the message broker.
package queue

// RoomActivityEvent is published whenever a room's activity feed gains
// an entry (skip votes, likes, attribute picks, song changes). It
// carries enough information for downstream consumers to log or run
// analytics without querying the primary database. UserID is zero for
// system events such as natural song transitions.
type RoomActivityEvent struct {
	RoomID    uint64 `json:"room_id"`
	UserID    uint64 `json:"user_id,omitempty"`
	UserName  string `json:"user_name,omitempty"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}
