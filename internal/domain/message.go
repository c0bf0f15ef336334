package domain

import "time"

// Message is a post on the shared workspace board.
type Message struct {
	ID        int64
	Sender    string
	Text      string
	CreatedAt time.Time
}
