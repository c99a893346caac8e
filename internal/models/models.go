package models

import (
	"time"
)

// Activation is one finished detection run as kept in the history.
type Activation struct {
	ID          int64
	Timestamp   time.Time
	Outcome     string
	SourceTitle string
	PiPWindow   string
	Monitor     string
	Target      struct {
		X      int
		Y      int
		Width  int
		Height int
	}
	Error string
}
