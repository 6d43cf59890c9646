package automation

import (
	"context"
	"time"
)

// Recorder stores finished gestures.
type Recorder interface {
	Record(ctx context.Context, lane *Lane) error
	Close() error
}

// Reader reads recorded gestures back.
type Reader interface {
	Lanes(ctx context.Context, handle string) ([]Lane, error)
}

// Repository is the storage behind a Recorder.
type Repository interface {
	Recorder
	Reader
}

// Lane is the automation written by one gesture: the window between begin
// and end, and the values set inside it.
type Lane struct {
	Handle string
	Began  time.Time
	Ended  time.Time
	Points []Point
}

// Point is one value set during a gesture.
type Point struct {
	At    time.Time
	Value float64
}

// Final returns the last value of the lane.
func (l *Lane) Final() (float64, bool) {
	if len(l.Points) == 0 {
		return 0, false
	}
	return l.Points[len(l.Points)-1].Value, true
}
