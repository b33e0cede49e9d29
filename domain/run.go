package dmn

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrRunNotFound is returned when no run has the requested ID.
var ErrRunNotFound = errors.New("run not found")

// Cell is a stored grid coordinate.
type Cell struct {
	Row int `bson:"row" json:"row"`
	Col int `bson:"col" json:"col"`
}

// Run is the persisted report of one exploration of a maze.
type Run struct {
	ID             uuid.UUID `bson:"_id" json:"id"`
	Width          int       `bson:"width" json:"width"`
	Height         int       `bson:"height" json:"height"`
	Seed           int64     `bson:"seed" json:"seed"`
	Obstacles      []Cell    `bson:"obstacles" json:"obstacles"`
	PathLength     int       `bson:"pathLength" json:"pathLength"`         // Cells on the canonical entrance-to-exit path
	Visited        int       `bson:"visited" json:"visited"`               // Cells the robot stood in
	Order          []Cell    `bson:"order" json:"order"`                   // Visit order
	Skipped        []Cell    `bson:"skipped" json:"skipped"`               // Queued cells that could not be reached
	Moves          int       `bson:"moves" json:"moves"`                   // Confirmed one-cell moves
	BlockedMoves   int       `bson:"blockedMoves" json:"blockedMoves"`     // Moves refused by a live reading
	SensorFailures int       `bson:"sensorFailures" json:"sensorFailures"` // Failed sensor calls, retried or not
	Completed      bool      `bson:"completed" json:"completed"`
	Aborted        string    `bson:"aborted,omitempty" json:"aborted,omitempty"`
	StartedAt      time.Time `bson:"startedAt" json:"startedAt"`
	FinishedAt     time.Time `bson:"finishedAt" json:"finishedAt"`
	Map            string    `bson:"map" json:"map"` // Rendered discovered map
}
