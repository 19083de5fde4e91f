package domain

import (
	"time"

	"github.com/google/uuid"
)

// AllocationEvent records one committed allocation. It is published after
// the catalog has been saved.
type AllocationEvent struct {
	ID          string         `json:"id"`
	SessionID   string         `json:"session_id,omitempty"`
	RecordID    string         `json:"record_id"`
	Coordinate  Coordinate     `json:"coordinate"`
	Query       Coordinate     `json:"query"`
	DistanceKM  float64        `json:"distance_km"`
	Allocated   map[string]int `json:"allocated"`
	Remaining   map[string]int `json:"remaining"`
	AllocatedAt time.Time      `json:"allocated_at"`
}

// NewAllocationEvent builds the event for a record that went from before to
// after in response to a lookup at query.
func NewAllocationEvent(sessionID string, query Coordinate, match Match, after StockRecord) AllocationEvent {
	remaining := make(map[string]int, len(after.Quantities))
	for k, v := range after.Quantities {
		remaining[k] = v
	}
	return AllocationEvent{
		ID:          uuid.NewString(),
		SessionID:   sessionID,
		RecordID:    after.ID,
		Coordinate:  after.Coordinate,
		Query:       query,
		DistanceKM:  match.DistanceKM,
		Allocated:   Allocated(match.Record, after),
		Remaining:   remaining,
		AllocatedAt: clock.Now().UTC(),
	}
}
