package repository

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type TaskStatus string

const (
	TaskStatusCreated    TaskStatus = "CREATED"
	TaskStatusProcessing TaskStatus = "PROCESSING"
	TaskStatusFailed     TaskStatus = "FAILED"
	TaskStatusDone       TaskStatus = "DONE"
)

type OutboxTask struct {
	ID          uuid.UUID       `db:"id"`
	Status      TaskStatus      `db:"status"`
	Payload     json.RawMessage `db:"payload"`
	Topic       string          `db:"topic"`
	Attempts    int             `db:"attempts"`
	LastError   *string         `db:"last_error"`
	CreatedAt   time.Time       `db:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at"`
	CompletedAt *time.Time      `db:"completed_at"`
}

// OrderEventPayload is what lands on the order_events topic for every
// lifecycle change, written in the same transaction as the change itself.
type OrderEventPayload struct {
	Event      string    `json:"event"`
	OrderID    string    `json:"order_id"`
	CreatorID  string    `json:"creator_id,omitempty"`
	Status     string    `json:"status,omitempty"`
	PickupDate string    `json:"pickup_date,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
