package repository

import (
	"errors"
	"time"
)

var ErrObjectNotFound = errors.New("not found")

type Order struct {
	ID          string    `db:"id"`
	ClientName  string    `db:"client_name"`
	ClientPhone string    `db:"client_phone"`
	OysterType  string    `db:"oyster_type"`
	Origin      string    `db:"origin"`
	Quantity    float64   `db:"quantity"`
	PickupDate  string    `db:"pickup_date"`
	PickupTime  string    `db:"pickup_time"`
	Location    string    `db:"location"`
	Notes       string    `db:"notes"`
	Status      string    `db:"status"`
	CreatorID   string    `db:"creator_id"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// OrderFilter narrows List queries. Empty fields are not applied.
type OrderFilter struct {
	Status     string
	CreatorID  string
	Location   string
	PickupDate string
	From       string
	To         string
}

type Seller struct {
	ID          string `db:"id"`
	DisplayName string `db:"display_name"`
	PinHash     string `db:"pin_hash"`
	IsActive    bool   `db:"is_active"`
	Type        string `db:"type"`
}
