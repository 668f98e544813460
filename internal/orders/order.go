package orders

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// Grade is the oyster size classification. Values outside the known set are
// kept verbatim so that records written by older clients still round-trip.
type Grade string

const (
	GradeN1        Grade = "n1"
	GradeN2        Grade = "n2"
	GradeN3        Grade = "n3"
	GradeN4        Grade = "n4"
	GradeSpeciales Grade = "speciales"
)

type Origin string

const (
	OriginStandard Origin = "standard"
	OriginArguin   Origin = "arguin"
)

type Location string

const (
	LocationCabane          Location = "cabane"
	LocationMarchePiraillan Location = "marche_piraillan"
	LocationMarcheCabreton  Location = "marche_cabreton"
)

type Status string

const (
	StatusActive    Status = "active"
	StatusReceived  Status = "recue"
	StatusCancelled Status = "annulee"
)

// DateLayout is the calendar-date form used by PickupDate. Dates are compared
// as strings, never through time.Time, so a pickup on "2024-03-10" stays on
// the 10th regardless of the server timezone.
const DateLayout = "2006-01-02"

const TimeLayout = "15:04"

var GradeLabels = map[Grade]string{
	GradeN1:        "Numéro 1",
	GradeN2:        "Numéro 2",
	GradeN3:        "Numéro 3",
	GradeN4:        "Numéro 4",
	GradeSpeciales: "Spéciales",
}

var OriginLabels = map[Origin]string{
	OriginStandard: "Canelon",
	OriginArguin:   "Arguin",
}

var LocationLabels = map[Location]string{
	LocationCabane:          "Cabane",
	LocationMarchePiraillan: "Marché Piraillan",
	LocationMarcheCabreton:  "Marché Cabreton",
}

var StatusLabels = map[Status]string{
	StatusActive:    "Active",
	StatusReceived:  "Livrée",
	StatusCancelled: "Annulée",
}

type Order struct {
	ID          string    `json:"id"`
	ClientName  string    `json:"client_name"`
	ClientPhone string    `json:"client_phone,omitempty"`
	OysterType  Grade     `json:"oyster_type"`
	Origin      Origin    `json:"origin"`
	Quantity    float64   `json:"quantity"`
	PickupDate  string    `json:"pickup_date"`
	PickupTime  string    `json:"pickup_time"`
	Location    Location  `json:"location"`
	Notes       string    `json:"notes,omitempty"`
	Status      Status    `json:"status"`
	CreatorID   string    `json:"creator_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

var (
	ErrOrderCancelled = errors.New("order is cancelled")
	ErrInvalidStatus  = errors.New("invalid status")
)

// ValidationError reports a client-side mistake detected before any write.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsValidQuantity accepts quantities of at least half a dozen, counted in
// half-dozen steps. There is no upper bound.
func IsValidQuantity(q float64) bool {
	if q < 0.5 {
		return false
	}
	return q == math.Trunc(q*2)/2
}

// Validate checks the fields a seller fills in when creating or editing an
// order. Enum membership is deliberately not checked: unknown grades and
// locations pass through so the packing views can still count them.
func Validate(o Order) error {
	if strings.TrimSpace(o.ClientName) == "" {
		return &ValidationError{Field: "client_name", Reason: "required"}
	}
	if !IsValidQuantity(o.Quantity) {
		return &ValidationError{Field: "quantity", Reason: "minimum 1/2 douzaine (0.5), en pas de 0.5"}
	}
	if _, err := time.Parse(DateLayout, o.PickupDate); err != nil {
		return &ValidationError{Field: "pickup_date", Reason: "must be YYYY-MM-DD"}
	}
	if o.PickupTime != "" {
		if _, err := time.Parse(TimeLayout, o.PickupTime); err != nil {
			return &ValidationError{Field: "pickup_time", Reason: "must be HH:MM"}
		}
	}
	return nil
}

// ToggleStatus flips an order between active and delivered. Cancelled orders
// are left alone: they can only come back through an explicit reactivation.
func ToggleStatus(s Status) (Status, error) {
	switch s {
	case StatusActive:
		return StatusReceived, nil
	case StatusReceived:
		return StatusActive, nil
	case StatusCancelled:
		return s, ErrOrderCancelled
	default:
		return s, fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
}

// CanTransition reports whether a status change is allowed. Any status may be
// cancelled; a cancelled order may only be reactivated.
func CanTransition(from, to Status) bool {
	switch from {
	case StatusCancelled:
		return to == StatusActive
	case StatusActive:
		return to == StatusReceived || to == StatusCancelled
	case StatusReceived:
		return to == StatusActive || to == StatusCancelled
	default:
		return false
	}
}

// FormatQuantity renders a dozen count the way the sellers say it.
func FormatQuantity(q float64) string {
	switch {
	case q <= 0:
		return "Non spécifiée"
	case q == 0.5:
		return "1/2 douzaine"
	case q == 1:
		return "1 douzaine"
	case q == 1.5:
		return "1 douzaine et demie"
	case q == math.Trunc(q):
		if q > 1 {
			return fmt.Sprintf("%.0f douzaines", q)
		}
		return fmt.Sprintf("%.0f douzaine", q)
	default:
		return fmt.Sprintf("%g douzaines", q)
	}
}

// FormatQuantityShort is the compact variant used in tight table cells.
func FormatQuantityShort(q float64) string {
	if q <= 0 {
		return "Non spécifiée"
	}
	return fmt.Sprintf("%g dz", q)
}
