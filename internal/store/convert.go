package store

import (
	"github.com/lacabane/commandes/internal/orders"
	"github.com/lacabane/commandes/internal/repository"
)

// legacyOriginArguin is a misspelling present in records written by an older
// client. Normalized on read; the canonical value is "arguin".
const legacyOriginArguin = "arguain"

func toRow(o orders.Order) repository.Order {
	return repository.Order{
		ID:          o.ID,
		ClientName:  o.ClientName,
		ClientPhone: o.ClientPhone,
		OysterType:  string(o.OysterType),
		Origin:      string(o.Origin),
		Quantity:    o.Quantity,
		PickupDate:  o.PickupDate,
		PickupTime:  o.PickupTime,
		Location:    string(o.Location),
		Notes:       o.Notes,
		Status:      string(o.Status),
		CreatorID:   o.CreatorID,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
}

func fromRow(row *repository.Order) orders.Order {
	origin := row.Origin
	if origin == legacyOriginArguin {
		origin = string(orders.OriginArguin)
	}
	return orders.Order{
		ID:          row.ID,
		ClientName:  row.ClientName,
		ClientPhone: row.ClientPhone,
		OysterType:  orders.Grade(row.OysterType),
		Origin:      orders.Origin(origin),
		Quantity:    row.Quantity,
		PickupDate:  row.PickupDate,
		PickupTime:  row.PickupTime,
		Location:    orders.Location(row.Location),
		Notes:       row.Notes,
		Status:      orders.Status(row.Status),
		CreatorID:   row.CreatorID,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}

func toRowFilter(f orders.Filter) repository.OrderFilter {
	return repository.OrderFilter{
		Status:     string(f.Status),
		CreatorID:  f.CreatorID,
		Location:   string(f.Location),
		PickupDate: f.PickupDate,
		From:       f.From,
		To:         f.To,
	}
}

func applyPatch(o *orders.Order, p orders.Patch) {
	if p.ClientName != nil {
		o.ClientName = *p.ClientName
	}
	if p.ClientPhone != nil {
		o.ClientPhone = *p.ClientPhone
	}
	if p.OysterType != nil {
		o.OysterType = *p.OysterType
	}
	if p.Origin != nil {
		o.Origin = *p.Origin
	}
	if p.Quantity != nil {
		o.Quantity = *p.Quantity
	}
	if p.PickupDate != nil {
		o.PickupDate = *p.PickupDate
	}
	if p.PickupTime != nil {
		o.PickupTime = *p.PickupTime
	}
	if p.Location != nil {
		o.Location = *p.Location
	}
	if p.Notes != nil {
		o.Notes = *p.Notes
	}
	if p.Status != nil {
		o.Status = *p.Status
	}
}
