package orders

import (
	"math"
	"sort"
	"strings"
)

// dozensPerPack maps a grade to the number of dozens that fit in one physical
// pack. Grades the table does not know about get one dozen per pack.
var dozensPerPack = map[Grade]int{
	GradeN1:        1,
	GradeN2:        2,
	GradeN3:        3,
	GradeN4:        4,
	GradeSpeciales: 1,
}

func PacksPerDozen(g Grade) int {
	if n, ok := dozensPerPack[g]; ok {
		return n
	}
	return 1
}

// PackCount converts a quantity in dozens into whole packs for the given
// grade. Partial packs round up: a pack cannot be half prepared.
func PackCount(g Grade, quantity float64) int {
	if quantity <= 0 {
		return 0
	}
	return int(math.Ceil(quantity / float64(PacksPerDozen(g))))
}

// BasketSummary is one line of the packing view: how many packs of a grade
// must be prepared, and for how many orders.
type BasketSummary struct {
	Grade  Grade `json:"grade"`
	Packs  int   `json:"packs"`
	Orders int   `json:"orders"`
}

// SummarizeBaskets computes the packing summary for the given orders. Only
// active orders with a positive quantity count. The result is sorted by grade
// identifier so repeated runs over the same input are identical.
func SummarizeBaskets(list []Order) []BasketSummary {
	byGrade := make(map[Grade]*BasketSummary)
	for _, o := range list {
		if o.Status != StatusActive || o.Quantity <= 0 {
			continue
		}
		s, ok := byGrade[o.OysterType]
		if !ok {
			s = &BasketSummary{Grade: o.OysterType}
			byGrade[o.OysterType] = s
		}
		s.Packs += PackCount(o.OysterType, o.Quantity)
		s.Orders++
	}

	out := make([]BasketSummary, 0, len(byGrade))
	for _, s := range byGrade {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Grade < out[j].Grade })
	return out
}

// FilterByDate keeps the orders picked up on the given calendar day. The
// comparison is a plain string match on the YYYY-MM-DD key; going through a
// timestamp here shifts orders across midnight at timezone boundaries.
func FilterByDate(list []Order, day string) []Order {
	var out []Order
	for _, o := range list {
		if o.PickupDate == day {
			out = append(out, o)
		}
	}
	return out
}

// FilterByRange keeps the orders whose pickup day falls in [from, to],
// bounds included. The YYYY-MM-DD form makes lexicographic order equal to
// chronological order.
func FilterByRange(list []Order, from, to string) []Order {
	var out []Order
	for _, o := range list {
		if o.PickupDate >= from && o.PickupDate <= to {
			out = append(out, o)
		}
	}
	return out
}

// Totals are the headline numbers of a (usually single-day) order subset.
type Totals struct {
	Total      int              `json:"total"`
	Active     int              `json:"active"`
	Cancelled  int              `json:"cancelled"`
	Completed  int              `json:"completed"`
	ByLocation map[Location]int `json:"by_location"`
	ByGrade    map[Grade]int    `json:"by_grade"`
}

func DailyTotals(list []Order) Totals {
	t := Totals{
		ByLocation: make(map[Location]int),
		ByGrade:    make(map[Grade]int),
	}
	for _, o := range list {
		t.Total++
		switch o.Status {
		case StatusActive:
			t.Active++
		case StatusCancelled:
			t.Cancelled++
		case StatusReceived:
			t.Completed++
		}
		t.ByLocation[o.Location]++
		t.ByGrade[o.OysterType]++
	}
	return t
}

// Statistics is the period report behind the stats view.
type Statistics struct {
	Total           int              `json:"total"`
	ByStatus        map[Status]int   `json:"by_status"`
	ByGrade         map[Grade]int    `json:"by_grade"`
	ByOrigin        map[Origin]int   `json:"by_origin"`
	ByLocation      map[Location]int `json:"by_location"`
	TotalQuantity   float64          `json:"total_quantity"`
	AverageQuantity float64          `json:"average_quantity"`
}

func Stats(list []Order) Statistics {
	s := Statistics{
		ByStatus:   make(map[Status]int),
		ByGrade:    make(map[Grade]int),
		ByOrigin:   make(map[Origin]int),
		ByLocation: make(map[Location]int),
	}
	for _, o := range list {
		s.Total++
		s.ByStatus[o.Status]++
		s.ByGrade[o.OysterType]++
		s.ByOrigin[o.Origin]++
		s.ByLocation[o.Location]++
		s.TotalQuantity += o.Quantity
	}
	if s.Total > 0 {
		s.AverageQuantity = s.TotalQuantity / float64(s.Total)
	}
	return s
}

// GroupByDate buckets orders under their pickup day, for the calendar view.
func GroupByDate(list []Order) map[string][]Order {
	grouped := make(map[string][]Order)
	for _, o := range list {
		grouped[o.PickupDate] = append(grouped[o.PickupDate], o)
	}
	return grouped
}

// Search matches the query against client name and phone, case-insensitively.
// An empty query returns everything.
func Search(list []Order, query string) []Order {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return list
	}
	var out []Order
	for _, o := range list {
		if strings.Contains(strings.ToLower(o.ClientName), q) ||
			strings.Contains(strings.ToLower(o.ClientPhone), q) {
			out = append(out, o)
		}
	}
	return out
}
