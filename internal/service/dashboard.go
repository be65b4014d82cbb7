package service

import (
	"context"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lexora/lexora/internal/models"
	"github.com/lexora/lexora/internal/store"
)

// upcomingLimit caps the appointments widget.
const upcomingLimit = 5

// Stats are the dashboard counters.
type Stats struct {
	TotalClients   int     `json:"total_clients"`
	TotalCases     int     `json:"total_cases"`
	ActiveCases    int     `json:"active_cases"`
	TotalDocuments int     `json:"total_documents"`
	MonthlyRevenue float64 `json:"monthly_revenue"`
}

// RevenuePoint is one bar of the revenue series.
type RevenuePoint struct {
	Month  string  `json:"month"` // YYYY-MM
	Amount float64 `json:"amount"`
}

// Overview is the full dashboard payload.
type Overview struct {
	Stats    Stats          `json:"stats"`
	Revenue  []RevenuePoint `json:"revenue"`
	Upcoming []store.Record `json:"upcoming_appointments"`
}

// DashboardService derives counters, the revenue series, and the
// upcoming-appointments widget by reducing whole collections. The
// backend does no aggregation of its own, mirroring how the pages
// always computed these views.
type DashboardService struct {
	store store.Store
	now   func() time.Time
}

// NewDashboardService constructs a DashboardService.
func NewDashboardService(st store.Store) *DashboardService {
	return &DashboardService{store: st, now: time.Now}
}

// Load fetches the four collections concurrently and reduces them.
func (s *DashboardService) Load(ctx context.Context, owner string) (*Overview, error) {
	var clients, cases, documents, invoices, appointments []store.Record

	g, gctx := errgroup.WithContext(ctx)
	fetch := func(collection string, dst *[]store.Record) func() error {
		return func() error {
			records, err := s.store.GetAll(gctx, owner, collection, store.ListOptions{})
			if err != nil {
				return err
			}
			*dst = records
			return nil
		}
	}
	g.Go(fetch(string(models.Clients), &clients))
	g.Go(fetch(string(models.Cases), &cases))
	g.Go(fetch(string(models.Documents), &documents))
	g.Go(fetch(string(models.Billing), &invoices))
	g.Go(fetch(string(models.Appointments), &appointments))
	if err := g.Wait(); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	overview := &Overview{
		Stats: Stats{
			TotalClients:   len(clients),
			TotalCases:     len(cases),
			ActiveCases:    countActiveCases(cases),
			TotalDocuments: len(documents),
			MonthlyRevenue: monthlyRevenue(invoices, now),
		},
		Revenue:  revenueSeries(invoices),
		Upcoming: upcoming(appointments, now),
	}
	return overview, nil
}

// CompleteAppointment marks an appointment done, which drops it from the
// widget on the next load.
func (s *DashboardService) CompleteAppointment(ctx context.Context, owner, id string) (store.Record, error) {
	return s.store.Update(ctx, owner, string(models.Appointments), id, store.Record{
		"status": models.AppointmentCompleted,
	})
}

func countActiveCases(cases []store.Record) int {
	n := 0
	for _, c := range cases {
		if status, _ := c["status"].(string); status != models.CaseClosed {
			n++
		}
	}
	return n
}

// monthlyRevenue sums invoice amounts whose due date falls in the current
// UTC calendar month.
func monthlyRevenue(invoices []store.Record, now time.Time) float64 {
	total := 0.0
	for _, inv := range invoices {
		due, ok := parseWhen(inv, "due_date", "")
		if !ok {
			continue
		}
		if due.Year() == now.Year() && due.Month() == now.Month() {
			if amount, ok := num(inv, "amount"); ok {
				total += amount
			}
		}
	}
	return total
}

// revenueSeries groups invoice amounts by YYYY-MM, keys ascending.
func revenueSeries(invoices []store.Record) []RevenuePoint {
	byMonth := map[string]float64{}
	for _, inv := range invoices {
		due, ok := parseWhen(inv, "due_date", "")
		if !ok {
			continue
		}
		amount, ok := num(inv, "amount")
		if !ok {
			continue
		}
		byMonth[due.Format("2006-01")] += amount
	}

	series := make([]RevenuePoint, 0, len(byMonth))
	for month, amount := range byMonth {
		series = append(series, RevenuePoint{Month: month, Amount: amount})
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Month < series[j].Month })
	return series
}

// upcoming keeps scheduled appointments at or after now, soonest first,
// capped at upcomingLimit. The comparison is a real timestamp compare on
// the parsed date and time fields.
func upcoming(appointments []store.Record, now time.Time) []store.Record {
	type timed struct {
		at  time.Time
		rec store.Record
	}
	var keep []timed
	for _, appt := range appointments {
		if status, _ := appt["status"].(string); status != models.AppointmentScheduled {
			continue
		}
		at, ok := parseWhen(appt, "date", "time")
		if !ok || at.Before(now) {
			continue
		}
		keep = append(keep, timed{at: at, rec: appt})
	}
	sort.Slice(keep, func(i, j int) bool { return keep[i].at.Before(keep[j].at) })

	out := make([]store.Record, 0, upcomingLimit)
	for _, t := range keep {
		if len(out) == upcomingLimit {
			break
		}
		out = append(out, t.rec)
	}
	return out
}

// parseWhen builds a UTC timestamp from a record's date field plus an
// optional time-of-day field. A date without a time covers the whole day,
// so "today" stays upcoming until midnight.
func parseWhen(rec store.Record, dateField, timeField string) (time.Time, bool) {
	raw := str(rec, dateField)
	if raw == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), true
	}
	day, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, false
	}
	if timeField != "" {
		if clock := str(rec, timeField); clock != "" {
			if t, err := time.Parse("15:04", clock); err == nil {
				return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC), true
			}
		}
	}
	return time.Date(day.Year(), day.Month(), day.Day(), 23, 59, 59, 0, time.UTC), true
}
