// Package dashboard derives read-only fleet summaries from the entity
// store. Everything is recomputed on each query from persisted state;
// nothing here is cached or fabricated.
package dashboard

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/ukydev/school-transport/internal/db"
	"github.com/ukydev/school-transport/internal/models"
)

// DefaultAlertLookahead is how far ahead maintenance alerts look when no
// window is configured.
const DefaultAlertLookahead = 7 * 24 * time.Hour

// VehicleSummary counts vehicles by lifecycle status.
type VehicleSummary struct {
	Total    int            `json:"total"`
	ByStatus map[string]int `json:"by_status"`
}

// DriverSummary counts drivers by status and by availability.
type DriverSummary struct {
	Total          int            `json:"total"`
	ByStatus       map[string]int `json:"by_status"`
	ByAvailability map[string]int `json:"by_availability"`
}

// RouteUtilization reports how full a route is.
type RouteUtilization struct {
	RouteID           string  `json:"route_id"`
	RouteNumber       string  `json:"route_number"`
	Name              string  `json:"name"`
	MaxCapacity       int     `json:"max_capacity"`
	ActiveAssignments int     `json:"active_assignments"`
	UtilizationPct    float64 `json:"utilization_pct"`
}

// DateRange bounds trip queries, inclusive on both ends. Zero values leave
// the corresponding end unbounded.
type DateRange struct {
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
}

// Snapshot is the aggregate document served on the dashboard endpoint.
type Snapshot struct {
	Vehicles          VehicleSummary             `json:"vehicles"`
	Drivers           DriverSummary              `json:"drivers"`
	Routes            []RouteUtilization         `json:"routes"`
	TripCompletionPct float64                    `json:"trip_completion_pct"`
	MaintenanceAlerts []models.MaintenanceRecord `json:"maintenance_alerts"`
	GeneratedAt       time.Time                  `json:"generated_at"`
}

// Aggregator computes dashboard figures over the entity store.
type Aggregator struct {
	store     db.EntityStore
	lookahead time.Duration
	now       func() time.Time
}

// NewAggregator creates an aggregator with the given maintenance alert
// lookahead; pass 0 for the default.
func NewAggregator(store db.EntityStore, lookahead time.Duration) *Aggregator {
	if lookahead <= 0 {
		lookahead = DefaultAlertLookahead
	}
	return &Aggregator{store: store, lookahead: lookahead, now: time.Now}
}

// VehicleSummary counts vehicles by status.
func (a *Aggregator) VehicleSummary(ctx context.Context) (*VehicleSummary, error) {
	vehicles, err := a.store.ListVehicles(ctx, db.VehicleFilter{})
	if err != nil {
		return nil, err
	}
	sum := &VehicleSummary{Total: len(vehicles), ByStatus: map[string]int{}}
	for _, v := range vehicles {
		sum.ByStatus[string(v.Status)]++
	}
	return sum, nil
}

// DriverSummary counts drivers by status and availability.
func (a *Aggregator) DriverSummary(ctx context.Context) (*DriverSummary, error) {
	drivers, err := a.store.ListDrivers(ctx, db.DriverFilter{})
	if err != nil {
		return nil, err
	}
	sum := &DriverSummary{
		Total:          len(drivers),
		ByStatus:       map[string]int{},
		ByAvailability: map[string]int{},
	}
	for _, d := range drivers {
		sum.ByStatus[string(d.Status)]++
		sum.ByAvailability[string(d.Availability)]++
	}
	return sum, nil
}

// RouteUtilization computes active assignments over max capacity for one
// route, as a percentage rounded to one decimal. Reports 0 when the route
// has no capacity.
func (a *Aggregator) RouteUtilization(ctx context.Context, routeID string) (*RouteUtilization, error) {
	route, err := a.store.GetRoute(ctx, routeID)
	if err != nil {
		return nil, err
	}
	active, err := a.store.CountActiveAssignments(ctx, routeID)
	if err != nil {
		return nil, err
	}
	return &RouteUtilization{
		RouteID:           route.ID,
		RouteNumber:       route.RouteNumber,
		Name:              route.Name,
		MaxCapacity:       route.MaxCapacity,
		ActiveAssignments: active,
		UtilizationPct:    percentage(active, route.MaxCapacity),
	}, nil
}

// TripCompletionRate computes completed trips over all trips scheduled in
// the range, as a percentage rounded to one decimal. Returns 0 for an
// empty range, never dividing by zero.
func (a *Aggregator) TripCompletionRate(ctx context.Context, r DateRange) (float64, error) {
	trips, err := a.store.ListTrips(ctx, db.TripFilter{DateFrom: r.From, DateTo: r.To})
	if err != nil {
		return 0, err
	}
	completed := 0
	for _, t := range trips {
		if t.Status == models.TripStatusCompleted {
			completed++
		}
	}
	return percentage(completed, len(trips)), nil
}

// MaintenanceAlerts returns scheduled maintenance falling inside the
// lookahead window, ordered by date ascending.
func (a *Aggregator) MaintenanceAlerts(ctx context.Context) ([]models.MaintenanceRecord, error) {
	records, err := a.store.ListMaintenance(ctx, db.MaintenanceFilter{Status: models.MaintenanceStatusScheduled})
	if err != nil {
		return nil, err
	}
	today := a.now().UTC().Truncate(24 * time.Hour)
	horizon := today.Add(a.lookahead)
	alerts := make([]models.MaintenanceRecord, 0, len(records))
	for _, m := range records {
		date, err := models.ParseDate(m.Date)
		if err != nil {
			continue
		}
		if !date.Before(today) && !date.After(horizon) {
			alerts = append(alerts, m)
		}
	}
	sort.Slice(alerts, func(i, j int) bool { return alerts[i].Date < alerts[j].Date })
	return alerts, nil
}

// Dashboard assembles the full aggregate document for the UI.
func (a *Aggregator) Dashboard(ctx context.Context) (*Snapshot, error) {
	vehicles, err := a.VehicleSummary(ctx)
	if err != nil {
		return nil, err
	}
	drivers, err := a.DriverSummary(ctx)
	if err != nil {
		return nil, err
	}
	routes, err := a.store.ListRoutes(ctx, db.RouteFilter{})
	if err != nil {
		return nil, err
	}
	utilization := make([]RouteUtilization, 0, len(routes))
	for _, r := range routes {
		u, err := a.RouteUtilization(ctx, r.ID)
		if err != nil {
			return nil, err
		}
		utilization = append(utilization, *u)
	}
	sort.Slice(utilization, func(i, j int) bool {
		return utilization[i].RouteNumber < utilization[j].RouteNumber
	})
	completion, err := a.TripCompletionRate(ctx, DateRange{})
	if err != nil {
		return nil, err
	}
	alerts, err := a.MaintenanceAlerts(ctx)
	if err != nil {
		return nil, err
	}
	return &Snapshot{
		Vehicles:          *vehicles,
		Drivers:           *drivers,
		Routes:            utilization,
		TripCompletionPct: completion,
		MaintenanceAlerts: alerts,
		GeneratedAt:       a.now().UTC(),
	}, nil
}

// percentage returns part/whole as a percent rounded to one decimal,
// 0 when whole is 0.
func percentage(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return math.Round(float64(part)/float64(whole)*1000) / 10
}
