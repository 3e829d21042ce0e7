// Command seed populates a running transport server with a realistic
// starter fleet through the public API: an admin account, vehicles,
// drivers, routes, student assignments and a day of trips.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
)

var authToken string

func apiURL() string {
	if url := os.Getenv("API_URL"); url != "" {
		return url
	}
	return "http://localhost:8080"
}

func post(path string, payload any) (map[string]any, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", path, err)
	}
	req, err := http.NewRequest(http.MethodPost, apiURL()+path, bytes.NewBuffer(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if authToken != "" {
		req.Header.Set("Authorization", "Bearer "+authToken)
	}
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post %s: %w", path, err)
	}
	defer resp.Body.Close()

	var result map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", path, err)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%s failed with status %d: %v", path, resp.StatusCode, result["error"])
	}
	return result, nil
}

func register() error {
	result, err := post("/api/auth/register", map[string]any{
		"username":   "transport-admin",
		"email":      "transport@school.example",
		"password":   "seed-password-1",
		"first_name": "Transport",
		"last_name":  "Admin",
		"role":       "admin",
	})
	if err != nil {
		// Already registered on a previous run; log in instead.
		result, err = post("/api/auth/login", map[string]any{
			"username": "transport-admin",
			"password": "seed-password-1",
		})
		if err != nil {
			return err
		}
	}
	token, ok := result["token"].(string)
	if !ok {
		return fmt.Errorf("no token in auth response")
	}
	authToken = token
	return nil
}

func createVehicles() ([]string, error) {
	specs := []map[string]any{
		{"number": "BUS-01", "type": "bus", "capacity": 48, "make": "Mercedes", "model": "Tourismo", "year": 2021, "license_plate": "SCH-1001", "fuel_type": "diesel"},
		{"number": "BUS-02", "type": "bus", "capacity": 40, "make": "MAN", "model": "Lion's City", "year": 2020, "license_plate": "SCH-1002", "fuel_type": "diesel"},
		{"number": "VAN-01", "type": "van", "capacity": 14, "make": "Ford", "model": "Transit", "year": 2022, "license_plate": "SCH-2001", "fuel_type": "diesel"},
		{"number": "CAR-01", "type": "car", "capacity": 4, "make": "Toyota", "model": "Corolla", "year": 2023, "license_plate": "SCH-3001", "fuel_type": "hybrid"},
	}
	ids := make([]string, 0, len(specs))
	for _, spec := range specs {
		result, err := post("/api/vehicles", spec)
		if err != nil {
			return nil, err
		}
		id := result["id"].(string)
		log.WithFields(log.Fields{"vehicle_id": id, "number": spec["number"]}).Info("Created vehicle")
		ids = append(ids, id)
	}
	return ids, nil
}

func createDrivers() ([]string, error) {
	specs := []map[string]any{
		{"personnel_id": "P-100", "name": "Ayse Demir", "license_number": "DL-55021", "license_class": "D", "experience_years": 12, "employment_type": "full_time"},
		{"personnel_id": "P-101", "name": "Mehmet Kaya", "license_number": "DL-55022", "license_class": "D", "experience_years": 8, "employment_type": "full_time"},
		{"personnel_id": "P-102", "name": "Elif Arslan", "license_number": "DL-55023", "license_class": "C", "experience_years": 5, "employment_type": "part_time"},
	}
	ids := make([]string, 0, len(specs))
	for _, spec := range specs {
		result, err := post("/api/drivers", spec)
		if err != nil {
			return nil, err
		}
		id := result["id"].(string)
		log.WithFields(log.Fields{"driver_id": id, "name": spec["name"]}).Info("Created driver")
		ids = append(ids, id)
	}
	return ids, nil
}

func createRoutes() ([]string, error) {
	weekdays := []string{"monday", "tuesday", "wednesday", "thursday", "friday"}
	specs := []map[string]any{
		{"name": "North Loop", "route_number": "R-01", "start_location": "North Terminal", "end_location": "Main Campus", "pickup_time": "07:15", "dropoff_time": "16:00", "operating_days": weekdays, "max_capacity": 45, "monthly_fee": 120.0},
		{"name": "Riverside", "route_number": "R-02", "start_location": "Riverside Square", "end_location": "Main Campus", "pickup_time": "07:30", "dropoff_time": "16:15", "operating_days": weekdays, "max_capacity": 38, "monthly_fee": 110.0},
		{"name": "Hillside Express", "route_number": "R-03", "start_location": "Hillside Gate", "end_location": "Main Campus", "pickup_time": "07:45", "dropoff_time": "16:30", "operating_days": weekdays, "max_capacity": 12, "monthly_fee": 150.0},
	}
	ids := make([]string, 0, len(specs))
	for _, spec := range specs {
		result, err := post("/api/routes", spec)
		if err != nil {
			return nil, err
		}
		id := result["id"].(string)
		log.WithFields(log.Fields{"route_id": id, "route_number": spec["route_number"]}).Info("Created route")
		ids = append(ids, id)
	}
	return ids, nil
}

func createAssignments(routeIDs []string) error {
	for i := 0; i < 10; i++ {
		routeID := routeIDs[rand.Intn(len(routeIDs))]
		_, err := post("/api/student-assignments", map[string]any{
			"student_id":        fmt.Sprintf("STU-%04d", 1000+i),
			"route_id":          routeID,
			"pickup_location":   fmt.Sprintf("Stop %d", 1+rand.Intn(8)),
			"dropoff_location":  "Main Campus",
			"contact_phone":     fmt.Sprintf("+90-555-%07d", rand.Intn(10000000)),
			"emergency_contact": fmt.Sprintf("+90-555-%07d", rand.Intn(10000000)),
		})
		if err != nil {
			return err
		}
	}
	log.Info("Created student assignments")
	return nil
}

func scheduleTrips(routeIDs, vehicleIDs, driverIDs []string) error {
	date := time.Now().AddDate(0, 0, 1).Format("2006-01-02")
	windows := [][2]string{{"07:00", "08:30"}, {"09:00", "10:30"}, {"15:30", "17:00"}}
	for i, routeID := range routeIDs {
		w := windows[i%len(windows)]
		_, err := post("/api/trips", map[string]any{
			"route_id":   routeID,
			"vehicle_id": vehicleIDs[i%len(vehicleIDs)],
			"driver_id":  driverIDs[i%len(driverIDs)],
			"date":       date,
			"start_time": w[0],
			"end_time":   w[1],
		})
		if err != nil {
			return err
		}
	}
	log.WithField("date", date).Info("Scheduled trips")
	return nil
}

func main() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	if err := register(); err != nil {
		log.WithError(err).Fatal("Failed to authenticate")
	}
	vehicleIDs, err := createVehicles()
	if err != nil {
		log.WithError(err).Fatal("Failed to create vehicles")
	}
	driverIDs, err := createDrivers()
	if err != nil {
		log.WithError(err).Fatal("Failed to create drivers")
	}
	routeIDs, err := createRoutes()
	if err != nil {
		log.WithError(err).Fatal("Failed to create routes")
	}
	if err := createAssignments(routeIDs); err != nil {
		log.WithError(err).Fatal("Failed to create assignments")
	}
	if err := scheduleTrips(routeIDs, vehicleIDs, driverIDs); err != nil {
		log.WithError(err).Fatal("Failed to schedule trips")
	}
	log.Info("Seed complete")
}
