package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ukydev/school-transport/internal/faults"
	"github.com/ukydev/school-transport/internal/models"
)

// ConnectMongo connects to MongoDB and verifies the connection with a ping.
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo.Connect error: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		return nil, fmt.Errorf("mongo.Ping error: %w", err)
	}
	return client, nil
}

// MongoStore is the MongoDB-backed EntityStore. Uniqueness is enforced by
// lookup before write; the service layer serializes writers per entity, so
// the check-then-insert pair is not racy.
type MongoStore struct {
	vehicles    *mongo.Collection
	drivers     *mongo.Collection
	routes      *mongo.Collection
	assignments *mongo.Collection
	trips       *mongo.Collection
	maintenance *mongo.Collection
	users       *mongo.Collection
}

// NewMongoStore wires the store to collections of the given database.
func NewMongoStore(database *mongo.Database) *MongoStore {
	return &MongoStore{
		vehicles:    database.Collection("vehicles"),
		drivers:     database.Collection("drivers"),
		routes:      database.Collection("routes"),
		assignments: database.Collection("student_assignments"),
		trips:       database.Collection("trips"),
		maintenance: database.Collection("maintenance_records"),
		users:       database.Collection("users"),
	}
}

func mongoID() string { return primitive.NewObjectID().Hex() }

func (s *MongoStore) exists(ctx context.Context, coll *mongo.Collection, filter bson.M) (bool, error) {
	n, err := coll.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// --- vehicles ---

func (s *MongoStore) CreateVehicle(ctx context.Context, v models.Vehicle) (*models.Vehicle, error) {
	if dup, err := s.exists(ctx, s.vehicles, bson.M{"number": v.Number}); err != nil {
		return nil, err
	} else if dup {
		return nil, faults.DuplicateKey("number", v.Number)
	}
	if dup, err := s.exists(ctx, s.vehicles, bson.M{"license_plate": v.LicensePlate}); err != nil {
		return nil, err
	} else if dup {
		return nil, faults.DuplicateKey("license_plate", v.LicensePlate)
	}
	v.ID = mongoID()
	now := time.Now().UTC()
	v.CreatedAt = now
	v.UpdatedAt = now
	if _, err := s.vehicles.InsertOne(ctx, v); err != nil {
		return nil, err
	}
	return &v, nil
}

func (s *MongoStore) GetVehicle(ctx context.Context, id string) (*models.Vehicle, error) {
	var v models.Vehicle
	err := s.vehicles.FindOne(ctx, bson.M{"_id": id}).Decode(&v)
	if err == mongo.ErrNoDocuments {
		return nil, faults.NotFound("vehicle", id)
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (s *MongoStore) UpdateVehicle(ctx context.Context, v models.Vehicle) (*models.Vehicle, error) {
	if dup, err := s.exists(ctx, s.vehicles, bson.M{"number": v.Number, "_id": bson.M{"$ne": v.ID}}); err != nil {
		return nil, err
	} else if dup {
		return nil, faults.DuplicateKey("number", v.Number)
	}
	if dup, err := s.exists(ctx, s.vehicles, bson.M{"license_plate": v.LicensePlate, "_id": bson.M{"$ne": v.ID}}); err != nil {
		return nil, err
	} else if dup {
		return nil, faults.DuplicateKey("license_plate", v.LicensePlate)
	}
	v.UpdatedAt = time.Now().UTC()
	doc := v
	doc.ID = "" // _id is immutable; omitempty drops it from $set
	res, err := s.vehicles.UpdateOne(ctx, bson.M{"_id": v.ID}, bson.M{"$set": doc})
	if err != nil {
		return nil, err
	}
	if res.MatchedCount == 0 {
		return nil, faults.NotFound("vehicle", v.ID)
	}
	return &v, nil
}

func (s *MongoStore) DeleteVehicle(ctx context.Context, id string) error {
	if ref, err := s.exists(ctx, s.trips, bson.M{"vehicle_id": id}); err != nil {
		return err
	} else if ref {
		return faults.ReferentialIntegrity(id, "vehicle is referenced by trips")
	}
	if ref, err := s.exists(ctx, s.maintenance, bson.M{"vehicle_id": id}); err != nil {
		return err
	} else if ref {
		return faults.ReferentialIntegrity(id, "vehicle is referenced by maintenance records")
	}
	res, err := s.vehicles.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return faults.NotFound("vehicle", id)
	}
	return nil
}

func (s *MongoStore) ListVehicles(ctx context.Context, f VehicleFilter) ([]models.Vehicle, error) {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	cursor, err := s.vehicles.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := []models.Vehicle{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// --- drivers ---

func (s *MongoStore) CreateDriver(ctx context.Context, d models.Driver) (*models.Driver, error) {
	if dup, err := s.exists(ctx, s.drivers, bson.M{"license_number": d.LicenseNumber}); err != nil {
		return nil, err
	} else if dup {
		return nil, faults.DuplicateKey("license_number", d.LicenseNumber)
	}
	d.ID = mongoID()
	now := time.Now().UTC()
	d.CreatedAt = now
	d.UpdatedAt = now
	if _, err := s.drivers.InsertOne(ctx, d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *MongoStore) GetDriver(ctx context.Context, id string) (*models.Driver, error) {
	var d models.Driver
	err := s.drivers.FindOne(ctx, bson.M{"_id": id}).Decode(&d)
	if err == mongo.ErrNoDocuments {
		return nil, faults.NotFound("driver", id)
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *MongoStore) UpdateDriver(ctx context.Context, d models.Driver) (*models.Driver, error) {
	if dup, err := s.exists(ctx, s.drivers, bson.M{"license_number": d.LicenseNumber, "_id": bson.M{"$ne": d.ID}}); err != nil {
		return nil, err
	} else if dup {
		return nil, faults.DuplicateKey("license_number", d.LicenseNumber)
	}
	d.UpdatedAt = time.Now().UTC()
	doc := d
	doc.ID = ""
	res, err := s.drivers.UpdateOne(ctx, bson.M{"_id": d.ID}, bson.M{"$set": doc})
	if err != nil {
		return nil, err
	}
	if res.MatchedCount == 0 {
		return nil, faults.NotFound("driver", d.ID)
	}
	return &d, nil
}

func (s *MongoStore) DeleteDriver(ctx context.Context, id string) error {
	if ref, err := s.exists(ctx, s.trips, bson.M{"driver_id": id}); err != nil {
		return err
	} else if ref {
		return faults.ReferentialIntegrity(id, "driver is referenced by trips")
	}
	res, err := s.drivers.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return faults.NotFound("driver", id)
	}
	return nil
}

func (s *MongoStore) ListDrivers(ctx context.Context, f DriverFilter) ([]models.Driver, error) {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Availability != "" {
		filter["availability"] = f.Availability
	}
	cursor, err := s.drivers.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := []models.Driver{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// --- routes ---

func (s *MongoStore) CreateRoute(ctx context.Context, r models.Route) (*models.Route, error) {
	if dup, err := s.exists(ctx, s.routes, bson.M{"route_number": r.RouteNumber}); err != nil {
		return nil, err
	} else if dup {
		return nil, faults.DuplicateKey("route_number", r.RouteNumber)
	}
	r.ID = mongoID()
	now := time.Now().UTC()
	r.CreatedAt = now
	r.UpdatedAt = now
	if _, err := s.routes.InsertOne(ctx, r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *MongoStore) GetRoute(ctx context.Context, id string) (*models.Route, error) {
	var r models.Route
	err := s.routes.FindOne(ctx, bson.M{"_id": id}).Decode(&r)
	if err == mongo.ErrNoDocuments {
		return nil, faults.NotFound("route", id)
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *MongoStore) UpdateRoute(ctx context.Context, r models.Route) (*models.Route, error) {
	if dup, err := s.exists(ctx, s.routes, bson.M{"route_number": r.RouteNumber, "_id": bson.M{"$ne": r.ID}}); err != nil {
		return nil, err
	} else if dup {
		return nil, faults.DuplicateKey("route_number", r.RouteNumber)
	}
	r.UpdatedAt = time.Now().UTC()
	doc := r
	doc.ID = ""
	res, err := s.routes.UpdateOne(ctx, bson.M{"_id": r.ID}, bson.M{"$set": doc})
	if err != nil {
		return nil, err
	}
	if res.MatchedCount == 0 {
		return nil, faults.NotFound("route", r.ID)
	}
	return &r, nil
}

func (s *MongoStore) DeleteRoute(ctx context.Context, id string) error {
	if ref, err := s.exists(ctx, s.trips, bson.M{"route_id": id}); err != nil {
		return err
	} else if ref {
		return faults.ReferentialIntegrity(id, "route is referenced by trips")
	}
	if ref, err := s.exists(ctx, s.assignments, bson.M{"route_id": id}); err != nil {
		return err
	} else if ref {
		return faults.ReferentialIntegrity(id, "route is referenced by assignments")
	}
	res, err := s.routes.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return faults.NotFound("route", id)
	}
	return nil
}

func (s *MongoStore) ListRoutes(ctx context.Context, f RouteFilter) ([]models.Route, error) {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	cursor, err := s.routes.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := []models.Route{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// --- student assignments ---

func (s *MongoStore) CreateAssignment(ctx context.Context, a models.StudentAssignment) (*models.StudentAssignment, error) {
	a.ID = mongoID()
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now
	if _, err := s.assignments.InsertOne(ctx, a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *MongoStore) GetAssignment(ctx context.Context, id string) (*models.StudentAssignment, error) {
	var a models.StudentAssignment
	err := s.assignments.FindOne(ctx, bson.M{"_id": id}).Decode(&a)
	if err == mongo.ErrNoDocuments {
		return nil, faults.NotFound("assignment", id)
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *MongoStore) UpdateAssignment(ctx context.Context, a models.StudentAssignment) (*models.StudentAssignment, error) {
	a.UpdatedAt = time.Now().UTC()
	doc := a
	doc.ID = ""
	res, err := s.assignments.UpdateOne(ctx, bson.M{"_id": a.ID}, bson.M{"$set": doc})
	if err != nil {
		return nil, err
	}
	if res.MatchedCount == 0 {
		return nil, faults.NotFound("assignment", a.ID)
	}
	return &a, nil
}

func (s *MongoStore) ListAssignments(ctx context.Context, f AssignmentFilter) ([]models.StudentAssignment, error) {
	filter := bson.M{}
	if f.RouteID != "" {
		filter["route_id"] = f.RouteID
	}
	if f.StudentID != "" {
		filter["student_id"] = f.StudentID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	cursor, err := s.assignments.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := []models.StudentAssignment{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *MongoStore) CountActiveAssignments(ctx context.Context, routeID string) (int, error) {
	n, err := s.assignments.CountDocuments(ctx, bson.M{
		"route_id": routeID,
		"status":   models.AssignmentStatusActive,
	})
	return int(n), err
}

// --- trips ---

func (s *MongoStore) CreateTrip(ctx context.Context, t models.Trip) (*models.Trip, error) {
	t.ID = mongoID()
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now
	if _, err := s.trips.InsertOne(ctx, t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *MongoStore) GetTrip(ctx context.Context, id string) (*models.Trip, error) {
	var t models.Trip
	err := s.trips.FindOne(ctx, bson.M{"_id": id}).Decode(&t)
	if err == mongo.ErrNoDocuments {
		return nil, faults.NotFound("trip", id)
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *MongoStore) UpdateTrip(ctx context.Context, t models.Trip) (*models.Trip, error) {
	t.UpdatedAt = time.Now().UTC()
	doc := t
	doc.ID = ""
	res, err := s.trips.UpdateOne(ctx, bson.M{"_id": t.ID}, bson.M{"$set": doc})
	if err != nil {
		return nil, err
	}
	if res.MatchedCount == 0 {
		return nil, faults.NotFound("trip", t.ID)
	}
	return &t, nil
}

func (s *MongoStore) ListTrips(ctx context.Context, f TripFilter) ([]models.Trip, error) {
	filter := bson.M{}
	if f.RouteID != "" {
		filter["route_id"] = f.RouteID
	}
	if f.VehicleID != "" {
		filter["vehicle_id"] = f.VehicleID
	}
	if f.DriverID != "" {
		filter["driver_id"] = f.DriverID
	}
	if f.Date != "" {
		filter["date"] = f.Date
	}
	if f.DateFrom != "" || f.DateTo != "" {
		dateRange := bson.M{}
		if f.DateFrom != "" {
			dateRange["$gte"] = f.DateFrom
		}
		if f.DateTo != "" {
			dateRange["$lte"] = f.DateTo
		}
		filter["date"] = dateRange
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.LiveOnly {
		filter["status"] = bson.M{"$in": []models.TripStatus{
			models.TripStatusScheduled, models.TripStatusInProgress,
		}}
	}
	cursor, err := s.trips.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := []models.Trip{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// --- maintenance ---

func (s *MongoStore) CreateMaintenance(ctx context.Context, m models.MaintenanceRecord) (*models.MaintenanceRecord, error) {
	m.ID = mongoID()
	now := time.Now().UTC()
	m.CreatedAt = now
	m.UpdatedAt = now
	if _, err := s.maintenance.InsertOne(ctx, m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *MongoStore) GetMaintenance(ctx context.Context, id string) (*models.MaintenanceRecord, error) {
	var m models.MaintenanceRecord
	err := s.maintenance.FindOne(ctx, bson.M{"_id": id}).Decode(&m)
	if err == mongo.ErrNoDocuments {
		return nil, faults.NotFound("maintenance record", id)
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *MongoStore) UpdateMaintenance(ctx context.Context, m models.MaintenanceRecord) (*models.MaintenanceRecord, error) {
	m.UpdatedAt = time.Now().UTC()
	doc := m
	doc.ID = ""
	res, err := s.maintenance.UpdateOne(ctx, bson.M{"_id": m.ID}, bson.M{"$set": doc})
	if err != nil {
		return nil, err
	}
	if res.MatchedCount == 0 {
		return nil, faults.NotFound("maintenance record", m.ID)
	}
	return &m, nil
}

func (s *MongoStore) ListMaintenance(ctx context.Context, f MaintenanceFilter) ([]models.MaintenanceRecord, error) {
	filter := bson.M{}
	if f.VehicleID != "" {
		filter["vehicle_id"] = f.VehicleID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.OpenOnly {
		filter["status"] = bson.M{"$in": []models.MaintenanceStatus{
			models.MaintenanceStatusScheduled, models.MaintenanceStatusInProgress,
		}}
	}
	cursor, err := s.maintenance.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := []models.MaintenanceRecord{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// --- users ---

func (s *MongoStore) InsertUser(ctx context.Context, user models.User) (*models.User, error) {
	if dup, err := s.exists(ctx, s.users, bson.M{"username": user.Username}); err != nil {
		return nil, err
	} else if dup {
		return nil, faults.DuplicateKey("username", user.Username)
	}
	if dup, err := s.exists(ctx, s.users, bson.M{"email": user.Email}); err != nil {
		return nil, err
	} else if dup {
		return nil, faults.DuplicateKey("email", user.Email)
	}
	user.ID = mongoID()
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	user.IsActive = true
	if _, err := s.users.InsertOne(ctx, user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *MongoStore) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	err := s.users.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, faults.NotFound("user", id)
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *MongoStore) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	err := s.users.FindOne(ctx, bson.M{"username": username}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, faults.NotFound("user", username)
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *MongoStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := s.users.FindOne(ctx, bson.M{"email": email}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, faults.NotFound("user", email)
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *MongoStore) UpdateLastLogin(ctx context.Context, id string) error {
	now := time.Now().UTC()
	res, err := s.users.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"last_login": now, "updated_at": now}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return faults.NotFound("user", id)
	}
	return nil
}
