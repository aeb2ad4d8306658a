package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"quickride/internal/config"
	"quickride/internal/models"
	"quickride/internal/repositories/interfaces"
	"quickride/internal/utils"
	"quickride/pkg/events"
	"quickride/pkg/mailer"
	"quickride/pkg/maps"
)

func testRideConfig() *config.RideConfig {
	return &config.RideConfig{
		SearchRadiusKM:    4,
		ChatTimezone:      "Asia/Kolkata",
		BackgroundTimeout: 2 * time.Second,
	}
}

type memRideRepo struct {
	mu    sync.Mutex
	rides map[primitive.ObjectID]*models.Ride
}

func newMemRideRepo() *memRideRepo {
	return &memRideRepo{rides: make(map[primitive.ObjectID]*models.Ride)}
}

func cloneRide(r *models.Ride) *models.Ride {
	c := *r
	c.Messages = append([]models.ChatMessage{}, r.Messages...)
	return &c
}

// put stores a ride as-is, for arranging state directly.
func (r *memRideRepo) put(ride *models.Ride) *models.Ride {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ride.ID.IsZero() {
		ride.ID = primitive.NewObjectID()
	}
	r.rides[ride.ID] = cloneRide(ride)
	return ride
}

func (r *memRideRepo) snapshot(id primitive.ObjectID) *models.Ride {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ride, ok := r.rides[id]; ok {
		return cloneRide(ride)
	}
	return nil
}

func (r *memRideRepo) Create(_ context.Context, ride *models.Ride) error {
	ride.ID = primitive.NewObjectID()
	ride.CreatedAt = time.Now()
	ride.UpdatedAt = ride.CreatedAt
	if ride.Messages == nil {
		ride.Messages = []models.ChatMessage{}
	}
	r.put(ride)
	return nil
}

func (r *memRideRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Ride, error) {
	ride, err := r.GetByIDWithOTP(ctx, id)
	if err != nil {
		return nil, err
	}
	ride.OTP = ""
	return ride, nil
}

func (r *memRideRepo) GetByIDWithOTP(_ context.Context, id primitive.ObjectID) (*models.Ride, error) {
	if ride := r.snapshot(id); ride != nil {
		return ride, nil
	}
	return nil, interfaces.ErrNotFound
}

func (r *memRideRepo) GetByIDAndRider(_ context.Context, id, riderID primitive.ObjectID) (*models.Ride, error) {
	ride := r.snapshot(id)
	if ride == nil || ride.RiderID == nil || *ride.RiderID != riderID {
		return nil, interfaces.ErrNotFound
	}
	return ride, nil
}

func (r *memRideRepo) transition(id primitive.ObjectID, from *models.RideStatus, apply func(*models.Ride)) (*models.Ride, error) {
	ride, err := r.transitionWithOTP(id, from, apply)
	if err != nil {
		return nil, err
	}
	ride.OTP = ""
	return ride, nil
}

func (r *memRideRepo) transitionWithOTP(id primitive.ObjectID, from *models.RideStatus, apply func(*models.Ride)) (*models.Ride, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ride, ok := r.rides[id]
	if !ok || (from != nil && ride.Status != *from) {
		return nil, interfaces.ErrNotModified
	}
	apply(ride)
	ride.UpdatedAt = time.Now()

	return cloneRide(ride), nil
}

func statusPtr(s models.RideStatus) *models.RideStatus { return &s }

func (r *memRideRepo) Accept(_ context.Context, id, riderID primitive.ObjectID) (*models.Ride, error) {
	return r.transitionWithOTP(id, statusPtr(models.RideStatusPending), func(ride *models.Ride) {
		now := time.Now()
		ride.Status = models.RideStatusAccepted
		ride.RiderID = &riderID
		ride.AcceptedAt = &now
	})
}

func (r *memRideRepo) Start(_ context.Context, id primitive.ObjectID) (*models.Ride, error) {
	return r.transition(id, statusPtr(models.RideStatusAccepted), func(ride *models.Ride) {
		now := time.Now()
		ride.Status = models.RideStatusOngoing
		ride.StartedAt = &now
	})
}

func (r *memRideRepo) Complete(_ context.Context, id, riderID primitive.ObjectID) (*models.Ride, error) {
	r.mu.Lock()
	ride, ok := r.rides[id]
	owned := ok && ride.RiderID != nil && *ride.RiderID == riderID
	r.mu.Unlock()
	if !owned {
		return nil, interfaces.ErrNotModified
	}
	return r.transition(id, statusPtr(models.RideStatusOngoing), func(ride *models.Ride) {
		now := time.Now()
		ride.Status = models.RideStatusCompleted
		ride.CompletedAt = &now
	})
}

func (r *memRideRepo) Cancel(_ context.Context, id primitive.ObjectID) (*models.Ride, error) {
	ride, err := r.transition(id, nil, func(ride *models.Ride) {
		now := time.Now()
		ride.Status = models.RideStatusCancelled
		ride.CancelledAt = &now
	})
	if err != nil {
		return nil, interfaces.ErrNotFound
	}
	return ride, nil
}

func (r *memRideRepo) AppendMessage(_ context.Context, id primitive.ObjectID, message models.ChatMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ride, ok := r.rides[id]
	if !ok {
		return interfaces.ErrNotFound
	}
	ride.Messages = append(ride.Messages, message)
	return nil
}

func (r *memRideRepo) FindActiveByRider(_ context.Context, riderID primitive.ObjectID) ([]*models.Ride, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*models.Ride{}
	for _, ride := range r.rides {
		if ride.RiderID != nil && *ride.RiderID == riderID && ride.Status.IsActive() {
			out = append(out, cloneRide(ride))
		}
	}
	return out, nil
}

type memRiderRepo struct {
	mu     sync.Mutex
	riders map[primitive.ObjectID]*models.Rider
}

func newMemRiderRepo() *memRiderRepo {
	return &memRiderRepo{riders: make(map[primitive.ObjectID]*models.Rider)}
}

func (r *memRiderRepo) get(id primitive.ObjectID) *models.Rider {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rider, ok := r.riders[id]; ok {
		c := *rider
		return &c
	}
	return nil
}

func (r *memRiderRepo) Create(_ context.Context, rider *models.Rider) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.riders {
		if existing.Email == rider.Email {
			return interfaces.ErrDuplicate
		}
	}
	rider.ID = primitive.NewObjectID()
	if rider.Status == "" {
		rider.Status = models.RiderStatusInactive
	}
	c := *rider
	r.riders[rider.ID] = &c
	return nil
}

func (r *memRiderRepo) GetByID(_ context.Context, id primitive.ObjectID) (*models.Rider, error) {
	rider := r.get(id)
	if rider == nil {
		return nil, interfaces.ErrNotFound
	}
	rider.Password = ""
	return rider, nil
}

func (r *memRiderRepo) GetByEmail(_ context.Context, email string) (*models.Rider, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rider := range r.riders {
		if rider.Email == email {
			c := *rider
			return &c, nil
		}
	}
	return nil, interfaces.ErrNotFound
}

func (r *memRiderRepo) UpdateProfile(_ context.Context, id primitive.ObjectID, fullName models.FullName, phone string, vehicle *models.Vehicle) (*models.Rider, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rider, ok := r.riders[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	rider.FullName = fullName
	rider.Phone = phone
	if vehicle != nil {
		rider.Vehicle = *vehicle
	}
	c := *rider
	c.Password = ""
	return &c, nil
}

func (r *memRiderRepo) update(id primitive.ObjectID, apply func(*models.Rider)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rider, ok := r.riders[id]
	if !ok {
		return interfaces.ErrNotFound
	}
	apply(rider)
	return nil
}

func (r *memRiderRepo) UpdateSocketID(_ context.Context, id primitive.ObjectID, socketID string) error {
	return r.update(id, func(rider *models.Rider) { rider.SocketID = socketID })
}

func (r *memRiderRepo) MarkEmailVerified(_ context.Context, id primitive.ObjectID) error {
	return r.update(id, func(rider *models.Rider) { rider.EmailVerified = true })
}

func (r *memRiderRepo) UpdatePassword(_ context.Context, id primitive.ObjectID, hash string) error {
	return r.update(id, func(rider *models.Rider) { rider.Password = hash })
}

func (r *memRiderRepo) UpdateLocation(_ context.Context, id primitive.ObjectID, location *models.Location) error {
	return r.update(id, func(rider *models.Rider) { rider.Location = location })
}

func (r *memRiderRepo) AddRide(_ context.Context, id, rideID primitive.ObjectID) error {
	return r.update(id, func(rider *models.Rider) {
		for _, existing := range rider.Rides {
			if existing == rideID {
				return
			}
		}
		rider.Rides = append(rider.Rides, rideID)
	})
}

func (r *memRiderRepo) FindWithinRadius(_ context.Context, lat, lng, radiusKM float64, vehicle models.VehicleType) ([]*models.Rider, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*models.Rider{}
	for _, rider := range r.riders {
		if rider.Location == nil || rider.Vehicle.Type != vehicle {
			continue
		}
		if utils.IsWithinRadius(lat, lng, rider.Location.Latitude(), rider.Location.Longitude(), radiusKM) {
			c := *rider
			out = append(out, &c)
		}
	}
	return out, nil
}

type memUserRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[primitive.ObjectID]*models.User)}
}

func (r *memUserRepo) get(id primitive.ObjectID) *models.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user, ok := r.users[id]; ok {
		c := *user
		return &c
	}
	return nil
}

func (r *memUserRepo) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return interfaces.ErrDuplicate
		}
	}
	user.ID = primitive.NewObjectID()
	c := *user
	r.users[user.ID] = &c
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	user := r.get(id)
	if user == nil {
		return nil, interfaces.ErrNotFound
	}
	user.Password = ""
	return user, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			c := *user
			return &c, nil
		}
	}
	return nil, interfaces.ErrNotFound
}

func (r *memUserRepo) UpdateProfile(_ context.Context, id primitive.ObjectID, fullName models.FullName, phone string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	user.FullName = fullName
	user.Phone = phone
	c := *user
	c.Password = ""
	return &c, nil
}

func (r *memUserRepo) update(id primitive.ObjectID, apply func(*models.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return interfaces.ErrNotFound
	}
	apply(user)
	return nil
}

func (r *memUserRepo) UpdateSocketID(_ context.Context, id primitive.ObjectID, socketID string) error {
	return r.update(id, func(user *models.User) { user.SocketID = socketID })
}

func (r *memUserRepo) MarkEmailVerified(_ context.Context, id primitive.ObjectID) error {
	return r.update(id, func(user *models.User) { user.EmailVerified = true })
}

func (r *memUserRepo) UpdatePassword(_ context.Context, id primitive.ObjectID, hash string) error {
	return r.update(id, func(user *models.User) { user.Password = hash })
}

func (r *memUserRepo) AddRide(_ context.Context, id, rideID primitive.ObjectID) error {
	return r.update(id, func(user *models.User) { user.Rides = append(user.Rides, rideID) })
}

type memLogRepo struct {
	mu      sync.Mutex
	entries []*models.FrontendLog
}

func (r *memLogRepo) Create(_ context.Context, entry *models.FrontendLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	return nil
}

func (r *memLogRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// fakeMaps resolves addresses from a fixed table and answers every route
// with the same element.
type fakeMaps struct {
	places  map[string]maps.Coordinates
	element *maps.DistanceElement
	err     error
}

func (f *fakeMaps) Geocode(_ context.Context, address string) (*maps.Coordinates, error) {
	c, ok := f.places[address]
	if !ok {
		return nil, maps.ErrNoCoordinates
	}
	return &c, nil
}

func (f *fakeMaps) DistanceTime(context.Context, string, string) (*maps.DistanceElement, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.element, nil
}

func (f *fakeMaps) Suggestions(context.Context, string) ([]string, error) {
	return []string{}, nil
}

type sentFrame struct {
	ConnID  string
	Event   string
	Payload interface{}
}

// recordingNotifier treats every connection id starting with "live-" as
// connected.
type recordingNotifier struct {
	frames chan sentFrame
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{frames: make(chan sentFrame, 64)}
}

func (n *recordingNotifier) SendToConnection(connID, event string, payload interface{}) bool {
	n.frames <- sentFrame{ConnID: connID, Event: event, Payload: payload}
	return len(connID) > 5 && connID[:5] == "live-"
}

func (n *recordingNotifier) next(t *testing.T) sentFrame {
	t.Helper()
	select {
	case f := <-n.frames:
		return f
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a notification")
	}
	return sentFrame{}
}

func (n *recordingNotifier) none(t *testing.T, wait time.Duration) {
	t.Helper()
	select {
	case f := <-n.frames:
		t.Fatalf("unexpected notification %s to %s", f.Event, f.ConnID)
	case <-time.After(wait):
	}
}

type recordingPublisher struct {
	events chan events.RideEvent
}

func (p *recordingPublisher) PublishRideEvent(_ context.Context, event events.RideEvent) error {
	p.events <- event
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

// recordingMailer keeps every message it is asked to send.
type recordingMailer struct {
	mu   sync.Mutex
	sent []mailer.Message
	err  error
}

func (m *recordingMailer) Send(_ context.Context, msg mailer.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *recordingMailer) last(t *testing.T) mailer.Message {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		t.Fatal("no mail sent")
	}
	return m.sent[len(m.sent)-1]
}
