package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"towerdeck/internal/domain/aircraft"
	"towerdeck/internal/domain/event"
	"towerdeck/internal/events"
	"towerdeck/internal/repository"
	towerdeck_errors "towerdeck/pkg/errors"
	"towerdeck/pkg/logger"
)

// recordingBus captures publishes in order. It satisfies events.Publisher.
type recordingBus struct {
	mu        sync.Mutex
	published []publishedMessage
}

type publishedMessage struct {
	Topic    string
	Envelope events.Envelope
}

func (b *recordingBus) Publish(_ context.Context, topic string, env events.Envelope) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.published = append(b.published, publishedMessage{Topic: topic, Envelope: env})
	return nil
}

func (b *recordingBus) messages() []publishedMessage {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]publishedMessage, len(b.published))
	copy(out, b.published)
	return out
}

// failingBus refuses every publish. It satisfies events.Publisher.
type failingBus struct {
	mu       sync.Mutex
	attempts int
}

func (b *failingBus) Publish(context.Context, string, events.Envelope) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.attempts++
	return errors.New("broker down")
}

func (b *failingBus) publishAttempts() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.attempts
}

// failingEventRepo fails every Create, inside and outside a transaction.
type failingEventRepo struct {
	repository.EventRepository
	createErr error
}

func (r *failingEventRepo) WithTx(tx *gorm.DB) repository.EventRepository {
	return &failingEventRepo{EventRepository: r.EventRepository.WithTx(tx), createErr: r.createErr}
}

func (r *failingEventRepo) Create(context.Context, *event.Event) error {
	return r.createErr
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&aircraft.Aircraft{}, &event.Event{}))
	return db
}

func newPipeline(t *testing.T) (*AircraftService, *gorm.DB, *recordingBus) {
	t.Helper()
	db := openTestDB(t)
	bus := &recordingBus{}
	svc := NewAircraftService(db,
		repository.NewAircraftRepository(db),
		repository.NewEventRepository(db),
		bus, logger.NewNop())
	return svc, db, bus
}

func seedAircraft(t *testing.T, db *gorm.DB, callsign string, status aircraft.Status) aircraft.Aircraft {
	t.Helper()
	a := aircraft.Aircraft{
		Callsign: callsign,
		Status:   status,
		Position: aircraft.Position{Lat: 52.3, Lon: 4.76, Heading: 240},
	}
	require.NoError(t, db.Create(&a).Error)
	return a
}

func eventCount(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&event.Event{}).Count(&count).Error)
	return count
}

func TestUpdateNotFoundWritesAndPublishesNothing(t *testing.T) {
	svc, db, bus := newPipeline(t)
	status := aircraft.StatusLanded

	_, err := svc.Update(context.Background(), 404, UpdateRequest{Status: &status})
	require.ErrorIs(t, err, towerdeck_errors.ErrNotFound)

	require.EqualValues(t, 0, eventCount(t, db))
	require.Empty(t, bus.messages())
}

func TestUpdateStatusChangeScenario(t *testing.T) {
	svc, db, bus := newPipeline(t)
	seeded := seedAircraft(t, db, "AC100", aircraft.StatusActive)

	status := aircraft.StatusLanded
	result, err := svc.Update(context.Background(), seeded.ID, UpdateRequest{Status: &status})
	require.NoError(t, err)

	require.Equal(t, aircraft.StatusLanded, result.Aircraft.Status)
	require.Len(t, result.Events, 1)
	require.Equal(t, events.TypeAircraftStatusChanged, result.Events[0].Type)
	require.Equal(t, "AC100 status changed from active to landed", result.Events[0].Message)

	diff, ok := result.Changes["status"]
	require.True(t, ok)
	require.Equal(t, aircraft.StatusActive, diff.From)
	require.Equal(t, aircraft.StatusLanded, diff.To)

	var details events.StatusChange
	require.NoError(t, json.Unmarshal(result.Events[0].Details, &details))
	require.Equal(t, aircraft.StatusActive, details.From)
	require.Equal(t, aircraft.StatusLanded, details.To)

	require.EqualValues(t, 1, eventCount(t, db), "event row committed with the mutation")

	msgs := bus.messages()
	require.Len(t, msgs, 2, "event-created plus the category topic, once each")
	require.Equal(t, events.TopicEventCreated, msgs[0].Topic)
	require.Equal(t, events.TopicAircraftStatusChanged, msgs[1].Topic)
	require.Equal(t, result.Events[0].ID, msgs[0].Envelope.Event.ID)
}

func TestUpdateNoopStatusEmitsNothing(t *testing.T) {
	svc, db, bus := newPipeline(t)
	seeded := seedAircraft(t, db, "AC100", aircraft.StatusActive)

	status := aircraft.StatusActive
	result, err := svc.Update(context.Background(), seeded.ID, UpdateRequest{Status: &status})
	require.NoError(t, err)

	require.Empty(t, result.Events)
	require.Empty(t, result.Changes)
	require.EqualValues(t, 0, eventCount(t, db))
	require.Empty(t, bus.messages())
}

func TestUpdateEmitsOneEventPerChangedCategory(t *testing.T) {
	svc, db, bus := newPipeline(t)
	seeded := seedAircraft(t, db, "AC100", aircraft.StatusActive)

	status := aircraft.StatusLanded
	squawk := "7700"
	result, err := svc.Update(context.Background(), seeded.ID, UpdateRequest{
		Position:   &aircraft.Position{Lat: 52.31, Lon: 4.77, Altitude: 120, Heading: 270},
		Status:     &status,
		SquawkCode: &squawk,
	})
	require.NoError(t, err)

	require.Len(t, result.Events, 3)
	typesSeen := map[string]int{}
	for _, e := range result.Events {
		typesSeen[e.Type]++
	}
	require.Equal(t, 1, typesSeen[events.TypeAircraftPositionUpdated])
	require.Equal(t, 1, typesSeen[events.TypeAircraftStatusChanged])
	require.Equal(t, 1, typesSeen[events.TypeAircraftUpdated])

	require.Len(t, result.Changes, 3)
	require.EqualValues(t, 3, eventCount(t, db))

	// Every event goes out on event-created; position and status changes
	// additionally get their category topic.
	created := 0
	for _, m := range bus.messages() {
		if m.Topic == events.TopicEventCreated {
			created++
		}
	}
	require.Equal(t, 3, created)
	require.Len(t, bus.messages(), 5)
}

func TestUpdateEventWriteFailureRollsBackEverything(t *testing.T) {
	db := openTestDB(t)
	bus := &recordingBus{}
	svc := NewAircraftService(db,
		repository.NewAircraftRepository(db),
		&failingEventRepo{
			EventRepository: repository.NewEventRepository(db),
			createErr:       errors.New("disk full"),
		},
		bus, logger.NewNop())

	seeded := seedAircraft(t, db, "AC100", aircraft.StatusActive)
	status := aircraft.StatusLanded
	_, err := svc.Update(context.Background(), seeded.ID, UpdateRequest{Status: &status})
	require.Error(t, err)

	var current aircraft.Aircraft
	require.NoError(t, db.First(&current, seeded.ID).Error)
	require.Equal(t, aircraft.StatusActive, current.Status, "aircraft mutation rolled back with the failed event write")
	require.EqualValues(t, 0, eventCount(t, db))
	require.Empty(t, bus.messages(), "a failed transaction publishes nothing")
}

func TestUpdatePublishFailureDoesNotRollBack(t *testing.T) {
	db := openTestDB(t)
	bus := &failingBus{}
	svc := NewAircraftService(db,
		repository.NewAircraftRepository(db),
		repository.NewEventRepository(db),
		bus, logger.NewNop())

	seeded := seedAircraft(t, db, "AC100", aircraft.StatusActive)
	status := aircraft.StatusLanded
	result, err := svc.Update(context.Background(), seeded.ID, UpdateRequest{Status: &status})
	require.NoError(t, err, "the committed write is the source of truth; a dead broker is not the caller's error")

	require.Equal(t, aircraft.StatusLanded, result.Aircraft.Status)
	require.Len(t, result.Events, 1)

	var current aircraft.Aircraft
	require.NoError(t, db.First(&current, seeded.ID).Error)
	require.Equal(t, aircraft.StatusLanded, current.Status)
	require.EqualValues(t, 1, eventCount(t, db), "event row stays committed")

	require.Equal(t, 2, bus.publishAttempts(), "both topics were attempted despite the failures")
}

func TestUpdatePartialLeavesOtherFieldsAlone(t *testing.T) {
	svc, db, _ := newPipeline(t)
	seeded := seedAircraft(t, db, "AC100", aircraft.StatusActive)

	squawk := "7500"
	result, err := svc.Update(context.Background(), seeded.ID, UpdateRequest{SquawkCode: &squawk})
	require.NoError(t, err)

	require.Equal(t, aircraft.StatusActive, result.Aircraft.Status, "unset fields stay untouched")
	require.Equal(t, seeded.Position, result.Aircraft.Position)
	require.Equal(t, "7500", result.Aircraft.SquawkCode)
}

func TestUpdateRejectsInvalidStatus(t *testing.T) {
	svc, db, bus := newPipeline(t)
	seeded := seedAircraft(t, db, "AC100", aircraft.StatusActive)

	status := aircraft.Status("vanished")
	_, err := svc.Update(context.Background(), seeded.ID, UpdateRequest{Status: &status})
	require.ErrorIs(t, err, towerdeck_errors.ErrInvalidInput)
	require.Empty(t, bus.messages())
}

func TestListDefaultsToActive(t *testing.T) {
	svc, db, _ := newPipeline(t)
	seedAircraft(t, db, "AC100", aircraft.StatusActive)
	seedAircraft(t, db, "AC200", aircraft.StatusLanded)

	items, err := svc.List(context.Background(), "", 0)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "AC100", items[0].Callsign)

	landed, err := svc.List(context.Background(), aircraft.StatusLanded, 0)
	require.NoError(t, err)
	require.Len(t, landed, 1)

	_, err = svc.List(context.Background(), "hovering", 0)
	require.ErrorIs(t, err, towerdeck_errors.ErrInvalidInput)
}

func TestClearAllIdempotent(t *testing.T) {
	svc, db, bus := newPipeline(t)
	seeded := seedAircraft(t, db, "AC100", aircraft.StatusActive)
	seedAircraft(t, db, "AC200", aircraft.StatusActive)

	status := aircraft.StatusLanded
	_, err := svc.Update(context.Background(), seeded.ID, UpdateRequest{Status: &status})
	require.NoError(t, err)
	publishesBefore := len(bus.messages())

	result, err := svc.ClearAll(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 2, result.AircraftDeleted)
	require.EqualValues(t, 1, result.EventsDeleted)

	result, err = svc.ClearAll(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 0, result.AircraftDeleted)
	require.EqualValues(t, 0, result.EventsDeleted)

	require.Len(t, bus.messages(), publishesBefore, "bulk clear publishes nothing")
}
