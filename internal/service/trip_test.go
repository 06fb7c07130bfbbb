package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"agent_shopping/internal/domain"
	apperrors "agent_shopping/pkg/errors"
)

type fakeTripRepo struct {
	mu    sync.Mutex
	trips map[uuid.UUID]*domain.AgentTrip
}

func newFakeTripRepo() *fakeTripRepo {
	return &fakeTripRepo{trips: make(map[uuid.UUID]*domain.AgentTrip)}
}

func (f *fakeTripRepo) Upsert(ctx context.Context, trip *domain.AgentTrip) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *trip
	f.trips[trip.UserID] = &cp
	return nil
}

func (f *fakeTripRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.AgentTrip, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	trip, ok := f.trips[userID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *trip
	return &cp, nil
}

func (f *fakeTripRepo) SetPublished(ctx context.Context, userID uuid.UUID, published bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	trip, ok := f.trips[userID]
	if !ok {
		return apperrors.ErrNotFound
	}
	trip.IsPublished = published
	return nil
}

func (f *fakeTripRepo) Delete(ctx context.Context, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.trips[userID]; !ok {
		return apperrors.ErrNotFound
	}
	delete(f.trips, userID)
	return nil
}

func (f *fakeTripRepo) ListPublished(ctx context.Context) ([]*domain.AgentTrip, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []*domain.AgentTrip
	for _, trip := range f.trips {
		if trip.IsPublished {
			cp := *trip
			result = append(result, &cp)
		}
	}
	return result, nil
}

type tripFixture struct {
	userRepo *fakeUserRepo
	tripRepo *fakeTripRepo
	evictor  *fakeEvictor
	bindings BindingService
	trips    TripService
}

func newTripFixture() *tripFixture {
	userRepo := newFakeUserRepo()
	tripRepo := newFakeTripRepo()
	evictor := &fakeEvictor{}
	bindings := NewBindingService(newFakeBindingRepo(), userRepo, evictor, nopLogger{})
	trips := NewTripService(tripRepo, userRepo, bindings, nopLogger{})
	return &tripFixture{
		userRepo: userRepo,
		tripRepo: tripRepo,
		evictor:  evictor,
		bindings: bindings,
		trips:    trips,
	}
}

func TestTripSaveRequiresAgent(t *testing.T) {
	r := require.New(t)
	f := newTripFixture()

	buyer := f.userRepo.addUser("wang", domain.RoleBuyer)
	travelAt := time.Now().Add(48 * time.Hour)

	_, err := f.trips.Save(context.Background(), buyer.ID, travelAt, "Tokyo", "")
	r.ErrorIs(err, apperrors.ErrRoleViolation)
}

func TestTripSaveAndPublish(t *testing.T) {
	r := require.New(t)
	f := newTripFixture()

	agent := f.userRepo.addUser("li", domain.RoleAgent)
	travelAt := time.Now().Add(48 * time.Hour)

	trip, err := f.trips.Save(context.Background(), agent.ID, travelAt, "Tokyo", "Shibuya, Ginza")
	r.NoError(err)
	r.False(trip.IsPublished)

	_, err = f.trips.Save(context.Background(), agent.ID, time.Time{}, "Tokyo", "")
	r.ErrorIs(err, apperrors.ErrBadRequest)

	published, err := f.trips.ListPublished(context.Background())
	r.NoError(err)
	r.Empty(published)

	r.NoError(f.trips.Publish(context.Background(), agent.ID))

	published, err = f.trips.ListPublished(context.Background())
	r.NoError(err)
	r.Len(published, 1)
	r.Equal("Tokyo", published[0].Location)
}

func TestTripSaveReplacesExisting(t *testing.T) {
	r := require.New(t)
	f := newTripFixture()

	agent := f.userRepo.addUser("li", domain.RoleAgent)
	travelAt := time.Now().Add(48 * time.Hour)

	_, err := f.trips.Save(context.Background(), agent.ID, travelAt, "Tokyo", "")
	r.NoError(err)
	_, err = f.trips.Save(context.Background(), agent.ID, travelAt, "Seoul", "")
	r.NoError(err)

	trip, err := f.trips.Get(context.Background(), agent.ID)
	r.NoError(err)
	r.Equal("Seoul", trip.Location)
	r.Len(f.tripRepo.trips, 1)
}

func TestTripDeleteCascadesUnbind(t *testing.T) {
	r := require.New(t)
	f := newTripFixture()

	agent := f.userRepo.addUser("li", domain.RoleAgent)
	first := f.userRepo.addUser("wang", domain.RoleBuyer)
	second := f.userRepo.addUser("chen", domain.RoleBuyer)

	_, err := f.trips.Save(context.Background(), agent.ID, time.Now().Add(48*time.Hour), "Tokyo", "")
	r.NoError(err)

	_, _, err = f.bindings.Request(context.Background(), agent.ID, first.ID)
	r.NoError(err)
	_, _, err = f.bindings.Request(context.Background(), agent.ID, second.ID)
	r.NoError(err)

	removed, err := f.trips.Delete(context.Background(), agent.ID)
	r.NoError(err)
	r.Equal(2, removed)
	r.Len(f.evictor.rooms(), 2)

	_, err = f.trips.Get(context.Background(), agent.ID)
	r.ErrorIs(err, apperrors.ErrNotFound)

	list, err := f.bindings.ListForUser(context.Background(), agent.ID)
	r.NoError(err)
	r.Empty(list)
}
