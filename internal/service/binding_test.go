package service

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"agent_shopping/internal/domain"
	apperrors "agent_shopping/pkg/errors"
)

func newBindingFixture() (*fakeBindingRepo, *fakeUserRepo, *fakeEvictor, BindingService) {
	bindingRepo := newFakeBindingRepo()
	userRepo := newFakeUserRepo()
	evictor := &fakeEvictor{}
	svc := NewBindingService(bindingRepo, userRepo, evictor, nopLogger{})
	return bindingRepo, userRepo, evictor, svc
}

func TestBindingRequestByAgent(t *testing.T) {
	r := require.New(t)
	_, userRepo, _, svc := newBindingFixture()

	agent := userRepo.addUser("li", domain.RoleAgent)
	buyer := userRepo.addUser("wang", domain.RoleBuyer)

	binding, already, err := svc.Request(context.Background(), agent.ID, buyer.ID)
	r.NoError(err)
	r.False(already)
	r.Equal(agent.ID, binding.AgentID)
	r.Equal(buyer.ID, binding.BuyerID)
	r.Equal(domain.BindingStatusPending, binding.Status)
}

func TestBindingRequestByBuyer(t *testing.T) {
	r := require.New(t)
	_, userRepo, _, svc := newBindingFixture()

	agent := userRepo.addUser("li", domain.RoleAgent)
	buyer := userRepo.addUser("wang", domain.RoleBuyer)

	binding, already, err := svc.Request(context.Background(), buyer.ID, agent.ID)
	r.NoError(err)
	r.False(already)
	r.Equal(agent.ID, binding.AgentID)
	r.Equal(buyer.ID, binding.BuyerID)
}

func TestBindingRequestWithoutRole(t *testing.T) {
	r := require.New(t)
	_, userRepo, _, svc := newBindingFixture()

	noRole := userRepo.addUser("li", "")
	buyer := userRepo.addUser("wang", domain.RoleBuyer)

	_, _, err := svc.Request(context.Background(), noRole.ID, buyer.ID)
	r.ErrorIs(err, apperrors.ErrRoleViolation)
}

func TestBindingRequestInvalidCounterparty(t *testing.T) {
	r := require.New(t)
	_, userRepo, _, svc := newBindingFixture()

	agent := userRepo.addUser("li", domain.RoleAgent)
	otherAgent := userRepo.addUser("zhao", domain.RoleAgent)

	// сам с собой
	_, _, err := svc.Request(context.Background(), agent.ID, agent.ID)
	r.ErrorIs(err, apperrors.ErrInvalidCounterparty)

	// та же роль
	_, _, err = svc.Request(context.Background(), agent.ID, otherAgent.ID)
	r.ErrorIs(err, apperrors.ErrInvalidCounterparty)

	// несуществующий пользователь
	_, _, err = svc.Request(context.Background(), agent.ID, uuid.New())
	r.ErrorIs(err, apperrors.ErrInvalidCounterparty)
}

func TestBindingRequestDuplicateIsIdempotent(t *testing.T) {
	r := require.New(t)
	_, userRepo, _, svc := newBindingFixture()

	agent := userRepo.addUser("li", domain.RoleAgent)
	buyer := userRepo.addUser("wang", domain.RoleBuyer)

	first, already, err := svc.Request(context.Background(), agent.ID, buyer.ID)
	r.NoError(err)
	r.False(already)

	// повтор с любой стороны возвращает существующую запись
	second, already, err := svc.Request(context.Background(), buyer.ID, agent.ID)
	r.NoError(err)
	r.True(already)
	r.Equal(first.ID, second.ID)
}

func TestBindingRequestConcurrentSamePair(t *testing.T) {
	r := require.New(t)
	bindingRepo, userRepo, _, svc := newBindingFixture()

	agent := userRepo.addUser("li", domain.RoleAgent)
	buyer := userRepo.addUser("wang", domain.RoleBuyer)

	const workers = 16
	ids := make([]uuid.UUID, workers)
	fresh := make([]bool, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			binding, already, err := svc.Request(context.Background(), agent.ID, buyer.ID)
			if err != nil {
				errs[i] = err
				return
			}
			ids[i] = binding.ID
			fresh[i] = !already
		}(i)
	}
	wg.Wait()

	freshCount := 0
	for i := 0; i < workers; i++ {
		r.NoError(errs[i])
		r.Equal(ids[0], ids[i])
		if fresh[i] {
			freshCount++
		}
	}
	r.Equal(1, freshCount)
	r.Len(bindingRepo.bindings, 1)
}

func TestBindingRequestDirect(t *testing.T) {
	r := require.New(t)
	_, userRepo, _, svc := newBindingFixture()

	agent := userRepo.addUser("li", domain.RoleAgent)
	buyer := userRepo.addUser("wang", domain.RoleBuyer)

	binding, already, err := svc.RequestDirect(context.Background(), agent.ID, buyer.ID)
	r.NoError(err)
	r.False(already)
	r.Equal(domain.BindingStatusConfirmed, binding.Status)

	// путь доступен только закупщику
	_, _, err = svc.RequestDirect(context.Background(), buyer.ID, agent.ID)
	r.ErrorIs(err, apperrors.ErrRoleViolation)
}

func TestBindingConfirm(t *testing.T) {
	r := require.New(t)
	_, userRepo, _, svc := newBindingFixture()

	agent := userRepo.addUser("li", domain.RoleAgent)
	buyer := userRepo.addUser("wang", domain.RoleBuyer)
	stranger := userRepo.addUser("chen", domain.RoleBuyer)

	binding, _, err := svc.Request(context.Background(), agent.ID, buyer.ID)
	r.NoError(err)

	_, _, err = svc.Confirm(context.Background(), stranger.ID, binding.ID)
	r.ErrorIs(err, apperrors.ErrForbidden)

	confirmed, already, err := svc.Confirm(context.Background(), buyer.ID, binding.ID)
	r.NoError(err)
	r.False(already)
	r.Equal(domain.BindingStatusConfirmed, confirmed.Status)

	// повторное подтверждение — no-op
	_, already, err = svc.Confirm(context.Background(), agent.ID, binding.ID)
	r.NoError(err)
	r.True(already)

	_, _, err = svc.Confirm(context.Background(), buyer.ID, uuid.New())
	r.ErrorIs(err, apperrors.ErrBindingNotFound)
}

func TestBindingUnbind(t *testing.T) {
	r := require.New(t)
	_, userRepo, evictor, svc := newBindingFixture()

	agent := userRepo.addUser("li", domain.RoleAgent)
	buyer := userRepo.addUser("wang", domain.RoleBuyer)
	stranger := userRepo.addUser("chen", domain.RoleBuyer)

	binding, _, err := svc.Request(context.Background(), agent.ID, buyer.ID)
	r.NoError(err)

	err = svc.Unbind(context.Background(), stranger.ID, binding.ID)
	r.ErrorIs(err, apperrors.ErrForbidden)

	// pending можно разорвать без подтверждения
	err = svc.Unbind(context.Background(), buyer.ID, binding.ID)
	r.NoError(err)
	r.Equal([]string{binding.RoomID()}, evictor.rooms())

	ok, err := svc.IsAuthorized(context.Background(), buyer.ID, binding.RoomID())
	r.NoError(err)
	r.False(ok)

	err = svc.Unbind(context.Background(), buyer.ID, binding.ID)
	r.ErrorIs(err, apperrors.ErrBindingNotFound)
}

func TestBindingUnbindAllForAgent(t *testing.T) {
	r := require.New(t)
	bindingRepo, userRepo, evictor, svc := newBindingFixture()

	agent := userRepo.addUser("li", domain.RoleAgent)
	otherAgent := userRepo.addUser("zhao", domain.RoleAgent)
	first := userRepo.addUser("wang", domain.RoleBuyer)
	second := userRepo.addUser("chen", domain.RoleBuyer)

	_, _, err := svc.Request(context.Background(), agent.ID, first.ID)
	r.NoError(err)
	_, _, err = svc.Request(context.Background(), agent.ID, second.ID)
	r.NoError(err)
	kept, _, err := svc.Request(context.Background(), otherAgent.ID, first.ID)
	r.NoError(err)

	removed, err := svc.UnbindAllForAgent(context.Background(), agent.ID)
	r.NoError(err)
	r.Equal(2, removed)
	r.Len(evictor.rooms(), 2)

	// чужая привязка не тронута
	r.Len(bindingRepo.bindings, 1)
	_, err = bindingRepo.GetByID(context.Background(), kept.ID)
	r.NoError(err)
}

func TestBindingIsAuthorized(t *testing.T) {
	r := require.New(t)
	_, userRepo, _, svc := newBindingFixture()

	agent := userRepo.addUser("li", domain.RoleAgent)
	buyer := userRepo.addUser("wang", domain.RoleBuyer)
	stranger := userRepo.addUser("chen", domain.RoleBuyer)

	binding, _, err := svc.Request(context.Background(), agent.ID, buyer.ID)
	r.NoError(err)

	for _, id := range []uuid.UUID{agent.ID, buyer.ID} {
		ok, err := svc.IsAuthorized(context.Background(), id, binding.RoomID())
		r.NoError(err)
		r.True(ok)
	}

	ok, err := svc.IsAuthorized(context.Background(), stranger.ID, binding.RoomID())
	r.NoError(err)
	r.False(ok)

	// мусорный идентификатор комнаты — не ошибка, просто отказ
	ok, err = svc.IsAuthorized(context.Background(), buyer.ID, "not-a-room")
	r.NoError(err)
	r.False(ok)
}

func TestBindingGetAndList(t *testing.T) {
	r := require.New(t)
	_, userRepo, _, svc := newBindingFixture()

	agent := userRepo.addUser("li", domain.RoleAgent)
	buyer := userRepo.addUser("wang", domain.RoleBuyer)
	stranger := userRepo.addUser("chen", domain.RoleBuyer)

	binding, _, err := svc.Request(context.Background(), agent.ID, buyer.ID)
	r.NoError(err)

	got, err := svc.Get(context.Background(), buyer.ID, binding.ID)
	r.NoError(err)
	r.Equal(binding.ID, got.ID)

	_, err = svc.Get(context.Background(), stranger.ID, binding.ID)
	r.ErrorIs(err, apperrors.ErrForbidden)

	list, err := svc.ListForUser(context.Background(), agent.ID)
	r.NoError(err)
	r.Len(list, 1)

	list, err = svc.ListForUser(context.Background(), stranger.ID)
	r.NoError(err)
	r.Empty(list)
}

func TestBindingListNewestFirst(t *testing.T) {
	r := require.New(t)
	_, userRepo, _, svc := newBindingFixture()

	agent := userRepo.addUser("li", domain.RoleAgent)
	first := userRepo.addUser("wang", domain.RoleBuyer)
	second := userRepo.addUser("chen", domain.RoleBuyer)

	older, _, err := svc.Request(context.Background(), agent.ID, first.ID)
	r.NoError(err)
	newer, _, err := svc.Request(context.Background(), agent.ID, second.ID)
	r.NoError(err)

	list, err := svc.ListForUser(context.Background(), agent.ID)
	r.NoError(err)
	r.Len(list, 2)
	r.Equal(newer.ID, list[0].ID)
	r.Equal(older.ID, list[1].ID)
}
