package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"agent_shopping/internal/domain"
	apperrors "agent_shopping/pkg/errors"
)

// In-memory фейки репозиториев для тестов сервисного слоя

type fakeUserRepo struct {
	mu       sync.Mutex
	users    map[uuid.UUID]*domain.User
	sessions map[string]*domain.UserSession
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:    make(map[uuid.UUID]*domain.User),
		sessions: make(map[string]*domain.UserSession),
	}
}

func (f *fakeUserRepo) addUser(username string, role string) *domain.User {
	f.mu.Lock()
	defer f.mu.Unlock()

	user := &domain.User{
		ID:        uuid.New(),
		Username:  username,
		Phone:     "1380000" + username,
		CreatedAt: time.Now(),
	}
	if role != "" {
		r := role
		user.Role = &r
	}
	f.users[user.ID] = user
	return user
}

func (f *fakeUserRepo) Create(ctx context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.users {
		if u.Phone == user.Phone || u.Username == user.Username {
			return apperrors.ErrUserAlreadyExists
		}
	}
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	user, ok := f.users[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *user
	return &cp, nil
}

func (f *fakeUserRepo) GetByPhone(ctx context.Context, phone string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.users {
		if u.Phone == phone {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (f *fakeUserRepo) SetRole(ctx context.Context, id uuid.UUID, role string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	user, ok := f.users[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	if user.Role != nil {
		return apperrors.ErrRoleAlreadySet
	}
	r := role
	user.Role = &r
	return nil
}

func (f *fakeUserRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return nil
}

func (f *fakeUserRepo) CreateSession(ctx context.Context, session *domain.UserSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	cp := *session
	f.sessions[session.RefreshTokenHash] = &cp
	return nil
}

func (f *fakeUserRepo) GetSessionByTokenHash(ctx context.Context, tokenHash string) (*domain.UserSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	session, ok := f.sessions[tokenHash]
	if !ok || session.RevokedAt != nil {
		return nil, apperrors.ErrNotFound
	}
	cp := *session
	return &cp, nil
}

func (f *fakeUserRepo) RevokeSession(ctx context.Context, id uuid.UUID, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, s := range f.sessions {
		if s.ID == id {
			now := time.Now()
			s.RevokedAt = &now
			s.RevokedReason = &reason
		}
	}
	return nil
}

type fakeBindingRepo struct {
	mu       sync.Mutex
	bindings map[uuid.UUID]*domain.Binding
	seq      int64
}

func newFakeBindingRepo() *fakeBindingRepo {
	return &fakeBindingRepo{bindings: make(map[uuid.UUID]*domain.Binding)}
}

func (f *fakeBindingRepo) Create(ctx context.Context, binding *domain.Binding) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, b := range f.bindings {
		if b.BuyerID == binding.BuyerID && b.AgentID == binding.AgentID {
			return apperrors.ErrAlreadyBound
		}
	}
	f.seq++
	binding.CreatedAt = time.Unix(f.seq, 0)
	cp := *binding
	f.bindings[binding.ID] = &cp
	return nil
}

func (f *fakeBindingRepo) Find(ctx context.Context, buyerID, agentID uuid.UUID) (*domain.Binding, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, b := range f.bindings {
		if b.BuyerID == buyerID && b.AgentID == agentID {
			cp := *b
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeBindingRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Binding, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	binding, ok := f.bindings[id]
	if !ok {
		return nil, apperrors.ErrBindingNotFound
	}
	cp := *binding
	return &cp, nil
}

func (f *fakeBindingRepo) ListForUser(ctx context.Context, userID uuid.UUID) ([]*domain.Binding, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var result []*domain.Binding
	for _, b := range f.bindings {
		if b.BuyerID == userID || b.AgentID == userID {
			cp := *b
			result = append(result, &cp)
		}
	}
	sortBindingsDesc(result)
	return result, nil
}

func (f *fakeBindingRepo) ListForAgent(ctx context.Context, agentID uuid.UUID) ([]*domain.Binding, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var result []*domain.Binding
	for _, b := range f.bindings {
		if b.AgentID == agentID {
			cp := *b
			result = append(result, &cp)
		}
	}
	sortBindingsDesc(result)
	return result, nil
}

// порядок реального репозитория: created_at DESC
func sortBindingsDesc(bindings []*domain.Binding) {
	sort.Slice(bindings, func(i, j int) bool {
		return bindings[i].CreatedAt.After(bindings[j].CreatedAt)
	})
}

func (f *fakeBindingRepo) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	binding, ok := f.bindings[id]
	if !ok {
		return apperrors.ErrBindingNotFound
	}
	binding.Status = status
	return nil
}

func (f *fakeBindingRepo) Delete(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.bindings[id]; !ok {
		return apperrors.ErrBindingNotFound
	}
	delete(f.bindings, id)
	return nil
}

// fakeChatRepo имитирует INSERT ... WHERE EXISTS: сообщение сохраняется
// только пока привязка комнаты жива
type fakeChatRepo struct {
	mu       sync.Mutex
	bindings *fakeBindingRepo
	messages []*domain.ChatMessage
	seq      int64
}

func newFakeChatRepo(bindings *fakeBindingRepo) *fakeChatRepo {
	return &fakeChatRepo{bindings: bindings}
}

func (f *fakeChatRepo) CreateMessage(ctx context.Context, message *domain.ChatMessage) error {
	roomUUID, err := uuid.Parse(message.RoomID)
	if err != nil {
		return apperrors.ErrBindingNotFound
	}
	if _, err := f.bindings.GetByID(ctx, roomUUID); err != nil {
		return apperrors.ErrForbidden
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.seq++
	message.ID = f.seq
	message.CreatedAt = time.Unix(1700000000+f.seq, 0)
	cp := *message
	f.messages = append(f.messages, &cp)
	return nil
}

func (f *fakeChatRepo) GetHistory(ctx context.Context, roomID string) ([]*domain.ChatMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var result []*domain.ChatMessage
	for _, m := range f.messages {
		if m.RoomID == roomID {
			cp := *m
			result = append(result, &cp)
		}
	}
	return result, nil
}

type fakeEvictor struct {
	mu      sync.Mutex
	evicted []string
}

func (f *fakeEvictor) Evict(roomID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.evicted = append(f.evicted, roomID)
}

func (f *fakeEvictor) rooms() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.evicted...)
}

type fakeBroadcaster struct {
	mu     sync.Mutex
	events []domain.ChatEvent
}

func (f *fakeBroadcaster) Broadcast(roomID string, event domain.ChatEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
}

func (f *fakeBroadcaster) all() []domain.ChatEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.ChatEvent(nil), f.events...)
}

type fakeCodeRepo struct {
	mu    sync.Mutex
	codes map[string]string
}

func newFakeCodeRepo() *fakeCodeRepo {
	return &fakeCodeRepo{codes: make(map[string]string)}
}

func (f *fakeCodeRepo) Store(ctx context.Context, phone, code string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.codes[phone] = code
	return nil
}

func (f *fakeCodeRepo) Check(ctx context.Context, phone, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if stored, ok := f.codes[phone]; !ok || stored != code {
		return apperrors.ErrInvalidCode
	}
	return nil
}

func (f *fakeCodeRepo) Invalidate(ctx context.Context, phone string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.codes, phone)
	return nil
}

type fakeSMS struct {
	mu   sync.Mutex
	sent map[string]string
}

func newFakeSMS() *fakeSMS {
	return &fakeSMS{sent: make(map[string]string)}
}

func (f *fakeSMS) Send(ctx context.Context, phone, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent[phone] = code
	return nil
}

func (f *fakeSMS) lastCode(phone string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sent[phone]
}

type nopLogger struct{}

func (nopLogger) Debug(msg string, args ...any) {}
func (nopLogger) Info(msg string, args ...any)  {}
func (nopLogger) Warn(msg string, args ...any)  {}
func (nopLogger) Error(msg string, args ...any) {}
func (nopLogger) Fatal(msg string, args ...any) {}
