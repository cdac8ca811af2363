package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/HSouheill/indique_backend/models"
	"github.com/HSouheill/indique_backend/repositories"
	"github.com/HSouheill/indique_backend/services"
)

var testNow = time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

type fakeGuard struct {
	mu       sync.Mutex
	claimed  map[string]bool
	released []string
	err      error
}

func newFakeGuard() *fakeGuard {
	return &fakeGuard{claimed: make(map[string]bool)}
}

func (g *fakeGuard) Acquire(_ context.Context, kind, eventID string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return false, g.err
	}
	key := kind + ":" + eventID
	if g.claimed[key] {
		return false, nil
	}
	g.claimed[key] = true
	return true, nil
}

func (g *fakeGuard) Release(_ context.Context, kind, eventID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	key := kind + ":" + eventID
	delete(g.claimed, key)
	g.released = append(g.released, key)
	return nil
}

type countingNotifier struct {
	mu    sync.Mutex
	count int
	err   error
}

func (n *countingNotifier) Dispatch(context.Context, models.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.count++
	return n.err
}

type triggerEnv struct {
	store    *repositories.MemoryStore
	guard    *fakeGuard
	notifier *countingNotifier
	ctrl     *TriggerController
}

func newTriggerEnv() *triggerEnv {
	store := repositories.NewMemoryStore()
	store.Put(models.CollectionUsers, "u1", map[string]interface{}{"fullName": "Ana", "fcmToken": "tok"})
	store.Put(models.CollectionIndications, "i1", map[string]interface{}{"indicator_id": "u1", "profilePicture": "old.png"})
	store.Put(models.CollectionOpportunities, "o1", map[string]interface{}{"indicator_id": "u1", "profilePicture": "old.png", "status": models.StatusProposalSent})

	clock := func() time.Time { return testNow }
	guard := newFakeGuard()
	notifier := &countingNotifier{}
	users := repositories.NewUserRepository(store)
	ctrl := NewTriggerController(
		services.NewPropagationService(store, zap.NewNop(), nil, clock),
		services.NewNotificationService(users, notifier, zap.NewNop(), clock),
		guard, nil, zap.NewNop(),
	)
	return &triggerEnv{store: store, guard: guard, notifier: notifier, ctrl: ctrl}
}

type triggerBody struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    TriggerResponse `json:"data"`
}

func callTrigger(t *testing.T, handler echo.HandlerFunc, body string) (int, triggerBody) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(http.MethodPost, "/api/triggers/x", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	require.NoError(t, handler(e.NewContext(req, rec)))

	var out triggerBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return rec.Code, out
}

const pictureEvent = `{"eventId":"e1","documentId":"u1","before":{"profilePicture":"old.png"},"after":{"profilePicture":"new.png"}}`

func TestUserUpdatedPropagates(t *testing.T) {
	env := newTriggerEnv()

	code, body := callTrigger(t, env.ctrl.UserUpdated, pictureEvent)
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, body.Data.Changed)
	assert.Equal(t, models.FieldProfilePicture, body.Data.Field)
	assert.Equal(t, 2, body.Data.Updated)
	assert.False(t, body.Data.Duplicate)

	doc, err := env.store.Get(context.Background(), models.CollectionIndications, "i1")
	require.NoError(t, err)
	assert.Equal(t, "new.png", doc.Data[models.FieldProfilePicture])
}

func TestDuplicateEventIsIgnored(t *testing.T) {
	env := newTriggerEnv()

	code, _ := callTrigger(t, env.ctrl.UserUpdated, pictureEvent)
	require.Equal(t, http.StatusOK, code)
	commits := len(env.store.Commits())

	code, body := callTrigger(t, env.ctrl.UserUpdated, pictureEvent)
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, body.Data.Duplicate)
	assert.Len(t, env.store.Commits(), commits)
}

func TestPropagationFailureReleasesEvent(t *testing.T) {
	env := newTriggerEnv()
	env.store.FailCommit = true

	code, body := callTrigger(t, env.ctrl.UserUpdated, pictureEvent)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "Falha ao propagar alteração", body.Message)
	assert.Equal(t, []string{"users:e1"}, env.guard.released)

	// The runtime's retry is processed once the store recovers
	env.store.FailCommit = false
	code, body = callTrigger(t, env.ctrl.UserUpdated, pictureEvent)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, 2, body.Data.Updated)
}

func TestGuardUnavailableStillProcesses(t *testing.T) {
	env := newTriggerEnv()
	env.guard.err = errors.New("redis: connection refused")

	code, body := callTrigger(t, env.ctrl.UserUpdated, pictureEvent)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, 2, body.Data.Updated)
}

func TestTriggerBadRequests(t *testing.T) {
	env := newTriggerEnv()

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"eventId":`},
		{"missing event id", `{"documentId":"u1","after":{}}`},
		{"missing after", `{"eventId":"e2","documentId":"u1"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _ := callTrigger(t, env.ctrl.UserUpdated, tt.body)
			assert.Equal(t, http.StatusBadRequest, code)
		})
	}
}

func TestOpportunityUpdatedArchivesAndNotifies(t *testing.T) {
	env := newTriggerEnv()

	code, body := callTrigger(t, env.ctrl.OpportunityUpdated,
		`{"eventId":"e3","documentId":"o1","before":{"status":"PROPOSTA APRESENTADA"},"after":{"status":"NÃO INTERESSOU","indicator_id":"u1","name":"Carlos"}}`)
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, body.Data.Changed)
	assert.Equal(t, models.FieldArchived, body.Data.Field)
	assert.Equal(t, 1, body.Data.Notifications)
	assert.Equal(t, 1, env.notifier.count)

	doc, err := env.store.Get(context.Background(), models.CollectionOpportunities, "o1")
	require.NoError(t, err)
	assert.Equal(t, true, doc.Data[models.FieldArchived])
}

func TestNotificationFailureDoesNotFailTrigger(t *testing.T) {
	env := newTriggerEnv()
	env.notifier.err = errors.New("fcm unavailable")

	code, body := callTrigger(t, env.ctrl.WithdrawalUpdated,
		`{"eventId":"e4","documentId":"w1","before":{"status":"PENDENTE"},"after":{"status":"PAGO","userId":"u1","amount":50}}`)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, 1, body.Data.Notifications)
	assert.Empty(t, env.guard.released)
}

func TestIndicationCreatedWithoutChanges(t *testing.T) {
	env := newTriggerEnv()

	code, body := callTrigger(t, env.ctrl.IndicationCreated,
		`{"eventId":"e5","documentId":"i1","before":{"status":"PENDENTE CONTATO"},"after":{"status":"CONTATO REALIZADO"}}`)
	assert.Equal(t, http.StatusOK, code)
	assert.False(t, body.Data.Changed)
	assert.Zero(t, body.Data.Notifications)
}

func TestUnitUpdatedNoop(t *testing.T) {
	env := newTriggerEnv()

	code, body := callTrigger(t, env.ctrl.UnitUpdated,
		`{"eventId":"e6","documentId":"unit1","before":{"name":"Centro"},"after":{"name":"Centro"}}`)
	assert.Equal(t, http.StatusOK, code)
	assert.False(t, body.Data.Changed)
	assert.Equal(t, models.FieldUnitName, body.Data.Field)
}
