package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/roster-board/internal/config"
	"github.com/sysu-ecnc-dev/roster-board/internal/domain"
	"github.com/sysu-ecnc-dev/roster-board/internal/session"
)

const testSecret = "test-secret"

type fakeStore struct {
	mu        sync.Mutex
	settings  *domain.ManagerSettings
	employees []*domain.Employee
	schedules map[string]*domain.Schedule
	order     []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		settings: &domain.ManagerSettings{
			WorkDays:   []string{"Sunday", "Monday"},
			ShiftNames: []string{"Morning"},
		},
		employees: []*domain.Employee{{ID: "e1", FirstName: "Ann", LastName: "Lee", Jobs: []string{"Cook"}}},
		schedules: make(map[string]*domain.Schedule),
	}
}

func (f *fakeStore) GetManagerSettings() (*domain.ManagerSettings, error) {
	if f.settings == nil {
		return nil, sql.ErrNoRows
	}
	return f.settings, nil
}

func (f *fakeStore) GetAllEmployees() ([]*domain.Employee, error) {
	return f.employees, nil
}

func (f *fakeStore) GetAllSchedules() ([]*domain.Schedule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]*domain.Schedule, 0, len(f.order))
	for i := len(f.order) - 1; i >= 0; i-- {
		out = append(out, f.schedules[f.order[i]])
	}
	return out, nil
}

func (f *fakeStore) CreateSchedule(s *domain.Schedule) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	s.ID = "s" + string(rune('1'+len(f.order)))
	s.CreatedAt = time.Now()
	f.schedules[s.ID] = s
	f.order = append(f.order, s.ID)
	return nil
}

func (f *fakeStore) ReplaceScheduleDays(id string, days []domain.Day) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	s, ok := f.schedules[id]
	if !ok {
		return sql.ErrNoRows
	}
	s.Days = days
	return nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []domain.ScheduleEvent
}

func (p *fakePublisher) Publish(ctx context.Context, ev domain.ScheduleEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func newTestHandler(t *testing.T) (*Handler, *fakeStore, *fakePublisher) {
	t.Helper()
	cfg := &config.Config{}
	cfg.JWT.Secret = testSecret

	store := newFakeStore()
	pub := &fakePublisher{}
	h, err := NewHandler(cfg, store, pub)
	require.NoError(t, err)
	h.RegisterRoutes()
	return h, store, pub
}

func token(t *testing.T, subject string, role session.Role) string {
	t.Helper()
	tok, err := session.Issue(subject, role, []byte(testSecret), time.Hour)
	require.NoError(t, err)
	return tok
}

func do(h *Handler, method, path, tok, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	rec := httptest.NewRecorder()
	h.Mux.ServeHTTP(rec, req)
	return rec
}

const validDays = `{"days":[{"id":"d0","name":"Sunday","shifts":[{"id":"d0-s0","time":"Morning","color":"white","employees":[{"id":"a1","name":"Ann Lee","role":"Cook","hours":"08:00-12:00"}]}]}]}`

func TestRequiresToken(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rec := do(h, http.MethodGet, "/api/schedule/all", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(h, http.MethodGet, "/api/schedule/all", "garbage", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestReadEndpoints(t *testing.T) {
	h, _, _ := newTestHandler(t)
	tok := token(t, "emp-1", session.RoleEmployee)

	rec := do(h, http.MethodGet, "/api/manager-settings/", tok, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var settings map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &settings))
	assert.Equal(t, []any{"Sunday", "Monday"}, settings["work_days"])

	rec = do(h, http.MethodGet, "/api/user/employees", tok, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var employees []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &employees))
	require.Len(t, employees, 1)
	assert.Equal(t, "e1", employees[0]["_id"])
	assert.Equal(t, "Ann", employees[0]["first_name"])
}

func TestMissingSettingsIsNotFound(t *testing.T) {
	h, store, _ := newTestHandler(t)
	store.settings = nil

	rec := do(h, http.MethodGet, "/api/manager-settings/", token(t, "m", session.RoleManager), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWritesRequireManager(t *testing.T) {
	h, store, pub := newTestHandler(t)

	rec := do(h, http.MethodPost, "/api/schedule/add", token(t, "emp-1", session.RoleEmployee), validDays)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, store.order)
	assert.Empty(t, pub.events)
}

func TestCreateThenUpdate(t *testing.T) {
	h, store, pub := newTestHandler(t)
	tok := token(t, "manager-1", session.RoleManager)

	rec := do(h, http.MethodPost, "/api/schedule/add", tok, validDays)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created struct {
		ID string `json:"_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)

	updated := strings.Replace(validDays, `"Ann Lee"`, `"Bo Chen"`, 1)
	rec = do(h, http.MethodPut, "/api/schedule/update/"+created.ID, tok, updated)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Bo Chen", store.schedules[created.ID].Days[0].Shifts[0].Assignments[0].Employee)
	assert.Equal(t, "white", store.schedules[created.ID].Days[0].Shifts[0].Color)

	require.Len(t, pub.events, 2)
	assert.Equal(t, domain.ScheduleEventPublished, pub.events[0].Type)
	assert.Equal(t, domain.ScheduleEventUpdated, pub.events[1].Type)
	assert.Equal(t, "manager-1", pub.events[1].Actor)
	assert.Equal(t, 1, pub.events[1].Assignments)

	rec = do(h, http.MethodGet, "/api/schedule/all", tok, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var all []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &all))
	require.Len(t, all, 1)
	assert.Equal(t, created.ID, all[0]["_id"])
}

func TestUpdateUnknownSchedule(t *testing.T) {
	h, _, pub := newTestHandler(t)

	rec := do(h, http.MethodPut, "/api/schedule/update/missing", token(t, "m", session.RoleManager), validDays)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, pub.events)
}

func TestRejectsInvalidDays(t *testing.T) {
	h, store, _ := newTestHandler(t)
	tok := token(t, "m", session.RoleManager)

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"days":`},
		{"missing days", `{}`},
		{"missing day name", `{"days":[{"id":"d0","shifts":[]}]}`},
		{"duplicate day id", `{"days":[{"id":"d0","name":"a","shifts":[]},{"id":"d0","name":"b","shifts":[]}]}`},
		{"bad hours", strings.Replace(validDays, "08:00-12:00", "eight to noon", 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(h, http.MethodPost, "/api/schedule/add", tok, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var body ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body.Error)
		})
	}
	assert.Empty(t, store.order)
}

func TestGenerateSchedule(t *testing.T) {
	h, store, _ := newTestHandler(t)
	h.config.Scheduler.PopulationSize = 10
	h.config.Scheduler.MaxGenerations = 5
	h.config.Scheduler.CrossoverRate = 0.8
	h.config.Scheduler.MutationRate = 0.1
	h.config.Scheduler.EliteCount = 1
	store.settings.RolesPerShift = map[string]map[string]int{"Morning": {"Cook": 1}}
	tok := token(t, "m", session.RoleManager)

	rec := do(h, http.MethodGet, "/api/csp/generate-schedule", tok, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Solution string   `json:"solution"`
		Text     []string `json:"text"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	var days []domain.Day
	require.NoError(t, json.Unmarshal([]byte(body.Solution), &days))
	require.Len(t, days, 2)
	require.Len(t, days[0].Shifts[0].Assignments, 1)
	assert.Equal(t, "Ann Lee", days[0].Shifts[0].Assignments[0].Employee)
	assert.NotEmpty(t, body.Text)
	assert.Empty(t, store.order)
}

func TestGenerateScheduleInfeasible(t *testing.T) {
	h, store, _ := newTestHandler(t)
	store.settings.RolesPerShift = map[string]map[string]int{"Morning": {"Host": 1}}

	rec := do(h, http.MethodGet, "/api/csp/generate-schedule", token(t, "m", session.RoleManager), "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Not enough employees qualified as Host for Sunday Morning", body.Error)
}
