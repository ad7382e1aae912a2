package advisors

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flc-events/backend/internal/models"
	"github.com/flc-events/backend/internal/token"
	"github.com/flc-events/backend/pkg/queue"
)

type fakeStore struct {
	byID map[uuid.UUID]*models.Advisor
}

func newFakeStore() *fakeStore {
	return &fakeStore{byID: make(map[uuid.UUID]*models.Advisor)}
}

func (s *fakeStore) GetByID(_ context.Context, id uuid.UUID) (*models.Advisor, error) {
	if a, ok := s.byID[id]; ok {
		return a, nil
	}
	return nil, ErrNotFound
}

func (s *fakeStore) FindOrCreate(_ context.Context, email string, profile ProfileParams) (*models.Advisor, bool, error) {
	for _, a := range s.byID {
		if strings.EqualFold(a.Email, email) {
			return a, false, nil
		}
	}
	a := &models.Advisor{
		ID:          uuid.New(),
		FirstName:   profile.FirstName,
		LastName:    profile.LastName,
		Email:       email,
		Category:    profile.Category,
		Affiliation: profile.Affiliation,
	}
	s.byID[a.ID] = a
	return a, true, nil
}

func (s *fakeStore) Update(_ context.Context, id uuid.UUID, profile ProfileParams) (*models.Advisor, error) {
	a, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	a.FirstName = profile.FirstName
	a.LastName = profile.LastName
	a.Category = profile.Category
	a.Affiliation = profile.Affiliation
	return a, nil
}

func (s *fakeStore) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := s.byID[id]; !ok {
		return ErrNotFound
	}
	delete(s.byID, id)
	return nil
}

func (s *fakeStore) List(_ context.Context) ([]models.Advisor, error) {
	var list []models.Advisor
	for _, a := range s.byID {
		list = append(list, *a)
	}
	return list, nil
}

func (s *fakeStore) FindByCategory(_ context.Context, category string) ([]models.AdvisorSummary, error) {
	var list []models.AdvisorSummary
	for _, a := range s.byID {
		if a.Category == category {
			list = append(list, models.AdvisorSummary{ID: a.ID, DisplayName: a.DisplayName(), Email: a.Email})
		}
	}
	return list, nil
}

type fakeEnqueuer struct{ payloads []queue.EmailPayload }

func (q *fakeEnqueuer) EnqueueEmail(_ context.Context, p queue.EmailPayload) error {
	q.payloads = append(q.payloads, p)
	return nil
}

type fixture struct {
	router *gin.Engine
	store  *fakeStore
	emails *fakeEnqueuer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	f := &fixture{store: newFakeStore(), emails: &fakeEnqueuer{}}
	h := NewHandler(f.store, token.NewService("test-secret", 30), f.emails,
		"http://localhost:8080", "staff@school.edu", nil)

	f.router = gin.New()
	f.router.GET("/categories", h.ListCategories)
	f.router.GET("/advisors/by-category", h.ListByCategory)
	f.router.POST("/advisors/request", h.RequestNewUser)
	f.router.GET("/staff/advisors", h.List)
	f.router.POST("/staff/advisors", h.Create)
	f.router.PATCH("/staff/advisors/:id", h.Update)
	f.router.DELETE("/staff/advisors/:id", h.Delete)
	f.router.POST("/staff/advisors/:id/resend-validation", h.ResendValidation)
	return f
}

func (f *fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

const danaBody = `{"first_name":"Dana","last_name":"Reyes","email":"dana.reyes@school.edu","category":"DECA","affiliation":"Central High"}`

func TestListCategories(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, http.MethodGet, "/categories", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data []string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, models.Categories, body.Data)
}

func TestCreateAdvisor(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, http.MethodPost, "/staff/advisors", danaBody)
	require.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, f.store.byID, 1)

	// New advisors get a validation link queued.
	require.Len(t, f.emails.payloads, 1)
	assert.Equal(t, models.EmailTypeValidationLink, f.emails.payloads[0].EmailType)
	assert.Equal(t, "dana.reyes@school.edu", f.emails.payloads[0].RecipientEmail)
}

func TestCreateRepeatEmailKeepsExistingProfile(t *testing.T) {
	f := newFixture(t)
	require.Equal(t, http.StatusCreated, f.do(t, http.MethodPost, "/staff/advisors", danaBody).Code)

	// Same address, different casing and profile: the stored record wins.
	repeat := `{"first_name":"Impostor","last_name":"Smith","email":"DANA.REYES@school.edu","category":"HOSA"}`
	w := f.do(t, http.MethodPost, "/staff/advisors", repeat)
	assert.Equal(t, http.StatusOK, w.Code)

	require.Len(t, f.store.byID, 1)
	for _, a := range f.store.byID {
		assert.Equal(t, "Dana", a.FirstName)
		assert.Equal(t, "DECA", a.Category)
	}
	// No second validation email for the repeat.
	assert.Len(t, f.emails.payloads, 1)
}

func TestCreateUnknownCategory(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, http.MethodPost, "/staff/advisors",
		`{"first_name":"Dana","last_name":"Reyes","email":"dana@school.edu","category":"Robotics"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, f.store.byID)
}

func TestListByCategory(t *testing.T) {
	f := newFixture(t)
	require.Equal(t, http.StatusCreated, f.do(t, http.MethodPost, "/staff/advisors", danaBody).Code)

	w := f.do(t, http.MethodGet, "/advisors/by-category?category=DECA", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data []models.AdvisorSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, "Dana Reyes", body.Data[0].DisplayName)

	empty := f.do(t, http.MethodGet, "/advisors/by-category?category=HOSA", "")
	require.Equal(t, http.StatusOK, empty.Code)
	assert.Contains(t, empty.Body.String(), `"data":[]`)

	missing := f.do(t, http.MethodGet, "/advisors/by-category", "")
	assert.Equal(t, http.StatusBadRequest, missing.Code)
}

func TestUpdateAdvisor(t *testing.T) {
	f := newFixture(t)
	require.Equal(t, http.StatusCreated, f.do(t, http.MethodPost, "/staff/advisors", danaBody).Code)
	var id uuid.UUID
	for _, a := range f.store.byID {
		id = a.ID
	}

	w := f.do(t, http.MethodPatch, "/staff/advisors/"+id.String(),
		`{"first_name":"Dana","last_name":"Reyes-Cruz","email":"dana.reyes@school.edu","category":"Staff"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Reyes-Cruz", f.store.byID[id].LastName)
	assert.Equal(t, "Staff", f.store.byID[id].Category)

	missing := f.do(t, http.MethodPatch, "/staff/advisors/"+uuid.NewString(),
		`{"first_name":"No","last_name":"One","email":"no.one@school.edu","category":"Staff"}`)
	assert.Equal(t, http.StatusNotFound, missing.Code)
}

func TestDeleteAdvisor(t *testing.T) {
	f := newFixture(t)
	require.Equal(t, http.StatusCreated, f.do(t, http.MethodPost, "/staff/advisors", danaBody).Code)
	var id uuid.UUID
	for _, a := range f.store.byID {
		id = a.ID
	}

	require.Equal(t, http.StatusOK, f.do(t, http.MethodDelete, "/staff/advisors/"+id.String(), "").Code)
	assert.Empty(t, f.store.byID)

	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodDelete, "/staff/advisors/"+id.String(), "").Code)
}

func TestResendValidation(t *testing.T) {
	f := newFixture(t)
	require.Equal(t, http.StatusCreated, f.do(t, http.MethodPost, "/staff/advisors", danaBody).Code)
	var id uuid.UUID
	for _, a := range f.store.byID {
		id = a.ID
	}

	w := f.do(t, http.MethodPost, "/staff/advisors/"+id.String()+"/resend-validation", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, f.emails.payloads, 2) // create + resend
	assert.Equal(t, models.EmailTypeValidationLink, f.emails.payloads[1].EmailType)

	missing := f.do(t, http.MethodPost, "/staff/advisors/"+uuid.NewString()+"/resend-validation", "")
	assert.Equal(t, http.StatusNotFound, missing.Code)
}

func TestRequestNewUser(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, http.MethodPost, "/advisors/request",
		`{"first_name":"New","last_name":"Advisor","email":"new.advisor@school.edu","category":"FBLA","message":"please add me"}`)
	require.Equal(t, http.StatusAccepted, w.Code)

	// Staff get notified; no advisor record is created.
	require.Len(t, f.emails.payloads, 1)
	assert.Equal(t, models.EmailTypeAccessRequest, f.emails.payloads[0].EmailType)
	assert.Equal(t, "staff@school.edu", f.emails.payloads[0].RecipientEmail)
	assert.Contains(t, f.emails.payloads[0].BodyHTML, "new.advisor@school.edu")
	assert.Empty(t, f.store.byID)
}
