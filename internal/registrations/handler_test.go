package registrations

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flc-events/backend/internal/middleware"
	"github.com/flc-events/backend/internal/models"
	"github.com/flc-events/backend/pkg/queue"
)

// fakeStore mirrors the repository's contract: validation on write, rows
// keyed by (advisor, registration), foreign rows indistinguishable from
// missing ones.
type fakeStore struct {
	rows map[uuid.UUID]*models.Participant
}

func newFakeStore() *fakeStore {
	return &fakeStore{rows: make(map[uuid.UUID]*models.Participant)}
}

func (s *fakeStore) Add(_ context.Context, advisorID uuid.UUID, params ParticipantParams) (*models.Participant, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}
	p := &models.Participant{
		ID:        uuid.New(),
		AdvisorID: advisorID,
		FirstName: params.FirstName,
		LastName:  params.LastName,
	}
	s.rows[p.ID] = p
	return p, nil
}

func (s *fakeStore) Edit(_ context.Context, advisorID, registrationID uuid.UUID, params ParticipantParams) (*models.Participant, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}
	p, ok := s.rows[registrationID]
	if !ok || p.AdvisorID != advisorID {
		return nil, ErrNotFound
	}
	p.FirstName = params.FirstName
	p.LastName = params.LastName
	return p, nil
}

func (s *fakeStore) Delete(_ context.Context, advisorID, registrationID uuid.UUID) error {
	p, ok := s.rows[registrationID]
	if !ok || p.AdvisorID != advisorID {
		return ErrNotFound
	}
	delete(s.rows, registrationID)
	return nil
}

func (s *fakeStore) List(_ context.Context, advisorID uuid.UUID) ([]models.Participant, error) {
	var list []models.Participant
	for _, p := range s.rows {
		if p.AdvisorID == advisorID {
			list = append(list, *p)
		}
	}
	return list, nil
}

func (s *fakeStore) Count(_ context.Context, advisorID uuid.UUID) (int, error) {
	n := 0
	for _, p := range s.rows {
		if p.AdvisorID == advisorID {
			n++
		}
	}
	return n, nil
}

type fakeAdvisors struct {
	advisors map[uuid.UUID]*models.Advisor
}

func (f *fakeAdvisors) GetByID(_ context.Context, id uuid.UUID) (*models.Advisor, error) {
	if a, ok := f.advisors[id]; ok {
		return a, nil
	}
	return nil, errors.New("advisor not found")
}

type fakeEnqueuer struct{ payloads []queue.EmailPayload }

func (q *fakeEnqueuer) EnqueueEmail(_ context.Context, p queue.EmailPayload) error {
	q.payloads = append(q.payloads, p)
	return nil
}

type fixture struct {
	router  *gin.Engine
	store   *fakeStore
	emails  *fakeEnqueuer
	advisor *models.Advisor
	other   *models.Advisor
}

// grantAs simulates the access middleware for a given verified email.
func grantAs(email string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextEmail, email)
		c.Next()
	}
}

func newFixture(t *testing.T, grantEmail string) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	advisor := &models.Advisor{ID: uuid.New(), FirstName: "Dana", LastName: "Reyes", Email: "dana.reyes@school.edu", Category: "DECA"}
	other := &models.Advisor{ID: uuid.New(), FirstName: "Sam", LastName: "Ortiz", Email: "sam.ortiz@school.edu", Category: "HOSA"}
	f := &fixture{
		store:   newFakeStore(),
		emails:  &fakeEnqueuer{},
		advisor: advisor,
		other:   other,
	}
	dir := &fakeAdvisors{advisors: map[uuid.UUID]*models.Advisor{advisor.ID: advisor, other.ID: other}}

	h := NewHandler(f.store, dir, f.emails, decimal.RequireFromString("40.00"), "staff@school.edu", nil)
	f.router = gin.New()
	api := f.router.Group("", grantAs(grantEmail))
	api.GET("/advisors/:id/participants", h.List)
	api.POST("/advisors/:id/participants", h.Add)
	api.PATCH("/advisors/:id/participants/:regId", h.Edit)
	api.DELETE("/advisors/:id/participants/:regId", h.Delete)
	api.GET("/advisors/:id/totals", h.Totals)
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

func (f *fixture) addParticipant(t *testing.T, first, last string) uuid.UUID {
	t.Helper()
	p, err := f.store.Add(context.Background(), f.advisor.ID, ParticipantParams{FirstName: first, LastName: last})
	require.NoError(t, err)
	return p.ID
}

type totalsData struct {
	Count        int    `json:"participant_count"`
	FeePerPerson string `json:"fee_per_person"`
	TotalCost    string `json:"total_cost"`
}

func decodeTotals(t *testing.T, w *httptest.ResponseRecorder) totalsData {
	t.Helper()
	var body struct {
		Data totalsData `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Data
}

func TestTotalsEmptyRoster(t *testing.T) {
	f := newFixture(t, "dana.reyes@school.edu")
	w := f.do(t, http.MethodGet, "/advisors/"+f.advisor.ID.String()+"/totals", "")
	require.Equal(t, http.StatusOK, w.Code)

	got := decodeTotals(t, w)
	assert.Equal(t, 0, got.Count)
	assert.Equal(t, "40.00", got.FeePerPerson)
	assert.Equal(t, "0.00", got.TotalCost)
}

func TestTotalsTwoParticipants(t *testing.T) {
	f := newFixture(t, "dana.reyes@school.edu")
	f.addParticipant(t, "Jo", "Lee")
	f.addParticipant(t, "Ann", "Kim")

	w := f.do(t, http.MethodGet, "/advisors/"+f.advisor.ID.String()+"/totals", "")
	require.Equal(t, http.StatusOK, w.Code)

	got := decodeTotals(t, w)
	assert.Equal(t, 2, got.Count)
	assert.Equal(t, "80.00", got.TotalCost)
}

func TestTotalsLargeRoster(t *testing.T) {
	f := newFixture(t, "dana.reyes@school.edu")
	for i := 0; i < 50; i++ {
		f.addParticipant(t, "Kid", "Number")
	}
	w := f.do(t, http.MethodGet, "/advisors/"+f.advisor.ID.String()+"/totals", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2000.00", decodeTotals(t, w).TotalCost)
}

func TestAddParticipant(t *testing.T) {
	f := newFixture(t, "dana.reyes@school.edu")
	w := f.do(t, http.MethodPost, "/advisors/"+f.advisor.ID.String()+"/participants",
		`{"first_name":"Jo","last_name":"Lee"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Len(t, f.store.rows, 1)

	// Each roster change queues a staff summary with the roster attached.
	require.Len(t, f.emails.payloads, 1)
	assert.Equal(t, models.EmailTypeRosterSummary, f.emails.payloads[0].EmailType)
	assert.Equal(t, "staff@school.edu", f.emails.payloads[0].RecipientEmail)
	assert.Contains(t, f.emails.payloads[0].AttachmentCSV, "Jo,Lee")
}

func TestAddParticipantBlankNameRejected(t *testing.T) {
	f := newFixture(t, "dana.reyes@school.edu")

	// Missing field fails request binding.
	w := f.do(t, http.MethodPost, "/advisors/"+f.advisor.ID.String()+"/participants",
		`{"last_name":"Lee"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Whitespace-only passes binding but fails ledger validation.
	w = f.do(t, http.MethodPost, "/advisors/"+f.advisor.ID.String()+"/participants",
		`{"first_name":"   ","last_name":"Lee"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	assert.Empty(t, f.store.rows)
	assert.Empty(t, f.emails.payloads)
}

func TestEditParticipant(t *testing.T) {
	f := newFixture(t, "dana.reyes@school.edu")
	id := f.addParticipant(t, "Jo", "Lee")

	w := f.do(t, http.MethodPatch,
		"/advisors/"+f.advisor.ID.String()+"/participants/"+id.String(),
		`{"first_name":"Joanna","last_name":"Lee"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Joanna", f.store.rows[id].FirstName)
}

func TestEditForeignParticipantNotFound(t *testing.T) {
	f := newFixture(t, "sam.ortiz@school.edu")
	id := f.addParticipant(t, "Jo", "Lee") // owned by Dana

	w := f.do(t, http.MethodPatch,
		"/advisors/"+f.other.ID.String()+"/participants/"+id.String(),
		`{"first_name":"Hacked","last_name":"Row"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Jo", f.store.rows[id].FirstName)
}

func TestDeleteForeignParticipantNotFound(t *testing.T) {
	f := newFixture(t, "sam.ortiz@school.edu")
	id := f.addParticipant(t, "Jo", "Lee") // owned by Dana

	w := f.do(t, http.MethodDelete,
		"/advisors/"+f.other.ID.String()+"/participants/"+id.String(), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Len(t, f.store.rows, 1)
}

func TestRosterOfAnotherAdvisorNotFound(t *testing.T) {
	// A live grant for Sam does not open Dana's roster, and the response
	// does not reveal that the roster exists.
	f := newFixture(t, "sam.ortiz@school.edu")
	w := f.do(t, http.MethodGet, "/advisors/"+f.advisor.ID.String()+"/participants", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	unknown := f.do(t, http.MethodGet, "/advisors/"+uuid.NewString()+"/participants", "")
	assert.Equal(t, http.StatusNotFound, unknown.Code)
	assert.JSONEq(t, w.Body.String(), unknown.Body.String())
}

func TestListRosterWithTotals(t *testing.T) {
	f := newFixture(t, "dana.reyes@school.edu")
	f.addParticipant(t, "Jo", "Lee")

	w := f.do(t, http.MethodGet, "/advisors/"+f.advisor.ID.String()+"/participants", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data struct {
			Participants []models.Participant `json:"participants"`
			Count        int                  `json:"participant_count"`
			TotalCost    string               `json:"total_cost"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.Data.Participants, 1)
	assert.Equal(t, 1, body.Data.Count)
	assert.Equal(t, "40.00", body.Data.TotalCost)
}
