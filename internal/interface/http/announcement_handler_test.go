package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	app "github.com/oksasatya/care-connect/internal/application"
	"github.com/oksasatya/care-connect/internal/domain/entity"
	repo "github.com/oksasatya/care-connect/internal/domain/repository"
)

type fakeUserRepo struct {
	users map[string]*entity.User
}

func (f *fakeUserRepo) CreatePensioner(*entity.User, *entity.PensionerProfile) error { return nil }
func (f *fakeUserRepo) CreateVolunteer(*entity.User, *entity.VolunteerProfile) error { return nil }
func (f *fakeUserRepo) GetByID(id string) (*entity.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return u, nil
}
func (f *fakeUserRepo) GetByPhone(string) (*entity.User, error) { return nil, repo.ErrNotFound }
func (f *fakeUserRepo) Update(*entity.User) error               { return nil }
func (f *fakeUserRepo) GetPensionerProfile(string) (*entity.PensionerProfile, error) {
	return nil, repo.ErrNotFound
}
func (f *fakeUserRepo) GetVolunteerProfile(string) (*entity.VolunteerProfile, error) {
	return nil, repo.ErrNotFound
}
func (f *fakeUserRepo) UpdatePensionerProfile(*entity.PensionerProfile) error { return nil }
func (f *fakeUserRepo) UpdateVolunteerProfile(*entity.VolunteerProfile) error { return nil }

type fakeAnnouncementRepo struct {
	mu            sync.Mutex
	seq           int
	announcements map[string]entity.Announcement
	responses     map[string]entity.VolunteerResponse
}

func newFakeAnnouncementRepo() *fakeAnnouncementRepo {
	return &fakeAnnouncementRepo{
		announcements: map[string]entity.Announcement{},
		responses:     map[string]entity.VolunteerResponse{},
	}
}

func (f *fakeAnnouncementRepo) Create(a *entity.Announcement) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	a.ID = fmt.Sprintf("a%d", f.seq)
	f.announcements[a.ID] = *a
	return nil
}

func (f *fakeAnnouncementRepo) GetByID(id string) (*entity.Announcement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.announcements[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return &a, nil
}

func (f *fakeAnnouncementRepo) ListAll() ([]entity.Announcement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []entity.Announcement{}
	for _, a := range f.announcements {
		out = append(out, a)
	}
	return out, nil
}

func (f *fakeAnnouncementRepo) ListByCreator(creatorID string) ([]entity.Announcement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []entity.Announcement{}
	for _, a := range f.announcements {
		if a.CreatorID == creatorID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAnnouncementRepo) Update(a *entity.Announcement) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.announcements[a.ID] = *a
	return nil
}

func (f *fakeAnnouncementRepo) Delete(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.announcements, id)
	return nil
}

func (f *fakeAnnouncementRepo) CreateResponse(r *entity.VolunteerResponse) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := r.AnnouncementID + "/" + r.VolunteerID
	if _, ok := f.responses[key]; ok {
		return repo.ErrDuplicateResponse
	}
	r.ID = "r" + key
	f.responses[key] = *r
	return nil
}

func (f *fakeAnnouncementRepo) ListResponses(announcementID string) ([]entity.VolunteerResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []entity.VolunteerResponse{}
	for _, r := range f.responses {
		if r.AnnouncementID == announcementID {
			out = append(out, r)
		}
	}
	return out, nil
}

type envelope struct {
	Status  int             `json:"status"`
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func setupAnnouncementRouter(t *testing.T, users *fakeUserRepo, announcements *fakeAnnouncementRepo) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc := app.NewAnnouncementService(announcements, nil, nil, "")
	h := NewAnnouncementHandler(svc, users, nil)

	r := gin.New()
	// stand-in for the auth middleware: the test user id travels in a header
	r.Use(func(c *gin.Context) {
		if uid := c.GetHeader("X-Test-User"); uid != "" {
			c.Set("userID", uid)
		}
		c.Next()
	})
	g := r.Group("/api")
	g.GET("/announcements", h.List)
	g.POST("/announcements", h.Create)
	g.GET("/announcements/:id", h.Get)
	g.PUT("/announcements/:id", h.Update)
	g.DELETE("/announcements/:id", h.Delete)
	g.POST("/announcements/:id/respond", h.Respond)
	g.GET("/announcements/:id/responses", h.Responses)
	return r
}

func doJSON(r *gin.Engine, method, path, userID, body string) *httptest.ResponseRecorder {
	var rd *strings.Reader
	if body == "" {
		rd = strings.NewReader("")
	} else {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-Test-User", userID)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func testUsers() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*entity.User{
		"p1": {ID: "p1", IsPensioner: true, IsActive: true},
		"p2": {ID: "p2", IsPensioner: true, IsActive: true},
		"v1": {ID: "v1", IsVolunteer: true, IsActive: true},
	}}
}

func TestCreateAnnouncementEndpoint(t *testing.T) {
	r := setupAnnouncementRouter(t, testUsers(), newFakeAnnouncementRepo())

	w := doJSON(r, http.MethodPost, "/api/announcements", "p1", `{"title":"Groceries","description":"weekly run"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.True(t, env.Success)

	var data map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "p1", data["creator_id"], "creator comes from the session, not the payload")
	assert.Equal(t, "Groceries", data["title"])
}

func TestCreateAnnouncementValidation(t *testing.T) {
	r := setupAnnouncementRouter(t, testUsers(), newFakeAnnouncementRepo())

	w := doJSON(r, http.MethodPost, "/api/announcements", "p1", `{"description":"no title"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateAnnouncementForbiddenForVolunteer(t *testing.T) {
	r := setupAnnouncementRouter(t, testUsers(), newFakeAnnouncementRepo())

	w := doJSON(r, http.MethodPost, "/api/announcements", "v1", `{"title":"Not allowed"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.False(t, env.Success)
	assert.Equal(t, "not authorized for this action", env.Message)
}

func TestAnnouncementUnknownSessionUser(t *testing.T) {
	r := setupAnnouncementRouter(t, testUsers(), newFakeAnnouncementRepo())

	w := doJSON(r, http.MethodGet, "/api/announcements", "ghost", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRespondEndpoint(t *testing.T) {
	users := testUsers()
	rep := newFakeAnnouncementRepo()
	r := setupAnnouncementRouter(t, users, rep)

	w := doJSON(r, http.MethodPost, "/api/announcements", "p1", `{"title":"Snow shoveling"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	var created map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &created))
	id := created["id"].(string)

	w = doJSON(r, http.MethodPost, "/api/announcements/"+id+"/respond", "v1", "")
	assert.Equal(t, http.StatusCreated, w.Code)

	// second respond by the same volunteer is a client error
	w = doJSON(r, http.MethodPost, "/api/announcements/"+id+"/respond", "v1", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// creator may list the responses, the responder may not
	w = doJSON(r, http.MethodGet, "/api/announcements/"+id+"/responses", "p1", "")
	assert.Equal(t, http.StatusOK, w.Code)
	w = doJSON(r, http.MethodGet, "/api/announcements/"+id+"/responses", "v1", "")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestGetAnnouncementScopedToOwner(t *testing.T) {
	r := setupAnnouncementRouter(t, testUsers(), newFakeAnnouncementRepo())

	w := doJSON(r, http.MethodPost, "/api/announcements", "p1", `{"title":"Window cleaning"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	var created map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &created))
	id := created["id"].(string)

	w = doJSON(r, http.MethodGet, "/api/announcements/"+id, "p2", "")
	assert.Equal(t, http.StatusNotFound, w.Code, "foreign announcements are invisible, not forbidden")

	w = doJSON(r, http.MethodGet, "/api/announcements/"+id, "v1", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestDeleteAnnouncementEndpoint(t *testing.T) {
	r := setupAnnouncementRouter(t, testUsers(), newFakeAnnouncementRepo())

	w := doJSON(r, http.MethodPost, "/api/announcements", "p1", `{"title":"Old request"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	var created map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &created))
	id := created["id"].(string)

	w = doJSON(r, http.MethodDelete, "/api/announcements/"+id, "p2", "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(r, http.MethodDelete, "/api/announcements/"+id, "p1", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodGet, "/api/announcements/"+id, "p1", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
