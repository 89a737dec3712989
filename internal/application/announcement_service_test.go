package application

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/care-connect/internal/domain/entity"
	repo "github.com/oksasatya/care-connect/internal/domain/repository"
)

// memAnnouncementRepo is an in-memory AnnouncementRepository. Response
// uniqueness is enforced under the same mutex as the insert, mirroring
// the database constraint the real implementation relies on.
type memAnnouncementRepo struct {
	mu            sync.Mutex
	seq           int
	announcements map[string]entity.Announcement
	responses     map[string]entity.VolunteerResponse // key: announcementID + "/" + volunteerID
}

func newMemAnnouncementRepo() *memAnnouncementRepo {
	return &memAnnouncementRepo{
		announcements: map[string]entity.Announcement{},
		responses:     map[string]entity.VolunteerResponse{},
	}
}

func (m *memAnnouncementRepo) nextID() string {
	m.seq++
	return fmt.Sprintf("id-%d", m.seq)
}

func (m *memAnnouncementRepo) Create(a *entity.Announcement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a.ID = m.nextID()
	m.announcements[a.ID] = *a
	return nil
}

func (m *memAnnouncementRepo) GetByID(id string) (*entity.Announcement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.announcements[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return &a, nil
}

func (m *memAnnouncementRepo) ListAll() ([]entity.Announcement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]entity.Announcement, 0, len(m.announcements))
	for _, a := range m.announcements {
		out = append(out, a)
	}
	return out, nil
}

func (m *memAnnouncementRepo) ListByCreator(creatorID string) ([]entity.Announcement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []entity.Announcement{}
	for _, a := range m.announcements {
		if a.CreatorID == creatorID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memAnnouncementRepo) Update(a *entity.Announcement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.announcements[a.ID]; !ok {
		return repo.ErrNotFound
	}
	m.announcements[a.ID] = *a
	return nil
}

func (m *memAnnouncementRepo) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.announcements[id]; !ok {
		return repo.ErrNotFound
	}
	delete(m.announcements, id)
	// cascade, same as the foreign key in the schema
	for k, r := range m.responses {
		if r.AnnouncementID == id {
			delete(m.responses, k)
		}
	}
	return nil
}

func (m *memAnnouncementRepo) CreateResponse(r *entity.VolunteerResponse) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := r.AnnouncementID + "/" + r.VolunteerID
	if _, ok := m.responses[key]; ok {
		return repo.ErrDuplicateResponse
	}
	r.ID = m.nextID()
	m.responses[key] = *r
	return nil
}

func (m *memAnnouncementRepo) ListResponses(announcementID string) ([]entity.VolunteerResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []entity.VolunteerResponse{}
	for _, r := range m.responses {
		if r.AnnouncementID == announcementID {
			out = append(out, r)
		}
	}
	return out, nil
}

var _ repo.AnnouncementRepository = (*memAnnouncementRepo)(nil)

func pensioner(id string) *entity.User {
	return &entity.User{ID: id, IsPensioner: true, IsActive: true}
}

func volunteer(id string) *entity.User {
	return &entity.User{ID: id, IsVolunteer: true, IsActive: true}
}

func staff(id string) *entity.User {
	return &entity.User{ID: id, IsStaff: true, IsActive: true}
}

func newAnnouncementService(r repo.AnnouncementRepository) *AnnouncementService {
	return NewAnnouncementService(r, nil, nil, "")
}

func TestAnnouncementCreate(t *testing.T) {
	svc := newAnnouncementService(newMemAnnouncementRepo())
	ctx := context.Background()

	a, err := svc.Create(ctx, pensioner("p1"), AnnouncementInput{Title: "Groceries", Description: "Need help carrying bags"})
	require.NoError(t, err)
	assert.NotEmpty(t, a.ID)
	assert.Equal(t, "p1", a.CreatorID)

	_, err = svc.Create(ctx, volunteer("v1"), AnnouncementInput{Title: "nope"})
	assert.ErrorIs(t, err, ErrNotAuthorized)
}

func TestAnnouncementListScope(t *testing.T) {
	rep := newMemAnnouncementRepo()
	svc := newAnnouncementService(rep)
	ctx := context.Background()

	p1, p2 := pensioner("p1"), pensioner("p2")
	_, err := svc.Create(ctx, p1, AnnouncementInput{Title: "one"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, p2, AnnouncementInput{Title: "two"})
	require.NoError(t, err)

	own, err := svc.List(ctx, p1)
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, "p1", own[0].CreatorID)

	all, err := svc.List(ctx, volunteer("v1"))
	require.NoError(t, err)
	assert.Len(t, all, 2)

	all, err = svc.List(ctx, staff("s1"))
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestAnnouncementGetScope(t *testing.T) {
	svc := newAnnouncementService(newMemAnnouncementRepo())
	ctx := context.Background()

	a, err := svc.Create(ctx, pensioner("p1"), AnnouncementInput{Title: "fence repair"})
	require.NoError(t, err)

	got, err := svc.Get(ctx, volunteer("v1"), a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)

	// another pensioner gets not-found, not forbidden
	_, err = svc.Get(ctx, pensioner("p2"), a.ID)
	assert.ErrorIs(t, err, ErrAnnouncementNotFound)

	_, err = svc.Get(ctx, volunteer("v1"), "missing")
	assert.ErrorIs(t, err, ErrAnnouncementNotFound)
}

func TestAnnouncementUpdate(t *testing.T) {
	svc := newAnnouncementService(newMemAnnouncementRepo())
	ctx := context.Background()
	creator := pensioner("p1")

	a, err := svc.Create(ctx, creator, AnnouncementInput{Title: "old", Description: "desc"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, creator, a.ID, AnnouncementInput{Title: "new"})
	require.NoError(t, err)
	assert.Equal(t, "new", updated.Title)
	assert.Equal(t, "desc", updated.Description, "empty fields stay untouched")

	_, err = svc.Update(ctx, pensioner("p2"), a.ID, AnnouncementInput{Title: "hijack"})
	assert.ErrorIs(t, err, ErrNotAuthorized)

	updated, err = svc.Update(ctx, staff("s1"), a.ID, AnnouncementInput{Description: "edited by staff"})
	require.NoError(t, err)
	assert.Equal(t, "edited by staff", updated.Description)
}

func TestAnnouncementDelete(t *testing.T) {
	rep := newMemAnnouncementRepo()
	svc := newAnnouncementService(rep)
	ctx := context.Background()
	creator := pensioner("p1")

	a, err := svc.Create(ctx, creator, AnnouncementInput{Title: "to delete"})
	require.NoError(t, err)
	_, err = svc.Respond(ctx, volunteer("v1"), a.ID)
	require.NoError(t, err)

	err = svc.Delete(ctx, pensioner("p2"), a.ID)
	assert.ErrorIs(t, err, ErrNotAuthorized)

	require.NoError(t, svc.Delete(ctx, creator, a.ID))
	_, err = svc.Get(ctx, staff("s1"), a.ID)
	assert.ErrorIs(t, err, ErrAnnouncementNotFound)

	// responses go with the announcement
	rep.mu.Lock()
	assert.Empty(t, rep.responses)
	rep.mu.Unlock()
}

func TestRespond(t *testing.T) {
	svc := newAnnouncementService(newMemAnnouncementRepo())
	ctx := context.Background()

	a, err := svc.Create(ctx, pensioner("p1"), AnnouncementInput{Title: "walk the dog"})
	require.NoError(t, err)

	v := volunteer("v1")
	vr, err := svc.Respond(ctx, v, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, vr.AnnouncementID)
	assert.Equal(t, "v1", vr.VolunteerID)

	_, err = svc.Respond(ctx, v, a.ID)
	assert.ErrorIs(t, err, ErrAlreadyResponded)

	_, err = svc.Respond(ctx, pensioner("p2"), a.ID)
	assert.ErrorIs(t, err, ErrNotAuthorized)

	_, err = svc.Respond(ctx, volunteer("v2"), "missing")
	assert.ErrorIs(t, err, ErrAnnouncementNotFound)
}

func TestRespondConcurrentSameVolunteer(t *testing.T) {
	svc := newAnnouncementService(newMemAnnouncementRepo())
	ctx := context.Background()

	a, err := svc.Create(ctx, pensioner("p1"), AnnouncementInput{Title: "move furniture"})
	require.NoError(t, err)

	const workers = 16
	v := volunteer("v1")
	errs := make(chan error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Respond(ctx, v, a.ID)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var ok, dup int
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case assert.ErrorIs(t, err, ErrAlreadyResponded):
			dup++
		}
	}
	assert.Equal(t, 1, ok, "exactly one response wins")
	assert.Equal(t, workers-1, dup)

	responses, err := svc.Responses(ctx, staff("s1"), a.ID)
	require.NoError(t, err)
	assert.Len(t, responses, 1)
}

func TestResponsesVisibility(t *testing.T) {
	svc := newAnnouncementService(newMemAnnouncementRepo())
	ctx := context.Background()
	creator := pensioner("p1")

	a, err := svc.Create(ctx, creator, AnnouncementInput{Title: "pharmacy run"})
	require.NoError(t, err)
	_, err = svc.Respond(ctx, volunteer("v1"), a.ID)
	require.NoError(t, err)
	_, err = svc.Respond(ctx, volunteer("v2"), a.ID)
	require.NoError(t, err)

	responses, err := svc.Responses(ctx, creator, a.ID)
	require.NoError(t, err)
	assert.Len(t, responses, 2)

	// responders themselves are not allowed to list the full set
	_, err = svc.Responses(ctx, volunteer("v1"), a.ID)
	assert.ErrorIs(t, err, ErrNotAuthorized)
}
