package application

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/care-connect/internal/domain/entity"
	"github.com/oksasatya/care-connect/internal/domain/policy"
	repo "github.com/oksasatya/care-connect/internal/domain/repository"
)

var (
	ErrNotAuthorized        = policy.ErrNotAuthorized
	ErrAnnouncementNotFound = errors.New("announcement not found")
	ErrAlreadyResponded     = errors.New("you have already responded to this announcement")
)

// AnnouncementService is the registry for announcements and volunteer
// responses. Every mutation is gated through the policy package first.
type AnnouncementService struct {
	Repo    repo.AnnouncementRepository
	Logger  *logrus.Logger
	ES      *elasticsearch.Client
	ESIndex string
}

func NewAnnouncementService(r repo.AnnouncementRepository, logger *logrus.Logger, es *elasticsearch.Client, esIndex string) *AnnouncementService {
	return &AnnouncementService{Repo: r, Logger: logger, ES: es, ESIndex: esIndex}
}

type AnnouncementInput struct {
	Title       string
	Description string
}

// Create stores a new announcement. The creator is always the
// authenticated actor, never client input.
func (s *AnnouncementService) Create(ctx context.Context, actor *entity.User, in AnnouncementInput) (*entity.Announcement, error) {
	if err := policy.Authorize(policy.CanCreateAnnouncement(actor)); err != nil {
		return nil, err
	}
	a := &entity.Announcement{
		CreatorID:   actor.ID,
		Title:       in.Title,
		Description: in.Description,
	}
	if err := s.Repo.Create(a); err != nil {
		return nil, err
	}
	s.index(ctx, a)
	return a, nil
}

// List applies the scope policy: volunteers and staff see everything,
// pensioners only their own announcements.
func (s *AnnouncementService) List(ctx context.Context, actor *entity.User) ([]entity.Announcement, error) {
	if policy.CanSeeAllAnnouncements(actor) {
		return s.Repo.ListAll()
	}
	return s.Repo.ListByCreator(actor.ID)
}

// Get returns one announcement, subject to the same visibility scope as
// List.
func (s *AnnouncementService) Get(ctx context.Context, actor *entity.User, id string) (*entity.Announcement, error) {
	a, err := s.Repo.GetByID(id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrAnnouncementNotFound
		}
		return nil, err
	}
	if !policy.CanSeeAllAnnouncements(actor) && a.CreatorID != actor.ID {
		return nil, ErrAnnouncementNotFound
	}
	return a, nil
}

// Update modifies title/description; empty fields are left untouched so
// the same path serves PUT and PATCH.
func (s *AnnouncementService) Update(ctx context.Context, actor *entity.User, id string, in AnnouncementInput) (*entity.Announcement, error) {
	a, err := s.Repo.GetByID(id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrAnnouncementNotFound
		}
		return nil, err
	}
	if err := policy.Authorize(policy.CanModifyAnnouncement(actor, a)); err != nil {
		return nil, err
	}
	if in.Title != "" {
		a.Title = in.Title
	}
	if in.Description != "" {
		a.Description = in.Description
	}
	if err := s.Repo.Update(a); err != nil {
		return nil, err
	}
	s.index(ctx, a)
	return a, nil
}

// Delete removes the announcement and, through the storage cascade, its
// responses.
func (s *AnnouncementService) Delete(ctx context.Context, actor *entity.User, id string) error {
	a, err := s.Repo.GetByID(id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrAnnouncementNotFound
		}
		return err
	}
	if err := policy.Authorize(policy.CanModifyAnnouncement(actor, a)); err != nil {
		return err
	}
	if err := s.Repo.Delete(id); err != nil {
		return err
	}
	s.deleteFromIndex(ctx, id)
	return nil
}

// Respond records the actor's commitment to an announcement. Uniqueness
// of the (announcement, volunteer) pair is enforced by the storage layer,
// so two concurrent calls yield one success and one ErrAlreadyResponded.
func (s *AnnouncementService) Respond(ctx context.Context, actor *entity.User, announcementID string) (*entity.VolunteerResponse, error) {
	if err := policy.Authorize(policy.CanRespond(actor)); err != nil {
		return nil, err
	}
	if _, err := s.Repo.GetByID(announcementID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrAnnouncementNotFound
		}
		return nil, err
	}
	vr := &entity.VolunteerResponse{
		AnnouncementID: announcementID,
		VolunteerID:    actor.ID,
	}
	if err := s.Repo.CreateResponse(vr); err != nil {
		if errors.Is(err, repo.ErrDuplicateResponse) {
			return nil, ErrAlreadyResponded
		}
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{
			"announcement_id": announcementID,
			"volunteer_id":    actor.ID,
		}).Info("volunteer responded")
	}
	return vr, nil
}

// Responses lists the responses for an announcement; visible to the
// creator and staff only.
func (s *AnnouncementService) Responses(ctx context.Context, actor *entity.User, announcementID string) ([]entity.VolunteerResponse, error) {
	a, err := s.Repo.GetByID(announcementID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrAnnouncementNotFound
		}
		return nil, err
	}
	if err := policy.Authorize(policy.CanModifyAnnouncement(actor, a)); err != nil {
		return nil, err
	}
	return s.Repo.ListResponses(announcementID)
}

// index pushes the announcement document to Elasticsearch. Best effort:
// search lags behind the database rather than failing writes.
func (s *AnnouncementService) index(ctx context.Context, a *entity.Announcement) {
	if s.ES == nil || s.ESIndex == "" {
		return
	}
	doc := map[string]any{
		"id":          a.ID,
		"creator_id":  a.CreatorID,
		"title":       a.Title,
		"description": a.Description,
		"created_at":  a.CreatedAt.Format(time.RFC3339Nano),
		"updated_at":  a.UpdatedAt.Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: s.ESIndex, DocumentID: a.ID, Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("announcement_id", a.ID).Warn("es index failed")
		}
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && s.Logger != nil {
		s.Logger.WithField("status", res.Status()).WithField("announcement_id", a.ID).Warn("es index response error")
	}
}

func (s *AnnouncementService) deleteFromIndex(ctx context.Context, id string) {
	if s.ES == nil || s.ESIndex == "" {
		return
	}
	req := esapi.DeleteRequest{Index: s.ESIndex, DocumentID: id}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("announcement_id", id).Warn("es delete failed")
		}
		return
	}
	_ = res.Body.Close()
}

// Search performs a multi_match query over title and description. The
// result is filtered to the actor's visibility scope.
func (s *AnnouncementService) Search(ctx context.Context, actor *entity.User, q string, size int) ([]map[string]any, error) {
	if s.ES == nil || s.ESIndex == "" {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"title^2", "description"},
			},
		},
		"size": size,
	}
	if !policy.CanSeeAllAnnouncements(actor) {
		query["query"] = map[string]any{
			"bool": map[string]any{
				"must": map[string]any{
					"multi_match": map[string]any{
						"query":  q,
						"fields": []string{"title^2", "description"},
					},
				},
				"filter": map[string]any{
					"term": map[string]any{"creator_id": actor.ID},
				},
			},
		}
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(s.ES.Search.WithContext(c), s.ES.Search.WithIndex(s.ESIndex), s.ES.Search.WithBody(strings.NewReader(string(b))))
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}
