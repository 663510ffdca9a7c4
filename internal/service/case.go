package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/case-runner/internal/apperror"
	"github.com/sakif/case-runner/internal/model"
	"github.com/sakif/case-runner/internal/repository"
)

// Pagination defaults for listing cases.
const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// CreateCaseInput carries the fields accepted when creating a case.
// Method and Category are open strings — nothing here checks that the
// method is executable; that judgement belongs to the dispatcher alone.
type CreateCaseInput struct {
	Title          string `json:"title"`
	Host           string `json:"host"`
	URI            string `json:"uri"`
	Method         string `json:"method"`
	RequestBody    string `json:"request_body"`
	ExpectedResult string `json:"expected_result"`
	Category       string `json:"category"`
}

// UpdateCaseInput carries a partial update. Nil fields keep the stored
// value — a missing field never resets anything to a default. OwnerID is
// settable on purpose: the API permits explicit owner override on update.
type UpdateCaseInput struct {
	OwnerID        *string `json:"user_id"`
	Title          *string `json:"title"`
	Host           *string `json:"host"`
	URI            *string `json:"uri"`
	Method         *string `json:"method"`
	RequestBody    *string `json:"request_body"`
	ExpectedResult *string `json:"expected_result"`
	Category       *string `json:"category"`
	Used           *bool   `json:"used"`
}

// CaseService handles business rules for cases.
type CaseService struct {
	cases  repository.CaseRepository
	logger *slog.Logger
}

// NewCaseService creates a CaseService.
func NewCaseService(cases repository.CaseRepository, logger *slog.Logger) *CaseService {
	return &CaseService{
		cases:  cases,
		logger: logger,
	}
}

// Create stores a new case owned by ownerID and returns the freshly read
// record (used=false, response fields absent).
func (s *CaseService) Create(ctx context.Context, ownerID string, in CreateCaseInput) (*model.Case, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, apperror.ValidationFailed("title is required")
	}

	c := &model.Case{
		OwnerID:        ownerID,
		Title:          in.Title,
		Host:           in.Host,
		URI:            in.URI,
		Method:         in.Method,
		RequestBody:    in.RequestBody,
		ExpectedResult: in.ExpectedResult,
		Category:       in.Category,
	}

	if err := s.cases.Create(ctx, c); err != nil {
		return nil, err
	}

	s.logger.Info("case created",
		slog.String("id", c.ID),
		slog.String("title", c.Title),
		slog.String("ownerID", ownerID),
	)

	// Return the row as stored, not the in-memory struct.
	return s.cases.GetByID(ctx, c.ID)
}

// GetByID fetches a single case. Not owner-scoped.
func (s *CaseService) GetByID(ctx context.Context, id string) (*model.Case, error) {
	return s.cases.GetByID(ctx, id)
}

// List returns one page of the owner's cases, ordered by id ascending.
// page and limit fall back to 1 and 10; offset is (page-1)*limit.
func (s *CaseService) List(ctx context.Context, ownerID string, page, limit int) ([]model.Case, error) {
	if page <= 0 {
		page = DefaultPage
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	cases, err := s.cases.ListByOwner(ctx, ownerID, repository.ListOptions{
		Limit:  limit,
		Offset: (page - 1) * limit,
	})
	if err != nil {
		return nil, fmt.Errorf("listing cases: %w", err)
	}

	return cases, nil
}

// Update applies a partial update: read the stored record, merge the
// supplied fields over it, write everything back, then re-read.
//
// The read-merge-write sequence is not serialized against concurrent
// updates of the same id — the later write wins. The final NotFound from
// the repository covers the record being deleted between read and write.
func (s *CaseService) Update(ctx context.Context, id string, in UpdateCaseInput) (*model.Case, error) {
	c, err := s.cases.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.OwnerID != nil {
		c.OwnerID = *in.OwnerID
	}
	if in.Title != nil {
		c.Title = *in.Title
	}
	if in.Host != nil {
		c.Host = *in.Host
	}
	if in.URI != nil {
		c.URI = *in.URI
	}
	if in.Method != nil {
		c.Method = *in.Method
	}
	if in.RequestBody != nil {
		c.RequestBody = *in.RequestBody
	}
	if in.ExpectedResult != nil {
		c.ExpectedResult = *in.ExpectedResult
	}
	if in.Category != nil {
		c.Category = *in.Category
	}
	if in.Used != nil {
		c.Used = *in.Used
	}

	if err := s.cases.Update(ctx, c); err != nil {
		return nil, err
	}

	s.logger.Info("case updated", slog.String("id", id))

	return s.cases.GetByID(ctx, id)
}

// Delete removes a case by id. Not owner-scoped. Deleting an unknown (or
// already deleted) id returns NotFound.
func (s *CaseService) Delete(ctx context.Context, id string) error {
	if err := s.cases.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("case deleted", slog.String("id", id))
	return nil
}
