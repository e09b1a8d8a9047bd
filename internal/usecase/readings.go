package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"GlucoPulse/internal/domain/models"
	domrepo "GlucoPulse/internal/domain/repository"
	"GlucoPulse/pkg/util"
)

// ReadingsUseCase provides business logic for the readings CRUD surface.
type ReadingsUseCase struct {
	store domrepo.Storage
}

func NewReadingsUseCase(store domrepo.Storage) *ReadingsUseCase {
	return &ReadingsUseCase{store: store}
}

type ListReadingsParams struct {
	UserID string
	Page   int
	Limit  int
}

type ListReadingsResult struct {
	UserID   string
	Page     int
	Limit    int
	Count    int
	Readings []*models.Reading
}

// List returns one page of a user's readings, newest first.
func (uc *ReadingsUseCase) List(ctx context.Context, p ListReadingsParams) (*ListReadingsResult, error) {
	if p.UserID == "" {
		return nil, fmt.Errorf("user id required")
	}
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.Limit <= 0 {
		p.Limit = 5
	}
	if p.Limit > 200 {
		p.Limit = 200
	}

	// The store returns newest-first; page windows slice that ordering.
	readings, err := uc.store.Query(ctx, p.UserID, time.Time{}, time.Now().UTC(), p.Page*p.Limit)
	if err != nil {
		return nil, fmt.Errorf("list readings: %w", err)
	}
	offset := (p.Page - 1) * p.Limit
	if offset > len(readings) {
		offset = len(readings)
	}
	readings = readings[offset:]

	return &ListReadingsResult{
		UserID:   p.UserID,
		Page:     p.Page,
		Limit:    p.Limit,
		Count:    len(readings),
		Readings: readings,
	}, nil
}

// Create validates and stores a new manual reading.
func (uc *ReadingsUseCase) Create(ctx context.Context, req *models.CreateReadingRequest) (*models.Reading, error) {
	ts, ok := util.ParseTime(req.Timestamp)
	if !ok {
		return nil, fmt.Errorf("invalid timestamp %q", req.Timestamp)
	}
	r := &models.Reading{
		ID:        uuid.NewString(),
		UserID:    req.UserID,
		Value:     req.Value,
		Timestamp: ts,
		Context:   models.MealContext(req.Context),
		Note:      req.Note,
		Source:    models.SourceManual,
	}
	if err := uc.store.Store(ctx, r); err != nil {
		return nil, fmt.Errorf("store reading: %w", err)
	}
	return r, nil
}

// Update replaces the stored version of a reading.
func (uc *ReadingsUseCase) Update(ctx context.Context, id string, req *models.UpdateReadingRequest) (*models.Reading, error) {
	if id == "" {
		return nil, fmt.Errorf("reading id required")
	}
	ts, ok := util.ParseTime(req.Timestamp)
	if !ok {
		return nil, fmt.Errorf("invalid timestamp %q", req.Timestamp)
	}
	r := &models.Reading{
		ID:        id,
		UserID:    req.UserID,
		Value:     req.Value,
		Timestamp: ts,
		Context:   models.MealContext(req.Context),
		Note:      req.Note,
		Source:    models.SourceManual,
	}
	if err := uc.store.Update(ctx, r); err != nil {
		return nil, fmt.Errorf("update reading: %w", err)
	}
	return r, nil
}

// Delete removes a user's reading by id.
func (uc *ReadingsUseCase) Delete(ctx context.Context, userID, id string) error {
	if userID == "" || id == "" {
		return fmt.Errorf("user id and reading id required")
	}
	if err := uc.store.Delete(ctx, userID, id); err != nil {
		return fmt.Errorf("delete reading: %w", err)
	}
	return nil
}
