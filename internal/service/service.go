// Package service implements validation and orchestration between HTTP
// handlers and the repository layer.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Shivanand-hulikatti/guest-list/internal/model"
	"github.com/Shivanand-hulikatti/guest-list/internal/query"
	"github.com/Shivanand-hulikatti/guest-list/internal/repository"
)

// GuestService orchestrates guest-related operations.
type GuestService struct {
	guests     repository.GuestRepository
	translator *query.Translator
}

// NewGuestService constructs a GuestService with its dependencies.
func NewGuestService(guests repository.GuestRepository, translator *query.Translator) *GuestService {
	return &GuestService{guests: guests, translator: translator}
}

// ListGuests translates the filters and returns the matching guests.
// Translation errors wrap query.ErrInvalidPattern or query.ErrPatternTooLong.
func (s *GuestService) ListGuests(ctx context.Context, f query.Filters) ([]model.Guest, error) {
	p, err := s.translator.Translate(f)
	if err != nil {
		return nil, err
	}
	guests, err := s.guests.Find(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("list guests: %w", err)
	}
	return guests, nil
}

// GetGuest returns a single guest by ID.
func (s *GuestService) GetGuest(ctx context.Context, id string) (*model.Guest, error) {
	g, err := s.guests.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("get guest: %w", err)
	}
	return g, nil
}

// CreateGuest validates the request and persists a new guest. Validation
// failures are returned as *model.ValidationError and nothing is written.
func (s *GuestService) CreateGuest(ctx context.Context, req model.CreateGuestRequest) (*model.Guest, error) {
	g, err := guestFromRequest(req)
	if err != nil {
		return nil, err
	}
	created, err := s.guests.Create(ctx, g)
	if err != nil {
		return nil, fmt.Errorf("create guest: %w", err)
	}
	return created, nil
}

func guestFromRequest(req model.CreateGuestRequest) (model.Guest, error) {
	var verr model.ValidationError

	g := model.Guest{
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Email:     req.Email,
		Phone:     req.Phone,
		Allergies: req.Allergies,
		Other:     req.Other,
	}

	if g.FirstName == "" {
		verr.Add("first_name", "required", "Path `first_name` is required.")
	}
	if g.LastName == "" {
		verr.Add("last_name", "required", "Path `last_name` is required.")
	}
	if len(req.IsAttending) > 0 {
		if err := g.IsAttending.UnmarshalJSON(req.IsAttending); err != nil {
			verr.Add("isAttending", "Boolean",
				fmt.Sprintf("Cast to Boolean failed for value %s at path \"isAttending\"", req.IsAttending))
		}
	}

	if verr.HasErrors() {
		return model.Guest{}, &verr
	}
	return g, nil
}
