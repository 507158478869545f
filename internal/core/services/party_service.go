package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/corebooks/corebooks/internal/apperrors"
	"github.com/corebooks/corebooks/internal/core/domain"
	portsrepo "github.com/corebooks/corebooks/internal/core/ports/repositories"
	portssvc "github.com/corebooks/corebooks/internal/core/ports/services"
	"github.com/corebooks/corebooks/internal/dto"
)

// partyService manages the client/vendor/staff registry that voucher
// beneficiaries reference.
type partyService struct {
	BaseService
	partyRepo portsrepo.PartyRepositoryFacade
}

// NewPartyService creates a new PartyService.
func NewPartyService(partyRepo portsrepo.PartyRepositoryFacade) portssvc.PartySvcFacade {
	return &partyService{partyRepo: partyRepo}
}

var _ portssvc.PartySvcFacade = (*partyService)(nil)

// CreateParty registers a new party.
func (s *partyService) CreateParty(ctx context.Context, req dto.CreatePartyRequest, creatorUserID string) (*domain.Party, error) {
	if !req.Kind.IsValid() {
		return nil, fmt.Errorf("%w: unknown party kind %q", apperrors.ErrValidation, req.Kind)
	}

	now := time.Now().UTC()
	party := domain.Party{
		PartyID:  uuid.NewString(),
		Kind:     req.Kind,
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		IsActive: true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.partyRepo.SaveParty(ctx, party); err != nil {
		s.LogError(ctx, err, "Failed to save party", slog.String("party_id", party.PartyID))
		return nil, fmt.Errorf("failed to save party: %w", err)
	}

	s.LogInfo(ctx, "Party created successfully",
		slog.String("party_id", party.PartyID), slog.String("kind", string(party.Kind)))
	return &party, nil
}

// GetPartyByID retrieves a specific party by its ID.
func (s *partyService) GetPartyByID(ctx context.Context, partyID string) (*domain.Party, error) {
	party, err := s.partyRepo.FindPartyByID(ctx, partyID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find party by ID", slog.String("party_id", partyID))
		}
		return nil, err
	}
	return party, nil
}

// ListParties retrieves a paginated list of parties, optionally by kind.
func (s *partyService) ListParties(ctx context.Context, params dto.ListPartiesParams) ([]domain.Party, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := params.Offset
	if offset < 0 {
		offset = 0
	}

	var kind *domain.PartyKind
	if params.Kind != nil {
		k := domain.PartyKind(*params.Kind)
		if !k.IsValid() {
			return nil, fmt.Errorf("%w: unknown party kind %q", apperrors.ErrValidation, *params.Kind)
		}
		kind = &k
	}

	parties, err := s.partyRepo.ListParties(ctx, kind, limit, offset)
	if err != nil {
		s.LogError(ctx, err, "Failed to list parties from repository")
		return nil, fmt.Errorf("failed to retrieve parties: %w", err)
	}
	if parties == nil {
		parties = []domain.Party{}
	}
	return parties, nil
}

// UpdateParty updates party details.
func (s *partyService) UpdateParty(ctx context.Context, partyID string, req dto.UpdatePartyRequest, userID string) (*domain.Party, error) {
	party, err := s.partyRepo.FindPartyByID(ctx, partyID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find party for update", slog.String("party_id", partyID))
		}
		return nil, err
	}

	updated := false
	if req.Name != nil && *req.Name != party.Name {
		if *req.Name == "" {
			return nil, fmt.Errorf("%w: party name cannot be empty", apperrors.ErrValidation)
		}
		party.Name = *req.Name
		updated = true
	}
	if req.Email != nil && *req.Email != party.Email {
		party.Email = *req.Email
		updated = true
	}
	if req.Phone != nil && *req.Phone != party.Phone {
		party.Phone = *req.Phone
		updated = true
	}
	if !updated {
		return party, nil
	}

	party.LastUpdatedAt = time.Now().UTC()
	party.LastUpdatedBy = userID

	if err := s.partyRepo.UpdateParty(ctx, *party); err != nil {
		s.LogError(ctx, err, "Failed to save party update", slog.String("party_id", partyID))
		return nil, fmt.Errorf("failed to save party update: %w", err)
	}

	s.LogInfo(ctx, "Party updated successfully", slog.String("party_id", partyID))
	return party, nil
}

// DeactivateParty marks a party as inactive. Existing vouchers keep their
// reference; new vouchers can no longer name it as beneficiary.
func (s *partyService) DeactivateParty(ctx context.Context, partyID string, userID string) error {
	party, err := s.partyRepo.FindPartyByID(ctx, partyID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find party for deactivation", slog.String("party_id", partyID))
		}
		return err
	}
	if !party.IsActive {
		return nil
	}

	if err := s.partyRepo.DeactivateParty(ctx, partyID, userID, time.Now().UTC()); err != nil {
		s.LogError(ctx, err, "Failed to deactivate party", slog.String("party_id", partyID))
		return fmt.Errorf("failed to deactivate party: %w", err)
	}

	s.LogInfo(ctx, "Party deactivated", slog.String("party_id", partyID))
	return nil
}
