package services

import (
	"context"

	"github.com/corebooks/corebooks/internal/core/domain"
	"github.com/corebooks/corebooks/internal/dto"
)

// PartySvcFacade defines operations on the client/vendor/staff registry.
type PartySvcFacade interface {
	// CreateParty registers a new party.
	CreateParty(ctx context.Context, req dto.CreatePartyRequest, creatorUserID string) (*domain.Party, error)

	// GetPartyByID retrieves a specific party by its ID.
	GetPartyByID(ctx context.Context, partyID string) (*domain.Party, error)

	// ListParties retrieves a paginated list of parties, optionally by kind.
	ListParties(ctx context.Context, params dto.ListPartiesParams) ([]domain.Party, error)

	// UpdateParty updates party details.
	UpdateParty(ctx context.Context, partyID string, req dto.UpdatePartyRequest, userID string) (*domain.Party, error)

	// DeactivateParty marks a party as inactive.
	DeactivateParty(ctx context.Context, partyID string, userID string) error
}
