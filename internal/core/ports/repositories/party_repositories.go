package repositories

import (
	"context"
	"time"

	"github.com/corebooks/corebooks/internal/core/domain"
)

// PartyReader defines read operations for the party registry.
type PartyReader interface {
	// FindPartyByID retrieves a specific party by its unique identifier.
	FindPartyByID(ctx context.Context, partyID string) (*domain.Party, error)

	// ListParties retrieves a paginated list of parties, optionally filtered by kind.
	ListParties(ctx context.Context, kind *domain.PartyKind, limit int, offset int) ([]domain.Party, error)
}

// PartyWriter defines write operations for the party registry.
type PartyWriter interface {
	// SaveParty persists a new party.
	SaveParty(ctx context.Context, party domain.Party) error

	// UpdateParty updates an existing party's details.
	UpdateParty(ctx context.Context, party domain.Party) error

	// DeactivateParty marks a party as inactive.
	DeactivateParty(ctx context.Context, partyID string, userID string, now time.Time) error
}

// PartyRepositoryFacade combines all party-related repository interfaces.
type PartyRepositoryFacade interface {
	PartyReader
	PartyWriter
}
