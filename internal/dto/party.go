package dto

import (
	"time"

	"github.com/corebooks/corebooks/internal/core/domain"
)

// CreatePartyRequest defines the data needed to register a client, vendor or
// staff member.
type CreatePartyRequest struct {
	Kind  domain.PartyKind `json:"kind" binding:"required,oneof=CLIENT VENDOR STAFF"`
	Name  string           `json:"name" binding:"required"`
	Email string           `json:"email" binding:"omitempty,email"`
	Phone string           `json:"phone"`
}

// UpdatePartyRequest defines the data allowed for updating a party.
type UpdatePartyRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email" binding:"omitempty,email"`
	Phone *string `json:"phone"`
}

// ListPartiesParams defines query parameters for listing parties.
type ListPartiesParams struct {
	Kind   *string `form:"kind" binding:"omitempty,oneof=CLIENT VENDOR STAFF"`
	Limit  int     `form:"limit,default=20"`
	Offset int     `form:"offset,default=0"`
}

// PartyResponse defines the data returned for a party.
type PartyResponse struct {
	PartyID       string           `json:"partyID"`
	Kind          domain.PartyKind `json:"kind"`
	Name          string           `json:"name"`
	Email         string           `json:"email"`
	Phone         string           `json:"phone"`
	IsActive      bool             `json:"isActive"`
	CreatedAt     time.Time        `json:"createdAt"`
	LastUpdatedAt time.Time        `json:"lastUpdatedAt"`
}

// ToPartyResponse converts a domain.Party to PartyResponse DTO.
func ToPartyResponse(p *domain.Party) PartyResponse {
	return PartyResponse{
		PartyID:       p.PartyID,
		Kind:          p.Kind,
		Name:          p.Name,
		Email:         p.Email,
		Phone:         p.Phone,
		IsActive:      p.IsActive,
		CreatedAt:     p.CreatedAt,
		LastUpdatedAt: p.LastUpdatedAt,
	}
}

// ToListPartyResponse converts a slice of domain.Party to response DTOs.
func ToListPartyResponse(parties []domain.Party) []PartyResponse {
	res := make([]PartyResponse, len(parties))
	for i, p := range parties {
		res[i] = ToPartyResponse(&p)
	}
	return res
}
