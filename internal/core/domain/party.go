package domain

// PartyKind classifies a party in the beneficiary registry.
type PartyKind string

const (
	PartyClient PartyKind = "CLIENT"
	PartyVendor PartyKind = "VENDOR"
	PartyStaff  PartyKind = "STAFF"
)

// IsValid reports whether k is a recognised party kind.
func (k PartyKind) IsValid() bool {
	switch k {
	case PartyClient, PartyVendor, PartyStaff:
		return true
	}
	return false
}

// Party is a client, vendor or staff member that vouchers can reference as a
// beneficiary.
type Party struct {
	PartyID  string    `json:"partyID"`
	Kind     PartyKind `json:"kind"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Phone    string    `json:"phone"`
	IsActive bool      `json:"isActive"`
	AuditFields
}
