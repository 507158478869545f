package domain

// User represents an application user able to authenticate against the API.
type User struct {
	UserID       string `json:"userID"`
	Username     string `json:"username"`
	Name         string `json:"name"`
	PasswordHash string `json:"-"` // bcrypt hash, never serialised
	IsActive     bool   `json:"isActive"`
	AuditFields
}
