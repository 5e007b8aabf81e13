package admin

import "time"

// User is the admin-panel view of a login identity: profile fields plus the
// assigned roles and the claims actually held.
type User struct {
	ID          int64     `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	JobTitle    string    `json:"job_title,omitempty"`
	IsActive    bool      `json:"is_active"`
	Roles       []string  `json:"roles"`
	Claims      []string  `json:"claims"`
	CreatedAt   time.Time `json:"created_at"`
}

// Role is a named claim bundle. Built-in roles cannot be edited or deleted.
type Role struct {
	ID      int64    `json:"id"`
	Name    string   `json:"name"`
	Tier    string   `json:"tier"`
	BuiltIn bool     `json:"built_in"`
	Claims  []string `json:"claims"`
}

// AvailableClaim is one entry of the claim registry the admin UI offers.
type AvailableClaim struct {
	ID          int64  `json:"id"`
	ClaimType   string `json:"claim_type"`
	Description string `json:"description,omitempty"`
}

// SyncResult is the response of a manual claim sync: the claim set the
// user's roles entitle them to after reconciliation.
type SyncResult struct {
	UserID   int64    `json:"user_id"`
	Expected []string `json:"expected_claims"`
}
