package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type LoginRequest struct {
	Username string `json:"username" validate:"required,min=1"`
	Password string `json:"password" validate:"required,min=4"`
	// LocationID is the optional site claim asserted by a kiosk/device; a
	// store manager's claim must match their assigned location.
	LocationID *string `json:"location_id" validate:"omitempty,uuid"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type UserResponse struct {
	ID           string  `json:"id"`
	Username     string  `json:"username"`
	FullName     string  `json:"full_name"`
	Email        *string `json:"email"`
	Role         string  `json:"role"`
	ManagerType  *string `json:"manager_type,omitempty"`
	LocationID   *string `json:"location_id"`
	LocationName *string `json:"location_name,omitempty"`
	Active       bool    `json:"active"`
}

type LoginResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresIn   int          `json:"expires_in"` // seconds
	User        UserResponse `json:"user"`
}
