package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateUserRequest struct {
	Email          string   `json:"email"           validate:"required,email"`
	Password       string   `json:"password"        validate:"required,min=6"`
	DisplayName    string   `json:"display_name"    validate:"required,min=2,max=120"`
	Role           string   `json:"role"            validate:"required,oneof=admin manager staff"`
	DefaultSiteID  string   `json:"default_site_id"`
	DefaultStallID string   `json:"default_stall_id"`
	ManagedSiteIDs []string `json:"managed_site_ids"`
}

type UpdateUserRequest struct {
	DisplayName    *string   `json:"display_name"    validate:"omitempty,min=2,max=120"`
	Role           *string   `json:"role"            validate:"omitempty,oneof=admin manager staff"`
	Status         *string   `json:"status"          validate:"omitempty,oneof=active inactive"`
	DefaultSiteID  *string   `json:"default_site_id"`
	DefaultStallID *string   `json:"default_stall_id"`
	ManagedSiteIDs *[]string `json:"managed_site_ids"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type UserResponse struct {
	UID            string   `json:"uid"`
	Email          string   `json:"email"`
	DisplayName    string   `json:"display_name"`
	Role           string   `json:"role"`
	Status         string   `json:"status"`
	DefaultSiteID  string   `json:"default_site_id,omitempty"`
	DefaultStallID string   `json:"default_stall_id,omitempty"`
	ManagedSiteIDs []string `json:"managed_site_ids,omitempty"`
}
