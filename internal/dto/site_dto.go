package dto

type CreateSiteRequest struct {
	Name     string `json:"name"     validate:"required,min=2,max=120"`
	Location string `json:"location" validate:"max=200"`
}

type UpdateSiteRequest struct {
	Name     *string `json:"name"     validate:"omitempty,min=2,max=120"`
	Location *string `json:"location" validate:"omitempty,max=200"`
}

type SiteResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location,omitempty"`
}

type CreateStallRequest struct {
	Name      string `json:"name"       validate:"required,min=2,max=120"`
	StallType string `json:"stall_type" validate:"required,min=2,max=60"`
}

type UpdateStallRequest struct {
	Name      *string `json:"name"       validate:"omitempty,min=2,max=120"`
	StallType *string `json:"stall_type" validate:"omitempty,min=2,max=60"`
}

type StallResponse struct {
	ID        string `json:"id"`
	SiteID    string `json:"site_id"`
	Name      string `json:"name"`
	StallType string `json:"stall_type"`
}
