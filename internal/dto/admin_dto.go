package dto

// ResetDataRequest requires the literal confirmation phrase "RESET DATA".
type ResetDataRequest struct {
	Confirmation string `json:"confirmation" validate:"required"`
}

// ResetDataResponse reports the per-collection outcome of a bulk wipe.
// Partial completion is an accepted outcome, not an error: cleared and
// failed collections are listed separately.
type ResetDataResponse struct {
	Cleared          []string          `json:"cleared"`
	Failed           map[string]string `json:"failed,omitempty"`
	DocumentsDeleted int               `json:"documents_deleted"`
}
