package httpapi

import (
	"outreach-engine/internal/domain"
	"outreach-engine/internal/rank"
	"outreach-engine/internal/wizard"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

type meResponse struct {
	Ready         bool         `json:"ready"`
	Authenticated bool         `json:"authenticated"`
	User          *domain.User `json:"user"`
}

type wizardResponse struct {
	wizard.State
	Fits []rank.Fit `json:"fits"`
}

type submitRequest struct {
	URL string `json:"url"`
}

type selectRequest struct {
	JobID string `json:"jobId"`
}

// viewRequest fields are optional; absent ones keep their current value.
type viewRequest struct {
	Search  *string `json:"search"`
	Company *string `json:"company"`
	Page    *int    `json:"page"`
}
