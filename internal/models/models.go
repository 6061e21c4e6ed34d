package models

// ToggleRequest adds or removes one symptom from the caller's selection
type ToggleRequest struct {
	Symptom string `json:"symptom" validate:"required"`
}

// SearchRequest sets the free-text symptom search
type SearchRequest struct {
	Query string `json:"query"`
}

// HealthResponse reports liveness
type HealthResponse struct {
	Status string `json:"status"`
}

// InfoResponse describes the running server
type InfoResponse struct {
	Version       string `json:"version"`
	Backend       string `json:"backend"`
	CatalogSource string `json:"catalog_source"`
	Sessions      int    `json:"sessions"`
}
