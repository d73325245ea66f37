package handlers

import (
	"net/http"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string   `json:"status"`
	Version   string   `json:"version"`
	ChainID   int64    `json:"chainId"`
	Protocols []string `json:"protocols"`
}

// HealthHandler handles health check requests
type HealthHandler struct {
	version   string
	chainID   int64
	protocols []string
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(version string, chainID int64, protocols []string) *HealthHandler {
	return &HealthHandler{version: version, chainID: chainID, protocols: protocols}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Version:   h.version,
		ChainID:   h.chainID,
		Protocols: h.protocols,
	})
}
