package domain

import (
	"encoding/json"
	"time"
)

// ProjectVersion is an immutable, commit-messaged snapshot of a project.
// Created only by the versioning service and never mutated afterwards.
type ProjectVersion struct {
	ID              string          `json:"id"`
	ProjectPublicID string          `json:"project_public_id"`
	VersionNumber   int             `json:"version_number"`
	Message         string          `json:"message"`
	Snapshot        json.RawMessage `json:"snapshot,omitempty"`
	CreatedBy       string          `json:"created_by"`
	CreatedAt       time.Time       `json:"created_at"`
}
