package model

import "strings"

// DocumentHandle is an opaque reference to a document pre-registered with the
// generation backend. Handles are immutable once parsed and shared read-only
// across all conversations.
type DocumentHandle struct {
	// Name is the backend identifier, e.g. "files/abc123".
	Name string `json:"name"`

	// MIMEType is advisory; the backend already knows the real type.
	MIMEType string `json:"mime_type,omitempty"`
}

// ParseDocumentHandles parses a comma-separated list of pre-registered file
// identifiers into handles. Empty entries are skipped.
func ParseDocumentHandles(raw string) []DocumentHandle {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	var handles []DocumentHandle
	for _, part := range strings.Split(raw, ",") {
		name := strings.TrimSpace(part)
		if name == "" {
			continue
		}
		handles = append(handles, DocumentHandle{
			Name:     name,
			MIMEType: "application/pdf",
		})
	}
	return handles
}
