// Package ingest holds what every history importer reports back.
package ingest

// Result holds the outcome of an import.
type Result struct {
	SessionsReceived int `json:"sessions_received"`
	SessionsAdded    int `json:"sessions_added"`
	SessionsReplaced int `json:"sessions_replaced"`
	SetsReceived     int `json:"sets_received"`

	Message string `json:"message,omitempty"`
}
