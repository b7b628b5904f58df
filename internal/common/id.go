package common

import (
	"github.com/google/uuid"
)

// NewResultID generates a unique discovery result ID with the "disc_" prefix
// Format: disc_<uuid>
func NewResultID() string {
	return "disc_" + uuid.New().String()
}

// NewSessionID generates a unique crawl session ID with the "sess_" prefix
// Format: sess_<uuid>
func NewSessionID() string {
	return "sess_" + uuid.New().String()
}
