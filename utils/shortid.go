package utils

import (
	"encoding/base64"

	"github.com/google/uuid"
)

// NewShortID returns a 22-character URL-safe id (base64 of a raw UUID),
// used for request short ids and chat room ids.
func NewShortID() string {
	u := uuid.New()
	return base64.RawURLEncoding.EncodeToString(u[:])
}
