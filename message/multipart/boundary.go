package multipart

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateBoundary returns a new random boundary string.
func GenerateBoundary() string {
	return "----=_Part_" + strings.ReplaceAll(uuid.New().String(), "-", "")
}
