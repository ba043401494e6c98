package uuid

import (
	"os"
	"path/filepath"

	google_uuid "github.com/google/uuid"
)

// MustUUID returns a new random UUID string
func MustUUID() string {
	return google_uuid.New().String()
}

// TempPath returns a fresh path inside the system temp
// directory whose last element starts with name. Nothing
// is created at the path.
func TempPath(name string) string {
	return filepath.Join(os.TempDir(), name+"-"+MustUUID())
}
