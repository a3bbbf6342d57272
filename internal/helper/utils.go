package helper

import (
	"fmt"
	"os"

	"github.com/google/uuid"
)

// DocumentID derives a stable id for a document within a session.
// The same session/file name pair always maps to the same id, so
// re-uploading a file overwrites its chunks instead of duplicating them.
func DocumentID(sessionID, fileName string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(sessionID+"/"+fileName)).String()
}

// CreateFolder creates the folder and any parents if missing.
func CreateFolder(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("failed to create folder %s: %v", path, err)
	}
	return nil
}
