package session

import (
	"fmt"

	"github.com/google/uuid"
)

// maxIDAttempts bounds the retry loop used when a freshly generated id is
// already present in a store.
const maxIDAttempts = 4

func newSessionID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("session: generate id: %w", err)
	}
	return id.String(), nil
}
