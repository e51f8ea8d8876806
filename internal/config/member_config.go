package config

import (
	"context"
	"fmt"
	"os"
)

// MemberConfigLoader reads the opaque member configuration blob from a file.
// An empty path yields a nil blob.
type MemberConfigLoader struct {
	path string
}

// NewMemberConfigLoader returns a loader for path.
func NewMemberConfigLoader(path string) *MemberConfigLoader {
	return &MemberConfigLoader{path: path}
}

// LoadConfig returns the raw configuration bytes.
func (l *MemberConfigLoader) LoadConfig(ctx context.Context) ([]byte, error) {
	if l.path == "" {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	blob, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("error reading member config %s: %w", l.path, err)
	}
	return blob, nil
}
