package upload

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Local writes uploads into a directory served under a public URL prefix.
type Local struct {
	dir       string
	publicURL string
}

func NewLocal(dir, publicURL string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload dir: %w", err)
	}
	return &Local{dir: dir, publicURL: strings.TrimSuffix(publicURL, "/") + "/"}, nil
}

func (l *Local) Dir() string { return l.dir }

func (l *Local) Put(ctx context.Context, name, _ string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if name != filepath.Base(name) {
		return "", fmt.Errorf("invalid object name %q", name)
	}
	if err := os.WriteFile(filepath.Join(l.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", name, err)
	}
	return l.publicURL + name, nil
}
