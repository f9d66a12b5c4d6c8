package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

// maxSecretFileSize caps how much of a secret file is read.
const maxSecretFileSize = 64 * 1024

// FileSecretProvider implements SecretProvider by reading secret values from
// files, the convention used by Docker secrets and Kubernetes secret volumes.
// Trailing newlines are stripped since most tooling writes one.
type FileSecretProvider struct {
	readFile func(name string) ([]byte, error)
}

// NewFileSecretProvider creates a FileSecretProvider backed by the OS filesystem.
func NewFileSecretProvider() *FileSecretProvider {
	return &FileSecretProvider{readFile: os.ReadFile}
}

// newFileSecretProviderWithFS creates a FileSecretProvider reading from fsys.
// Used for testing with fstest.MapFS.
func newFileSecretProviderWithFS(fsys fs.FS) *FileSecretProvider {
	return &FileSecretProvider{
		readFile: func(name string) ([]byte, error) {
			return fs.ReadFile(fsys, strings.TrimPrefix(name, "/"))
		},
	}
}

// GetSecretsBatch reads each referenced file. Missing files are omitted from
// the result; unreadable or oversized files fail the batch. Context
// cancellation is checked between files.
func (p *FileSecretProvider) GetSecretsBatch(ctx context.Context, refs []string) (map[string]string, error) {
	result := make(map[string]string, len(refs))
	for _, ref := range refs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		data, err := p.readFile(ref)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("reading secret file %s: %w", ref, err)
		}
		if len(data) > maxSecretFileSize {
			return nil, fmt.Errorf("secret file %s exceeds %d bytes", ref, maxSecretFileSize)
		}

		result[ref] = strings.TrimRight(string(data), "\r\n")
	}
	return result, nil
}
