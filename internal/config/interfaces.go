package config

import "context"

// SecretProvider abstracts the retrieval of secret values referenced by
// <VAR>_FILE variables. The default implementation reads the local
// filesystem (Docker and Kubernetes secret mounts); tests inject fakes.
type SecretProvider interface {
	// GetSecretsBatch resolves every reference in refs. Returns a map of
	// ref -> plaintext value. References that do not exist are omitted from
	// the map rather than reported as an error; any other failure aborts
	// the batch.
	GetSecretsBatch(ctx context.Context, refs []string) (map[string]string, error)
}
