package model

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/expirywise/backend-go/internal/domain"
)

// SaveArtifact serializes a model object to a JSON artifact, creating
// parent directories as needed.
func SaveArtifact(path string, v interface{}) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadArtifact deserializes a model artifact. A missing file surfaces as
// ModelNotFoundError: the model-gated stages have no fallback.
func LoadArtifact(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &domain.ModelNotFoundError{Path: path}
		}
		return err
	}
	return json.Unmarshal(data, v)
}
