package rubric

import (
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultRubricYAML []byte

// Load reads and validates a rubric from a YAML file.
// If the file does not exist, it returns ErrRubricNotFound so callers
// can fall back to Default.
func Load(path string) (*Rubric, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided rubric path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrRubricNotFound
		}
		return nil, err
	}
	return Parse(data)
}

// Default returns the embedded rubric shipped with the binary.
func Default() (*Rubric, error) {
	return Parse(defaultRubricYAML)
}

// Parse unmarshals, validates, and seals a rubric. The prompt hash is
// computed here so every loaded rubric carries it.
func Parse(data []byte) (*Rubric, error) {
	var r Rubric
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}

	sum := sha256.Sum256([]byte(r.PromptTemplate))
	r.PromptHash = hex.EncodeToString(sum[:])

	return &r, nil
}
