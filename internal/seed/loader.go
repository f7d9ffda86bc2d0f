package seed

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultSeed []byte

// Loader reads a seed file. An empty path selects the built-in notes.
type Loader struct {
	filePath string
}

// NewLoader creates a new seed loader
func NewLoader(filePath string) *Loader {
	return &Loader{
		filePath: filePath,
	}
}

// Load reads and parses the seed file
func (l *Loader) Load() (File, error) {
	data := defaultSeed
	if l.filePath != "" {
		var err error
		data, err = os.ReadFile(l.filePath)
		if err != nil {
			return File{}, fmt.Errorf("failed to read seed file: %w", err)
		}
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return File{}, fmt.Errorf("failed to parse seed yaml: %w", err)
	}

	return f, nil
}
