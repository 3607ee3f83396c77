// Package yamlcatalog loads the GPU catalog from YAML, either the copy
// compiled into the binary or a file on disk.
package yamlcatalog

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"os"

	"github.com/VibeCoder01/GPU-Recommender/internal/core/domain"
	ports "github.com/VibeCoder01/GPU-Recommender/internal/core/ports/output"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var embeddedCatalog []byte

type yamlSource struct {
	name string
	read func() ([]byte, error)
}

// NewEmbeddedSource returns the catalog shipped inside the binary.
func NewEmbeddedSource() ports.CatalogSource {
	return &yamlSource{
		name: "embedded",
		read: func() ([]byte, error) { return embeddedCatalog, nil },
	}
}

// NewFileSource reads the catalog from a YAML file at load time.
func NewFileSource(path string) ports.CatalogSource {
	return &yamlSource{
		name: "file:" + path,
		read: func() ([]byte, error) { return os.ReadFile(path) },
	}
}

func (s *yamlSource) Name() string {
	return s.name
}

func (s *yamlSource) Load(_ context.Context) (*domain.Catalog, error) {
	data, err := s.read()
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", s.name, err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML catalog document. Unknown keys are
// rejected so typos in field names do not silently zero a spec value.
func Parse(data []byte) (*domain.Catalog, error) {
	var catalog domain.Catalog
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&catalog); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	if err := catalog.Validate(); err != nil {
		return nil, err
	}

	catalog.DeriveSources()

	return &catalog, nil
}
