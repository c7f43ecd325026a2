package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"

	ierrors "github.com/Aman-CERP/indexify/internal/errors"
)

// ManifestVersion is the only manifest schema version understood.
const ManifestVersion = 1

// indexNamePattern follows the search engine's index naming rules.
var indexNamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_.\-]*$`)

// Manifest describes one index: its name, an optional request to start
// from, and the contributors to compose into it.
//
//	version: 1
//	index: products
//	contributors:
//	  - kind: token_filter
//	    params: {name: edge_ngram, type: edge_ngram, min_gram: 1, max_gram: 20}
//	  - kind: autocomplete_analyzer
//	    order: 10
//	    params: {name: autocomplete, token_filter: edge_ngram}
type Manifest struct {
	Version int    `yaml:"version"`
	Index   string `yaml:"index"`
	// Base is a create-index request JSON file to seed the document with,
	// relative to the manifest.
	Base         string            `yaml:"base,omitempty"`
	Contributors []ContributorSpec `yaml:"contributors"`

	path string
}

// ContributorSpec is one manifest entry. Params are decoded per kind.
type ContributorSpec struct {
	Kind   string         `yaml:"kind"`
	Order  int            `yaml:"order"`
	Params map[string]any `yaml:"params"`
}

// LoadManifest reads and validates the manifest at path.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ierrors.New(ierrors.ErrCodeManifestNotFound, fmt.Sprintf("manifest not found: %s", path), err).
				WithDetail("path", path)
		}
		if errors.Is(err, fs.ErrPermission) {
			return nil, ierrors.New(ierrors.ErrCodeFilePermission, fmt.Sprintf("cannot read manifest: %s", path), err).
				WithDetail("path", path)
		}
		return nil, ierrors.IOError(fmt.Sprintf("failed to read manifest %s", path), err)
	}

	m, err := ParseManifest(data)
	if err != nil {
		if ie, ok := ierrors.As(err); ok {
			return nil, ie.WithDetail("path", path)
		}
		return nil, err
	}
	m.path = path
	return m, nil
}

// ParseManifest decodes and validates a manifest. Unknown top-level or
// entry fields are rejected.
func ParseManifest(data []byte) (*Manifest, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var m Manifest
	if err := dec.Decode(&m); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ierrors.ConfigError("manifest is empty", err)
		}
		return nil, ierrors.ConfigError(fmt.Sprintf("failed to parse manifest: %v", err), err)
	}
	if err := m.Validate(); err != nil {
		return nil, ierrors.ConfigError(err.Error(), err)
	}
	return &m, nil
}

// Validate checks the manifest structure. Contributor parameters are
// checked later, when the registry builds each contributor.
func (m *Manifest) Validate() error {
	if m.Version != ManifestVersion {
		return fmt.Errorf("unsupported manifest version %d (want %d)", m.Version, ManifestVersion)
	}
	if !indexNamePattern.MatchString(m.Index) {
		return fmt.Errorf("index name %q must be lowercase letters, digits, '_', '-' or '.'", m.Index)
	}
	for i, c := range m.Contributors {
		if c.Kind == "" {
			return fmt.Errorf("contributors[%d]: kind is required", i)
		}
	}
	return nil
}

// Path returns the file the manifest was loaded from, if any.
func (m *Manifest) Path() string {
	return m.path
}

// BasePath resolves Base against the manifest's directory.
func (m *Manifest) BasePath() string {
	if m.Base == "" || filepath.IsAbs(m.Base) || m.path == "" {
		return m.Base
	}
	return filepath.Join(filepath.Dir(m.path), m.Base)
}
