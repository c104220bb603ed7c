package dataset

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Manifest is the data.yaml file consumed by YOLO training: the dataset root,
// the relative split directories, and the ordered class list.
type Manifest struct {
	Path  string   `yaml:"path"`
	Train string   `yaml:"train"`
	Val   string   `yaml:"val"`
	Test  string   `yaml:"test"`
	NC    int      `yaml:"nc"`
	Names []string `yaml:"names"`
}

// NewManifest builds the manifest for an output root and class catalog. Split
// paths are recorded relative to the root in the conventional images/<split>
// layout.
func NewManifest(outputRoot string, catalog *Catalog) (Manifest, error) {
	abs, err := filepath.Abs(outputRoot)
	if err != nil {
		return Manifest{}, fmt.Errorf("failed to resolve output root: %w", err)
	}
	return Manifest{
		Path:  abs,
		Train: filepath.Join("images", "train"),
		Val:   filepath.Join("images", "val"),
		Test:  filepath.Join("images", "test"),
		NC:    catalog.Len(),
		Names: catalog.Names(),
	}, nil
}

// Write serializes the manifest as data.yaml under the dataset root.
func (m Manifest) Write(outputRoot string) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	path := filepath.Join(outputRoot, "data.yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// LoadManifest reads a data.yaml from a dataset root.
func LoadManifest(datasetRoot string) (Manifest, error) {
	path := filepath.Join(datasetRoot, "data.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if len(m.Names) == 0 {
		return Manifest{}, fmt.Errorf("%s has no class names", path)
	}
	return m, nil
}
