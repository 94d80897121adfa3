package steps

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Catalog keeps the forms parsed from definition files. It is safe for
// concurrent readers when treated as immutable after construction.
type Catalog struct {
	forms map[string]*Definition
}

// LoadFS walks the provided filesystem and parses JSON/YAML definition files.
// When fsys is nil or no definition files are present, the returned catalog
// is empty.
func LoadFS(fsys fs.FS) (*Catalog, error) {
	catalog := &Catalog{forms: make(map[string]*Definition)}
	if fsys == nil {
		return catalog, nil
	}

	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isDefinitionFile(path) {
			return nil
		}

		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("steps: read %s: %w", path, err)
		}

		doc, err := parseDocument(data, path)
		if err != nil {
			return err
		}

		for formID, raw := range doc.Forms {
			id := strings.TrimSpace(formID)
			if id == "" {
				return fmt.Errorf("steps: file %s defines a form with an empty name", path)
			}
			if _, exists := catalog.forms[id]; exists {
				return fmt.Errorf("steps: duplicate form %q (file %s)", id, path)
			}
			def, err := normaliseForm(raw, id, path)
			if err != nil {
				return err
			}
			catalog.forms[id] = def
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return catalog, nil
}

// Definition returns the form registered under name.
func (c *Catalog) Definition(name string) (*Definition, bool) {
	if c == nil {
		return nil, false
	}
	def, ok := c.forms[name]
	return def, ok
}

// Names lists the loaded form names, sorted.
func (c *Catalog) Names() []string {
	if c == nil {
		return nil
	}
	names := make([]string, 0, len(c.forms))
	for name := range c.forms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Empty reports whether the catalog holds any forms.
func (c *Catalog) Empty() bool {
	return c == nil || len(c.forms) == 0
}

type documentFile struct {
	Forms map[string]formFile `json:"forms" yaml:"forms"`
}

type formFile struct {
	Title   string                    `json:"title" yaml:"title"`
	Steps   []Step                    `json:"steps" yaml:"steps"`
	Schemas map[string]map[string]any `json:"schemas" yaml:"schemas"`
}

func parseDocument(data []byte, source string) (documentFile, error) {
	var doc documentFile
	if len(strings.TrimSpace(string(data))) == 0 {
		return documentFile{}, fmt.Errorf("steps: file %s is empty", source)
	}

	if strings.EqualFold(filepath.Ext(source), ".json") {
		if err := json.Unmarshal(data, &doc); err != nil {
			return documentFile{}, fmt.Errorf("steps: parse %s: %w", source, err)
		}
		return doc, nil
	}

	if err := yaml.Unmarshal(data, &doc); err != nil {
		return documentFile{}, fmt.Errorf("steps: parse %s: %w", source, err)
	}
	return doc, nil
}

func normaliseForm(raw formFile, id, source string) (*Definition, error) {
	list := make([]Step, 0, len(raw.Steps))
	for _, step := range raw.Steps {
		step.Icon = SanitizeIcon(step.Icon)
		list = append(list, step)
	}

	table, err := NewTable(list...)
	if err != nil {
		return nil, fmt.Errorf("steps: form %q (file %s): %w", id, source, err)
	}

	def, err := NewDefinition(id, table, raw.Schemas)
	if err != nil {
		return nil, fmt.Errorf("steps: file %s: %w", source, err)
	}
	def.Title = strings.TrimSpace(raw.Title)
	def.Source = source
	return def, nil
}

func isDefinitionFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}
