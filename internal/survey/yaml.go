package survey

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

type fileQuestion struct {
	Title       string   `yaml:"title"`
	Type        string   `yaml:"type"`
	Description string   `yaml:"description"`
	Required    bool     `yaml:"required"`
	Options     []string `yaml:"options"`
	ScaleMax    int      `yaml:"scale_max"`
}

type file struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Questions   []fileQuestion `yaml:"questions"`
}

// LoadYAML builds a form from a YAML definition. Missing name and description take the defaults.
func LoadYAML(r io.Reader) (*Builder, error) {
	var f file
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to parse survey: %w", err)
	}

	b := New()
	if f.Name != "" {
		b.Name = f.Name
	}
	if f.Description != "" {
		b.Description = f.Description
	}

	for i, fq := range f.Questions {
		kind := ShortText
		if fq.Type != "" {
			k, ok := ParseKind(fq.Type)
			if !ok {
				return nil, fmt.Errorf("question %d: unknown type %q", i+1, fq.Type)
			}
			kind = k
		}
		q := b.Add(kind)
		desc := fq.Description
		req := fq.Required
		patch := Patch{Description: &desc, Required: &req}
		if fq.Title != "" {
			patch.Title = &fq.Title
		}
		b.Update(q.ID, patch)
		if len(fq.Options) > 0 {
			i := b.index(q.ID)
			b.questions[i].Options = append([]string(nil), fq.Options...)
		}
		if fq.ScaleMax != 0 {
			b.SetScaleMax(q.ID, fq.ScaleMax)
		}
	}
	b.selected = ""
	return b, nil
}

// LoadFile reads a YAML definition from path.
func LoadFile(path string) (*Builder, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadYAML(f)
}
