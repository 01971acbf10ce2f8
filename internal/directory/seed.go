package directory

import (
	"context"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

type seedFile struct {
	Resources []*Resource `yaml:"resources"`
}

// LoadSeed reads a YAML seed file:
//
//	resources:
//	  - name: Pilsen Food Pantry
//	    supplies: [Food, Clothing]
//	    status: ACTIVE
func LoadSeed(r io.Reader) ([]*Resource, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f seedFile
	if err := dec.Decode(&f); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	for i, res := range f.Resources {
		if res.Status == "" {
			res.Status = StatusActive
		}
		st, err := ParseStatus(string(res.Status))
		if err != nil {
			return nil, fmt.Errorf("resource %d (%s): %w", i, res.Name, err)
		}
		res.Status = st
		if err := res.Validate(); err != nil {
			return nil, fmt.Errorf("resource %d: %w", i, err)
		}
	}
	return f.Resources, nil
}

// Seed upserts resources into store and returns how many were written.
func Seed(ctx context.Context, store Store, resources []*Resource) (int, error) {
	for i, r := range resources {
		if err := store.Upsert(ctx, r); err != nil {
			return i, err
		}
	}
	return len(resources), nil
}
