package tag

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/statengine/internal/game/property"
)

// Def is the content-file form of a tag. ID is optional; zero means
// "allocate the next id".
type Def struct {
	ID         int                 `yaml:"id"`
	Name       string              `yaml:"name"`
	Properties []property.Property `yaml:"properties"`
	Metadata   map[string]string   `yaml:"metadata"`
}

// Register adds def to c.
//
// Precondition: def.Name must not be empty.
// Postcondition: returns the assigned id, or an error if the id or name is taken.
func (c *Collection) Register(def Def) (int, error) {
	if def.Name == "" {
		return 0, fmt.Errorf("tag: definition has no name")
	}
	id := def.ID
	if id == 0 {
		if id = c.AddTag(def.Name); id == 0 {
			return 0, fmt.Errorf("tag: name %q already registered", def.Name)
		}
	} else if !c.AddTagWithID(id, def.Name) {
		return 0, fmt.Errorf("tag: id %d or name %q already registered", id, def.Name)
	}
	t := c.tags[id]
	t.WithProperties(def.Properties...)
	for k, v := range def.Metadata {
		t.WithMetadata(k, v)
	}
	return id, nil
}

// LoadDirectory reads every *.yaml file in dir, in lexical order, and
// registers each as a tag in c.
// Precondition: dir must be a readable directory.
// Postcondition: returns the number of tags loaded, or an error naming the
// first file that fails to parse or register.
func LoadDirectory(dir string, c *Collection) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("reading tag dir %q: %w", dir, err)
	}
	n := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return n, fmt.Errorf("reading %q: %w", path, err)
		}
		var def Def
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&def); err != nil {
			return n, fmt.Errorf("parsing %q: %w", path, err)
		}
		if _, err := c.Register(def); err != nil {
			return n, fmt.Errorf("registering %q: %w", path, err)
		}
		n++
	}
	return n, nil
}
