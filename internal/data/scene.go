// Package data loads static game definitions from YAML, the way all static
// tables are shipped: scenes list the entities to spawn when play begins and
// the bundles each carries.
package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Scene struct {
	Name     string      `yaml:"name"`
	Entities []EntityDef `yaml:"entities"`
}

// EntityDef is one prefab row. Absent sections mean the bundle is not
// attached; Count stamps the prefab multiple times (default 1).
type EntityDef struct {
	Name     string       `yaml:"name"`
	Count    int          `yaml:"count"`
	Position *PositionDef `yaml:"position"`
	Velocity *VelocityDef `yaml:"velocity"`
	Health   *HealthDef   `yaml:"health"`
	Sprite   string       `yaml:"sprite"`
	Player   bool         `yaml:"player"`
}

type PositionDef struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

type VelocityDef struct {
	DX float64 `yaml:"dx"`
	DY float64 `yaml:"dy"`
}

type HealthDef struct {
	Max int `yaml:"max"`
}

// LoadScene reads and validates one scene file. Failures are recoverable
// startup errors: the caller decides whether to abort or fall back to an
// empty scene.
func LoadScene(path string) (*Scene, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene %s: %w", path, err)
	}
	var sc Scene
	if err := yaml.Unmarshal(raw, &sc); err != nil {
		return nil, fmt.Errorf("parse scene %s: %w", path, err)
	}
	for i := range sc.Entities {
		if sc.Entities[i].Count < 1 {
			sc.Entities[i].Count = 1
		}
		if sc.Entities[i].Health != nil && sc.Entities[i].Health.Max < 1 {
			return nil, fmt.Errorf("scene %s: entity %q has non-positive max health", path, sc.Entities[i].Name)
		}
	}
	return &sc, nil
}

// Count returns the total number of entities the scene will spawn.
func (s *Scene) Count() int {
	total := 0
	for _, e := range s.Entities {
		total += e.Count
	}
	return total
}
