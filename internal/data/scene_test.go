package data

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleScene = `
name: main
entities:
  - name: keeper
    player: true
    position: {x: 10, y: 20}
    velocity: {dx: 0, dy: 0}
    health: {max: 100}
    sprite: keeper_idle
  - name: rock
    count: 3
    position: {x: 0, y: 0}
    sprite: rock
`

func TestLoadScene(t *testing.T) {
	t.Run("parses entities and defaults count", func(t *testing.T) {
		sc, err := LoadScene(writeScene(t, sampleScene))
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if sc.Name != "main" || len(sc.Entities) != 2 {
			t.Fatalf("unexpected scene: %+v", sc)
		}
		keeper := sc.Entities[0]
		if !keeper.Player || keeper.Position == nil || keeper.Position.X != 10 {
			t.Fatalf("keeper prefab wrong: %+v", keeper)
		}
		if keeper.Count != 1 {
			t.Fatalf("count default missing: %d", keeper.Count)
		}
		if sc.Entities[1].Count != 3 {
			t.Fatalf("explicit count lost: %d", sc.Entities[1].Count)
		}
		if sc.Count() != 4 {
			t.Fatalf("expected 4 total spawns, got %d", sc.Count())
		}
	})

	t.Run("missing file is an error", func(t *testing.T) {
		if _, err := LoadScene(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("invalid health is rejected", func(t *testing.T) {
		bad := "entities:\n  - name: ghost\n    health: {max: 0}\n"
		if _, err := LoadScene(writeScene(t, bad)); err == nil {
			t.Fatal("expected validation error")
		}
	})
}

func writeScene(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scene.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write scene: %v", err)
	}
	return path
}
