package data

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dogloot/server/internal/world"
)

const sampleYAML = `
defaultDogSpeed: 3
dogRetirementTime: 15
lootGeneratorConfig:
  period: 5
  probability: 0.5
maps:
  - id: map1
    name: Map 1
    lootTypes:
      - {name: key, file: assets/key.obj, value: 10}
      - {name: wallet, value: 30}
    roads:
      - {x0: 0, y0: 0, x1: 40}
      - {x0: 40, y0: 0, y1: 30}
    buildings:
      - {x: 5, y: 5, w: 30, h: 20}
    offices:
      - {id: o0, x: 40, y: 30, offsetX: 5, offsetY: 0}
  - id: town
    name: Town
    dogSpeed: 1.5
    bagCapacity: 5
    lootTypes:
      - {name: coin, value: 1}
    roads:
      - {x0: 0, y0: 0, y1: 10}
`

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadGame_YAML(t *testing.T) {
	g, err := LoadGame(writeFile(t, "maps.yaml", sampleYAML))
	require.NoError(t, err)
	require.Len(t, g.Maps, 2)

	assert.Equal(t, 5*time.Second, g.LootPeriod)
	assert.Equal(t, 0.5, g.LootProbability)

	m := g.Maps[0]
	assert.Equal(t, world.MapID("map1"), m.ID)
	assert.Equal(t, 3.0, m.DogSpeed)
	assert.Equal(t, 3, m.BagCapacity)
	assert.Equal(t, 15*time.Second, m.AFKThreshold)
	assert.Equal(t, []world.LootType{{Name: "key", Value: 10}, {Name: "wallet", Value: 30}}, m.LootTypes)
	assert.Equal(t, 2, m.Network().Len())
	assert.Equal(t, world.VerticalRoad(world.Point{X: 40, Y: 0}, 30), m.Network().Road(1))
	require.Len(t, m.Offices(), 1)
	assert.Equal(t, world.Point{X: 5, Y: 0}, m.Offices()[0].Offset)
	require.Len(t, m.Buildings(), 1)

	town := g.Maps[1]
	assert.Equal(t, 1.5, town.DogSpeed)
	assert.Equal(t, 5, town.BagCapacity)
}

func TestParseGame_Defaults(t *testing.T) {
	g, err := ParseGame([]byte(`
maps:
  - id: m
    name: M
    lootTypes: [{name: a, value: 1}]
    roads: [{x0: 0, y0: 0, x1: 3}]
`))
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, g.LootPeriod)
	assert.Equal(t, 0.5, g.LootProbability)
	assert.Equal(t, 1.0, g.Maps[0].DogSpeed)
	assert.Equal(t, 3, g.Maps[0].BagCapacity)
	assert.Equal(t, 60*time.Second, g.Maps[0].AFKThreshold)
}

func TestParseGame_Rejects(t *testing.T) {
	cases := map[string]string{
		"no maps": `maps: []`,
		"no roads": `
maps:
  - {id: m, name: M, lootTypes: [{name: a, value: 1}], roads: []}`,
		"no loot": `
maps:
  - {id: m, name: M, roads: [{x0: 0, y0: 0, x1: 1}]}`,
		"both ends": `
maps:
  - {id: m, name: M, lootTypes: [{name: a, value: 1}], roads: [{x0: 0, y0: 0, x1: 1, y1: 1}]}`,
		"duplicate office": `
maps:
  - id: m
    name: M
    lootTypes: [{name: a, value: 1}]
    roads: [{x0: 0, y0: 0, x1: 1}]
    offices: [{id: o, x: 0, y: 0}, {id: o, x: 1, y: 0}]`,
		"bad period": `
lootGeneratorConfig: {period: 0, probability: 0.5}
maps:
  - {id: m, name: M, lootTypes: [{name: a, value: 1}], roads: [{x0: 0, y0: 0, x1: 1}]}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseGame([]byte(body))
			assert.Error(t, err)
		})
	}
}

func TestParseGame_DuplicateOfficeIsDuplicateID(t *testing.T) {
	_, err := ParseGame([]byte(`
maps:
  - id: m
    name: M
    lootTypes: [{name: a, value: 1}]
    roads: [{x0: 0, y0: 0, x1: 1}]
    offices: [{id: o, x: 0, y: 0}, {id: o, x: 1, y: 0}]
`))
	assert.ErrorIs(t, err, world.ErrDuplicateID)
}

func TestLoadGame_JSONSchema(t *testing.T) {
	good := `{
  "maps": [{
    "id": "m", "name": "M",
    "lootTypes": [{"name": "a", "value": 1}],
    "roads": [{"x0": 0, "y0": 0, "x1": 4}, {"x0": 4, "y0": 0, "y1": 4}]
  }]
}`
	g, err := LoadGame(writeFile(t, "maps.json", good))
	require.NoError(t, err)
	assert.Equal(t, 2, g.Maps[0].Network().Len())

	bad := `{"maps": [{"id": "m", "name": "M", "lootTypes": [{"name": "a", "value": 1}], "roads": [{"x0": 0, "y0": 0}]}]}`
	_, err = LoadGame(writeFile(t, "bad.json", bad))
	assert.ErrorContains(t, err, "validate game data")

	_, err = LoadGame(writeFile(t, "broken.json", `{"maps": [`))
	assert.Error(t, err)
}

func TestLoadGame_MissingFile(t *testing.T) {
	_, err := LoadGame(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadGame_ShippedData(t *testing.T) {
	g, err := LoadGame(filepath.Join("..", "..", "data", "maps.yaml"))
	require.NoError(t, err)
	require.Len(t, g.Maps, 2)
	assert.Equal(t, 4.0, g.Maps[0].DogSpeed)
	assert.Equal(t, 3.0, g.Maps[1].DogSpeed)
	assert.Equal(t, 5, g.Maps[1].BagCapacity)
	assert.Len(t, g.Maps[1].Offices(), 2)
}
