package data

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/dogloot/server/internal/world"
)

//go:embed schema/game.schema.json
var gameSchema []byte

// Game is the static game data: every map plus the loot generator settings
// shared by all maps.
type Game struct {
	Maps            []*world.Map
	LootPeriod      time.Duration
	LootProbability float64
}

type gameFile struct {
	DefaultDogSpeed    float64     `yaml:"defaultDogSpeed"`
	DefaultBagCapacity int         `yaml:"defaultBagCapacity"`
	DogRetirementTime  float64     `yaml:"dogRetirementTime"` // seconds
	LootGenerator      lootGenFile `yaml:"lootGeneratorConfig"`
	Maps               []mapFile   `yaml:"maps"`
}

type lootGenFile struct {
	Period      float64 `yaml:"period"` // seconds
	Probability float64 `yaml:"probability"`
}

type mapFile struct {
	ID          string         `yaml:"id"`
	Name        string         `yaml:"name"`
	DogSpeed    *float64       `yaml:"dogSpeed"`
	BagCapacity *int           `yaml:"bagCapacity"`
	LootTypes   []lootTypeFile `yaml:"lootTypes"`
	Roads       []roadFile     `yaml:"roads"`
	Buildings   []buildingFile `yaml:"buildings"`
	Offices     []officeFile   `yaml:"offices"`
}

// lootTypeFile keeps only what the simulation needs; display fields such as
// file, rotation or color are ignored.
type lootTypeFile struct {
	Name  string `yaml:"name"`
	Value int64  `yaml:"value"`
}

type roadFile struct {
	X0 int  `yaml:"x0"`
	Y0 int  `yaml:"y0"`
	X1 *int `yaml:"x1"`
	Y1 *int `yaml:"y1"`
}

type buildingFile struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
	W int `yaml:"w"`
	H int `yaml:"h"`
}

type officeFile struct {
	ID      string `yaml:"id"`
	X       int    `yaml:"x"`
	Y       int    `yaml:"y"`
	OffsetX int    `yaml:"offsetX"`
	OffsetY int    `yaml:"offsetY"`
}

func defaultGameFile() gameFile {
	return gameFile{
		DefaultDogSpeed:    1,
		DefaultBagCapacity: 3,
		DogRetirementTime:  60,
		LootGenerator:      lootGenFile{Period: 5, Probability: 0.5},
	}
}

// LoadGame loads game data from a YAML or JSON file. JSON files are checked
// against the embedded schema first.
func LoadGame(path string) (*Game, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read game data %s: %w", path, err)
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		if err := validateJSON(raw); err != nil {
			return nil, fmt.Errorf("validate game data %s: %w", path, err)
		}
	}
	g, err := ParseGame(raw)
	if err != nil {
		return nil, fmt.Errorf("game data %s: %w", path, err)
	}
	return g, nil
}

func validateJSON(raw []byte) error {
	c := jsonschema.NewCompiler()
	if err := c.AddResource("game.schema.json", bytes.NewReader(gameSchema)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	sch, err := c.Compile("game.schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("parse json: %w", err)
	}
	return sch.Validate(doc)
}

// ParseGame decodes YAML (or JSON, which YAML accepts) game data and builds
// the maps.
func ParseGame(raw []byte) (*Game, error) {
	file := defaultGameFile()
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse game data: %w", err)
	}
	if len(file.Maps) == 0 {
		return nil, fmt.Errorf("no maps defined")
	}
	if file.LootGenerator.Period <= 0 {
		return nil, fmt.Errorf("loot period must be positive")
	}

	g := &Game{
		LootPeriod:      seconds(file.LootGenerator.Period),
		LootProbability: file.LootGenerator.Probability,
	}
	for _, mf := range file.Maps {
		m, err := buildMap(mf, file)
		if err != nil {
			return nil, err
		}
		g.Maps = append(g.Maps, m)
	}
	return g, nil
}

func buildMap(mf mapFile, file gameFile) (*world.Map, error) {
	roads := make([]world.Road, 0, len(mf.Roads))
	for i, rf := range mf.Roads {
		start := world.Point{X: rf.X0, Y: rf.Y0}
		switch {
		case rf.X1 != nil && rf.Y1 == nil:
			roads = append(roads, world.HorizontalRoad(start, *rf.X1))
		case rf.Y1 != nil && rf.X1 == nil:
			roads = append(roads, world.VerticalRoad(start, *rf.Y1))
		default:
			return nil, fmt.Errorf("map %s road %d: need exactly one of x1, y1", mf.ID, i)
		}
	}

	m, err := world.NewMap(world.MapID(mf.ID), mf.Name, roads)
	if err != nil {
		return nil, err
	}
	m.DogSpeed = file.DefaultDogSpeed
	if mf.DogSpeed != nil {
		m.DogSpeed = *mf.DogSpeed
	}
	m.BagCapacity = file.DefaultBagCapacity
	if mf.BagCapacity != nil {
		m.BagCapacity = *mf.BagCapacity
	}
	m.AFKThreshold = seconds(file.DogRetirementTime)

	if len(mf.LootTypes) == 0 {
		return nil, fmt.Errorf("map %s: no loot types", mf.ID)
	}
	for _, lt := range mf.LootTypes {
		m.LootTypes = append(m.LootTypes, world.LootType{Name: lt.Name, Value: lt.Value})
	}
	for _, b := range mf.Buildings {
		m.AddBuilding(world.Building{
			Pos:  world.Point{X: b.X, Y: b.Y},
			Size: world.Size{Width: b.W, Height: b.H},
		})
	}
	for _, o := range mf.Offices {
		err := m.AddOffice(world.Office{
			ID:     o.ID,
			Pos:    world.Point{X: o.X, Y: o.Y},
			Offset: world.Point{X: o.OffsetX, Y: o.OffsetY},
		})
		if err != nil {
			return nil, err
		}
	}
	return m, nil
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
