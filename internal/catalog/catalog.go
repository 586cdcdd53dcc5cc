// Package catalog loads menu items and meal history from JSON or YAML files.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"menu-recommender/internal/models"
)

// ErrNotFound is returned by Catalog.Get for unknown names.
var ErrNotFound = errors.New("food not found")

// Loader supplies the candidate menu for one recommendation.
type Loader interface {
	Load(ctx context.Context) ([]models.Food, error)
}

// FileLoader reads the catalog from disk on every call so edits to the file
// show up on the next request.
type FileLoader struct {
	Path string
}

func NewFileLoader(path string) *FileLoader {
	return &FileLoader{Path: path}
}

func (l *FileLoader) Load(ctx context.Context) ([]models.Food, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	records, err := readRecords(l.Path)
	if err != nil {
		return nil, err
	}
	return ParseFoods(records), nil
}

// LoadHistory reads a file of eaten meals, each carrying protein, carbs and
// fat. Names are optional here.
func LoadHistory(path string) ([]models.MacroVector, error) {
	records, err := readRecords(path)
	if err != nil {
		return nil, err
	}
	out := make([]models.MacroVector, 0, len(records))
	for _, r := range records {
		out = append(out, parseMacros(r))
	}
	return out, nil
}

func readRecords(path string) ([]map[string]interface{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var records []map[string]interface{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &records)
	default:
		err = json.Unmarshal(data, &records)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return records, nil
}

// ParseFoods converts loosely typed records into foods. Records without a
// name are dropped and a repeated name keeps its first occurrence.
func ParseFoods(records []map[string]interface{}) []models.Food {
	seen := make(map[string]struct{}, len(records))
	foods := make([]models.Food, 0, len(records))
	for _, r := range records {
		name := strings.TrimSpace(stringField(r["name"]))
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}

		f := models.Food{
			Name:        name,
			MacroVector: parseMacros(r),
			Allergens:   stringList(r["allergens"]),
		}
		if v, ok := number(r["calories"]); ok {
			f.Calories = &v
		}
		foods = append(foods, f)
	}
	return foods
}

func parseMacros(r map[string]interface{}) models.MacroVector {
	p, _ := number(r["protein"])
	c, _ := number(r["carbs"])
	f, _ := number(r["fat"])
	return models.MacroVector{Protein: p, Carbs: c, Fat: f}
}

// number accepts JSON/YAML numbers and numeric strings. Negative and
// non-finite values are treated as missing.
func number(v interface{}) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint64:
		f = float64(n)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func stringField(v interface{}) string {
	switch s := v.(type) {
	case string:
		return s
	case nil:
		return ""
	default:
		return fmt.Sprint(s)
	}
}

// stringList reads a list of allergens, or a single comma separated string.
func stringList(v interface{}) []string {
	var raw []string
	switch l := v.(type) {
	case []interface{}:
		for _, item := range l {
			raw = append(raw, stringField(item))
		}
	case []string:
		raw = l
	case string:
		raw = strings.Split(l, ",")
	}
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Catalog indexes foods by name, keeping load order.
type Catalog struct {
	items  []models.Food
	byName map[string]int
}

func New(items []models.Food) *Catalog {
	c := &Catalog{items: items, byName: make(map[string]int, len(items))}
	for i, it := range items {
		if _, ok := c.byName[it.Name]; !ok {
			c.byName[it.Name] = i
		}
	}
	return c
}

// Items returns the foods in load order.
func (c *Catalog) Items() []models.Food {
	return c.items
}

func (c *Catalog) Get(name string) (models.Food, error) {
	i, ok := c.byName[name]
	if !ok {
		return models.Food{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return c.items[i], nil
}

// Resolve looks up eaten meal names. Blank and unknown names are skipped.
func (c *Catalog) Resolve(names []string) []models.Food {
	var out []models.Food
	for _, n := range names {
		if f, err := c.Get(strings.TrimSpace(n)); err == nil {
			out = append(out, f)
		}
	}
	return out
}

// Names returns every food name in load order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.items))
	for i, it := range c.items {
		names[i] = it.Name
	}
	return names
}
