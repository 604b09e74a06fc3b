package maps

import (
	"embed"
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"sync"
	"unicode/utf8"
)

//go:embed data/*.json
var mapFiles embed.FS

var (
	registryMu sync.RWMutex
	// registry holds all loaded maps, guarded by registryMu.
	registry = make(map[string]*Map)
)

// LoadAll loads all embedded maps.
func LoadAll() error {
	entries, err := mapFiles.ReadDir("data")
	if err != nil {
		return fmt.Errorf("failed to read map directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		mapData, err := Load(entry.Name())
		if err != nil {
			return fmt.Errorf("failed to load map %s: %w", entry.Name(), err)
		}

		Register(mapData)
	}

	return nil
}

// Load loads a single map by filename.
func Load(filename string) (*Map, error) {
	data, err := mapFiles.ReadFile(path.Join("data", filename))
	if err != nil {
		return nil, fmt.Errorf("failed to read map file: %w", err)
	}
	return LoadFromJSON(data)
}

// Get retrieves a map from the registry by ID.
func Get(id string) *Map {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return registry[id]
}

// List returns all map IDs and names, sorted by ID.
func List() []MapInfo {
	registryMu.RLock()
	defer registryMu.RUnlock()

	infos := make([]MapInfo, 0, len(registry))
	for _, m := range registry {
		infos = append(infos, MapInfo{
			ID:          m.ID,
			Name:        m.Name,
			Width:       m.Width,
			Height:      m.Height,
			TileCount:   m.TileCount(),
			RegionCount: len(m.Regions),
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos
}

// MapInfo contains basic map information for listing.
type MapInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	TileCount   int    `json:"tile_count"`
	RegionCount int    `json:"region_count"`
}

// validate checks a raw map for errors.
func validate(raw *RawMap) error {
	if raw.ID == "" {
		return fmt.Errorf("map ID is required")
	}
	if raw.Name == "" {
		return fmt.Errorf("map name is required")
	}
	if raw.Width <= 0 || raw.Height <= 0 {
		return fmt.Errorf("invalid dimensions: %dx%d", raw.Width, raw.Height)
	}
	if len(raw.Rows) != raw.Height {
		return fmt.Errorf("grid height mismatch: expected %d, got %d", raw.Height, len(raw.Rows))
	}

	players, enemies := 0, 0
	for y, row := range raw.Rows {
		if n := utf8.RuneCountInString(row); n != raw.Width {
			return fmt.Errorf("row %d width mismatch: expected %d, got %d", y, raw.Width, n)
		}
		for x, r := range []rune(row) {
			kind, err := ParseCell(r)
			if err != nil {
				return fmt.Errorf("cell (%d,%d): %w", x, y, err)
			}
			switch kind {
			case CellPlayerZone:
				players++
			case CellEnemyZone:
				enemies++
			}
		}
	}
	if players == 0 || enemies == 0 {
		return fmt.Errorf("map needs both deploy zones: %d player cells, %d enemy cells", players, enemies)
	}

	if len(raw.Elevation) > 0 {
		if len(raw.Elevation) != raw.Height {
			return fmt.Errorf("elevation height mismatch: expected %d, got %d", raw.Height, len(raw.Elevation))
		}
		for y, row := range raw.Elevation {
			if len(row) != raw.Width {
				return fmt.Errorf("elevation row %d width mismatch: expected %d, got %d", y, raw.Width, len(row))
			}
		}
	}
	return nil
}

// LoadFromJSON loads a map from JSON bytes (for custom/uploaded maps).
func LoadFromJSON(data []byte) (*Map, error) {
	var raw RawMap
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse map JSON: %w", err)
	}

	if err := validate(&raw); err != nil {
		return nil, fmt.Errorf("invalid map: %w", err)
	}

	return Process(&raw), nil
}

// Register adds a map to the registry.
func Register(m *Map) {
	if m != nil && m.ID != "" {
		registryMu.Lock()
		registry[m.ID] = m
		registryMu.Unlock()
	}
}
