package tmx

import (
	"encoding/json"
	"fmt"
)

// WorldMap is one explicit entry of a .world manifest.
type WorldMap struct {
	FileName string  `json:"fileName"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
}

// WorldPattern is a regexp-driven entry. Patterns are parsed so they can be
// reported, but never expanded.
type WorldPattern struct {
	RegExp      string  `json:"regexp"`
	MultiplierX float64 `json:"multiplierX"`
	MultiplierY float64 `json:"multiplierY"`
	OffsetX     float64 `json:"offsetX"`
	OffsetY     float64 `json:"offsetY"`
}

// World is a parsed .world manifest.
type World struct {
	Type                 string         `json:"type"`
	Maps                 []WorldMap     `json:"maps"`
	Patterns             []WorldPattern `json:"patterns"`
	OnlyShowAdjacentMaps bool           `json:"onlyShowAdjacentMaps"`
}

// ParseWorld parses .world JSON.
func ParseWorld(data []byte) (*World, error) {
	var w World
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("tmx: parse world: %w", err)
	}
	return &w, nil
}
