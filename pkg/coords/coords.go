// Package coords maps user-facing block coordinates onto the server's absolute
// coordinate scheme and keeps them inside the world bounds the server accepts.
package coords

import (
	"fmt"
	"strings"

	"github.com/sessamekesh/blockbridge/pkg/errors"
)

const (
	MaxHorizontal = 30_000_000
	MinVertical   = -64
	MaxVertical   = 320

	// User-facing y=0 is the surface of a default flat world, which sits at y=-60.
	FlatWorldSurfaceOffset = 60
)

// Spawn is already expressed in absolute server coordinates.
var Spawn = Position{X: 0, Y: -60, Z: 0}

type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

type WorldScheme uint8

const (
	WorldScheme_Flat WorldScheme = iota
	WorldScheme_Absolute

	WorldScheme_NONE
)

func (s WorldScheme) String() string {
	switch s {
	case WorldScheme_Flat:
		return "flat"
	case WorldScheme_Absolute:
		return "absolute"
	}
	return "unknown"
}

func ParseWorldScheme(name string) (WorldScheme, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "flat":
		return WorldScheme_Flat, nil
	case "absolute", "default", "normal":
		return WorldScheme_Absolute, nil
	}
	return WorldScheme_NONE, fmt.Errorf("unknown world scheme %q: %w", name, &errors.InvalidEnumValue{
		EnumName: "WorldScheme",
		IntValue: uint8(WorldScheme_NONE),
	})
}

func AdjustVerticalForWorldScheme(y float64) float64 {
	return y - FlatWorldSurfaceOffset
}

func (s WorldScheme) AdjustVertical(y float64) float64 {
	if s == WorldScheme_Flat {
		return AdjustVerticalForWorldScheme(y)
	}
	return y
}

// ToServer converts a user-facing position to a clamped absolute one.
func (s WorldScheme) ToServer(p Position) Position {
	return Clamp(Position{
		X: p.X,
		Y: s.AdjustVertical(p.Y),
		Z: p.Z,
	})
}

func ClampHorizontal(v float64) float64 {
	return clamp(v, -MaxHorizontal, MaxHorizontal)
}

func ClampVertical(v float64) float64 {
	return clamp(v, MinVertical, MaxVertical)
}

func Clamp(p Position) Position {
	return Position{
		X: ClampHorizontal(p.X),
		Y: ClampVertical(p.Y),
		Z: ClampHorizontal(p.Z),
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
