package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMakeGlyph(t *testing.T) {
	tests := []struct {
		name  string
		color uint32
		char  byte
		want  Glyph
	}{
		{"orange A", 0xFFA500, 'A', Glyph(0xFFA50041)},
		{"black space", 0x000000, ' ', Glyph(0x00000020)},
		{"color truncation", 0x12345678, 'x', Glyph(0x34567878)},
		{"max char", 0x404040, 0xFF, Glyph(0x404040FF)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := MakeGlyph(tt.color, tt.char)
			assert.Equal(t, tt.want, g)
			assert.Equal(t, tt.char, g.Char())
			assert.Equal(t, tt.color&0xFFFFFF, g.Color())
		})
	}
}

func TestGlyph_String(t *testing.T) {
	assert.Equal(t, "Glyph{char='A', color=#FFA500}", MakeGlyph(0xFFA500, 'A').String())
	assert.Equal(t, "Glyph{char='\\x0A', color=#FFFFFF}", MakeGlyph(0xFFFFFF, '\n').String())
	assert.Equal(t, "#00FF00", MakeGlyph(0x00FF00, '@').HexColor())
}

func TestTileType_Glyph(t *testing.T) {
	tests := []struct {
		name string
		tile TileType
		char byte
	}{
		{"ground", Ground(), '.'},
		{"natural wall", Wall(MaterialDirt), '#'},
		{"solid", Constructed(MaterialStone, ShapeSolid, FeatureNone), '#'},
		{"brick", Constructed(MaterialClay, ShapeBrick, FeatureNone), '='},
		{"palisade", Constructed(MaterialWood, ShapePalisade, FeatureNone), '|'},
		{"doorway", Constructed(MaterialClay, ShapeBrick, FeatureDoorway), '+'},
		{"window", Constructed(MaterialWood, ShapePalisade, FeatureWindow), 'o'},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.char, tt.tile.Glyph().Char())
		})
	}

	assert.Equal(t, uint32(0x8B5A2B), Wall(MaterialDirt).Glyph().Color())
	assert.NotEqual(t, Wall(MaterialStone).Glyph().Color(), Wall(MaterialWood).Glyph().Color())
}
