package domain

import (
	"fmt"
)

// Glyph представляет упакованное представление цветного символа.
// Использует 32 бита (uint32) для хранения в формате:
//
//	[0:8] - символ (8 бит = 1 байт) - маска 0xFF
//	[8:32] - RGB-цвет (24 бита = 3 байта) - маска 0xFFFFFF
type Glyph uint32

const (
	bitsChar  = 8
	bitsColor = 24

	shiftColor = bitsChar

	maskChar  = (1 << bitsChar) - 1  // 0xFF
	maskColor = (1 << bitsColor) - 1 // 0xFFFFFF
)

// MakeGlyph создает новый Glyph из RGB-цвета (0xRRGGBB) и символа.
func MakeGlyph(colorRGB uint32, char byte) Glyph {
	return Glyph((colorRGB&maskColor)<<shiftColor | (uint32(char) & maskChar))
}

// Color извлекает 24-битный RGB-цвет из Glyph.
func (g Glyph) Color() uint32 {
	return uint32(g>>shiftColor) & maskColor
}

// Char извлекает символ из Glyph.
func (g Glyph) Char() byte {
	return byte(g & maskChar)
}

// HexColor возвращает строковое HEX-представление цвета (например, "#00FF00").
func (g Glyph) HexColor() string {
	return fmt.Sprintf("#%06X", g.Color())
}

// String реализует fmt.Stringer: "Glyph{char='#', color=#8A8A8A}".
func (g Glyph) String() string {
	char := g.Char()
	charStr := string([]byte{char})
	if char < 32 || char > 126 {
		charStr = fmt.Sprintf("\\x%02X", char)
	}
	return fmt.Sprintf("Glyph{char='%s', color=%s}", charStr, g.HexColor())
}

const groundColor = 0x5C4A36

var materialColors = [materialCount]uint32{
	MaterialStone: 0x8A8A8A,
	MaterialDirt:  0x8B5A2B,
	MaterialClay:  0xB5651D,
	MaterialWood:  0xA0522D,
}

// Glyph is how the terrain is drawn. Openings in constructed walls take
// precedence over the wall shape.
func (t TileType) Glyph() Glyph {
	color := uint32(groundColor)
	if t.Kind != TileGround && t.Material < materialCount {
		color = materialColors[t.Material]
	}

	switch t.Kind {
	case TileWall:
		return MakeGlyph(color, '#')
	case TileConstructedWall:
		switch t.Feature {
		case FeatureDoorway:
			return MakeGlyph(color, '+')
		case FeatureWindow:
			return MakeGlyph(color, 'o')
		}
		switch t.Shape {
		case ShapeBrick:
			return MakeGlyph(color, '=')
		case ShapePalisade:
			return MakeGlyph(color, '|')
		}
		return MakeGlyph(color, '#')
	}
	return MakeGlyph(color, '.')
}
