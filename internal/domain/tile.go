package domain

// TileKind is the tag of the TileType union.
type TileKind uint8

const (
	TileGround TileKind = iota
	TileWall
	TileConstructedWall
)

// Material of natural and constructed walls.
type Material uint8

const (
	MaterialStone Material = iota
	MaterialDirt
	MaterialClay
	MaterialWood
	materialCount
)

// WallShape of constructed walls.
type WallShape uint8

const (
	ShapeSolid WallShape = iota
	ShapeBrick
	ShapePalisade
)

// WallFeature is an optional opening in a constructed wall.
type WallFeature uint8

const (
	FeatureNone WallFeature = iota
	FeatureWindow
	FeatureDoorway
)

// TileType describes terrain. Material, Shape and Feature are only meaningful
// for the kinds that use them: Ground ignores all three, Wall only uses Material.
type TileType struct {
	Kind     TileKind    `json:"kind" msgpack:"k"`
	Material Material    `json:"material,omitempty" msgpack:"m,omitempty"`
	Shape    WallShape   `json:"shape,omitempty" msgpack:"s,omitempty"`
	Feature  WallFeature `json:"feature,omitempty" msgpack:"f,omitempty"`
}

func Ground() TileType { return TileType{Kind: TileGround} }
func Wall(m Material) TileType { return TileType{Kind: TileWall, Material: m} }
func Constructed(m Material, s WallShape, f WallFeature) TileType {
	return TileType{Kind: TileConstructedWall, Material: m, Shape: s, Feature: f}
}

// Collides reports whether creatures can not stand on the tile.
func (t TileType) Collides() bool {
	switch t.Kind {
	case TileGround:
		return false
	case TileConstructedWall:
		return t.Feature != FeatureDoorway
	default:
		return true
	}
}

// Opaque reports whether the tile blocks line of sight.
func (t TileType) Opaque() bool {
	switch t.Kind {
	case TileGround:
		return false
	case TileConstructedWall:
		return t.Feature == FeatureNone
	default:
		return true
	}
}

// IsWall is true for both natural and constructed walls, openings included.
func (t TileType) IsWall() bool {
	return t.Kind != TileGround
}

// Requirement is what has to be hauled to a site to construct a wall.
type Requirement struct {
	Item  ItemKind `json:"item"`
	Count int      `json:"count"`
}

var materialItems = [materialCount]ItemKind{
	MaterialStone: ItemStone,
	MaterialDirt:  ItemClod,
	MaterialClay:  ItemBrick,
	MaterialWood:  ItemLog,
}

// BuildRequirement returns the material cost of a constructed wall.
// Natural terrain has no requirement.
func (t TileType) BuildRequirement() (Requirement, bool) {
	if t.Kind != TileConstructedWall || t.Material >= materialCount {
		return Requirement{}, false
	}
	count := 2
	switch t.Shape {
	case ShapeBrick:
		count = 3
	case ShapePalisade:
		count = 1
	}
	if t.Feature != FeatureNone {
		count--
	}
	return Requirement{Item: materialItems[t.Material], Count: count}, true
}

func (m Material) String() string {
	switch m {
	case MaterialStone:
		return "stone"
	case MaterialDirt:
		return "dirt"
	case MaterialClay:
		return "clay"
	case MaterialWood:
		return "wood"
	}
	return "unknown"
}

// TileVariant is a rendering hint: bit i is set when the neighbour in
// Neighbours4[i] connects to this tile.
type TileVariant uint8

const (
	ConnectN TileVariant = 1 << iota
	ConnectE
	ConnectS
	ConnectW
)

// Tile is one terrain cell. Seed only drives cosmetic variation.
type Tile struct {
	Seed    uint16      `json:"seed" msgpack:"r"`
	Type    TileType    `json:"type" msgpack:"t"`
	Variant TileVariant `json:"variant" msgpack:"v"`
}

// Connects reports whether two tiles visually join: walls join walls,
// ground never joins anything.
func Connects(a, b TileType) bool {
	return a.IsWall() && b.IsWall()
}

// ComputeVariant derives the variant of center from its 4-neighbourhood.
// present[i] is false for neighbours outside the loaded window.
func ComputeVariant(center TileType, neighbours [4]TileType, present [4]bool) TileVariant {
	var v TileVariant
	for i := range neighbours {
		if present[i] && Connects(center, neighbours[i]) {
			v |= 1 << i
		}
	}
	return v
}
