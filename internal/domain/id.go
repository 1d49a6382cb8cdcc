package domain

import (
	"fmt"
	"strconv"
)

// EntityID - 64-битный транзиентный идентификатор сущности.
//
// Формат битов (от старших к младшим):
//
//	[ reserved (8) | Kind (8) | Generation (16) | Index (32) ]
//
// EntityID живёт только в памяти процесса и никогда не попадает в файлы
// сохранений: для этого есть StableID.
type EntityID uint64

// NilEntityID - нулевой идентификатор, аналог nil.
const NilEntityID EntityID = 0

const (
	bitsIndex = 32
	bitsGen   = 16
	bitsKind  = 8

	shiftGen  = bitsIndex
	shiftKind = bitsIndex + bitsGen

	maskIndex = (1 << bitsIndex) - 1
	maskGen   = (1 << bitsGen) - 1
	maskKind  = (1 << bitsKind) - 1
)

// PackEntityID собирает EntityID из составных частей.
func PackEntityID(kind EntityKind, gen uint16, index uint32) EntityID {
	return EntityID(
		(uint64(kind)&maskKind)<<shiftKind |
			(uint64(gen)&maskGen)<<shiftGen |
			uint64(index),
	)
}

// Index возвращает индекс слота в реестре.
func (id EntityID) Index() uint32 {
	return uint32(id & maskIndex)
}

// Generation возвращает поколение слота (защита от устаревших ссылок).
func (id EntityID) Generation() uint16 {
	return uint16((id >> shiftGen) & maskGen)
}

// Kind возвращает тип сущности.
func (id EntityID) Kind() EntityKind {
	return EntityKind((id >> shiftKind) & maskKind)
}

func (id EntityID) IsNil() bool {
	return id == NilEntityID
}

// String для логов.
func (id EntityID) String() string {
	if id.IsNil() {
		return "<nil>"
	}
	return fmt.Sprintf("[%s gen=%d idx=%d]", id.Kind(), id.Generation(), id.Index())
}

// MarshalJSON сериализует ID в строку, так как JS теряет точность для больших uint64.
func (id EntityID) MarshalJSON() ([]byte, error) {
	return []byte(`"` + strconv.FormatUint(uint64(id), 10) + `"`), nil
}

// StableID is the persistence-surviving identifier handed out by the save
// allocator. Zero means "never persisted".
type StableID uint64

func (id StableID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}
