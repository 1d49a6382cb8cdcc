package storage

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

const (
	MagicHeader string = `DGRS` // 4 байта
	Version1    uint16 = 1

	// MaxPayloadLen - предел тела записи. Чанк с сущностями занимает
	// десятки килобайт, всё крупнее считается порчей.
	MaxPayloadLen = 16 << 20
)

// RecordKind tags the payload that follows a RecordHeader.
type RecordKind uint8

const (
	KindChunk RecordKind = iota + 1
	KindEntity
	KindMeta
)

func (k RecordKind) String() string {
	switch k {
	case KindChunk:
		return "chunk"
	case KindEntity:
		return "entity"
	case KindMeta:
		return "meta"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// RecordHeader - точное представление заголовка записи в памяти.
// binary.Write пишет его целиком: тут только массивы и числа.
type RecordHeader struct {
	Magic      [4]byte    // 4 байта
	Version    uint16     // 2 байта
	Kind       RecordKind // 1 байт
	Reserved   uint8      // 1 байт
	PayloadLen uint32     // 4 байта
}

// writeRecord пишет заголовок и msgpack-тело.
func writeRecord(w io.Writer, kind RecordKind, v any) error {
	payload, err := msgpack.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s payload: %w", kind, err)
	}
	if len(payload) > MaxPayloadLen {
		return fmt.Errorf("%s payload too long: %d", kind, len(payload))
	}

	header := RecordHeader{
		Version:    Version1,
		Kind:       kind,
		PayloadLen: uint32(len(payload)),
	}
	copy(header.Magic[:], MagicHeader) // Копируем строку в массив [4]byte

	if err := binary.Write(w, binary.LittleEndian, &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("failed to write payload: %w", err)
	}
	return nil
}

// encodeRecord is writeRecord into a fresh buffer, for key-value backends.
func encodeRecord(kind RecordKind, v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeRecord(&buf, kind, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
