package storage

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

// readRecord читает заголовок, проверяет его и декодирует тело в v.
func readRecord(r io.Reader, kind RecordKind, v any) error {
	// 1. Читаем заголовок целиком
	var header RecordHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return fmt.Errorf("%w: failed to read header: %v", ErrCorrupt, err)
	}

	// Валидация
	if string(header.Magic[:]) != MagicHeader {
		return fmt.Errorf("%w: invalid magic %q", ErrCorrupt, header.Magic[:])
	}
	if header.Version != Version1 {
		return fmt.Errorf("%w: unsupported version: %d (expected %d)", ErrCorrupt, header.Version, Version1)
	}
	if header.Kind != kind {
		return fmt.Errorf("%w: expected %s record, got %s", ErrCorrupt, kind, header.Kind)
	}

	if header.PayloadLen > MaxPayloadLen {
		return fmt.Errorf("%w: %s payload length %d exceeds %d", ErrCorrupt, kind, header.PayloadLen, MaxPayloadLen)
	}

	// 2. Читаем тело
	payload := make([]byte, header.PayloadLen)
	if _, err := io.ReadFull(r, payload); err != nil {
		return fmt.Errorf("%w: failed to read %s payload: %v", ErrCorrupt, kind, err)
	}
	if err := msgpack.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("%w: failed to decode %s payload: %v", ErrCorrupt, kind, err)
	}
	return nil
}

func decodeRecord(data []byte, kind RecordKind, v any) error {
	return readRecord(bytes.NewReader(data), kind, v)
}
