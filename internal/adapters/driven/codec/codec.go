// Package codec provides ready-made serialize/deserialize pairs for use
// with the storage adapters. Each pair is a matched inverse; mixing the
// serializer of one pair with the deserializer of another is a caller
// error the store will not detect.
package codec

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"fmt"

	"github.com/klauspost/compress/zstd"

	"github.com/persistdb/kvlite/internal/core/domain"
)

// JSON returns a codec pair that stores values as JSON. Deserialized
// values follow encoding/json conventions: objects come back as
// map[string]any and numbers as float64.
func JSON() (domain.SerializeFunc, domain.DeserializeFunc) {
	serialize := func(value any) ([]byte, error) {
		return json.Marshal(value)
	}
	deserialize := func(data []byte) (any, error) {
		var value any
		if err := json.Unmarshal(data, &value); err != nil {
			return nil, err
		}
		return value, nil
	}
	return serialize, deserialize
}

// ZstdJSON returns a codec pair that stores values as zstd-compressed
// JSON. Worth it for large repetitive values (cached API responses,
// document bodies); for small scalars the frame overhead dominates.
func ZstdJSON() (domain.SerializeFunc, domain.DeserializeFunc) {
	serialize := func(value any) ([]byte, error) {
		data, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		return zstdCompress(data)
	}
	deserialize := func(data []byte) (any, error) {
		decompressed, err := zstdDecompress(data)
		if err != nil {
			return nil, err
		}
		var value any
		if err := json.Unmarshal(decompressed, &value); err != nil {
			return nil, err
		}
		return value, nil
	}
	return serialize, deserialize
}

// Gob returns a codec pair that stores values with encoding/gob,
// preserving Go-native types that JSON flattens. Callers storing their
// own struct types must gob.Register them first.
func Gob() (domain.SerializeFunc, domain.DeserializeFunc) {
	serialize := func(value any) ([]byte, error) {
		var buf bytes.Buffer
		if err := gob.NewEncoder(&buf).Encode(&value); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	deserialize := func(data []byte) (any, error) {
		var value any
		if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&value); err != nil {
			return nil, err
		}
		return value, nil
	}
	return serialize, deserialize
}

// ByName resolves a codec pair from its configuration name. The name
// "none" (or "") selects no codec: both returned functions are nil and
// values are stored as native scalars.
func ByName(name string) (domain.SerializeFunc, domain.DeserializeFunc, error) {
	switch name {
	case "", "none":
		return nil, nil, nil
	case "json":
		s, d := JSON()
		return s, d, nil
	case "zstd":
		s, d := ZstdJSON()
		return s, d, nil
	case "gob":
		s, d := Gob()
		return s, d, nil
	default:
		return nil, nil, fmt.Errorf("%w: unknown codec %q", domain.ErrInvalidInput, name)
	}
}

func zstdCompress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := zstd.NewWriter(&buf)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func zstdDecompress(data []byte) ([]byte, error) {
	r, err := zstd.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
