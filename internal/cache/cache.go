// Package cache provides the embeddings cache keyed by content hash, so
// re-ingesting unchanged text skips the embeddings API.
package cache

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
)

// ErrCacheMiss is returned when an entry is not found in the cache.
var ErrCacheMiss = errors.New("cache miss")

// entryMagic marks the binary value format ("EMB1").
const entryMagic = 0x454D4231

// EmbeddingsCache stores embedding vectors keyed by content hash and model.
type EmbeddingsCache interface {
	// Get returns the cached vector, or ErrCacheMiss.
	Get(ctx context.Context, model, contentHash string) ([]float32, error)

	// Set stores a vector.
	Set(ctx context.Context, model, contentHash string, vector []float32) error
}

// ContentHash returns the hex SHA-256 of the text, the cache key component
// shared with artifact provenance.
func ContentHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// cacheKey builds the full key for a model and content hash.
func cacheKey(model, contentHash string) string {
	return "quill:emb:" + model + ":" + contentHash
}

// entryHeader is the binary value header.
type entryHeader struct {
	Magic      uint32
	Dimensions uint32
}

// encodeVector serializes a vector into the binary value format.
func encodeVector(vector []float32) ([]byte, error) {
	var buf bytes.Buffer
	header := entryHeader{
		Magic:      entryMagic,
		Dimensions: uint32(len(vector)),
	}
	if err := binary.Write(&buf, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("failed to write header; %w", err)
	}
	if err := binary.Write(&buf, binary.LittleEndian, vector); err != nil {
		return nil, fmt.Errorf("failed to write vector; %w", err)
	}
	return buf.Bytes(), nil
}

// decodeVector parses a binary value back into a vector.
func decodeVector(data []byte) ([]float32, error) {
	r := bytes.NewReader(data)

	var header entryHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("failed to read header; %w", err)
	}
	if header.Magic != entryMagic {
		return nil, fmt.Errorf("invalid cache entry magic")
	}
	if int(header.Dimensions)*4 != r.Len() {
		return nil, fmt.Errorf("cache entry truncated: want %d dimensions, have %d bytes", header.Dimensions, r.Len())
	}

	vector := make([]float32, header.Dimensions)
	if err := binary.Read(r, binary.LittleEndian, vector); err != nil {
		return nil, fmt.Errorf("failed to read vector; %w", err)
	}
	return vector, nil
}
