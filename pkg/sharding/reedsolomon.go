package sharding

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/klauspost/reedsolomon"
)

// MaxShards is the largest total the encoder supports.
const MaxShards = 256

var (
	ErrNotEnoughShards = errors.New("not enough shards to reconstruct")
	ErrCorruptShards   = errors.New("shards failed parity verification")
)

// Shard represents a single fragment of the split payload.
type Shard struct {
	Index int    // 0-based index
	Data  []byte // The actual binary content (encrypted part)
}

// Splitter handles erasure coding (Reed-Solomon). Any Threshold of the
// Total shards restore the payload.
type Splitter struct {
	Total     int
	Threshold int
}

func NewSplitter(total, threshold int) (*Splitter, error) {
	if threshold < 1 {
		return nil, fmt.Errorf("threshold must be at least 1, got %d", threshold)
	}
	if threshold > total {
		return nil, fmt.Errorf("threshold %d cannot exceed total shards %d", threshold, total)
	}
	if total > MaxShards {
		return nil, fmt.Errorf("total shards %d exceeds %d", total, MaxShards)
	}
	return &Splitter{
		Total:     total,
		Threshold: threshold,
	}, nil
}

func (s *Splitter) encoder() (reedsolomon.Encoder, error) {
	return reedsolomon.New(s.Threshold, s.Total-s.Threshold)
}

// Split cuts data into Threshold data shards, zero-padding the last one,
// and appends Total-Threshold parity shards. The caller must remember
// len(data) to undo the padding in Join.
func (s *Splitter) Split(data []byte) ([]Shard, error) {
	if len(data) == 0 {
		return nil, errors.New("cannot shard empty data")
	}

	enc, err := s.encoder()
	if err != nil {
		return nil, err
	}

	shardsBytes, err := enc.Split(data)
	if err != nil {
		return nil, err
	}

	if err := enc.Encode(shardsBytes); err != nil {
		return nil, err
	}

	result := make([]Shard, s.Total)
	for i, data := range shardsBytes {
		result[i] = Shard{Index: i, Data: data}
	}

	return result, nil
}

// Join rebuilds the payload of originalSize bytes from the available shards,
// keyed by 0-based index.
func (s *Splitter) Join(shards map[int][]byte, originalSize int) ([]byte, error) {
	enc, err := s.encoder()
	if err != nil {
		return nil, err
	}

	reconstructShards := make([][]byte, s.Total)
	validCount := 0
	for i := 0; i < s.Total; i++ {
		if data, ok := shards[i]; ok && len(data) > 0 {
			reconstructShards[i] = data
			validCount++
		}
	}

	if validCount < s.Threshold {
		return nil, fmt.Errorf("%w: have %d, need %d", ErrNotEnoughShards, validCount, s.Threshold)
	}

	if err := enc.Reconstruct(reconstructShards); err != nil {
		return nil, fmt.Errorf("reconstruction failed: %w", err)
	}

	// Only meaningful when more than Threshold shards were supplied.
	if ok, err := enc.Verify(reconstructShards); err != nil || !ok {
		return nil, ErrCorruptShards
	}

	var buf bytes.Buffer
	if err := enc.Join(&buf, reconstructShards, originalSize); err != nil {
		return nil, fmt.Errorf("failed to join shards: %w", err)
	}

	return buf.Bytes(), nil
}
