// Package pipeline seals a payload into parts that each carry one shard of
// the encrypted payload and one ssss share of the key.
//
// Seal: Read -> Compress -> Encrypt -> Shard, with the key derived from a
// random master secret that is split with ssss. Unseal reverses it.
package pipeline

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/Beastly713/ssss/pkg/compression"
	"github.com/Beastly713/ssss/pkg/crypto/encryptor"
	"github.com/Beastly713/ssss/pkg/crypto/secrets"
	"github.com/Beastly713/ssss/pkg/sharding"
	"github.com/Beastly713/ssss/pkg/ssss"
)

var ErrMixedGroups = errors.New("parts belong to different groups")

// Config holds the parameters for the seal operation
type Config struct {
	Total     int
	Threshold int
	Logger    *slog.Logger
}

// Part is one sealed fragment.
type Part struct {
	// Index is 1-based; the shard is Reed-Solomon shard Index-1.
	Index    int
	KeyShare string
	Data     []byte
}

// Sealed is the result of Seal.
type Sealed struct {
	GroupID     uuid.UUID
	PayloadSize int
	Parts       []Part
}

func (c Config) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}

// Seal reads input and produces conf.Total parts, any conf.Threshold of
// which restore it.
func Seal(input io.Reader, conf Config) (*Sealed, error) {
	scheme, err := ssss.New(conf.Threshold, conf.Total, ssss.WithHex(true), ssss.WithLogger(conf.logger()))
	if err != nil {
		return nil, err
	}
	splitter, err := sharding.NewSplitter(conf.Total, conf.Threshold)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize splitter: %w", err)
	}

	// 1. Read Input
	plainBytes, err := io.ReadAll(input)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}

	// 2. Compress
	compressor, err := compression.NewZstdCompressor()
	if err != nil {
		return nil, err
	}
	defer compressor.Close()

	compressedBytes, err := compressor.Compress(plainBytes)
	if err != nil {
		return nil, fmt.Errorf("compression failed: %w", err)
	}

	// 3. Master secret and its shares, tokened with the group ID
	groupID := uuid.New()

	master, err := secrets.NewSecret(secrets.MasterSize)
	if err != nil {
		return nil, err
	}
	defer master.Destroy()

	keyShares, err := scheme.Split(master.Hex(), groupID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to split key: %w", err)
	}

	// 4. Encrypt with the derived key
	key, err := encryptor.DeriveKey(master.Bytes(), groupID[:])
	if err != nil {
		return nil, err
	}
	defer clear(key)

	cipherText, err := encryptor.Encrypt(compressedBytes, key, groupID[:])
	if err != nil {
		return nil, fmt.Errorf("encryption failed: %w", err)
	}

	// 5. Shard (Reed-Solomon)
	shards, err := splitter.Split(cipherText)
	if err != nil {
		return nil, fmt.Errorf("sharding failed: %w", err)
	}

	sealed := &Sealed{
		GroupID:     groupID,
		PayloadSize: len(cipherText),
		Parts:       make([]Part, conf.Total),
	}
	for i, shard := range shards {
		sealed.Parts[i] = Part{
			Index:    shard.Index + 1,
			KeyShare: keyShares[i],
			Data:     shard.Data,
		}
	}

	conf.logger().Debug("sealed payload",
		"group", groupID, "input", len(plainBytes), "compressed", len(compressedBytes), "parts", conf.Total)

	return sealed, nil
}

// Unseal restores the payload from at least conf.Threshold parts of the
// group. payloadSize is Sealed.PayloadSize.
func Unseal(parts []Part, groupID uuid.UUID, payloadSize int, conf Config) ([]byte, error) {
	if len(parts) < conf.Threshold {
		return nil, fmt.Errorf("%w: have %d parts, need %d", sharding.ErrNotEnoughShards, len(parts), conf.Threshold)
	}

	// 1. Reconstruct the master secret
	scheme, err := ssss.New(conf.Threshold, 0, ssss.WithHex(true), ssss.WithLogger(conf.logger()))
	if err != nil {
		return nil, err
	}

	token := groupID.String()
	keyShares := make([]string, 0, len(parts))
	shardMap := make(map[int][]byte, len(parts))
	for _, part := range parts {
		share, err := ssss.ParseShare(part.KeyShare)
		if err != nil {
			return nil, fmt.Errorf("part %d: %w", part.Index, err)
		}
		if share.Token != token {
			return nil, fmt.Errorf("%w: part %d is from %q", ErrMixedGroups, part.Index, share.Token)
		}
		if _, dup := shardMap[part.Index-1]; dup {
			continue
		}
		keyShares = append(keyShares, part.KeyShare)
		shardMap[part.Index-1] = part.Data
	}

	masterHex, err := scheme.Combine(keyShares)
	if err != nil {
		return nil, fmt.Errorf("key reconstruction failed: %w", err)
	}
	master, err := secrets.FromHex(masterHex, secrets.MasterSize)
	if err != nil {
		return nil, err
	}
	defer master.Destroy()

	key, err := encryptor.DeriveKey(master.Bytes(), groupID[:])
	if err != nil {
		return nil, err
	}
	defer clear(key)

	// 2. Unshard (Reed-Solomon Join)
	splitter, err := sharding.NewSplitter(conf.Total, conf.Threshold)
	if err != nil {
		return nil, err
	}

	joinedBytes, err := splitter.Join(shardMap, payloadSize)
	if err != nil {
		return nil, fmt.Errorf("reconstruction failed: %w", err)
	}

	// 3. Decrypt
	decryptedBytes, err := encryptor.Decrypt(joinedBytes, key, groupID[:])
	if err != nil {
		return nil, fmt.Errorf("decryption failed (integrity check): %w", err)
	}

	// 4. Decompress
	compressor, err := compression.NewZstdCompressor()
	if err != nil {
		return nil, err
	}
	defer compressor.Close()

	plainBytes, err := compressor.Decompress(decryptedBytes)
	if err != nil {
		return nil, fmt.Errorf("decompression failed: %w", err)
	}

	return plainBytes, nil
}
