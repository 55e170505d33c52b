package format

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/Beastly713/ssss/pkg/ssss"
)

// Extension is the file extension of a sealed part.
const Extension = ".ssss"

// Standard Markers used to delineate sections in the text-friendly format
const (
	// MagicHeader is the user-friendly introduction found at the top of the file
	MagicHeader = `# THIS FILE IS A SEALED PART.
# IT IS ONE OF %d PARTS THAT EACH CONTAIN PART OF AN ORIGINAL FILE
# AND ONE SHARE OF THE KEY THAT PROTECTS IT.
# THIS IS PART NUMBER %d.
# TO RESTORE THE ORIGINAL FILE YOU MUST FIND %d OTHER PART(S)
# AND RUN: ssss unseal <directory>
`
	// HeaderMarker indicates the start of the JSON metadata
	HeaderMarker = "-- HEADER --"

	// BodyMarker indicates the start of the encrypted/sharded binary content
	BodyMarker = "-- BODY --"
)

var ErrInvalidHeader = errors.New("invalid header")

// Header contains all the metadata required to unseal a group of parts.
type Header struct {
	// ID names the group of parts produced by one seal. It is also the
	// token of the key share and the salt of the payload key.
	ID uuid.UUID `json:"id"`

	// OriginalFilename is the base name of the file before sealing
	OriginalFilename string `json:"originalFilename"`

	// Timestamp is the unix timestamp when the seal occurred.
	Timestamp int64 `json:"timestamp"`

	// Index is the part index (1-based); the body holds Reed-Solomon
	// shard Index-1.
	Index int `json:"index"`

	// Total is the total number of parts created
	Total int `json:"total"`

	// Threshold is the number of parts required to recover the file
	Threshold int `json:"threshold"`

	// PayloadSize is the length of the encrypted payload before sharding.
	PayloadSize int `json:"payloadSize"`

	// KeyShare is this part's share of the master secret.
	KeyShare string `json:"keyShare"`
}

// Validate checks if the header contains sane values.
func (h *Header) Validate() error {
	if h.ID == uuid.Nil {
		return fmt.Errorf("%w: missing id", ErrInvalidHeader)
	}
	if h.Index < 1 || h.Index > h.Total {
		return fmt.Errorf("%w: index %d for total %d", ErrInvalidHeader, h.Index, h.Total)
	}
	if h.Threshold < 1 || h.Threshold > h.Total {
		return fmt.Errorf("%w: threshold %d for total %d", ErrInvalidHeader, h.Threshold, h.Total)
	}
	if h.PayloadSize < 1 {
		return fmt.Errorf("%w: payload size %d", ErrInvalidHeader, h.PayloadSize)
	}
	if h.OriginalFilename == "" {
		return fmt.Errorf("%w: missing original filename", ErrInvalidHeader)
	}
	if filepath.Base(h.OriginalFilename) != h.OriginalFilename || h.OriginalFilename == ".." {
		return fmt.Errorf("%w: original filename %q is not a plain name", ErrInvalidHeader, h.OriginalFilename)
	}
	if h.KeyShare == "" {
		return fmt.Errorf("%w: missing key share", ErrInvalidHeader)
	}

	share, err := ssss.ParseShare(h.KeyShare)
	if err != nil {
		return fmt.Errorf("%w: key share: %w", ErrInvalidHeader, err)
	}
	if share.Index != h.Index {
		return fmt.Errorf("%w: key share index %d does not match part %d", ErrInvalidHeader, share.Index, h.Index)
	}
	if share.Token != h.ID.String() {
		return fmt.Errorf("%w: key share belongs to group %q", ErrInvalidHeader, share.Token)
	}
	return nil
}

// FileName returns the conventional name of part index of total for the
// original file name, e.g. diary_1_of_5.ssss.
func FileName(original string, index, total int) string {
	ext := filepath.Ext(original)
	return fmt.Sprintf("%s_%d_of_%d%s", original[:len(original)-len(ext)], index, total, Extension)
}
