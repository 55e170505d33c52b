package format

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testID = uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

func keyShare(index int) string {
	return testID.String() + "-" + string(rune('0'+index)) + "-" + strings.Repeat("ab", 32)
}

func validHeader() *Header {
	return &Header{
		ID:               testID,
		OriginalFilename: "secret_plans.txt",
		Timestamp:        1620000000,
		Index:            1,
		Total:            5,
		Threshold:        3,
		PayloadSize:      42,
		KeyShare:         keyShare(1),
	}
}

func TestRoundTrip(t *testing.T) {
	// 1. Setup Input Data
	originalHeader := validHeader()
	originalBody := []byte("This is the encrypted content of the file.\n-- BODY --\nstill body")

	// 2. Write to a buffer (Simulating a file on disk)
	var buf bytes.Buffer
	require.NoError(t, NewWriter(&buf).Write(originalHeader, originalBody))
	assert.Contains(t, buf.String(), "THIS IS PART NUMBER 1.")
	assert.Contains(t, buf.String(), "YOU MUST FIND 2 OTHER PART(S)")

	// 3. Read back from the buffer
	reader, err := NewReader(&buf)
	require.NoError(t, err)

	// 4. Verify Header Integrity
	assert.Equal(t, originalHeader, reader.Header)

	// 5. Verify Body Integrity
	readBody, err := io.ReadAll(reader.Body)
	require.NoError(t, err)
	assert.Equal(t, originalBody, readBody)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(h *Header)
	}{
		{"nil id", func(h *Header) { h.ID = uuid.Nil }},
		{"index zero", func(h *Header) { h.Index = 0 }},
		{"index above total", func(h *Header) { h.Index = 6 }},
		{"threshold zero", func(h *Header) { h.Threshold = 0 }},
		{"threshold above total", func(h *Header) { h.Threshold = 6 }},
		{"no payload", func(h *Header) { h.PayloadSize = 0 }},
		{"no filename", func(h *Header) { h.OriginalFilename = "" }},
		{"path in filename", func(h *Header) { h.OriginalFilename = "../etc/passwd" }},
		{"dot dot filename", func(h *Header) { h.OriginalFilename = ".." }},
		{"no key share", func(h *Header) { h.KeyShare = "" }},
		{"garbage key share", func(h *Header) { h.KeyShare = "not a share" }},
		{"share index mismatch", func(h *Header) { h.KeyShare = keyShare(2) }},
		{"share from other group", func(h *Header) {
			h.KeyShare = strings.Replace(h.KeyShare, "6ba7b810", "00000000", 1)
		}},
	}

	require.NoError(t, validHeader().Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := validHeader()
			tt.mutate(h)
			assert.ErrorIs(t, h.Validate(), ErrInvalidHeader)
		})
	}
}

func TestWriteRejectsInvalidHeader(t *testing.T) {
	h := validHeader()
	h.KeyShare = ""

	var buf bytes.Buffer
	assert.Error(t, NewWriter(&buf).Write(h, []byte("body")))
	assert.Zero(t, buf.Len())
}

func TestCorruptFile(t *testing.T) {
	// A file that looks right but has broken JSON
	corruptData := `# THIS FILE IS A SEALED PART.
-- HEADER --
{ "broken_json": "missing_bracket"
-- BODY --
payload`

	_, err := NewReader(bytes.NewBufferString(corruptData))
	assert.Error(t, err)
}

func TestMissingMarkers(t *testing.T) {
	_, err := NewReader(strings.NewReader(strings.Repeat("# comment\n", 60) + "-- HEADER --\n"))
	assert.Error(t, err)

	_, err = NewReader(strings.NewReader("-- HEADER --\n{}\n"))
	assert.Error(t, err)
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "diary_1_of_5.ssss", FileName("diary.txt", 1, 5))
	assert.Equal(t, "archive.tar_3_of_4.ssss", FileName("archive.tar.gz", 3, 4))
	assert.Equal(t, "README_2_of_2.ssss", FileName("README", 2, 2))
}
