package format

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

const (
	maxPreambleLines = 50
	maxHeaderSize    = 64 << 10
)

// Reader is a wrapper around the file stream that separates the
// metadata header from the binary body.
type Reader struct {
	Header *Header
	Body   io.Reader
}

// NewReader parses a sealed part. It consumes the text preamble and the
// header, and returns a Reader whose Body is positioned at the start of the
// shard data.
func NewReader(r io.Reader) (*Reader, error) {
	// bufio lets us read line by line without losing the binary body.
	bufReader := bufio.NewReader(r)

	// 1. Scan for the Header Marker within the preamble
	foundHeader := false
	for i := 0; i < maxPreambleLines; i++ {
		line, err := bufReader.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("failed to read stream while looking for header: %w", err)
		}
		if strings.TrimSpace(line) == HeaderMarker {
			foundHeader = true
			break
		}
	}

	if !foundHeader {
		return nil, fmt.Errorf("invalid format: could not find %q marker", HeaderMarker)
	}

	// 2. Read the JSON content until the Body Marker
	var jsonBuilder bytes.Buffer
	foundBody := false
	for jsonBuilder.Len() <= maxHeaderSize {
		line, err := bufReader.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("failed to read stream while reading header json: %w", err)
		}

		if strings.TrimSpace(line) == BodyMarker {
			foundBody = true
			break
		}

		jsonBuilder.WriteString(line)
	}

	if !foundBody {
		return nil, fmt.Errorf("invalid format: could not find %q marker", BodyMarker)
	}

	// 3. Unmarshal the Header
	header := &Header{}
	if err := json.Unmarshal(jsonBuilder.Bytes(), header); err != nil {
		return nil, fmt.Errorf("failed to parse header json: %w", err)
	}

	// 4. Validate the parsed header
	if err := header.Validate(); err != nil {
		return nil, fmt.Errorf("header validation failed: %w", err)
	}

	return &Reader{
		Header: header,
		// Buffered body bytes are drained before the underlying source.
		Body: bufReader,
	}, nil
}
