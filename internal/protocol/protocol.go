// Package protocol implements the wire framing between the browsing client
// and the server. Responses travel as a 4-byte big-endian length header
// followed by a UTF-8 payload; commands travel in the opposite direction as
// raw, unframed UTF-8 text. This asymmetry is part of the existing wire
// contract and must not change without versioning the protocol.
package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const (
	// HeaderSize is the byte length of the response length prefix.
	HeaderSize = 4

	// MaxCommandSize is the upper bound on a single raw command read.
	MaxCommandSize = 1024

	// readChunkSize bounds a single payload read while draining a response.
	readChunkSize = 4096
)

// WriteMessage frames the payload with a big-endian length prefix and writes
// both to w.
func WriteMessage(w io.Writer, payload []byte) error {
	var header [HeaderSize]byte
	binary.BigEndian.PutUint32(header[:], uint32(len(payload)))

	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("(protocol) failed to write header: %w", err)
	}
	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("(protocol) failed to write payload: %w", err)
	}

	return nil
}

// ReadMessage reads one framed response from r and returns its payload as a
// UTF-8 string. A closed stream, before or during the payload, surfaces as
// [io.EOF] so callers can treat any truncation as end-of-stream.
func ReadMessage(r io.Reader) (string, error) {
	var header [HeaderSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return "", io.EOF
		}

		return "", fmt.Errorf("(protocol) failed to read header: %w", err)
	}

	length := int(binary.BigEndian.Uint32(header[:]))
	payload := make([]byte, 0, length)
	chunk := make([]byte, readChunkSize)

	for len(payload) < length {
		want := length - len(payload)
		if want > readChunkSize {
			want = readChunkSize
		}

		n, err := r.Read(chunk[:want])
		payload = append(payload, chunk[:n]...)

		if len(payload) >= length {
			break
		}
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return "", io.EOF
			}

			return "", fmt.Errorf("(protocol) failed to read payload: %w", err)
		}
	}

	return string(payload), nil
}

// ReadCommand reads one raw command from r, bounded by [MaxCommandSize].
// A zero-byte read signals end-of-stream as [io.EOF].
func ReadCommand(r io.Reader) (string, error) {
	buf := make([]byte, MaxCommandSize)

	n, err := r.Read(buf)
	if n > 0 {
		return string(buf[:n]), nil
	}
	if err == nil || errors.Is(err, io.EOF) {
		return "", io.EOF
	}

	return "", fmt.Errorf("(protocol) failed to read command: %w", err)
}
