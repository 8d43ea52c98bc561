// Package protocol contains a client for the git smart-HTTP protocol
// (version 0/1): ref discovery and pack fetching over two plain HTTP
// requests
package protocol

import (
	"encoding/hex"
	"errors"

	"golang.org/x/xerrors"
)

// pkt-line framing:
// every line starts with a 4-char hex length that covers the length
// field itself; "0000" is a flush packet and carries no payload
// https://github.com/git/git/blob/master/Documentation/technical/protocol-common.txt
const pktLenSize = 4

// ErrInvalidPktLine is an error thrown when a pkt-line cannot be
// decoded
var ErrInvalidPktLine = errors.New("invalid pkt-line")

// readPktLine decodes the pkt-line at the beginning of data.
// It returns how many bytes the line used (length prefix included),
// and the line's payload. A flush packet returns an empty payload.
// A trailing newline is part of the payload.
func readPktLine(data []byte) (advance int, payload []byte, err error) {
	if len(data) < pktLenSize {
		return 0, nil, xerrors.Errorf("%d bytes cannot contain a length: %w", len(data), ErrInvalidPktLine)
	}

	raw := [2]byte{}
	if _, err := hex.Decode(raw[:], data[:pktLenSize]); err != nil {
		return 0, nil, xerrors.Errorf("could not decode length %q: %w", data[:pktLenSize], ErrInvalidPktLine)
	}
	size := int(raw[0])<<8 | int(raw[1])

	// flush packet
	if size == 0 {
		return pktLenSize, nil, nil
	}

	if size < pktLenSize || size > len(data) {
		return 0, nil, xerrors.Errorf("length %d out of bounds: %w", size, ErrInvalidPktLine)
	}
	return size, data[pktLenSize:size], nil
}
