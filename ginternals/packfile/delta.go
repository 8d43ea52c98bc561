package packfile

import (
	"bytes"
	"encoding/binary"
	"errors"

	"golang.org/x/xerrors"
)

// ErrInvalidDelta is an error thrown when a delta stream contains
// data we cannot apply
var ErrInvalidDelta = errors.New("invalid delta")

// ApplyDelta rebuilds an object from its base and a delta stream.
//
// The format of a delta is:
// - A header with:
//   - The size of the base (varint)
//   - The size of the target (varint)
// - A set of instructions, processed until the stream ends
//
// There are 2 kinds of instruction: COPY and INSERT.
// If the MSB of the instruction byte is 1 it's a COPY, otherwise it's
// an INSERT. A zero instruction byte is reserved and gets rejected.
func ApplyDelta(base, delta []byte) ([]byte, error) {
	baseSize, read, err := readVarintLE(delta)
	if err != nil {
		return nil, xerrors.Errorf("could not read the base size: %w", err)
	}
	if baseSize != uint64(len(base)) {
		return nil, xerrors.Errorf("delta wants a base of %d bytes, got %d: %w", baseSize, len(base), ErrInvalidDelta)
	}
	pos := read

	targetSize, read, err := readVarintLE(delta[pos:])
	if err != nil {
		return nil, xerrors.Errorf("could not read the target size: %w", err)
	}
	pos += read

	out := bytes.Buffer{}
	out.Grow(int(targetSize))

	for pos < len(delta) {
		instr := delta[pos]
		pos++

		switch {
		case isMSBSet(instr): // COPY
			// The low 4 bits of the instruction tell us which of the 4
			// offset bytes follow, LSB first; a missing byte is 0.
			// Example: with 1010 we read 2 bytes and insert them at
			// offsetBytes[1] and offsetBytes[3], leaving [0] and [2]
			// at zero
			offsetBytes := make([]byte, 4)
			for j := uint(0); j < 4; j++ {
				if (instr>>j)&1 == 1 {
					if pos >= len(delta) {
						return nil, xerrors.Errorf("copy instruction stops inside its offset: %w", ErrInvalidDelta)
					}
					offsetBytes[j] = delta[pos]
					pos++
				}
			}
			copyOffset := binary.LittleEndian.Uint32(offsetBytes)

			// Bits 4 to 6 tell us which of the 3 size bytes follow,
			// same encoding as the offset
			sizeBytes := make([]byte, 4)
			for j := uint(0); j < 3; j++ {
				if (instr>>(4+j))&1 == 1 {
					if pos >= len(delta) {
						return nil, xerrors.Errorf("copy instruction stops inside its size: %w", ErrInvalidDelta)
					}
					sizeBytes[j] = delta[pos]
					pos++
				}
			}
			copySize := binary.LittleEndian.Uint32(sizeBytes)
			// an all-zero size means 0x10000
			if copySize == 0 {
				copySize = 0x10000
			}

			end := uint64(copyOffset) + uint64(copySize)
			if end > uint64(len(base)) {
				return nil, xerrors.Errorf("copy of %d bytes at offset %d exceeds the %d-byte base: %w", copySize, copyOffset, len(base), ErrInvalidDelta)
			}
			out.Write(base[copyOffset:end])
		case instr != 0: // INSERT
			// the instruction byte is the number of literal bytes that
			// follow
			size := int(instr)
			if pos+size > len(delta) {
				return nil, xerrors.Errorf("insert of %d bytes overflows the delta: %w", size, ErrInvalidDelta)
			}
			out.Write(delta[pos : pos+size])
			pos += size
		default:
			return nil, xerrors.Errorf("reserved zero instruction: %w", ErrInvalidDelta)
		}
	}

	if uint64(out.Len()) != targetSize {
		return nil, xerrors.Errorf("delta produced %d bytes, expected %d: %w", out.Len(), targetSize, ErrInvalidDelta)
	}
	return out.Bytes(), nil
}
