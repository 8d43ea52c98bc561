// Package packfile contains methods and structs to read packfiles
package packfile

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"

	"github.com/gitcore/git-go/ginternals"
	"github.com/gitcore/git-go/ginternals/object"
	"github.com/gitcore/git-go/internal/errutil"
	"github.com/klauspost/compress/zlib"
	"golang.org/x/xerrors"
)

const (
	// headerSize contains the size of the header of a packfile.
	// The first 4 bytes contain the magic, the 4 next bytes contain the
	// version, and the last 4 bytes contain the number of objects in
	// the packfile, for a total of 12 bytes
	headerSize = 12

	// footerSize is the size of the trailing checksum of a packfile
	footerSize = 20
)

func packfileMagic() []byte {
	return []byte{'P', 'A', 'C', 'K'}
}

func packfileVersion() []byte {
	return []byte{0, 0, 0, 2}
}

var (
	// ErrIntOverflow is an error thrown when the packfile couldn't
	// be parsed because some data couldn't fit in an int64
	ErrIntOverflow = errors.New("int64 overflow")
	// ErrInvalidMagic is an error thrown when a stream doesn't have
	// the expected magic.
	ErrInvalidMagic = errors.New("invalid magic")
	// ErrInvalidVersion is an error thrown when a stream has an
	// unsupported version
	ErrInvalidVersion = errors.New("invalid version")
	// ErrTruncated is an error thrown when a stream stops in the
	// middle of an object record
	ErrTruncated = errors.New("truncated packfile")
	// ErrUnknownObjectType is an error thrown when an object record
	// has a type we cannot process
	ErrUnknownObjectType = errors.New("unknown object type")
	// ErrMissingDeltaBase is an error thrown when a ref-delta
	// references a base object that is not in the odb yet
	ErrMissingDeltaBase = errors.New("delta base not in odb")
)

// ObjectStorer represents an odb the unpacked objects get persisted to,
// and delta bases get resolved from
type ObjectStorer interface {
	// Object returns the object that has the given oid
	Object(ginternals.Oid) (*object.Object, error)
	// WriteObject adds an object to the odb
	WriteObject(*object.Object) (ginternals.Oid, error)
}

// UnpackSummary reports what Unpack did with a pack stream
type UnpackSummary struct {
	// Objects is the number of objects written to the odb
	Objects uint32
	// SkippedDeltas is the number of ofs-delta records that were
	// consumed but not reconstructed
	SkippedDeltas uint32
}

// Unpack decodes a version-2 pack stream and writes every object it
// contains to the given odb.
//
// The stream contains a header, a content, and a footer
// Header: 12 bytes
//         The first 4 bytes contain the magic ('P', 'A', 'C', 'K')
//         The next 4 bytes contain the version (0, 0, 0, 2)
//         The last 4 bytes contain the number of objects in the packfile
// Content: Variable size
//          The content contains all the objects of the packfile, each
//          zlib compressed. Before every zlib compressed object comes a
//          few bytes of metadata about the object (its type and
//          inflated size). ref-delta records carry the 20-byte id of
//          their base between the metadata and the zlib stream,
//          ofs-delta records carry a negative varint offset instead.
// Footer: 20 bytes
//         Contains the SHA1 sum of the packfile (without this SHA).
//         Not validated here.
// https://github.com/git/git/blob/master/Documentation/technical/pack-format.txt
//
// A ref-delta is resolved against the odb, which means its base must
// have been written before the delta shows up in the stream. Deltas
// whose base is missing fail the unpack with ErrMissingDeltaBase
// instead of being dropped silently. ofs-delta records are consumed so
// the cursor stays aligned, counted, and skipped.
func Unpack(odb ObjectStorer, data []byte) (summary UnpackSummary, err error) {
	if len(data) < headerSize {
		return summary, xerrors.Errorf("stream of %d bytes cannot contain a header: %w", len(data), ErrTruncated)
	}
	if !bytes.Equal(data[0:4], packfileMagic()) {
		return summary, xerrors.Errorf("invalid header: %w", ErrInvalidMagic)
	}
	if !bytes.Equal(data[4:8], packfileVersion()) {
		return summary, xerrors.Errorf("invalid header: %w", ErrInvalidVersion)
	}
	count := binary.BigEndian.Uint32(data[8:headerSize])

	offset := headerSize
	for i := uint32(0); i < count; i++ {
		typ, size, read, err := readObjectHeader(data[offset:])
		if err != nil {
			return summary, xerrors.Errorf("could not parse header of object %d/%d: %w", i+1, count, err)
		}
		offset += read

		switch typ {
		case object.TypeCommit, object.TypeTree, object.TypeBlob, object.TypeTag:
			content, consumed, err := inflate(data[offset:])
			if err != nil {
				return summary, xerrors.Errorf("could not inflate object %d/%d: %w", i+1, count, err)
			}
			offset += consumed
			if uint64(len(content)) != size {
				return summary, xerrors.Errorf("object %d/%d marked as size %d, but has %d: %w", i+1, count, size, len(content), ErrTruncated)
			}
			if _, err = odb.WriteObject(object.New(typ, content)); err != nil {
				return summary, xerrors.Errorf("could not persist object %d/%d: %w", i+1, count, err)
			}
			summary.Objects++
		case object.ObjectDeltaRef:
			if offset+ginternals.OidSize > len(data) {
				return summary, xerrors.Errorf("no space left for the base id of object %d/%d: %w", i+1, count, ErrTruncated)
			}
			baseID, err := ginternals.NewOidFromHex(data[offset : offset+ginternals.OidSize])
			if err != nil {
				return summary, xerrors.Errorf("could not parse base id of object %d/%d: %w", i+1, count, err)
			}
			offset += ginternals.OidSize

			delta, consumed, err := inflate(data[offset:])
			if err != nil {
				return summary, xerrors.Errorf("could not inflate delta %d/%d: %w", i+1, count, err)
			}
			offset += consumed
			if uint64(len(delta)) != size {
				return summary, xerrors.Errorf("delta %d/%d marked as size %d, but has %d: %w", i+1, count, size, len(delta), ErrTruncated)
			}

			base, err := odb.Object(baseID)
			if err != nil {
				if errors.Is(err, ginternals.ErrObjectNotFound) {
					return summary, xerrors.Errorf("base %s of object %d/%d: %w", baseID.String(), i+1, count, ErrMissingDeltaBase)
				}
				return summary, xerrors.Errorf("could not load base %s of object %d/%d: %w", baseID.String(), i+1, count, err)
			}
			content, err := ApplyDelta(base.Bytes(), delta)
			if err != nil {
				return summary, xerrors.Errorf("could not apply delta %d/%d onto %s: %w", i+1, count, baseID.String(), err)
			}
			// the result keeps the kind of its base, delta chains
			// included
			if _, err = odb.WriteObject(object.New(base.Type(), content)); err != nil {
				return summary, xerrors.Errorf("could not persist object %d/%d: %w", i+1, count, err)
			}
			summary.Objects++
		case object.ObjectDeltaOFS:
			// We can't reconstruct those (we'd need a map of
			// record-start offsets to objects), but we still have to
			// consume the negative offset and the zlib stream to keep
			// the cursor aligned with the next record
			_, read, err := readDeltaOffset(data[offset:])
			if err != nil {
				return summary, xerrors.Errorf("could not parse base offset of object %d/%d: %w", i+1, count, err)
			}
			offset += read

			delta, consumed, err := inflate(data[offset:])
			if err != nil {
				return summary, xerrors.Errorf("could not inflate delta %d/%d: %w", i+1, count, err)
			}
			offset += consumed
			if uint64(len(delta)) != size {
				return summary, xerrors.Errorf("delta %d/%d marked as size %d, but has %d: %w", i+1, count, size, len(delta), ErrTruncated)
			}
			summary.SkippedDeltas++
		default:
			return summary, xerrors.Errorf("object %d/%d has type %d: %w", i+1, count, typ, ErrUnknownObjectType)
		}
	}

	return summary, nil
}

// readObjectHeader parses the variable-length metadata in front of
// every object record.
// The first byte contains:
// - the MSB (1 bit), telling us whether the next byte is part of the
//   size
// - the type of the object (3 bits)
// - the beginning of the size (4 bits)
// The subsequent bytes contain:
// - the MSB (1 bit)
// - the next part of the size (7 bits)
// The chunks of the size are little-endian encoded (right to left):
// final_size = [part_2][part_1][part_0]
func readObjectHeader(data []byte) (typ object.Type, size uint64, read int, err error) {
	if len(data) == 0 {
		return 0, 0, 0, ErrTruncated
	}

	// To extract the type (bits 2, 3, and 4) we apply a mask to unset
	// all the bits we don't want, then we move our 3 bits to the
	// right with ">> 4"
	// value       : MTTT_SSSS // M = MSB ; T = type ; S = size
	// & 0111_0000 : 0TTT_0000
	// >> 4        : 0000_0TTT
	typ = object.Type((data[0] & 0b_0111_0000) >> 4)

	// The first part of the size is on the last 4 bits of the byte.
	// We can use a mask to only keep the bits we want
	// value       : MTTT_SSSS // M = MSB ; T = type; S = size
	// & 0000_1111 : 0000_SSSS
	size = uint64(data[0] & 0b_0000_1111)
	read = 1

	if !isMSBSet(data[0]) {
		return typ, size, read, nil
	}

	rest, restRead, err := readVarintLE(data[read:])
	if err != nil {
		return 0, 0, 0, err
	}
	read += restRead
	// we add 4 bits to the right of $rest, then we merge everything
	// with |
	// Example:
	// with rest = 1001 and size = 1011
	// rest << 4 : 1001_0000
	// | size    : 1001_1011
	if rest >= 1<<60 {
		return 0, 0, 0, ErrIntOverflow
	}
	size |= rest << 4
	return typ, size, read, nil
}

// readVarintLE reads a little-endian variable-length integer: every
// byte carries 7 bits of payload, the MSB tells us whether the next
// byte is part of the number too
func readVarintLE(data []byte) (v uint64, read int, err error) {
	for shift := uint(0); ; shift += 7 {
		if read >= len(data) {
			return 0, 0, ErrTruncated
		}
		if shift >= 64 {
			return 0, 0, ErrIntOverflow
		}
		b := data[read]
		read++
		v |= uint64(b&0b_0111_1111) << shift
		if !isMSBSet(b) {
			return v, read, nil
		}
	}
}

// readDeltaOffset reads the negative offset in front of an ofs-delta's
// zlib stream. Unlike the size varint this one is big-endian, and each
// continuation adds 2^7 + 2^14 + ... to distinguish encodings of
// different lengths
func readDeltaOffset(data []byte) (offset uint64, read int, err error) {
	for {
		if read >= len(data) {
			return 0, 0, ErrTruncated
		}
		if read >= 9 {
			return 0, 0, ErrIntOverflow
		}
		b := data[read]
		if read > 0 {
			offset = (offset + 1) << 7
		}
		offset |= uint64(b & 0b_0111_1111)
		read++
		if !isMSBSet(b) {
			return offset, read, nil
		}
	}
}

// inflate decompresses the zlib stream at the beginning of data, and
// reports how many input bytes the stream used so the caller can move
// its cursor past it.
// bytes.Reader implements io.ByteReader, which makes the inflater read
// its input byte by byte instead of buffering ahead, so the leftover
// length is exact.
func inflate(data []byte) (content []byte, consumed int, err error) {
	br := bytes.NewReader(data)
	zr, err := zlib.NewReader(br)
	if err != nil {
		return nil, 0, xerrors.Errorf("could not create zlib reader: %w", err)
	}
	defer errutil.Close(zr, &err)

	out := bytes.Buffer{}
	if _, err = io.Copy(&out, zr); err != nil {
		return nil, 0, xerrors.Errorf("could not decompress: %w", err)
	}
	return out.Bytes(), len(data) - br.Len(), nil
}

// isMSBSet checks whether the most significant bit (the leftmost bit)
// of a byte is set
func isMSBSet(b byte) bool {
	return b&0b_1000_0000 != 0
}
