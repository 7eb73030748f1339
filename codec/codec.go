// Package codec is the self-describing TLV binary encoding every scalar
// value, fact and node header is written in. Every value begins with a
// single type tag byte followed by a fixed or length-prefixed payload, so
// that a decoder can dispatch on the tag alone and two equal fact sets
// serialize to identical bytes regardless of the Go runtime types involved.
package codec

import (
	"encoding/binary"
	"io"
	"time"

	"facio.dev/eid"
	"facio.dev/ferr"
)

// Tag is the single byte that precedes every encoded value and identifies
// its payload shape.
type Tag byte

const (
	TagBool    Tag = 'B'
	TagByte    Tag = 'b'
	TagInt32   Tag = 'i'
	TagInt64   Tag = 'l'
	TagString  Tag = 's'
	TagBytes   Tag = 'a'
	TagInstant Tag = 't'
	TagZoned   Tag = 'z'
	TagEID     Tag = 'e'
)

// ZonedTimestamp is a wall-clock instant paired with an IANA zone id, the
// runtime type for the 'z' tag.
type ZonedTimestamp struct {
	Seconds int64
	Nanos   int32
	Zone    string
}

// Time reconstructs a time.Time in the named zone, falling back to UTC if
// the zone id cannot be loaded (e.g. no tzdata installed).
func (z ZonedTimestamp) Time() time.Time {
	loc, err := time.LoadLocation(z.Zone)
	if err != nil {
		loc = time.UTC
	}
	return time.Unix(z.Seconds, int64(z.Nanos)).In(loc)
}

// ZonedFromTime builds a ZonedTimestamp from a time.Time, preserving its
// location's name.
func ZonedFromTime(t time.Time) ZonedTimestamp {
	return ZonedTimestamp{Seconds: t.Unix(), Nanos: int32(t.Nanosecond()), Zone: t.Location().String()}
}

// UnsupportedValue is returned by Encode when v's runtime type has no tag.
func UnsupportedValue(v any) error {
	return ferr.New(ferr.SchemaError, "codec: unsupported value type")
}

// Encode writes the tagged encoding of v to w.
func Encode(w io.Writer, v any) (err error) {
	switch x := v.(type) {
	case bool:
		return writeTag(w, TagBool, boolByte(x))
	case byte:
		return writeTag(w, TagByte, []byte{x})
	case int32:
		b := make([]byte, 4)
		binary.BigEndian.PutUint32(b, uint32(x))
		return writeTag(w, TagInt32, b)
	case int64:
		b := make([]byte, 8)
		binary.BigEndian.PutUint64(b, uint64(x))
		return writeTag(w, TagInt64, b)
	case string:
		return writeLenPrefixed(w, TagString, []byte(x))
	case []byte:
		return writeLenPrefixed(w, TagBytes, x)
	case time.Time:
		b := make([]byte, 8)
		binary.BigEndian.PutUint64(b, uint64(x.UnixMilli()))
		return writeTag(w, TagInstant, b)
	case ZonedTimestamp:
		return writeZoned(w, x)
	case eid.T:
		b := make([]byte, 8)
		packed := uint64(x.IID)<<32 | (x.Local & 0xffffffff)
		binary.BigEndian.PutUint64(b, packed)
		return writeTag(w, TagEID, b)
	default:
		return UnsupportedValue(v)
	}
}

func boolByte(b bool) []byte {
	if b {
		return []byte{1}
	}
	return []byte{0}
}

func writeTag(w io.Writer, tag Tag, payload []byte) error {
	if _, err := w.Write([]byte{byte(tag)}); err != nil {
		return ferr.Wrap(ferr.IoError, err, "codec: write tag")
	}
	if _, err := w.Write(payload); err != nil {
		return ferr.Wrap(ferr.IoError, err, "codec: write payload")
	}
	return nil
}

func writeLenPrefixed(w io.Writer, tag Tag, payload []byte) error {
	lb := make([]byte, 4)
	binary.BigEndian.PutUint32(lb, uint32(len(payload)))
	if err := writeTag(w, tag, lb); err != nil {
		return err
	}
	if _, err := w.Write(payload); err != nil {
		return ferr.Wrap(ferr.IoError, err, "codec: write bytes")
	}
	return nil
}

func writeZoned(w io.Writer, z ZonedTimestamp) error {
	b := make([]byte, 12)
	binary.BigEndian.PutUint64(b[:8], uint64(z.Seconds))
	binary.BigEndian.PutUint32(b[8:], uint32(z.Nanos))
	if err := writeTag(w, TagZoned, b); err != nil {
		return err
	}
	zb := make([]byte, 4)
	binary.BigEndian.PutUint32(zb, uint32(len(z.Zone)))
	if _, err := w.Write(zb); err != nil {
		return ferr.Wrap(ferr.IoError, err, "codec: write zone length")
	}
	if _, err := w.Write([]byte(z.Zone)); err != nil {
		return ferr.Wrap(ferr.IoError, err, "codec: write zone")
	}
	return nil
}

// Decode reads one tagged value from r.
func Decode(r io.Reader) (v any, err error) {
	tagb := make([]byte, 1)
	if _, err = io.ReadFull(r, tagb); err != nil {
		err = ferr.Wrap(ferr.UnexpectedEOF, err, "codec: read tag")
		return
	}
	switch Tag(tagb[0]) {
	case TagBool:
		b, e := readN(r, 1)
		if e != nil {
			return nil, e
		}
		return b[0] != 0, nil
	case TagByte:
		b, e := readN(r, 1)
		if e != nil {
			return nil, e
		}
		return b[0], nil
	case TagInt32:
		b, e := readN(r, 4)
		if e != nil {
			return nil, e
		}
		return int32(binary.BigEndian.Uint32(b)), nil
	case TagInt64:
		b, e := readN(r, 8)
		if e != nil {
			return nil, e
		}
		return int64(binary.BigEndian.Uint64(b)), nil
	case TagString:
		b, e := readLenPrefixed(r)
		if e != nil {
			return nil, e
		}
		return string(b), nil
	case TagBytes:
		return readLenPrefixed(r)
	case TagInstant:
		b, e := readN(r, 8)
		if e != nil {
			return nil, e
		}
		ms := int64(binary.BigEndian.Uint64(b))
		return time.UnixMilli(ms).UTC(), nil
	case TagZoned:
		return readZoned(r)
	case TagEID:
		b, e := readN(r, 8)
		if e != nil {
			return nil, e
		}
		packed := binary.BigEndian.Uint64(b)
		return eid.T{IID: uint32(packed >> 32), Local: packed & 0xffffffff}, nil
	default:
		err = ferr.New(ferr.UnknownTag, "codec: unknown tag byte")
		return
	}
}

func readN(r io.Reader, n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, ferr.Wrap(ferr.UnexpectedEOF, err, "codec: short read")
	}
	return b, nil
}

func readLenPrefixed(r io.Reader) ([]byte, error) {
	lb, err := readN(r, 4)
	if err != nil {
		return nil, err
	}
	n := binary.BigEndian.Uint32(lb)
	return readN(r, int(n))
}

func readZoned(r io.Reader) (ZonedTimestamp, error) {
	b, err := readN(r, 12)
	if err != nil {
		return ZonedTimestamp{}, err
	}
	secs := int64(binary.BigEndian.Uint64(b[:8]))
	nanos := int32(binary.BigEndian.Uint32(b[8:]))
	zone, err := readLenPrefixed(r)
	if err != nil {
		return ZonedTimestamp{}, err
	}
	return ZonedTimestamp{Seconds: secs, Nanos: nanos, Zone: string(zone)}, nil
}
