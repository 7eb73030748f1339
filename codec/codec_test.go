package codec

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"facio.dev/eid"
)

func roundTrip(t *testing.T, v any) any {
	t.Helper()
	buf := new(bytes.Buffer)
	require.NoError(t, Encode(buf, v))
	got, err := Decode(buf)
	require.NoError(t, err)
	require.Equal(t, 0, buf.Len(), "decode must consume the whole encoding")
	return got
}

func TestRoundTripScalars(t *testing.T) {
	require.Equal(t, true, roundTrip(t, true))
	require.Equal(t, false, roundTrip(t, false))
	require.Equal(t, byte(0x7f), roundTrip(t, byte(0x7f)))
	require.Equal(t, int32(-12345), roundTrip(t, int32(-12345)))
	require.Equal(t, int64(-1), roundTrip(t, int64(-1)))
	require.Equal(t, "hello, 世界", roundTrip(t, "hello, 世界"))
	require.Equal(t, []byte{1, 2, 3}, roundTrip(t, []byte{1, 2, 3}))
}

func TestRoundTripInstant(t *testing.T) {
	now := time.UnixMilli(1732000000123).UTC()
	got := roundTrip(t, now)
	require.Equal(t, now, got)
}

func TestRoundTripZoned(t *testing.T) {
	z := ZonedTimestamp{Seconds: 1732000000, Nanos: 42, Zone: "UTC"}
	got := roundTrip(t, z).(ZonedTimestamp)
	require.Equal(t, z, got)
}

func TestRoundTripEID(t *testing.T) {
	e := eid.T{IID: 7, Local: 99}
	got := roundTrip(t, e)
	require.Equal(t, e, got)
}

func TestDecodeUnknownTag(t *testing.T) {
	_, err := Decode(bytes.NewReader([]byte{'?'}))
	require.Error(t, err)
}

func TestDecodeUnexpectedEOF(t *testing.T) {
	_, err := Decode(bytes.NewReader([]byte{byte(TagInt64), 0, 0, 0}))
	require.Error(t, err)
}

func TestEncodeUnsupportedValue(t *testing.T) {
	err := Encode(new(bytes.Buffer), struct{}{})
	require.Error(t, err)
}

func TestStringEncodesByByteLengthNotRuneCount(t *testing.T) {
	s := "日本語"
	buf := new(bytes.Buffer)
	require.NoError(t, Encode(buf, s))
	b := buf.Bytes()
	require.Equal(t, byte(TagString), b[0])
	length := int(b[1])<<24 | int(b[2])<<16 | int(b[3])<<8 | int(b[4])
	require.Equal(t, len([]byte(s)), length)
	require.NotEqual(t, len([]rune(s)), length)
}
