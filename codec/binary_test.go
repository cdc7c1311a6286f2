package codec

import (
	"testing"

	"github.com/google/gofuzz"
	"github.com/stretchr/testify/require"
)

func TestFrozenVector(t *testing.T) {
	enc := NewEncoder()
	enc.PutU8(7)
	enc.PutU32(42)
	enc.PutU64(9999)
	enc.PutString("mv2s")
	enc.PutBytes([]byte{1, 2, 3})

	want := []byte{
		0x07,
		0x2a, 0x00, 0x00, 0x00,
		0x0f, 0x27, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x04, 0x00, 0x00, 0x00, 0x6d, 0x76, 0x32, 0x73,
		0x03, 0x00, 0x00, 0x00, 0x01, 0x02, 0x03,
	}
	require.Equal(t, want, enc.Bytes())
	require.Len(t, enc.Bytes(), 27)
}

func TestRoundTrip(t *testing.T) {
	enc := NewEncoder()
	enc.PutU8(1)
	enc.PutU32(123456)
	enc.PutU64(9876543210)
	enc.PutString("hello, rax")
	enc.PutBytes([]byte{0xde, 0xad, 0xbe, 0xef})

	dec := NewDecoder(enc.Bytes())
	u8, err := dec.GetU8()
	require.NoError(t, err)
	require.Equal(t, uint8(1), u8)

	u32, err := dec.GetU32()
	require.NoError(t, err)
	require.Equal(t, uint32(123456), u32)

	u64, err := dec.GetU64()
	require.NoError(t, err)
	require.Equal(t, uint64(9876543210), u64)

	s, err := dec.GetString()
	require.NoError(t, err)
	require.Equal(t, "hello, rax", s)

	b, err := dec.GetBytes()
	require.NoError(t, err)
	require.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, b)
	require.Equal(t, 0, dec.Remaining())
}

func TestDecodeErrors(t *testing.T) {
	dec := NewDecoder([]byte{1, 2})
	_, err := dec.GetU32()
	require.ErrorIs(t, err, ErrUnexpectedEOF)

	dec2 := NewDecoder([]byte{0xff, 0xff, 0xff, 0xff, 0x00})
	_, err = dec2.GetBytes()
	require.ErrorIs(t, err, ErrUnexpectedEOF)

	dec3 := NewDecoder([]byte{0x01, 0x00, 0x00, 0x00, 0xff})
	_, err = dec3.GetString()
	require.ErrorIs(t, err, ErrInvalidUTF8)
}

// TestRoundTripProperty checks decode(encode(s)) == s over randomized
// primitive sequences.
func TestRoundTripProperty(t *testing.T) {
	f := fuzz.New().NilChance(0).NumElements(0, 64)

	for i := 0; i < 200; i++ {
		var u8 uint8
		var u32 uint32
		var u64 uint64
		var s string
		var b []byte
		f.Fuzz(&u8)
		f.Fuzz(&u32)
		f.Fuzz(&u64)
		f.Fuzz(&b)
		s = sanitizeUTF8(randString(f))

		enc := NewEncoder()
		enc.PutU8(u8)
		enc.PutU32(u32)
		enc.PutU64(u64)
		enc.PutString(s)
		enc.PutBytes(b)

		dec := NewDecoder(enc.Bytes())
		gotU8, err := dec.GetU8()
		require.NoError(t, err)
		gotU32, err := dec.GetU32()
		require.NoError(t, err)
		gotU64, err := dec.GetU64()
		require.NoError(t, err)
		gotS, err := dec.GetString()
		require.NoError(t, err)
		gotB, err := dec.GetBytes()
		require.NoError(t, err)

		require.Equal(t, u8, gotU8)
		require.Equal(t, u32, gotU32)
		require.Equal(t, u64, gotU64)
		require.Equal(t, s, gotS)
		require.Equal(t, b, gotB)
		require.Equal(t, 0, dec.Remaining())
	}
}

func randString(f *fuzz.Fuzzer) string {
	var s string
	f.Fuzz(&s)
	return s
}

func sanitizeUTF8(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r == 0xFFFD {
			continue
		}
		out = append(out, r)
	}
	return string(out)
}
