package codepoint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromFilename(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		path string
		want string
	}{
		{name: "plain name", path: "0041.png", want: "U+0041"},
		{name: "nested path", path: "fonts/latin/0042.png", want: "U+0042"},
		{name: "lowercase hex preserved", path: "03a9.png", want: "U+03a9"},
		{name: "uppercase hex preserved", path: "03A9.png", want: "U+03A9"},
		{name: "extension ignored beyond four chars", path: "0041.jpeg", want: "U+0041"},
		{name: "short name includes extension chars", path: "A.png", want: "U+A.pn"},
		{name: "exactly four chars", path: "1F60.png", want: "U+1F60"},
		{name: "non-hex characters kept", path: "zzzz.png", want: "U+zzzz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, FromFilename(tt.path))
		})
	}
}

func TestFormat(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "U+0041", Format('A'))
	assert.Equal(t, "U+007A", Format('z'))
	assert.Equal(t, "U+03A9", Format(0x03A9))
	assert.Equal(t, "U+1F600", Format(0x1F600))
}

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		key     string
		want    rune
		wantErr bool
	}{
		{name: "uppercase", key: "U+0041", want: 'A'},
		{name: "lowercase", key: "U+03a9", want: 0x03A9},
		{name: "five digits", key: "U+1F600", want: 0x1F600},
		{name: "missing prefix", key: "0041", wantErr: true},
		{name: "empty hex", key: "U+", wantErr: true},
		{name: "non-hex", key: "U+zzzz", wantErr: true},
		{name: "out of range", key: "U+FFFFFFFF", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Parse(tt.key)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRoundTrip(t *testing.T) {
	t.Parallel()

	for _, r := range []rune{'A', 'z', 0x03A9, 0x4E2D, 0xFFFD} {
		got, err := Parse(Format(r))
		require.NoError(t, err)
		assert.Equal(t, r, got)
	}
}
