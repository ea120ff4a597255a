package digest

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lorekeep/internal/core/domain"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"", SHA256},
		{SHA256, SHA256},
		{BLAKE2b, BLAKE2b},
	}

	for _, tt := range tests {
		t.Run("name="+tt.name, func(t *testing.T) {
			d, err := New(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Name())
		})
	}
}

func TestNew_Unsupported(t *testing.T) {
	_, err := New("md5")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnsupportedType))
}

func TestSHA256Digester_KnownVector(t *testing.T) {
	d := SHA256Digester{}
	assert.Equal(t,
		"e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		d.Sum(nil))
	assert.Equal(t,
		"ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad",
		d.Sum([]byte("abc")))
}

func TestDigesters_DeterministicAndDistinct(t *testing.T) {
	sha := SHA256Digester{}
	b2 := BLAKE2bDigester{}
	data := []byte("The quick brown fox jumps over the lazy dog.")

	assert.Equal(t, sha.Sum(data), sha.Sum(data))
	assert.Equal(t, b2.Sum(data), b2.Sum(data))
	assert.Len(t, b2.Sum(data), 64)
	assert.NotEqual(t, sha.Sum(data), b2.Sum(data))
}
