package status

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestCodeOf(t *testing.T) {
	assert.Equal(t, Success, CodeOf(nil))

	base := New(IncorrectChecksum, "ring: digest mismatch")
	assert.Equal(t, IncorrectChecksum, CodeOf(base))

	// context added with pkg/errors keeps the code reachable
	wrapped := errors.WithMessage(base, "ringstore: failed to import ring")
	assert.Equal(t, IncorrectChecksum, CodeOf(wrapped))
	assert.True(t, errors.Is(wrapped, base))
	assert.True(t, Is(wrapped, IncorrectChecksum))

	// the outermost code wins
	outer := Wrap(wrapped, UnmarshalFailed, "lsag: failed to decode ring")
	assert.Equal(t, UnmarshalFailed, CodeOf(outer))
	assert.True(t, errors.Is(outer, base))

	assert.Equal(t, MarshalFailed, CodeOf(errors.New("plain")))
	assert.Nil(t, Wrap(nil, MarshalFailed, "unused"))
}

func TestCodeString(t *testing.T) {
	assert.Equal(t, "Success", Success.String())
	assert.Equal(t, "PrivateKeyNotFoundAmongPublicKeys", PrivateKeyNotFoundAmongPublicKeys.String())
	assert.Equal(t, "Code(999)", Code(999).String())
	for c := Success; c <= CreateKeyFailed; c++ {
		assert.NotContains(t, c.String(), "Code(")
	}
}
