package config

import (
	"bytes"
	"strings"
	"testing"

	"github.com/mr-shifu/ringsig-lib/core/hash"
	"github.com/mr-shifu/ringsig-lib/core/math/curve"
	"github.com/mr-shifu/ringsig-lib/core/status"
	"github.com/mr-shifu/ringsig-lib/pkg/key"
	"github.com/mr-shifu/ringsig-lib/pkg/ring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, curve.IDP256, cfg.Group().ID())
	assert.Equal(t, hash.SHA3_256, cfg.Hash())
	assert.Equal(t, ring.ByHash, cfg.Order())
	assert.Equal(t, ring.PEM, cfg.Format())
	assert.Empty(t, cfg.CaseID())
}

func TestNew(t *testing.T) {
	cfg, err := New("secp256k1", "SHA512", "as-supplied")
	require.NoError(t, err)
	assert.Equal(t, curve.IDSecp256k1, cfg.Group().ID())
	assert.Equal(t, hash.SHA512, cfg.Hash())
	assert.Equal(t, ring.AsSupplied, cfg.Order())

	_, err = New("curve25519x", "", "")
	assert.Equal(t, status.UnexpectedCurveType, status.CodeOf(err))

	_, err = New("", "md5", "")
	assert.Equal(t, status.UnexpectedHashType, status.CodeOf(err))

	_, err = New("", "", "random")
	assert.Error(t, err)

	// 224 bit digests are too short for a 521 bit group
	_, err = New("secp521r1", "sha3-224", "")
	assert.Equal(t, status.UnsupportedCurveHashCombination, status.CodeOf(err))
}

func TestLoad(t *testing.T) {
	doc := `
id: elections-2024
curve: ristretto255
hash: blake2b-512
order: as-supplied
format: binary
case_id: ballot-7
`
	cfg, err := Load(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, "elections-2024", cfg.ID())
	assert.Equal(t, curve.IDRistretto255, cfg.Group().ID())
	assert.Equal(t, hash.BLAKE2b_512, cfg.Hash())
	assert.Equal(t, ring.AsSupplied, cfg.Order())
	assert.Equal(t, ring.Binary, cfg.Format())
	assert.Equal(t, []byte("ballot-7"), cfg.CaseID())

	empty, err := Load(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, curve.IDP256, empty.Group().ID())

	_, err = Load(strings.NewReader("curve: [unterminated"))
	assert.Error(t, err)
}

func TestFileRoundTrip(t *testing.T) {
	cfg, err := New("ed25519", "sha512", "hashes")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, yaml.NewEncoder(&buf).Encode(cfg.File()))

	back, err := Load(&buf)
	require.NoError(t, err)
	assert.Equal(t, cfg.Group().ID(), back.Group().ID())
	assert.Equal(t, cfg.Hash(), back.Hash())
	assert.Equal(t, cfg.Order(), back.Order())
	assert.Equal(t, cfg.Format(), back.Format())
}

func TestFold(t *testing.T) {
	cfg := Default()
	a, err := key.GeneratePrivateKey(curve.IDP256)
	require.NoError(t, err)
	b, err := key.GeneratePrivateKey(curve.IDP256)
	require.NoError(t, err)

	folded, err := cfg.Fold(a.Public(), b.Public())
	require.NoError(t, err)
	r, err := ring.Unfold(folded, ring.Auto)
	require.NoError(t, err)
	assert.Equal(t, 2, r.Len())
	assert.Equal(t, hash.SHA3_256, r.Hash())

	other, err := key.GeneratePrivateKey(curve.IDSecp256k1)
	require.NoError(t, err)
	_, err = cfg.Fold(a.Public(), other.Public())
	assert.Equal(t, status.UnexpectedCurveType, status.CodeOf(err))
}
