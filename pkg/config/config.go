// Package config holds the parameters of a signing context: which curve and hash a
// ring uses, how its members are ordered and how it is folded.
package config

import (
	"io"

	"github.com/mr-shifu/ringsig-lib/core/hash"
	"github.com/mr-shifu/ringsig-lib/core/math/curve"
	"github.com/mr-shifu/ringsig-lib/pkg/key"
	"github.com/mr-shifu/ringsig-lib/pkg/ring"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	DefaultCurve  = "prime256v1"
	DefaultHash   = "sha3-256"
	DefaultOrder  = "hashes"
	DefaultFormat = "pem"
)

type Config struct {
	id     string
	group  curve.Curve
	hash   hash.ID
	order  ring.OrderPolicy
	format ring.Format
	caseID []byte
}

// File is the YAML form of a Config. Empty fields take the defaults.
type File struct {
	ID     string `yaml:"id"`
	Curve  string `yaml:"curve"`
	Hash   string `yaml:"hash"`
	Order  string `yaml:"order"`
	Format string `yaml:"format"`
	CaseID string `yaml:"case_id"`
}

func NewConfig(
	id string,
	group curve.Curve,
	hashID hash.ID,
	order ring.OrderPolicy,
	format ring.Format,
	caseID []byte,
) (*Config, error) {
	if group == nil {
		return nil, curve.ErrUnknownCurve
	}
	if err := hash.CheckCombination(group, hashID); err != nil {
		return nil, err
	}
	if !order.Valid() {
		return nil, ring.ErrUnknownOrder
	}
	return &Config{
		id:     id,
		group:  group,
		hash:   hashID,
		order:  order,
		format: format,
		caseID: append([]byte(nil), caseID...),
	}, nil
}

// New builds a config from curve, hash and order policy names. Empty names take the
// defaults.
func New(curveName, hashName, orderName string) (*Config, error) {
	return File{Curve: curveName, Hash: hashName, Order: orderName}.Config()
}

// Default returns the prime256v1 / sha3-256 configuration.
func Default() *Config {
	cfg, err := New("", "", "")
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads a YAML document from r.
func Load(r io.Reader) (*Config, error) {
	var f File
	if err := yaml.NewDecoder(r).Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.WithMessage(err, "config: failed to decode yaml")
	}
	return f.Config()
}

func (f File) Config() (*Config, error) {
	group, err := curve.FromName(withDefault(f.Curve, DefaultCurve))
	if err != nil {
		return nil, errors.WithMessagef(err, "config: curve %q", f.Curve)
	}
	hashID, err := hash.FromName(withDefault(f.Hash, DefaultHash))
	if err != nil {
		return nil, errors.WithMessagef(err, "config: hash %q", f.Hash)
	}
	order, err := ring.ParseOrderPolicy(withDefault(f.Order, DefaultOrder))
	if err != nil {
		return nil, errors.WithMessagef(err, "config: order %q", f.Order)
	}
	format, err := ring.ParseFormat(withDefault(f.Format, DefaultFormat))
	if err != nil {
		return nil, errors.WithMessagef(err, "config: format %q", f.Format)
	}
	return NewConfig(f.ID, group, hashID, order, format, []byte(f.CaseID))
}

func withDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func (c *Config) ID() string {
	return c.id
}

func (c *Config) Group() curve.Curve {
	return c.group
}

func (c *Config) Hash() hash.ID {
	return c.hash
}

func (c *Config) Order() ring.OrderPolicy {
	return c.order
}

func (c *Config) Format() ring.Format {
	return c.format
}

// CaseID returns a copy of the case identifier mixed into every challenge.
func (c *Config) CaseID() []byte {
	return append([]byte(nil), c.caseID...)
}

// File returns the YAML form of c.
func (c *Config) File() File {
	return File{
		ID:     c.id,
		Curve:  c.group.Name(),
		Hash:   c.hash.String(),
		Order:  c.order.String(),
		Format: c.format.String(),
		CaseID: string(c.caseID),
	}
}

// Fold folds keys into a ring with this config's hash, order and format.
func (c *Config) Fold(keys ...*key.PublicKey) ([]byte, error) {
	for _, k := range keys {
		if k.Group().ID() != c.group.ID() {
			return nil, ring.ErrCurveMismatch
		}
	}
	return ring.Fold(keys, c.hash, c.format, c.order)
}
