package config

import (
	"bytes"

	"github.com/mr-shifu/ringsig-lib/pkg/common/vault"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

var (
	ErrMissingID = errors.New("config: config has no id")
)

// Manager keeps one Config per signing context, stored as YAML.
type Manager struct {
	store vault.Vault
}

func NewManager(store vault.Vault) *Manager {
	return &Manager{
		store: store,
	}
}

func (mgr *Manager) ImportConfig(cfg *Config) error {
	if cfg.ID() == "" {
		return ErrMissingID
	}

	var buf bytes.Buffer
	if err := yaml.NewEncoder(&buf).Encode(cfg.File()); err != nil {
		return errors.WithMessage(err, "config: failed to encode config")
	}

	return mgr.store.Import(cfg.ID(), buf.Bytes())
}

func (mgr *Manager) GetConfig(id string) (*Config, error) {
	data, err := mgr.store.Get(id)
	if err != nil {
		return nil, err
	}

	return Load(bytes.NewReader(data))
}

func (mgr *Manager) DeleteConfig(id string) error {
	return mgr.store.Delete(id)
}
