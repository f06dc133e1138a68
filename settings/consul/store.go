package consul

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hashicorp/consul/api"
	"github.com/mwantia/dualcli/settings"
)

// Store keeps settings as a single JSON document in the Consul KV store.
// This lets a fleet of hosts share the same logging configuration.
type Store struct {
	kv  *api.KV
	key string
}

// Config contains connection options for the Consul store
type Config struct {
	// Address of the Consul server (default: "127.0.0.1:8500")
	Address string

	// Token for Consul ACL authentication (optional)
	Token string

	// Datacenter to use (optional)
	Datacenter string

	// Prefix for the settings key (default: "dualcli")
	Prefix string
}

// NewStore creates a store writing to <prefix>/<app>/settings.
func NewStore(config *Config, app string) (*Store, error) {
	if config == nil {
		config = &Config{}
	}

	if config.Address == "" {
		config.Address = "127.0.0.1:8500"
	}

	prefix := strings.Trim(config.Prefix, "/")
	if prefix == "" {
		prefix = "dualcli"
	}

	clientConfig := api.DefaultConfig()
	clientConfig.Address = config.Address
	if config.Token != "" {
		clientConfig.Token = config.Token
	}
	if config.Datacenter != "" {
		clientConfig.Datacenter = config.Datacenter
	}

	client, err := api.NewClient(clientConfig)
	if err != nil {
		return nil, err
	}

	return &Store{
		kv:  client.KV(),
		key: fmt.Sprintf("%s/%s/settings", prefix, app),
	}, nil
}

func (s *Store) Key() string {
	return s.key
}

func (s *Store) Load(ctx context.Context) (*settings.Settings, error) {
	pair, _, err := s.kv.Get(s.key, (&api.QueryOptions{}).WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("settings: consul get %s: %w", s.key, err)
	}
	if pair == nil {
		return nil, settings.ErrNotFound
	}

	var result settings.Settings
	if err := json.Unmarshal(pair.Value, &result); err != nil {
		return nil, fmt.Errorf("settings: decode %s: %w", s.key, err)
	}
	return &result, nil
}

func (s *Store) Save(ctx context.Context, value settings.Settings) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	pair := &api.KVPair{
		Key:   s.key,
		Value: data,
	}
	if _, err := s.kv.Put(pair, (&api.WriteOptions{}).WithContext(ctx)); err != nil {
		return fmt.Errorf("settings: consul put %s: %w", s.key, err)
	}
	return nil
}
