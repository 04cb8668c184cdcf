package topic

import (
	"context"
	"fmt"

	clientv3 "go.etcd.io/etcd/client/v3"
)

// DefaultEtcdPrefix is where provisioned topics keep their configuration node.
const DefaultEtcdPrefix = "/config/topics/"

type kvGetter interface {
	Get(ctx context.Context, key string, opts ...clientv3.OpOption) (*clientv3.GetResponse, error)
}

// EtcdRegistry treats a topic as provisioned when its configuration key exists.
type EtcdRegistry struct {
	kv     kvGetter
	prefix string
}

// NewEtcdRegistry uses kv (typically a *clientv3.Client) with the given key
// prefix, or DefaultEtcdPrefix when prefix is empty.
func NewEtcdRegistry(kv clientv3.KV, prefix string) *EtcdRegistry {
	return newEtcdRegistry(kv, prefix)
}

func newEtcdRegistry(kv kvGetter, prefix string) *EtcdRegistry {
	if prefix == "" {
		prefix = DefaultEtcdPrefix
	}
	return &EtcdRegistry{kv: kv, prefix: prefix}
}

// Key returns the configuration key of topic name.
func (r *EtcdRegistry) Key(name string) string {
	return r.prefix + name
}

func (r *EtcdRegistry) TopicExists(ctx context.Context, name string) (bool, error) {
	if name == "" {
		return false, nil
	}

	resp, err := r.kv.Get(ctx, r.Key(name), clientv3.WithCountOnly())
	if err != nil {
		return false, fmt.Errorf("%w: get %q: %v", ErrRegistryUnavailable, r.Key(name), err)
	}
	return resp.Count > 0, nil
}
