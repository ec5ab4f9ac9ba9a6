package translate

import (
	"context"
	"fmt"
	"sync"
)

type pairKey struct {
	source string
	target string
}

// Instance is a translator prepared for one (source, target) language pair.
// Its model is prepared at most once, before the first translation.
type Instance struct {
	client Client
	source string
	target string

	prepareOnce sync.Once
	prepareErr  error
}

// Translate prepares the pair's language model if needed, then translates.
func (i *Instance) Translate(ctx context.Context, text string) (string, error) {
	i.prepareOnce.Do(func() {
		i.prepareErr = i.client.PrepareModel(ctx, i.source, i.target)
	})
	if i.prepareErr != nil {
		return "", fmt.Errorf("model for %s->%s not ready: %w", i.source, i.target, i.prepareErr)
	}

	return i.client.Translate(ctx, text, i.source, i.target)
}

// Close releases the instance. The remote service owns model lifecycle;
// closing only detaches the local handle.
func (i *Instance) Close() {
	i.client = nil
}

// PairCache pools translator instances by language pair so one
// product-translation run reuses a prepared pair instead of preparing it per
// field. The cache is scoped to a single run and must be torn down with
// CloseAll on every exit path.
type PairCache struct {
	client Client

	mu        sync.Mutex
	instances map[pairKey]*Instance
}

func NewPairCache(client Client) *PairCache {
	return &PairCache{
		client:    client,
		instances: make(map[pairKey]*Instance),
	}
}

// Get returns the cached instance for the pair, creating it on first use.
func (c *PairCache) Get(source, target string) *Instance {
	key := pairKey{source: source, target: target}

	c.mu.Lock()
	defer c.mu.Unlock()

	if instance, ok := c.instances[key]; ok {
		return instance
	}

	instance := &Instance{client: c.client, source: source, target: target}
	c.instances[key] = instance
	return instance
}

// CloseAll releases every instance created during the run.
func (c *PairCache) CloseAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key, instance := range c.instances {
		instance.Close()
		delete(c.instances, key)
	}
}

// Size reports how many pairs are currently pooled.
func (c *PairCache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.instances)
}
