package split

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"github.com/hashicorp/golang-lru"
	"github.com/peterbourgon/diskv"
	"github.com/pkg/errors"
	"hash/fnv"
	"strconv"
)

// ErrCacheMiss is returned by a Cacher that does not hold a split.
var ErrCacheMiss = errors.New("cache miss error")

// Cacher models a way to cache (either persistent or not) splits.
type Cacher interface {
	Get(key string) (Split, error)
	Set(key string, s Split) error
}

// Key identifies the split a strategy builds for n, k and a seed.
func Key(strategy string, n, k int, seed int64) string {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s/%d/%d/%d", strategy, n, k, seed)
	return strconv.FormatUint(h.Sum64(), 10)
}

// BlockTransform determines how diskv should partition folders.
func BlockTransform(blockSize int) func(string) []string {
	return func(s string) []string {
		var (
			sliceSize = len(s) / blockSize
			pathSlice = make([]string, sliceSize)
		)
		for i := 0; i < sliceSize; i++ {
			from, to := i*blockSize, (i*blockSize)+blockSize
			pathSlice[i] = s[from:to]
		}
		return pathSlice
	}
}

type lruCache struct {
	c *lru.Cache
}

func (l lruCache) Get(key string) (Split, error) {
	if v, ok := l.c.Get(key); ok {
		return v.(Split).Copy(), nil
	}
	return nil, ErrCacheMiss
}

func (l lruCache) Set(key string, s Split) error {
	l.c.Add(key, s.Copy())
	return nil
}

// NewLRUCache creates an in-memory cache holding at most size splits.
func NewLRUCache(size int) (Cacher, error) {
	c, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return lruCache{c}, nil
}

type diskvCache struct {
	*diskv.Diskv
}

func (d diskvCache) Get(key string) (Split, error) {
	b, err := d.Read(key)
	if err != nil {
		return nil, ErrCacheMiss
	}
	var s Split
	if err := gob.NewDecoder(bytes.NewReader(b)).Decode(&s); err != nil {
		return nil, err
	}
	return s, nil
}

func (d diskvCache) Set(key string, s Split) error {
	var buff bytes.Buffer
	if err := gob.NewEncoder(&buff).Encode(s); err != nil {
		return err
	}
	return d.Write(key, buff.Bytes())
}

// NewDiskvCache creates a new on-disk cache with the specified diskv parameters.
func NewDiskvCache(dv *diskv.Diskv) Cacher {
	return diskvCache{dv}
}

type cached struct {
	Strategy
	cache Cacher
}

// Cached wraps a strategy so seeded splits are looked up in, and stored to, a cache.
// Unseeded splits are never cached.
func Cached(s Strategy, c Cacher) Strategy {
	return cached{Strategy: s, cache: c}
}

func (c cached) Build(n, k int, seed *int64) (Split, error) {
	if seed == nil {
		return c.Strategy.Build(n, k, nil)
	}
	key := Key(c.Name(), n, k, *seed)
	if s, err := c.cache.Get(key); err == nil {
		if Check(s, n) == nil && len(s) == k {
			return s, nil
		}
	} else if err != ErrCacheMiss {
		return nil, errors.Wrap(err, "reading split cache")
	}
	s, err := c.Strategy.Build(n, k, seed)
	if err != nil {
		return nil, err
	}
	if err := c.cache.Set(key, s); err != nil {
		return nil, errors.Wrap(err, "writing split cache")
	}
	return s, nil
}
