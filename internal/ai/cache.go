package ai

import (
	"context"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	gocache "github.com/patrickmn/go-cache"

	"github.com/MrSnakeDoc/smartnote/internal/domain"
)

// Cached memoizes successful summaries and translations of identical text.
// Chat is never cached.
type Cached struct {
	next  Gateway
	cache *gocache.Cache
}

// NewCached wraps next. A ttl of zero or less disables caching.
func NewCached(next Gateway, ttl time.Duration) Gateway {
	if ttl <= 0 {
		return next
	}
	return &Cached{
		next:  next,
		cache: gocache.New(ttl, 2*ttl),
	}
}

func cacheKey(parts ...string) string {
	d := xxhash.New()
	for _, p := range parts {
		_, _ = d.WriteString(p)
		_, _ = d.Write([]byte{0})
	}
	return strconv.FormatUint(d.Sum64(), 16)
}

func (c *Cached) Summarize(ctx context.Context, body string) (string, error) {
	key := cacheKey("summarize", body)
	if v, ok := c.cache.Get(key); ok {
		return v.(string), nil
	}
	s, err := c.next.Summarize(ctx, body)
	if err != nil {
		return "", err
	}
	c.cache.SetDefault(key, s)
	return s, nil
}

func (c *Cached) Translate(ctx context.Context, title, body string, target domain.Language) (Translation, error) {
	key := cacheKey("translate", target.Code(), title, body)
	if v, ok := c.cache.Get(key); ok {
		return v.(Translation), nil
	}
	t, err := c.next.Translate(ctx, title, body, target)
	if err != nil {
		return Translation{}, err
	}
	c.cache.SetDefault(key, t)
	return t, nil
}

func (c *Cached) Chat(ctx context.Context, history []Message) (string, error) {
	return c.next.Chat(ctx, history)
}

// Len is the number of cached entries, expired ones included until cleanup.
func (c *Cached) Len() int {
	return c.cache.ItemCount()
}
