package octavia

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/zeebo/blake3"
)

// DefaultCacheTTL is used when WithCache is given a zero TTL.
const DefaultCacheTTL = 3 * time.Minute

// CacheKeyPrefix starts every key and pattern a CachingSender hands to its Cache.
const CacheKeyPrefix = "octavia"

// Cache stores serialized results. Get returns nil, nil for a missing key.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DeletePattern(ctx context.Context, pattern string) (int64, error)
}

// CachingSender serves read calls from a Cache and drops cached entries
// after successful writes. Only acknowledged results are cached. Cache
// failures are logged and the call goes to the wrapped Sender.
//
// Entries are keyed by the caller's identity (endpoint, database, password,
// token and headers), so clients sharing a cache never read each other's
// results. Invalidation after a write spans every identity of the database.
type CachingSender struct {
	next     Sender
	cache    Cache
	database string
	identity [32]byte
	tag      string
	ttl      time.Duration
	logger   zerolog.Logger
}

// NewCachingSender wraps next. config identifies the caller the entries belong to.
func NewCachingSender(next Sender, cache Cache, config Config, ttl time.Duration, logger zerolog.Logger) *CachingSender {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	identity := cacheIdentity(config)
	return &CachingSender{
		next:     next,
		cache:    cache,
		database: config.Database(),
		identity: identity,
		tag:      hex.EncodeToString(identity[:8]),
		ttl:      ttl,
		logger:   logger,
	}
}

// cacheIdentity digests everything that decides how the server judges a call.
func cacheIdentity(config Config) [32]byte {
	b, _ := json.Marshal(struct {
		Endpoint string            `json:"endpoint"`
		Database string            `json:"database"`
		Password string            `json:"password"`
		Token    string            `json:"token"`
		Headers  map[string]string `json:"headers"`
	}{
		Endpoint: config.Endpoint(),
		Database: config.Database(),
		Password: config.password,
		Token:    config.Token(),
		Headers:  config.Headers(),
	})
	return blake3.Sum256(b)
}

// Send implements Sender.
func (s *CachingSender) Send(ctx context.Context, target Target, method Method, payload Payload) *Result {
	if method.IsWrite() {
		result := s.next.Send(ctx, target, method, payload)
		if result.Ack {
			s.invalidate(ctx, target, method, payload)
		}
		return result
	}

	key, ok := s.key(target, method, payload)
	if !ok {
		return s.next.Send(ctx, target, method, payload)
	}

	if cached := s.lookup(ctx, key); cached != nil {
		return cached
	}

	result := s.next.Send(ctx, target, method, payload)
	if result.Ack {
		s.store(ctx, key, result)
	}
	return result
}

func (s *CachingSender) lookup(ctx context.Context, key string) *Result {
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("octavia cache read failed")
		return nil
	}
	if raw == nil {
		return nil
	}

	result := &Result{}
	if err := json.Unmarshal(raw, result); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("octavia cache entry corrupted")
		return nil
	}
	s.logger.Debug().Str("key", key).Msg("octavia cache hit")
	return result
}

func (s *CachingSender) store(ctx context.Context, key string, result *Result) {
	raw, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.ttl); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("octavia cache write failed")
	}
}

func (s *CachingSender) invalidate(ctx context.Context, target Target, method Method, payload Payload) {
	database := escapeGlob(s.databasePrefix())

	var patterns []string
	if target == TargetDatabase && method == MethodDelete {
		patterns = []string{database + "*"}
	} else {
		patterns = []string{
			database + "*:" + escapeGlob(scopeName(target, payload)) + ":*",
			database + "*:db:*",
		}
	}

	for _, pattern := range patterns {
		if _, err := s.cache.DeletePattern(ctx, pattern); err != nil {
			s.logger.Warn().Err(err).Str("pattern", pattern).Msg("octavia cache invalidation failed")
		}
	}
}

// key returns octavia:<database>:<identity tag>:<scope>:<method>:<hash>,
// where the hash covers the full identity and the call.
func (s *CachingSender) key(target Target, method Method, payload Payload) (string, bool) {
	b, err := json.Marshal(struct {
		Target  Target  `json:"target"`
		Method  Method  `json:"method"`
		Payload Payload `json:"payload"`
	}{target, method, payload})
	if err != nil {
		return "", false
	}

	h := blake3.New()
	_, _ = h.Write(s.identity[:])
	_, _ = h.Write(b)
	sum := h.Sum(nil)

	return s.databasePrefix() + s.tag + ":" + scopeName(target, payload) + ":" + string(method) + ":" + hex.EncodeToString(sum), true
}

func (s *CachingSender) databasePrefix() string {
	return CacheKeyPrefix + ":" + s.database + ":"
}

func scopeName(target Target, payload Payload) string {
	if target == TargetCollection {
		name, _ := payload[FieldCollectionName].(string)
		return "c:" + name
	}
	return "db"
}

// escapeGlob escapes the characters Redis treats specially in MATCH patterns.
func escapeGlob(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '\\':
			b.WriteRune('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
