package config

import (
	"strings"
	"time"
)

// CacheConfig defines settings for the response cache middleware.
// When Enabled is false or no Redis client is configured, caching will be disabled.
// MethodList is the comma separated list of HTTP methods to cache (e.g. GET,
// HEAD) and Methods is its upper-cased set form.  TTL defines the lifetime of
// cache entries.  KeyStrategy determines which parts of the request
// contribute to the cache key.  Prefix and MaxBodyBytes allow control over
// namespacing and the maximum size of responses to cache.
type CacheConfig struct {
	Enabled      bool            `mapstructure:"enabled"`
	MethodList   string          `mapstructure:"methods"`
	Methods      map[string]bool `mapstructure:"-"`
	TTL          time.Duration   `mapstructure:"ttl"`
	KeyStrategy  string          `mapstructure:"key_strategy"`
	Prefix       string          `mapstructure:"prefix"`
	MaxBodyBytes int             `mapstructure:"max_body_bytes"`
}

func (c *CacheConfig) normalize() {
	c.Methods = parseMethods(c.MethodList)
	if c.TTL <= 0 {
		c.TTL = 30 * time.Second
	}
	if c.Prefix == "" {
		c.Prefix = "cache"
	}
}

func parseMethods(s string) map[string]bool {
	m := map[string]bool{}
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(strings.ToUpper(p))
		if p != "" {
			m[p] = true
		}
	}
	return m
}
