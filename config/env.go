package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// LookupFunc has the signature of os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// Env reads typed defaults from the environment. Unparseable values fall
// back to the default, as the scraper's getEnv helpers did.
type Env struct {
	lookup LookupFunc
}

func NewEnv(lookup LookupFunc) Env {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	return Env{lookup: lookup}
}

func (e Env) String(key, def string) string {
	if v, ok := e.lookup(key); ok && v != "" {
		return v
	}
	return def
}

func (e Env) Int(key string, def int) int {
	if v, ok := e.lookup(key); ok && v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return def
}

func (e Env) Int64(key string, def int64) int64 {
	if v, ok := e.lookup(key); ok && v != "" {
		if n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
			return n
		}
	}
	return def
}

func (e Env) Duration(key string, def time.Duration) time.Duration {
	if v, ok := e.lookup(key); ok && v != "" {
		if d, err := time.ParseDuration(strings.TrimSpace(v)); err == nil {
			return d
		}
	}
	return def
}

func (e Env) Bool(key string, def bool) bool {
	if v, ok := e.lookup(key); ok && v != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return b
		}
	}
	return def
}

// LoadDotEnv loads .env files into the process environment without
// overriding variables that are already set. Missing files are not an error.
// It reports whether anything was loaded.
func LoadDotEnv(paths ...string) (bool, error) {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	loaded := false
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return loaded, err
		}
		loaded = true
	}
	return loaded, nil
}
