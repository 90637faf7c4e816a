package config

import (
	"fmt"
	"os"
	"strings"
	"sync/atomic"

	"github.com/joho/godotenv"
)

// Browser-side names of the three values. The same names are accepted as
// environment variables and take precedence over the plain aliases.
const (
	KeyAPIBaseURL      = "ENV_API_BASE_URL"
	KeySupabaseURL     = "ENV_SUPABASE_URL"
	KeySupabaseAnonKey = "ENV_SUPABASE_ANON_KEY"
)

var (
	apiBaseURLKeys      = []string{KeyAPIBaseURL, "API_BASE_URL"}
	supabaseURLKeys     = []string{KeySupabaseURL, "SUPABASE_URL"}
	supabaseAnonKeyKeys = []string{KeySupabaseAnonKey, "SUPABASE_ANON_KEY"}
)

// Source supplies raw configuration values by key.
type Source interface {
	Lookup(key string) (string, bool)
}

// EnvSource reads the process environment.
type EnvSource struct{}

func (EnvSource) Lookup(key string) (string, bool) {
	return os.LookupEnv(key)
}

// MapSource serves values from memory.
type MapSource map[string]string

func (m MapSource) Lookup(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

// DotEnvFile parses a .env file into a MapSource without touching the
// process environment.
func DotEnvFile(path string) (MapSource, error) {
	m, err := godotenv.Read(path)
	if err != nil {
		return nil, err
	}
	return MapSource(m), nil
}

// Layered consults each source in order; the first non-empty value wins.
type Layered []Source

func (l Layered) Lookup(key string) (string, bool) {
	found := false
	for _, s := range l {
		if s == nil {
			continue
		}
		v, ok := s.Lookup(key)
		if !ok {
			continue
		}
		found = true
		if v != "" {
			return v, true
		}
	}
	return "", found
}

// Override answers each deployment value from Top whenever Top defines any
// of that value's keys, even as the empty string, so a file can switch a
// value off. Everything else comes from Base.
type Override struct {
	Top, Base Source
}

func (o Override) Lookup(key string) (string, bool) {
	if o.Top != nil && definesAny(o.Top, aliasesOf(key)) {
		return o.Top.Lookup(key)
	}
	if o.Base == nil {
		return "", false
	}
	return o.Base.Lookup(key)
}

func aliasesOf(key string) []string {
	for _, keys := range [][]string{apiBaseURLKeys, supabaseURLKeys, supabaseAnonKeyKeys} {
		for _, k := range keys {
			if k == key {
				return keys
			}
		}
	}
	return []string{key}
}

func definesAny(src Source, keys []string) bool {
	for _, k := range keys {
		if _, ok := src.Lookup(k); ok {
			return true
		}
	}
	return false
}

// DeploymentSource combines the process environment with an optional
// dotenv file. With fileWins the file overrides the environment key by key,
// explicit empty values included; otherwise non-empty environment values
// win over the file. An unreadable file is an error.
func DeploymentSource(envFile string, fileWins bool) (Source, error) {
	if strings.TrimSpace(envFile) == "" {
		return EnvSource{}, nil
	}
	file, err := DotEnvFile(envFile)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", envFile, err)
	}
	if fileWins {
		return Override{Top: file, Base: EnvSource{}}, nil
	}
	return Layered{EnvSource{}, file}, nil
}

// Load reads the three deployment values from src. Values are taken
// verbatim; anything unset becomes the empty string.
func Load(src Source) DeploymentConfig {
	if src == nil {
		return DeploymentConfig{}
	}
	return NewDeploymentConfig(
		first(src, apiBaseURLKeys),
		first(src, supabaseURLKeys),
		first(src, supabaseAnonKeyKeys),
	)
}

func first(src Source, keys []string) string {
	for _, k := range keys {
		if v, ok := src.Lookup(k); ok && v != "" {
			return v
		}
	}
	return ""
}

// Holder is the shared handle to the current DeploymentConfig. Components
// receive a *Holder instead of reading ambient globals.
type Holder struct {
	v atomic.Pointer[DeploymentConfig]
}

func NewHolder(cfg DeploymentConfig) *Holder {
	h := &Holder{}
	h.Store(cfg)
	return h
}

// Load replaces all three values with those read from src and returns them.
func (h *Holder) Load(src Source) DeploymentConfig {
	cfg := Load(src)
	h.Store(cfg)
	return cfg
}

// LoadFile reloads from envFile layered over the process environment. When
// the file cannot be read the current config is kept and returned with the
// error.
func (h *Holder) LoadFile(envFile string) (DeploymentConfig, error) {
	src, err := DeploymentSource(envFile, true)
	if err != nil {
		return h.Current(), err
	}
	return h.Load(src), nil
}

// Store overwrites the current config. Last write wins.
func (h *Holder) Store(cfg DeploymentConfig) {
	h.v.Store(&cfg)
}

// Current returns the last stored config, or the all-empty config if
// nothing was stored yet.
func (h *Holder) Current() DeploymentConfig {
	if p := h.v.Load(); p != nil {
		return *p
	}
	return DeploymentConfig{}
}
