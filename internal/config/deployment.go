package config

import "fmt"

// DeploymentConfig is the front-end's deployment-time configuration.
//
// It is immutable once built. An empty string is the only "unset" value:
// an empty API base URL means same origin, an empty Supabase URL means the
// optional integration is disabled.
type DeploymentConfig struct {
	apiBaseURL      string
	supabaseURL     string
	supabaseAnonKey string
}

func NewDeploymentConfig(apiBaseURL, supabaseURL, supabaseAnonKey string) DeploymentConfig {
	return DeploymentConfig{
		apiBaseURL:      apiBaseURL,
		supabaseURL:     supabaseURL,
		supabaseAnonKey: supabaseAnonKey,
	}
}

func (c DeploymentConfig) APIBaseURL() string      { return c.apiBaseURL }
func (c DeploymentConfig) SupabaseURL() string     { return c.supabaseURL }
func (c DeploymentConfig) SupabaseAnonKey() string { return c.supabaseAnonKey }

// SameOrigin reports whether the front-end should call the backend on the
// origin that served the page.
func (c DeploymentConfig) SameOrigin() bool {
	return c.apiBaseURL == ""
}

// SupabaseProject is the URL/key pair of the optional external backend.
type SupabaseProject struct {
	URL     string
	AnonKey string
}

// Supabase returns the external backend settings. ok is false when the URL
// is empty. The key is returned as-is, even when empty.
func (c DeploymentConfig) Supabase() (SupabaseProject, bool) {
	if c.supabaseURL == "" {
		return SupabaseProject{}, false
	}
	return SupabaseProject{URL: c.supabaseURL, AnonKey: c.supabaseAnonKey}, true
}

func (c DeploymentConfig) Equal(o DeploymentConfig) bool {
	return c == o
}

// String never prints the anon key.
func (c DeploymentConfig) String() string {
	key := "unset"
	if c.supabaseAnonKey != "" {
		key = "set"
	}
	return fmt.Sprintf("api_base_url=%q supabase_url=%q supabase_anon_key=%s", c.apiBaseURL, c.supabaseURL, key)
}
