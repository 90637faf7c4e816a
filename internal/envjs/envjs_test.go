package envjs

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgeovany/envshim/internal/config"
)

// placeholder is the env-config.js as it ships before any deploy step.
const placeholder = `/**
 * Environment Configuration
 */

// Environment variables - set these for your deployment
window.ENV_SUPABASE_URL = '';  // e.g., 'https://your-project.supabase.co'
window.ENV_SUPABASE_ANON_KEY = '';  // e.g., 'your-anon-key'
window.ENV_API_BASE_URL = '';  // e.g., 'https://your-api.railway.app' or leave empty for same-origin
`

func TestRenderUnconfigured(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, config.DeploymentConfig{}))

	out := buf.String()
	assert.Contains(t, out, "window.ENV_SUPABASE_URL = '';\n")
	assert.Contains(t, out, "window.ENV_SUPABASE_ANON_KEY = '';\n")
	assert.Contains(t, out, "window.ENV_API_BASE_URL = '';\n")

	got, err := Parse(strings.NewReader(out))
	require.NoError(t, err)
	assert.True(t, got.Equal(config.DeploymentConfig{}))
}

func TestRenderConfigured(t *testing.T) {
	cfg := config.NewDeploymentConfig("https://api.example.com", "https://proj.example-backend.co", "abc123")

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, cfg))

	out := buf.String()
	assert.Contains(t, out, "window.ENV_SUPABASE_URL = 'https://proj.example-backend.co';\n")
	assert.Contains(t, out, "window.ENV_SUPABASE_ANON_KEY = 'abc123';\n")
	assert.Contains(t, out, "window.ENV_API_BASE_URL = 'https://api.example.com';\n")

	got, err := Parse(strings.NewReader(out))
	require.NoError(t, err)
	assert.True(t, got.Equal(cfg))
}

func TestQuote(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "", want: `''`},
		{in: "plain", want: `'plain'`},
		{in: " padded ", want: `' padded '`},
		{in: "it's", want: `'it\'s'`},
		{in: `back\slash`, want: `'back\\slash'`},
		{in: "two\nlines\r", want: `'two\nlines\r'`},
		{in: "</script><script>alert(1)", want: `'\x3C/script>\x3Cscript>alert(1)'`},
		{in: "a\u2028b\u2029c", want: `'a\u2028b\u2029c'`},
		{in: "héllo", want: `'héllo'`},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Quote(tt.in))

			got, end, err := unquote(Quote(tt.in), 0)
			require.NoError(t, err)
			assert.Equal(t, tt.in, got)
			assert.Equal(t, len(Quote(tt.in)), end)
		})
	}
}

func TestParsePlaceholderWithTrailingComments(t *testing.T) {
	cfg, err := Parse(strings.NewReader(placeholder))
	require.NoError(t, err)
	assert.True(t, cfg.Equal(config.DeploymentConfig{}))
}

func TestParseVariants(t *testing.T) {
	src := `window.ENV_API_BASE_URL="https://api.example.com"
	window.ENV_SUPABASE_URL = 'https://p.supabase.co'  /* prod */
window.SOMETHING_ELSE = 42;
// window.ENV_SUPABASE_ANON_KEY = 'commented-out';
`
	cfg, err := Parse(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com", cfg.APIBaseURL())
	assert.Equal(t, "https://p.supabase.co", cfg.SupabaseURL())
	assert.Equal(t, "", cfg.SupabaseAnonKey())
}

func TestParseUnicodeEscapes(t *testing.T) {
	tests := []struct {
		name string
		lit  string
		want string
	}{
		{name: "bmp", lit: `'caf\u00e9'`, want: "café"},
		{name: "surrogate pair", lit: `'\uD83D\uDE00'`, want: "\U0001F600"},
		{name: "pair between text", lit: `'a\ud83d\ude00b'`, want: "a\U0001F600b"},
		{name: "hex byte", lit: `'\x41'`, want: "A"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Parse(strings.NewReader("window.ENV_SUPABASE_ANON_KEY = " + tt.lit + ";\n"))
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.SupabaseAnonKey())
		})
	}
}

const commentedExamples = `/*
window.ENV_API_BASE_URL = 'https://example.invalid';
window.ENV_SUPABASE_URL = 'https://example.supabase.co';
*/
window.ENV_API_BASE_URL = '/* not a comment';
window.ENV_SUPABASE_URL = ''; /* staging:
window.ENV_SUPABASE_URL = 'https://staging.supabase.co';
*/ window.ENV_SUPABASE_ANON_KEY = 'live';
`

func TestParseSkipsBlockComments(t *testing.T) {
	cfg, err := Parse(strings.NewReader(commentedExamples))
	require.NoError(t, err)
	assert.Equal(t, "/* not a comment", cfg.APIBaseURL())
	assert.Equal(t, "", cfg.SupabaseURL())
	assert.Equal(t, "live", cfg.SupabaseAnonKey())
}

func TestSubstituteLeavesBlockCommentsAlone(t *testing.T) {
	cfg := config.NewDeploymentConfig("https://api.example.com", "https://proj.supabase.co", "new-key")

	out, err := Substitute([]byte(commentedExamples), cfg)
	require.NoError(t, err)

	s := string(out)
	assert.Contains(t, s, "window.ENV_API_BASE_URL = 'https://example.invalid';\n")
	assert.Contains(t, s, "window.ENV_SUPABASE_URL = 'https://example.supabase.co';\n")
	assert.Contains(t, s, "window.ENV_SUPABASE_URL = 'https://staging.supabase.co';\n")
	assert.Contains(t, s, "window.ENV_API_BASE_URL = 'https://api.example.com';\n")
	assert.Contains(t, s, "window.ENV_SUPABASE_URL = 'https://proj.supabase.co'; /* staging:\n")
	assert.Contains(t, s, "*/ window.ENV_SUPABASE_ANON_KEY = 'new-key';\n")

	got, err := Parse(strings.NewReader(s))
	require.NoError(t, err)
	assert.True(t, cfg.Equal(got))
}

func TestParseLastAssignmentWins(t *testing.T) {
	src := "window.ENV_API_BASE_URL = 'https://placeholder';\nwindow.ENV_API_BASE_URL = 'https://real';\n"
	cfg, err := Parse(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, "https://real", cfg.APIBaseURL())
}

func TestParseMalformed(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{name: "unterminated", src: "window.ENV_API_BASE_URL = 'oops;\n"},
		{name: "not a literal", src: "window.ENV_API_BASE_URL = process.env.X;\n"},
		{name: "no value", src: "window.ENV_SUPABASE_URL;\n"},
		{name: "trailing code", src: "window.ENV_SUPABASE_URL = 'a' + 'b';\n"},
		{name: "bad escape", src: `window.ENV_SUPABASE_URL = '\xZZ';` + "\n"},
		{name: "lone high surrogate", src: `window.ENV_SUPABASE_URL = '\uD83Dx';` + "\n"},
		{name: "lone low surrogate", src: `window.ENV_SUPABASE_URL = '\uDE00';` + "\n"},
		{name: "high then bmp", src: `window.ENV_SUPABASE_URL = '\uD83D\u0041';` + "\n"},
		{name: "short pair", src: `window.ENV_SUPABASE_URL = '\uD83D\uDE';` + "\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.src))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformed))
		})
	}
}

func TestSubstituteKeepsComments(t *testing.T) {
	cfg := config.NewDeploymentConfig("https://api.example.com", "https://proj.example-backend.co", "abc123")

	out, err := Substitute([]byte(placeholder), cfg)
	require.NoError(t, err)

	s := string(out)
	assert.Contains(t, s, "// Environment variables - set these for your deployment\n")
	assert.Contains(t, s, "window.ENV_SUPABASE_URL = 'https://proj.example-backend.co';  // e.g., 'https://your-project.supabase.co'\n")
	assert.Contains(t, s, "window.ENV_SUPABASE_ANON_KEY = 'abc123';  // e.g., 'your-anon-key'\n")
	assert.Contains(t, s, "window.ENV_API_BASE_URL = 'https://api.example.com';  // e.g.,")
	assert.Equal(t, strings.Count(placeholder, "\n"), strings.Count(s, "\n"))

	got, err := Parse(bytes.NewReader(out))
	require.NoError(t, err)
	assert.True(t, got.Equal(cfg))
}

func TestSubstituteLastWriteWins(t *testing.T) {
	first, err := Substitute([]byte(placeholder), config.NewDeploymentConfig("https://staging.example.com", "", ""))
	require.NoError(t, err)

	second, err := Substitute(first, config.NewDeploymentConfig("https://api.example.com", "", ""))
	require.NoError(t, err)

	got, err := Parse(bytes.NewReader(second))
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com", got.APIBaseURL())
}

func TestSubstituteAppendsMissingKeys(t *testing.T) {
	src := "// partial\nwindow.ENV_API_BASE_URL = '';"
	out, err := Substitute([]byte(src), config.NewDeploymentConfig("", "https://p.supabase.co", "k"))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(string(out), "// partial\nwindow.ENV_API_BASE_URL = '';\n"))
	assert.Contains(t, string(out), "window.ENV_SUPABASE_URL = 'https://p.supabase.co';\n")
	assert.Contains(t, string(out), "window.ENV_SUPABASE_ANON_KEY = 'k';\n")
}

func TestSubstituteCRLF(t *testing.T) {
	src := "window.ENV_API_BASE_URL = '';\r\nwindow.ENV_SUPABASE_URL = '';\r\nwindow.ENV_SUPABASE_ANON_KEY = '';\r\n"
	out, err := Substitute([]byte(src), config.NewDeploymentConfig("https://api.example.com", "", ""))
	require.NoError(t, err)
	assert.Equal(t, "window.ENV_API_BASE_URL = 'https://api.example.com';\r\nwindow.ENV_SUPABASE_URL = '';\r\nwindow.ENV_SUPABASE_ANON_KEY = '';\r\n", string(out))
}

func TestSubstituteRejectsMalformed(t *testing.T) {
	_, err := Substitute([]byte("window.ENV_API_BASE_URL = 'open\n"), config.DeploymentConfig{})
	assert.True(t, errors.Is(err, ErrMalformed))
}
