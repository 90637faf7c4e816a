// Package envjs reads and writes env-config.js, the script a static
// front-end loads before anything else to pick up its deployment values as
// window globals.
package envjs

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/mgeovany/envshim/internal/config"
)

var ErrMalformed = errors.New("envjs: malformed assignment")

const header = `/**
 * Environment Configuration
 *
 * Generated at deploy time. Regenerate this file per environment instead of
 * editing it by hand; empty strings mean "not configured".
 */

`

// Keys in the order they appear in a rendered file.
var Keys = []string{
	config.KeySupabaseURL,
	config.KeySupabaseAnonKey,
	config.KeyAPIBaseURL,
}

func valueOf(cfg config.DeploymentConfig, key string) string {
	switch key {
	case config.KeySupabaseURL:
		return cfg.SupabaseURL()
	case config.KeySupabaseAnonKey:
		return cfg.SupabaseAnonKey()
	case config.KeyAPIBaseURL:
		return cfg.APIBaseURL()
	}
	return ""
}

func isKey(name string) bool {
	for _, k := range Keys {
		if k == name {
			return true
		}
	}
	return false
}

// Render writes a complete env-config.js. All three globals are always
// assigned; unset values are written as ''.
func Render(w io.Writer, cfg config.DeploymentConfig) error {
	var b bytes.Buffer
	b.WriteString(header)
	for _, k := range Keys {
		b.WriteString(assignment(k, valueOf(cfg, k)))
		b.WriteByte('\n')
	}
	_, err := w.Write(b.Bytes())
	return err
}

func assignment(key, value string) string {
	return "window." + key + " = " + Quote(value) + ";"
}

// Parse reads the three globals back out of an env-config.js. Lines that
// are not window.ENV_* assignments are ignored; keys that never appear are
// reported as empty.
func Parse(r io.Reader) (config.DeploymentConfig, error) {
	vals := config.MapSource{}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	n := 0
	inComment := false
	for sc.Scan() {
		n++
		line := sc.Text()
		a, ok, err := parseCode(line, inComment)
		inComment = blockCommentOpen(line, inComment)
		if err != nil {
			return config.DeploymentConfig{}, fmt.Errorf("line %d: %w", n, err)
		}
		if ok {
			vals[a.key] = a.value
		}
	}
	if err := sc.Err(); err != nil {
		return config.DeploymentConfig{}, err
	}
	return config.Load(vals), nil
}

// Substitute rewrites the assignment literals of an existing env-config.js
// and keeps everything else (comments, ordering, trailing remarks) intact.
// Keys the source lacks are appended.
func Substitute(src []byte, cfg config.DeploymentConfig) ([]byte, error) {
	lines := strings.Split(string(src), "\n")
	seen := map[string]bool{}
	inComment := false
	for i, line := range lines {
		code := strings.TrimSuffix(line, "\r")
		a, ok, err := parseCode(code, inComment)
		inComment = blockCommentOpen(code, inComment)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		if !ok {
			continue
		}
		seen[a.key] = true
		lines[i] = line[:a.start] + Quote(valueOf(cfg, a.key)) + line[a.end:]
	}

	out := strings.Join(lines, "\n")
	var missing []string
	for _, k := range Keys {
		if !seen[k] {
			missing = append(missing, assignment(k, valueOf(cfg, k)))
		}
	}
	if len(missing) > 0 {
		if out != "" && !strings.HasSuffix(out, "\n") {
			out += "\n"
		}
		out += strings.Join(missing, "\n") + "\n"
	}
	return []byte(out), nil
}

type parsedAssignment struct {
	key   string
	value string
	// byte span of the quoted literal within the line
	start, end int
}

// parseCode parses the part of line that lies outside a block comment
// carried over from earlier lines.
func parseCode(line string, inComment bool) (parsedAssignment, bool, error) {
	off := 0
	if inComment {
		k := strings.Index(line, "*/")
		if k < 0 {
			return parsedAssignment{}, false, nil
		}
		off = k + 2
	}
	a, ok, err := parseLine(line[off:])
	if !ok || err != nil {
		return a, ok, err
	}
	a.start += off
	a.end += off
	return a, true, nil
}

// blockCommentOpen reports whether a /* comment is still open after line.
// Quoted strings and // comments are skipped.
func blockCommentOpen(line string, open bool) bool {
	for i := 0; i < len(line); i++ {
		if open {
			if strings.HasPrefix(line[i:], "*/") {
				open = false
				i++
			}
			continue
		}
		switch c := line[i]; {
		case c == '\'' || c == '"' || c == '`':
			for i++; i < len(line) && line[i] != c; i++ {
				if line[i] == '\\' {
					i++
				}
			}
		case strings.HasPrefix(line[i:], "//"):
			return false
		case strings.HasPrefix(line[i:], "/*"):
			open = true
			i++
		}
	}
	return open
}

func parseLine(line string) (parsedAssignment, bool, error) {
	i := skipSpace(line, 0)
	const prefix = "window."
	if !strings.HasPrefix(line[i:], prefix) {
		return parsedAssignment{}, false, nil
	}
	i += len(prefix)

	j := i
	for j < len(line) && isIdentByte(line[j]) {
		j++
	}
	key := line[i:j]
	if !isKey(key) {
		return parsedAssignment{}, false, nil
	}

	j = skipSpace(line, j)
	if j >= len(line) || line[j] != '=' {
		return parsedAssignment{}, false, fmt.Errorf("%w: %s has no value", ErrMalformed, key)
	}
	start := skipSpace(line, j+1)
	value, end, err := unquote(line, start)
	if err != nil {
		return parsedAssignment{}, false, fmt.Errorf("%s: %w", key, err)
	}

	rest := strings.TrimSpace(line[end:])
	rest = strings.TrimPrefix(rest, ";")
	rest = strings.TrimSpace(rest)
	if rest != "" && !strings.HasPrefix(rest, "//") && !strings.HasPrefix(rest, "/*") {
		return parsedAssignment{}, false, fmt.Errorf("%w: %s has trailing %q", ErrMalformed, key, rest)
	}

	return parsedAssignment{key: key, value: value, start: start, end: end}, true, nil
}

func skipSpace(s string, i int) int {
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	return i
}

func isIdentByte(c byte) bool {
	return c == '_' || c == '$' || (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')
}
