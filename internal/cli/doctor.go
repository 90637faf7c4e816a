package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/mgeovany/envshim/internal/config"
	"github.com/mgeovany/envshim/internal/supabase"
	"github.com/mgeovany/envshim/internal/supakey"
)

type doctorDiag struct {
	fails int
	warns int
}

func (d *doctorDiag) okf(format string, args ...any) {
	printLine(styleGreen, "✔ "+format, args...)
}

func (d *doctorDiag) warnf(format string, args ...any) {
	d.warns++
	printLine(styleYellow, "⚠ "+format, args...)
}

func (d *doctorDiag) failf(format string, args ...any) {
	d.fails++
	printLine(styleRed, "✖ "+format, args...)
}

type doctorOptions struct {
	online bool
	now    time.Time
	// newProbe is swapped in tests.
	newProbe func(url, key string) (*supabase.Client, error)
}

func runDoctor(args []string) error {
	pos, vals, bools, err := parseArgs(args, []string{"--env-file", "--artifact"}, []string{"--online"})
	if err != nil {
		return err
	}
	if len(pos) > 0 {
		return errors.New("usage: envshim doctor [--env-file <f> | --artifact <env-config.js>] [--online]")
	}

	var cfg config.DeploymentConfig
	if p := vals["--artifact"]; p != "" {
		cfg, err = readArtifact(p)
		if err != nil {
			return err
		}
	} else {
		src, err := deploymentSource(vals["--env-file"])
		if err != nil {
			return err
		}
		cfg = config.Load(src)
	}

	_, _ = fmt.Fprintln(stdout, "envshim doctor")
	_, _ = fmt.Fprintln(stdout)

	d := diagnose(cfg, doctorOptions{online: bools["--online"], now: time.Now().UTC(), newProbe: supabase.New})

	_, _ = fmt.Fprintln(stdout)
	if d.fails > 0 {
		return fmt.Errorf("doctor found %d problem(s), %d warning(s)", d.fails, d.warns)
	}
	if d.warns > 0 {
		infof("%d warning(s)", d.warns)
	}
	return nil
}

// diagnose reports on cfg. It never changes values; the loader trusts the
// deployment pipeline and this is the opt-in place to double check it.
func diagnose(cfg config.DeploymentConfig, opts doctorOptions) *doctorDiag {
	d := &doctorDiag{}

	_, _ = fmt.Fprintln(stdout, "API")
	if cfg.SameOrigin() {
		d.okf("API base URL empty: requests go to the page's own origin")
	} else {
		checkURL(d, "API base URL", cfg.APIBaseURL())
		if strings.HasSuffix(cfg.APIBaseURL(), "/") {
			d.warnf("API base URL ends with '/': paths may end up with '//'")
		}
	}

	_, _ = fmt.Fprintln(stdout)
	_, _ = fmt.Fprintln(stdout, "Supabase")
	project, enabled := cfg.Supabase()
	switch {
	case !enabled && cfg.SupabaseAnonKey() == "":
		d.okf("integration disabled")
		return d
	case !enabled:
		d.warnf("anon key set without a Supabase URL: integration stays disabled")
		return d
	case project.AnonKey == "":
		d.failf("Supabase URL set without an anon key")
		checkURL(d, "Supabase URL", project.URL)
		return d
	}

	urlOK := checkURL(d, "Supabase URL", project.URL)
	if project.AnonKey != strings.TrimSpace(project.AnonKey) {
		d.warnf("anon key has surrounding whitespace")
	}

	claims, err := supakey.Inspect(project.AnonKey)
	if err != nil {
		d.warnf("anon key is not a JWT; skipping role/project checks")
	} else {
		switch {
		case claims.Role == supakey.RoleServiceRole:
			d.failf("anon key has role service_role: this key bypasses row level security and must never be shipped to browsers")
		case !claims.Public():
			d.warnf("anon key has unexpected role %q", claims.Role)
		default:
			d.okf("anon key role: anon")
		}

		if ref := supakey.ProjectRef(project.URL); ref != "" && claims.Ref != "" {
			if ref != claims.Ref {
				d.failf("anon key belongs to project %q but URL points at %q", claims.Ref, ref)
			} else {
				d.okf("anon key matches project %s", ref)
			}
		}

		if claims.Expired(opts.now) {
			d.failf("anon key expired at %s", claims.ExpiresAt.Format(time.RFC3339))
		}
	}

	if opts.online && urlOK && opts.newProbe != nil {
		client, err := opts.newProbe(project.URL, project.AnonKey)
		if err != nil {
			d.failf("cannot build Supabase client: %v", err)
			return d
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := client.Ping(ctx); err != nil {
			d.failf("Supabase not reachable: %v", err)
		} else {
			d.okf("Supabase reachable")
		}
	}

	return d
}

func checkURL(d *doctorDiag, label, raw string) bool {
	if raw != strings.TrimSpace(raw) {
		d.warnf("%s has surrounding whitespace", label)
	}
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		d.failf("%s is not an absolute http(s) URL: %q", label, raw)
		return false
	}
	if u.Scheme == "http" && !isLoopbackHost(u.Hostname()) {
		d.warnf("%s uses plain http: %s", label, raw)
	} else {
		d.okf("%s: %s", label, raw)
	}
	return true
}

func isLoopbackHost(host string) bool {
	host = strings.TrimSpace(strings.ToLower(host))
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	if ip != nil {
		return ip.IsLoopback()
	}
	return false
}
