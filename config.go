/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	storageFile  = "file"
	storageRedis = "redis"
)

type Config struct {
	adminPassword   string
	allowedOrigins  []string
	assignmentsFile string
	bind            string
	dataDir         string
	frontendURL     string
	playersFile     string
	port            int
	prefix          string
	profile         bool
	redisURL        string
	stateFile       string
	storage         string
	tlsCert         string
	tlsKey          string
	verbose         bool
	version         bool
}

func (c *Config) validate() error {
	if (c.tlsCert == "") != (c.tlsKey == "") {
		return errors.New("both --tls-cert and --tls-key must be provided together")
	}
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	switch c.storage {
	case storageFile, storageRedis:
	default:
		return fmt.Errorf("invalid storage backend (must be %q or %q): %q", storageFile, storageRedis, c.storage)
	}
	if c.adminPassword == "" {
		return errors.New("--admin-password must be set")
	}
	for _, name := range []string{c.playersFile, c.assignmentsFile, c.stateFile} {
		if name == "" || filepath.Base(name) != name {
			return fmt.Errorf("invalid document name (must be a bare file name): %q", name)
		}
	}
	return nil
}

func (c *Config) scheme() string {
	if c.tlsCert != "" && c.tlsKey != "" {
		return "https"
	}
	return "http"
}

// origins returns the allow-list reduced to scheme://host[:port], which is
// all a browser ever sends in the Origin header.
func (c *Config) origins() map[string]bool {
	allowed := make(map[string]bool, len(c.allowedOrigins))
	for _, o := range c.allowedOrigins {
		o = strings.TrimSpace(o)
		if o == "" {
			continue
		}
		if o == "*" {
			allowed[o] = true
			continue
		}
		u, err := url.Parse(o)
		if err != nil || u.Scheme == "" || u.Host == "" {
			allowed[strings.TrimSuffix(o, "/")] = true
			continue
		}
		allowed[u.Scheme+"://"+u.Host] = true
	}
	return allowed
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("KILLERGAME")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "killergame",
		Short:         "Backend for the killer party game: secret targets, missions and accusations.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return ServePage(cmd.Context(), cfg)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVar(&cfg.adminPassword, "admin-password", "", "shared password for admin actions (env: KILLERGAME_ADMIN_PASSWORD)")
	fs.StringSliceVar(&cfg.allowedOrigins, "allowed-origins", []string{"https://lucasveiga02.github.io"}, "origins allowed to call the api (env: KILLERGAME_ALLOWED_ORIGINS)")
	fs.StringVar(&cfg.assignmentsFile, "assignments-file", "assignments.json", "assignment table document (env: KILLERGAME_ASSIGNMENTS_FILE)")
	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: KILLERGAME_BIND)")
	fs.StringVar(&cfg.dataDir, "data-dir", ".", "directory holding the game documents (env: KILLERGAME_DATA_DIR)")
	fs.StringVar(&cfg.frontendURL, "frontend-url", "https://lucasveiga02.github.io/killergame-frontend/", "url encoded by the qr code endpoint (env: KILLERGAME_FRONTEND_URL)")
	fs.StringVar(&cfg.playersFile, "players-file", "players.json", "player roster document (env: KILLERGAME_PLAYERS_FILE)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: KILLERGAME_PORT)")
	fs.StringVar(&cfg.prefix, "prefix", "", "path to prepend to all URLs, for use behind reverse proxy (env: KILLERGAME_PREFIX)")
	fs.BoolVar(&cfg.profile, "profile", false, "register net/http/pprof handlers (env: KILLERGAME_PROFILE)")
	fs.StringVar(&cfg.redisURL, "redis-url", "redis://localhost:6379/0", "redis connection url, used with --storage=redis (env: KILLERGAME_REDIS_URL)")
	fs.StringVar(&cfg.stateFile, "state-file", "state.json", "player progress document (env: KILLERGAME_STATE_FILE)")
	fs.StringVar(&cfg.storage, "storage", storageFile, "document backend, file or redis (env: KILLERGAME_STORAGE)")
	fs.StringVar(&cfg.tlsCert, "tls-cert", "", "path to tls certificate (env: KILLERGAME_TLS_CERT)")
	fs.StringVar(&cfg.tlsKey, "tls-key", "", "path to tls keyfile (env: KILLERGAME_TLS_KEY)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: KILLERGAME_VERBOSE)")
	fs.BoolVarP(&cfg.version, "version", "V", false, "display version and exit (env: KILLERGAME_VERSION)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("killergame v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
