package serve

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/andrebq/dumbauth/internal/cmdflags"
	"github.com/andrebq/dumbauth/internal/config"
	"github.com/andrebq/dumbauth/internal/datastore"
	"github.com/andrebq/dumbauth/internal/httpapi"
	"github.com/andrebq/dumbauth/internal/httpserver"
	"github.com/andrebq/dumbauth/internal/logutil"
	"github.com/andrebq/dumbauth/internal/password"
	"github.com/andrebq/dumbauth/internal/session"
)

func Cmd() *cli.Command {
	var (
		bindAddr   string
		publicPath string

		plainPassword    string
		passwordFile     string
		passwordHash     string
		passwordHashFile string

		allowBasic   bool
		allowBearer  bool
		allowSession bool

		cookieName    string
		cookieDomain  string
		sessionExpiry = config.DefaultSessionExpiry

		datastoreSpec string
		readMode      string
		writeMode     string

		debug bool
	)

	return &cli.Command{
		Name:  "serve",
		Usage: "Start the forward-authentication server",
		Flags: []cli.Flag{
			cmdflags.BindAddr(&bindAddr),
			cmdflags.PublicPath(&publicPath),
			&cli.StringFlag{
				Name:        "password",
				Usage:       "The password used to authenticate",
				EnvVars:     []string{"DUMB_AUTH_PASSWORD"},
				Destination: &plainPassword,
			},
			&cli.StringFlag{
				Name:        "password-file",
				Usage:       "File containing the password used to authenticate",
				EnvVars:     []string{"DUMB_AUTH_PASSWORD_FILE"},
				Destination: &passwordFile,
			},
			&cli.StringFlag{
				Name:        "password-hash",
				Usage:       "Hash of the password used to authenticate (see the passwd subcommand)",
				EnvVars:     []string{"DUMB_AUTH_PASSWORD_HASH"},
				Destination: &passwordHash,
			},
			&cli.StringFlag{
				Name:        "password-hash-file",
				Usage:       "File containing the hash of the password used to authenticate",
				EnvVars:     []string{"DUMB_AUTH_PASSWORD_HASH_FILE"},
				Destination: &passwordHashFile,
			},
			&cli.BoolFlag{
				Name:        "allow-basic",
				Usage:       "Allow HTTP Basic authentication (the username is ignored, only the password is checked)",
				EnvVars:     []string{"DUMB_AUTH_ALLOW_BASIC"},
				Destination: &allowBasic,
			},
			&cli.BoolFlag{
				Name:        "allow-bearer",
				Usage:       "Allow HTTP Bearer tokens carrying the password",
				EnvVars:     []string{"DUMB_AUTH_ALLOW_BEARER"},
				Destination: &allowBearer,
			},
			&cli.BoolFlag{
				Name:        "allow-session",
				Usage:       "Allow interactive cookie-backed sessions",
				EnvVars:     []string{"DUMB_AUTH_ALLOW_SESSION"},
				Value:       true,
				Destination: &allowSession,
			},
			&cli.StringFlag{
				Name:        "session-cookie-name",
				Usage:       "Name of the session cookie",
				EnvVars:     []string{"DUMB_AUTH_SESSION_COOKIE_NAME"},
				Value:       config.DefaultSessionCookieName,
				Destination: &cookieName,
			},
			&cli.StringFlag{
				Name:        "session-cookie-domain",
				Usage:       "Parent domain to set the session cookie on; leave unset for a per-domain session",
				EnvVars:     []string{"DUMB_AUTH_SESSION_COOKIE_DOMAIN"},
				Destination: &cookieDomain,
			},
			&cli.GenericFlag{
				Name:    "session-expiry",
				Usage:   `How long after creation a session expires: "never", "session" or a duration like "672h"`,
				EnvVars: []string{"DUMB_AUTH_SESSION_EXPIRY"},
				Value:   &sessionExpiry,
			},
			cmdflags.Datastore(&datastoreSpec),
			cmdflags.DatastoreReadMode(&readMode),
			cmdflags.DatastoreWriteMode(&writeMode),
			&cli.BoolFlag{
				Name:        "debug",
				Usage:       "Log at debug level",
				EnvVars:     []string{"DUMB_AUTH_DEBUG"},
				Destination: &debug,
			},
		},
		Action: func(cctx *cli.Context) error {
			logger := logutil.Setup(debug)
			ctx := logutil.WithLogger(cctx.Context, logger)

			if err := config.ValidatePublicPath(publicPath); err != nil {
				return err
			}
			pw, err := resolvePassword(plainPassword, passwordFile, passwordHash, passwordHashFile)
			if err != nil {
				return err
			}
			opts, err := datastoreOptions(readMode, writeMode)
			if err != nil {
				return err
			}

			store, err := datastore.Open(ctx, datastoreSpec, opts)
			if err != nil {
				return fmt.Errorf("unable to open datastore, cause %w", err)
			}
			defer store.Close()

			cfg := &config.AppConfig{
				BindAddr:   bindAddr,
				PublicPath: publicPath,
				Datastore:  datastoreSpec,
				Auth: config.AuthConfig{
					Password:            pw,
					AllowBasic:          allowBasic,
					AllowBearer:         allowBearer,
					AllowSession:        allowSession,
					SessionCookieName:   cookieName,
					SessionCookieDomain: cookieDomain,
					SessionExpiry:       sessionExpiry,
				},
			}

			checker := password.NewChecker()
			sessions := session.NewManager(cfg.Auth.SessionExpiry, store)
			handler := httpapi.AsHandler(cfg, checker, sessions)

			logger.Info().Str("bind.addr", bindAddr).Msg("Listening for auth requests")
			return httpserver.Serve(ctx, bindAddr, handler)
		},
	}
}

// resolvePassword enforces that exactly one password source is configured
// and loads it. Hash parse failures are fatal here, at startup, never at
// request time.
func resolvePassword(plain, plainFile, hash, hashFile string) (password.Password, error) {
	set := 0
	for _, v := range []string{plain, plainFile, hash, hashFile} {
		if v != "" {
			set++
		}
	}
	if set == 0 {
		return password.Password{}, errors.New("one of --password, --password-file, --password-hash or --password-hash-file is required")
	}
	if set > 1 {
		return password.Password{}, errors.New("only one of --password, --password-file, --password-hash or --password-hash-file may be set")
	}

	switch {
	case plain != "":
		return password.Plain(plain), nil
	case plainFile != "":
		secret, err := readSecretFile(plainFile)
		if err != nil {
			return password.Password{}, err
		}
		if secret == "" {
			return password.Password{}, errors.New("password cannot be empty")
		}
		return password.Plain(secret), nil
	case hash != "":
		return password.ParseHash(hash)
	default:
		phc, err := readSecretFile(hashFile)
		if err != nil {
			return password.Password{}, err
		}
		return password.ParseHash(phc)
	}
}

func readSecretFile(path string) (string, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("unable to read %v, cause %w", path, err)
	}
	// Trim a single trailing newline, editors add one.
	s := strings.TrimSuffix(string(buf), "\n")
	return strings.TrimSuffix(s, "\r"), nil
}

func datastoreOptions(readMode, writeMode string) (datastore.Options, error) {
	rm, err := datastore.ParseReadMode(readMode)
	if err != nil {
		return datastore.Options{}, err
	}
	wm, err := datastore.ParseWriteMode(writeMode)
	if err != nil {
		return datastore.Options{}, err
	}
	return datastore.Options{ReadMode: rm, WriteMode: wm}, nil
}
