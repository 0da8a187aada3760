// Package cmdflags holds the CLI flags shared by commands, so defaults
// and env-var names stay consistent everywhere they appear.
package cmdflags

import (
	"github.com/urfave/cli/v2"

	"github.com/andrebq/dumbauth/internal/config"
)

func BindAddr(out *string) cli.Flag {
	return &cli.StringFlag{
		Name:        "bind-addr",
		Aliases:     []string{"b"},
		Usage:       "IP address and port to listen on",
		EnvVars:     []string{"DUMB_AUTH_BIND_ADDR"},
		Value:       config.DefaultBindAddr,
		Destination: out,
	}
}

func PublicPath(out *string) cli.Flag {
	return &cli.StringFlag{
		Name:        "public-path",
		Usage:       "Base path for the login routes",
		EnvVars:     []string{"DUMB_AUTH_PUBLIC_PATH"},
		Value:       config.DefaultPublicPath,
		Destination: out,
	}
}

func Datastore(out *string) cli.Flag {
	return &cli.StringFlag{
		Name:        "datastore",
		Usage:       "Where to keep sessions: empty for in-memory, redis:// or sqlite:// URLs, or the path of an embedded datastore file. The file contains session secrets (never passwords), keep its permissions tight",
		EnvVars:     []string{"DUMB_AUTH_DATASTORE"},
		Destination: out,
	}
}

func DatastoreReadMode(out *string) cli.Flag {
	return &cli.StringFlag{
		Name:        "datastore-read-mode",
		Usage:       "How embedded datastore reads run: sync or async",
		EnvVars:     []string{"DUMB_AUTH_DATASTORE_READ_MODE"},
		Value:       "sync",
		Destination: out,
	}
}

func DatastoreWriteMode(out *string) cli.Flag {
	return &cli.StringFlag{
		Name:        "datastore-write-mode",
		Usage:       "How embedded datastore writes run: sync, async or thread",
		EnvVars:     []string{"DUMB_AUTH_DATASTORE_WRITE_MODE"},
		Value:       "thread",
		Destination: out,
	}
}
