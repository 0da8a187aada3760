package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/andrebq/dumbauth/cmd/dumbauth/passwd"
	"github.com/andrebq/dumbauth/cmd/dumbauth/serve"
)

func main() {
	app := &cli.App{
		Name:  "dumbauth",
		Usage: "Forward-authentication service for reverse proxies",
		Commands: []*cli.Command{
			serve.Cmd(),
			passwd.Cmd(),
		},
	}
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	err := app.RunContext(ctx, os.Args)
	if err != nil {
		log.Error().Err(err).Msg("Application failed")
		os.Exit(1)
	}
}
