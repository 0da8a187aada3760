package passwd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/andrebq/dumbauth/internal/password"
)

// Cmd hashes a password for use with --password-hash[-file]. The password
// is read from stdin so it never shows up in shell history or ps output.
func Cmd() *cli.Command {
	var output string
	return &cli.Command{
		Name:  "passwd",
		Usage: "Hash a password (read from stdin) for use with --password-hash or --password-hash-file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "output",
				Aliases:     []string{"o"},
				Usage:       "File to write the hash to instead of stdout (file will be overwritten)",
				Destination: &output,
			},
		},
		Action: func(ctx *cli.Context) error {
			sc := bufio.NewScanner(os.Stdin)
			if !sc.Scan() {
				if err := sc.Err(); err != nil {
					return err
				}
				return errors.New("missing password from stdin")
			}
			plain := strings.TrimSpace(sc.Text())
			if len(plain) == 0 {
				return errors.New("missing password from stdin")
			}
			hash, err := password.HashPassword(plain)
			if err != nil {
				return err
			}
			if output == "" {
				fmt.Println(hash)
				return nil
			}
			return os.WriteFile(output, []byte(hash+"\n"), 0600)
		},
	}
}
