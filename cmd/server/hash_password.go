package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/phrazzld/tasker-api/internal/config"
	"github.com/phrazzld/tasker-api/internal/domain"
	"github.com/phrazzld/tasker-api/internal/service/auth"
	"github.com/spf13/cobra"
)

var errEmptyPassword = errors.New("no password on stdin")

// newHashPasswordCommand prints a bcrypt hash for a password read from
// stdin, for provisioning accounts directly in the database.
func newHashPasswordCommand() *cobra.Command {
	var cost int

	cmd := &cobra.Command{
		Use:   "hash-password",
		Short: "Read a password from stdin and print its bcrypt hash",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return errEmptyPassword
			}
			password := strings.TrimRight(line, "\r\n")
			if password == "" {
				return errEmptyPassword
			}
			if err := domain.ValidatePassword(password); err != nil {
				return err
			}

			hash, err := auth.NewBcryptHasher(config.AuthConfig{BCryptCost: cost}).Hash(password)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), hash)
			return err
		},
	}
	cmd.Flags().IntVar(&cost, "cost", 10, "bcrypt work factor")
	return cmd
}
