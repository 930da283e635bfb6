package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"foodstall/internal/auth"
)

// foodstall hash-password: print a bcrypt hash for an auth.admins entry.
var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password [password]",
	Short: "Print a bcrypt hash for the admin allow-list",
	Long:  "Hashes the password given as an argument, or the first line of stdin when no argument is given.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var plain string
		if len(args) == 1 {
			plain = args[0]
		} else {
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("failed to read password: %w", err)
			}
			plain = strings.TrimRight(line, "\r\n")
		}

		hash, err := auth.HashPassword(plain)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), hash)
		return nil
	},
}
