package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newAddUserCmd(a *app) *cobra.Command {
	var username, email string
	cmd := &cobra.Command{
		Use:   "adduser",
		Short: "Create a user account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			password, err := readPassword(cmd)
			if err != nil {
				return err
			}
			conn, err := a.openDB()
			if err != nil {
				return err
			}
			defer a.closeDB(conn)

			services, _, err := a.services(conn)
			if err != nil {
				return err
			}
			id, err := services.SignUp(username, email, password)
			if err != nil {
				return err
			}
			a.log.Infow("user_created", "user_id", id, "username", username)
			fmt.Fprintf(cmd.OutOrStdout(), "created user %q with id %d\n", username, id)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "login name")
	cmd.Flags().StringVarP(&email, "email", "e", "", "email address")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newPasswdCmd(a *app) *cobra.Command {
	var username string
	cmd := &cobra.Command{
		Use:   "passwd",
		Short: "Reset a user's password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			password, err := readPassword(cmd)
			if err != nil {
				return err
			}
			conn, err := a.openDB()
			if err != nil {
				return err
			}
			defer a.closeDB(conn)

			services, _, err := a.services(conn)
			if err != nil {
				return err
			}
			if err := services.SetPassword(username, password); err != nil {
				return err
			}
			a.log.Infow("password_changed", "username", username)
			fmt.Fprintln(cmd.OutOrStdout(), "password updated")
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "login name")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

// readPassword prompts without echo on a terminal, otherwise reads one line from stdin.
func readPassword(cmd *cobra.Command) (string, error) {
	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", errors.New("empty password")
	}
	return password, nil
}
