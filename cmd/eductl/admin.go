package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/easylearn/easylearn-backend/internal/model"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newCreateAdminCmd() *cobra.Command {
	var name, email string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin account without an access token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			reader := bufio.NewReader(cmd.InOrStdin())
			out := cmd.OutOrStdout()

			if name == "" {
				name = prompt(reader, out, "Name: ")
			}
			if email == "" {
				email = prompt(reader, out, "Email: ")
			}
			if name == "" || email == "" {
				return errors.New("name and email are required")
			}

			fmt.Fprint(out, "Password: ")
			raw, err := term.ReadPassword(int(os.Stdin.Fd()))
			fmt.Fprintln(out)
			if err != nil {
				return fmt.Errorf("read password: %w", err)
			}
			if len(raw) < 6 {
				return errors.New("password must be at least 6 characters")
			}

			ctx := cmd.Context()
			a, err := openApp(ctx, false)
			if err != nil {
				return err
			}
			defer a.Close()

			user, err := a.auth().CreateAdmin(ctx, name, email, string(raw))
			if err != nil {
				return err
			}
			fmt.Fprintln(out, createdAdminLine(user))
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "login email")
	return cmd
}

func prompt(r *bufio.Reader, out io.Writer, label string) string {
	fmt.Fprint(out, label)
	line, _ := r.ReadString('\n')
	return strings.TrimSpace(line)
}

func createdAdminLine(u *model.User) string {
	email := "no email"
	if u.Email != nil {
		email = *u.Email
	}
	return fmt.Sprintf("Admin %q (%s) created with id %s", u.Name, email, u.ID)
}
