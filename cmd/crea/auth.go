package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/hrygo/creastudio/client"
)

// readPassword takes the flag, then CREA_PASSWORD, then a line from stdin.
func readPassword(cmd *cobra.Command, flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if env := os.Getenv("CREA_PASSWORD"); env != "" {
		return env, nil
	}
	fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return "", errors.Wrap(err, "failed to read password")
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func newLoginCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			pw, err := readPassword(cmd, password)
			if err != nil {
				return err
			}
			c, err := newClient()
			if err != nil {
				return err
			}
			res, err := unwrap(cmd.ErrOrStderr(), c.Auth.Login(cmd.Context(), &client.LoginRequest{Email: email, Password: pw}))
			if err != nil {
				return err
			}
			name := email
			if res.User != nil && res.User.Name != "" {
				name = res.User.Name
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", name)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (or CREA_PASSWORD)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newRegisterCmd() *cobra.Command {
	var in client.RegisterRequest
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			pw, err := readPassword(cmd, in.Password)
			if err != nil {
				return err
			}
			in.Password = pw
			c, err := newClient()
			if err != nil {
				return err
			}
			user, err := unwrap(cmd.ErrOrStderr(), c.Auth.Register(cmd.Context(), &in))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Account %s created, run `crea login --email %s` to sign in\n", user.Name, user.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Name, "name", "", "display name")
	cmd.Flags().StringVar(&in.Email, "email", "", "account email")
	cmd.Flags().StringVar(&in.Password, "password", "", "account password (or CREA_PASSWORD)")
	cmd.Flags().StringVar(&in.WhatsAppNumber, "whatsapp", "", "whatsapp number")
	cmd.Flags().StringVar(&in.GeminiPromptPrefix, "prompt-prefix", "", "text prepended to every generation prompt")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			resp := c.Auth.Logout()
			if _, err := unwrap(cmd.ErrOrStderr(), resp); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp.Message)
			return nil
		},
	}
}

func newWhoamiCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Verify the session and show the account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			user, err := unwrap(cmd.ErrOrStderr(), c.Auth.Verify(cmd.Context()))
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), user)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s <%s> (id %d)\n", user.Name, user.Email, user.ID)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}
