package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/bpbdbogor/portal/internal/client"
)

// maxCaptchaAttempts bounds how often a wrong CAPTCHA is re-prompted.
const maxCaptchaAttempts = 3

func newLoginCmd() *cobra.Command {
	var (
		serverURL   string
		username    string
		password    string
		sessionFile string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to a running portal and store the session",
		Long: `Log in the same way the browser page does: type the displayed CAPTCHA,
then the credentials are posted to the server. On success the token and the
admin profile are written to the session file.`,
		Example: `  portal login --url http://localhost:8080 --username admin`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if sessionFile == "" {
				sessionFile = filepath.Join(resolveDataDir(), "session.json")
			}
			return runLogin(cmd, serverURL, username, password, sessionFile)
		},
	}

	cmd.Flags().StringVar(&serverURL, "url", "http://localhost:8080", "Portal base URL")
	cmd.Flags().StringVar(&username, "username", "", "Username (prompted if omitted)")
	cmd.Flags().StringVar(&password, "password", "", "Password (prompted if omitted)")
	cmd.Flags().StringVar(&sessionFile, "session-file", "", "Where to store the session (default: <data-dir>/session.json)")

	return cmd
}

func runLogin(cmd *cobra.Command, serverURL, username, password, sessionFile string) error {
	in := bufio.NewReader(cmd.InOrStdin())
	out := cmd.OutOrStdout()

	var err error
	if username == "" {
		if username, err = prompt(cmd, in, "Username: "); err != nil {
			return err
		}
	}
	if password == "" {
		if password, err = promptSecret(cmd, in, "Password: "); err != nil {
			return err
		}
	}

	slots := client.NewFileSlots(sessionFile)
	form := client.NewForm(serverURL, slots, nil)

	for attempt := 1; ; attempt++ {
		fmt.Fprintf(out, "Captcha: %s\n", form.Captcha())
		answer, err := prompt(cmd, in, "Kode captcha: ")
		if err != nil {
			return err
		}

		res, err := form.Submit(context.Background(), username, password, answer)
		if errors.Is(err, client.ErrCaptchaMismatch) && attempt < maxCaptchaAttempts {
			fmt.Fprintln(out, err)
			continue
		}
		if err != nil {
			return err
		}

		fmt.Fprintln(out, "Login berhasil!")
		fmt.Fprintf(out, "  admin:   %s (%s)\n", res.Admin.Username, res.Admin.Role)
		fmt.Fprintf(out, "  session: %s\n", slots.Path())
		return nil
	}
}
