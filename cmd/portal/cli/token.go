package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/bpbdbogor/portal/internal/client"
	"github.com/bpbdbogor/portal/internal/service"
)

func newTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Work with session tokens",
	}
	cmd.AddCommand(newTokenInspectCmd())
	return cmd
}

func newTokenInspectCmd() *cobra.Command {
	var (
		jsonOutput  bool
		sessionFile string
	)

	cmd := &cobra.Command{
		Use:   "inspect [token]",
		Short: "Verify a session token with the configured secret",
		Long: `Verify a token and print the identity it carries. Without an argument the
token stored by 'portal login' is used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := ""
			if len(args) == 1 {
				raw = args[0]
			} else {
				if sessionFile == "" {
					sessionFile = filepath.Join(resolveDataDir(), "session.json")
				}
				v, ok, err := client.NewFileSlots(sessionFile).Get(client.SlotToken)
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("no stored session in %s; run 'portal login' or pass a token", sessionFile)
				}
				raw = v
			}
			return runTokenInspect(cmd, raw, jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().StringVar(&sessionFile, "session-file", "", "Session file written by 'portal login'")

	return cmd
}

type tokenInfo struct {
	AdminID   string    `json:"admin_id"`
	Username  string    `json:"username"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func runTokenInspect(cmd *cobra.Command, raw string, jsonOutput bool) error {
	token, _ := service.ExtractBearer(raw)

	tokens, err := newTokenService(slog.New(slog.NewTextHandler(io.Discard, nil)), false)
	if err != nil {
		return err
	}
	claims, err := tokens.Parse(token)
	if err != nil {
		if errors.Is(err, service.ErrInvalidToken) {
			return fmt.Errorf("token rejected: %w", err)
		}
		return err
	}

	info := tokenInfo{
		AdminID:   claims.AdminID,
		Username:  claims.Username,
		Name:      claims.Name,
		Role:      claims.Role,
		IssuedAt:  claims.IssuedAt,
		ExpiresAt: claims.ExpiresAt,
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	}

	fmt.Fprintln(out, "Token is valid")
	fmt.Fprintf(out, "  admin id:   %s\n", info.AdminID)
	fmt.Fprintf(out, "  username:   %s\n", info.Username)
	fmt.Fprintf(out, "  name:       %s\n", info.Name)
	fmt.Fprintf(out, "  role:       %s\n", info.Role)
	fmt.Fprintf(out, "  issued at:  %s\n", info.IssuedAt.Format(time.RFC3339))
	fmt.Fprintf(out, "  expires at: %s\n", info.ExpiresAt.Format(time.RFC3339))
	return nil
}
