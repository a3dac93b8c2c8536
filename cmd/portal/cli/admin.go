package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bpbdbogor/portal/internal/config"
	"github.com/bpbdbogor/portal/internal/model"
)

// Default account created by "admin seed".
const (
	seedUsername = "admin"
	seedPassword = "admin123"
	seedName     = "Administrator"
)

func newAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage admin accounts",
		Long:  "Seed, create and list the administrator accounts that can log in to the portal.",
	}

	cmd.AddCommand(newAdminSeedCmd())
	cmd.AddCommand(newAdminCreateCmd())
	cmd.AddCommand(newAdminListCmd())

	return cmd
}

// ---------- admin seed ----------

func newAdminSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the default admin account if it does not exist",
		Long: `Create the account "admin" with password "admin123", display name
"Administrator" and role "admin". Running it again is a no-op.
Change the password before exposing the portal.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdminSeed(cmd)
		},
	}
}

func runAdminSeed(cmd *cobra.Command) error {
	ctx := context.Background()
	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	hash, err := newHasher().Hash(seedPassword)
	if err != nil {
		return err
	}
	created, err := store.EnsureAdmin(ctx, &model.Admin{
		Username:     seedUsername,
		PasswordHash: hash,
		Name:         seedName,
		Role:         model.DefaultRole,
		IsActive:     true,
	})
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}

	if created {
		fmt.Fprintln(cmd.OutOrStdout(), "Admin created successfully!")
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), "Admin already exists!")
	}
	return nil
}

// ---------- admin create ----------

func newAdminCreateCmd() *cobra.Command {
	var (
		username string
		password string
		name     string
		role     string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new admin account",
		Example: `  portal admin create --username operator --name "Operator Pusdalops" --password secret123
  portal admin create --username operator  # prompts for password`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdminCreate(cmd, username, password, name, role)
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Login name, case-sensitive (required)")
	cmd.Flags().StringVar(&password, "password", "", "Password (prompted if omitted)")
	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&role, "role", model.DefaultRole, "Role label")
	cmd.MarkFlagRequired("username")

	return cmd
}

func runAdminCreate(cmd *cobra.Command, username, password, name, role string) error {
	if password == "" {
		in := bufio.NewReader(cmd.InOrStdin())
		pw, err := promptSecret(cmd, in, "Password: ")
		if err != nil {
			return err
		}
		confirm, err := promptSecret(cmd, in, "Confirm password: ")
		if err != nil {
			return fmt.Errorf("failed to read confirmation: %w", err)
		}
		if pw != confirm {
			return fmt.Errorf("passwords do not match")
		}
		password = pw
	}

	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}

	ctx := context.Background()
	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	hash, err := newHasher().Hash(password)
	if err != nil {
		return err
	}
	admin := &model.Admin{
		Username:     username,
		PasswordHash: hash,
		Name:         name,
		Role:         role,
		IsActive:     true,
	}
	if err := store.CreateAdmin(ctx, admin); err != nil {
		if errors.Is(err, config.ErrAlreadyExists) {
			return fmt.Errorf("admin %q already exists", username)
		}
		return fmt.Errorf("create admin: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created admin %q (id %s)\n", username, admin.ID)
	return nil
}

// ---------- admin list ----------

func newAdminListCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List all admin accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdminList(cmd, jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func runAdminList(cmd *cobra.Command, jsonOutput bool) error {
	ctx := context.Background()
	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	admins, err := store.ListAdmins(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(admins)
	}

	if len(admins) == 0 {
		fmt.Fprintln(out, "No admin accounts. Use 'portal admin seed' or 'portal admin create' to add one.")
		return nil
	}

	fmt.Fprintf(out, "%-20s %-28s %-10s %-8s\n", "USERNAME", "NAME", "ROLE", "ACTIVE")
	fmt.Fprintf(out, "%-20s %-28s %-10s %-8s\n", "--------", "----", "----", "------")
	for _, a := range admins {
		active := "yes"
		if !a.IsActive {
			active = "no"
		}
		fmt.Fprintf(out, "%-20s %-28s %-10s %-8s\n", a.Username, a.Name, a.Role, active)
	}

	return nil
}
