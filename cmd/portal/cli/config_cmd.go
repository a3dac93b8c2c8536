package cli

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/bpbdbogor/portal/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage portal configuration",
		Long:  "Initialize a default configuration file or display the current effective configuration.",
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd())

	return cmd
}

// ---------- config init ----------

func newConfigInitCmd() *cobra.Command {
	var (
		force bool
		path  string
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a default portal.yaml configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigInit(cmd, path, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing config file")
	cmd.Flags().StringVarP(&path, "output", "o", "portal.yaml", "Where to write the file")

	return cmd
}

func runConfigInit(cmd *cobra.Command, path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}

	if err := config.WriteDefaultConfig(path); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created %s\n", path)
	fmt.Fprintln(out, "Set auth.jwt_secret (or PORTAL_AUTH_JWT_SECRET), then run 'portal admin seed' and 'portal serve'.")
	return nil
}

// ---------- config show ----------

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the current effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd)
		},
	}
}

// redacted keys are shown as set/unset only.
var redacted = map[string]bool{
	"auth.jwt_secret": true,
	"database.dsn":    true,
}

func runConfigShow(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()

	configFile := viper.ConfigFileUsed()
	if configFile != "" {
		fmt.Fprintf(out, "Config file: %s\n", configFile)
	} else {
		fmt.Fprintln(out, "Config file: (none found, using defaults)")
	}
	fmt.Fprintln(out)

	keys := append(viper.AllKeys(), "auth.jwt_secret")
	sort.Strings(keys)
	settings := map[string]interface{}{}
	seen := map[string]bool{}
	for _, key := range keys {
		if seen[key] {
			continue
		}
		seen[key] = true
		if redacted[key] {
			if viper.GetString(key) == "" {
				settings[key] = "(unset)"
			} else {
				settings[key] = "(set)"
			}
			continue
		}
		settings[key] = viper.Get(key)
	}

	data, err := yaml.Marshal(settings)
	if err != nil {
		return err
	}
	fmt.Fprint(out, string(data))
	return nil
}
