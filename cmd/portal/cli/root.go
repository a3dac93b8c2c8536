package cli

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bpbdbogor/portal/internal/config"
)

var (
	cfgFile    string
	appVersion string // set in Execute, shown by serve
)

// Execute creates the root command tree and runs it.
func Execute(version, commit, date string) error {
	appVersion = version
	rootCmd := newRootCmd(version, commit, date)
	return rootCmd.Execute()
}

func newRootCmd(version, commit, date string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "portal",
		Short: "Admin portal authentication server",
		Long: `Portal serves the admin login of the BPBD portal: a username and password
form guarded by a CAPTCHA, backed by bcrypt-hashed credentials and stateless
signed session tokens.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./portal.yaml)")
	cmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "data directory for the SQLite admin database (default: ~/.portal)")

	cobra.OnInitialize(initConfig)

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newVersionCmd(version, commit, date))
	cmd.AddCommand(newAdminCmd())
	cmd.AddCommand(newLoginCmd())
	cmd.AddCommand(newTokenCmd())
	cmd.AddCommand(newOpenAPICmd())
	cmd.AddCommand(newConfigCmd())

	return cmd
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("portal")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.portal")
	}

	setDefaults(config.DefaultYAMLConfig())

	viper.SetEnvPrefix("PORTAL")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	// Deployments configured for the previous stack export these names.
	viper.BindEnv("auth.jwt_secret", "PORTAL_AUTH_JWT_SECRET", "JWT_SECRET")
	viper.BindEnv("auth.jwt_expires_in", "PORTAL_AUTH_JWT_EXPIRES_IN", "JWT_EXPIRES_IN")

	viper.ReadInConfig() // Ignore error - config file is optional
}

func setDefaults(d *config.YAMLConfig) {
	viper.SetDefault("server.host", d.Server.Host)
	viper.SetDefault("server.port", d.Server.Port)
	viper.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)
	viper.SetDefault("server.cors.origins", d.Server.CORS.Origins)
	viper.SetDefault("server.enable_ui", d.Server.EnableUI)
	viper.SetDefault("server.enable_metrics", d.Server.EnableMetrics)
	viper.SetDefault("auth.jwt_expires_in", d.Auth.JWTExpiresIn)
	viper.SetDefault("auth.bcrypt_cost", d.Auth.BcryptCost)
	viper.SetDefault("database.driver", d.Database.Driver)
	viper.SetDefault("database.dsn", d.Database.DSN)
	viper.SetDefault("logging.level", d.Logging.Level)
	viper.SetDefault("logging.format", d.Logging.Format)
}
