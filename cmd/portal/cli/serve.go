package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bpbdbogor/portal/internal/config"
	"github.com/bpbdbogor/portal/internal/server"
	"github.com/bpbdbogor/portal/internal/service"
)

const banner = `
 ____   ___  ____ _____  _    _
|  _ \ / _ \|  _ \_   _|/ \  | |
| |_) | | | | |_) || | / _ \ | |
|  __/| |_| |  _ < | |/ ___ \| |___
|_|    \___/|_| \_\|_/_/   \_\_____|
`

func newServeCmd() *cobra.Command {
	var (
		noUI      bool
		dev       bool
		logFormat string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the admin login server",
		Long: `Start the HTTP server that exposes the admin login API and page.

The JWT secret must be configured (auth.jwt_secret, PORTAL_AUTH_JWT_SECRET or
JWT_SECRET). The server refuses to start with an empty secret or with the
placeholder "change_me_super_secret".`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, noUI, dev, logFormat)
		},
	}

	cmd.Flags().IntP("port", "p", 8080, "HTTP listen port")
	cmd.Flags().String("host", "0.0.0.0", "HTTP listen host")
	cmd.Flags().BoolVar(&noUI, "no-ui", false, "Disable the login page")
	cmd.Flags().BoolVar(&dev, "dev", false, "Development mode (debug logging, ephemeral secret when none is set)")
	cmd.Flags().StringVar(&logFormat, "log-format", "", "Log format: text or json (default from logging.format)")

	viper.BindPFlag("server.port", cmd.Flags().Lookup("port"))
	viper.BindPFlag("server.host", cmd.Flags().Lookup("host"))

	return cmd
}

func runServe(cmd *cobra.Command, noUI, dev bool, logFormat string) error {
	level := viper.GetString("logging.level")
	if dev {
		level = "debug"
	}
	if logFormat == "" {
		logFormat = viper.GetString("logging.format")
	}
	logger := newLogger(os.Stderr, level, logFormat)

	// 1. Token service: fail fast on a missing or placeholder secret.
	tokens, err := newTokenService(logger, dev)
	if err != nil {
		return err
	}

	// 2. Admin database, opened on the first request that needs it.
	dbCfg := databaseConfig()
	store := newLazyStore(logger)

	// 3. Auth service
	authSvc := service.NewAuthService(store, newHasher(), tokens, logger)

	// 4. Build and start HTTP server
	srvCfg := server.Config{
		Host:            viper.GetString("server.host"),
		Port:            viper.GetInt("server.port"),
		ShutdownTimeout: durationSetting("server.shutdown_timeout", 30*time.Second),
		CORSOrigins:     viper.GetStringSlice("server.cors.origins"),
		EnableUI:        viper.GetBool("server.enable_ui") && !noUI,
		EnableMetrics:   viper.GetBool("server.enable_metrics"),
	}
	srv := server.New(srvCfg, store, authSvc, tokens, logger)

	out := cmd.OutOrStdout()
	fmt.Fprint(out, banner)
	fmt.Fprintln(out)
	fmt.Fprintf(out, "→ Portal %s\n", versionString())
	fmt.Fprintf(out, "→ Listening on http://%s\n", srvCfg.Addr())
	if srvCfg.EnableUI {
		fmt.Fprintf(out, "→ Login page: http://%s/admin/login\n", srvCfg.Addr())
	}
	fmt.Fprintf(out, "→ OpenAPI:    http://%s/openapi.json\n", srvCfg.Addr())
	fmt.Fprintf(out, "→ Health:     http://%s/healthz\n", srvCfg.Addr())
	if srvCfg.EnableMetrics {
		fmt.Fprintf(out, "→ Metrics:    http://%s/metrics\n", srvCfg.Addr())
	}
	fmt.Fprintf(out, "→ Database:   %s\n", dbCfg.Driver)
	fmt.Fprintln(out)

	return srv.ListenAndServe()
}

// newLazyStore defers opening the admin database until a request needs it.
func newLazyStore(logger *slog.Logger) *config.LazyStore {
	return config.NewLazyStore(func(ctx context.Context) (*config.Store, error) {
		s, err := openStore(ctx)
		if err != nil {
			return nil, err
		}
		logger.Info("admin database opened", "driver", s.Driver())
		return s, nil
	})
}
