package cli

import (
	"bufio"
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/bpbdbogor/portal/internal/config"
	"github.com/bpbdbogor/portal/internal/service"
)

// dataDir holds the --data-dir persistent flag value (set on root command).
var dataDir string

// resolveDataDir returns the data directory from --data-dir flag,
// PORTAL_DATA_DIR env var, or ~/.portal as fallback.
func resolveDataDir() string {
	if dataDir != "" {
		return dataDir
	}
	if envDir := os.Getenv("PORTAL_DATA_DIR"); envDir != "" {
		return envDir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".portal")
}

// databaseConfig returns the admin database selection from configuration.
func databaseConfig() config.DatabaseConfig {
	return config.DatabaseConfig{
		Driver:  viper.GetString("database.driver"),
		DSN:     viper.GetString("database.dsn"),
		DataDir: resolveDataDir(),
	}
}

// openStore opens the configured admin database, creating the SQLite data
// directory when needed.
func openStore(ctx context.Context) (*config.Store, error) {
	cfg := databaseConfig()
	if (cfg.Driver == "" || cfg.Driver == "sqlite") && cfg.DSN == "" {
		if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}
	return config.Open(ctx, cfg)
}

// newHasher builds the password hasher from auth.bcrypt_cost.
func newHasher() *service.BcryptHasher {
	return service.NewBcryptHasher(viper.GetInt("auth.bcrypt_cost"))
}

// newTokenService builds the token service from auth.jwt_secret and
// auth.jwt_expires_in. When allowEphemeral is set and no secret is
// configured, a random per-process secret is used instead; tokens then stop
// verifying on restart.
func newTokenService(logger *slog.Logger, allowEphemeral bool) (*service.TokenService, error) {
	lifetime, err := service.ParseLifetime(viper.GetString("auth.jwt_expires_in"))
	if err != nil {
		return nil, fmt.Errorf("auth.jwt_expires_in: %w", err)
	}

	secret := viper.GetString("auth.jwt_secret")
	if secret == "" && allowEphemeral {
		secret, err = randomSecret()
		if err != nil {
			return nil, err
		}
		logger.Warn("no JWT secret configured, using an ephemeral one; sessions end on restart")
	}

	tokens, err := service.NewTokenService(service.TokenConfig{
		Secret:   secret,
		Lifetime: lifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set auth.jwt_secret, PORTAL_AUTH_JWT_SECRET or JWT_SECRET)", err)
	}
	return tokens, nil
}

func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// newLogger builds the process logger. format is "text" or "json"; level is
// one of debug, info, warn, error.
func newLogger(w io.Writer, level, format string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// durationSetting parses a duration key, falling back to def.
func durationSetting(key string, def time.Duration) time.Duration {
	if d := viper.GetDuration(key); d > 0 {
		return d
	}
	return def
}

// prompt reads one line from the command's input after printing label.
func prompt(cmd *cobra.Command, in *bufio.Reader, label string) (string, error) {
	fmt.Fprint(cmd.OutOrStdout(), label)
	line, err := in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// promptSecret reads a line without echo when input is a terminal.
func promptSecret(cmd *cobra.Command, in *bufio.Reader, label string) (string, error) {
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(cmd.OutOrStdout(), label)
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.OutOrStdout())
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(b), nil
	}
	return prompt(cmd, in, label)
}

// versionString returns a display version string.
func versionString() string {
	if appVersion == "" || appVersion == "dev" {
		return "dev"
	}
	if strings.HasPrefix(appVersion, "v") {
		return appVersion
	}
	return "v" + appVersion
}
