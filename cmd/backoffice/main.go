// Command backoffice is the terminal client of the back-office API.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/erp/backoffice/internal/infrastructure/apiclient"
	"github.com/erp/backoffice/internal/infrastructure/config"
	"github.com/erp/backoffice/internal/infrastructure/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var version = "dev"

// app is what every command runs with
type app struct {
	cfg    *config.Config
	log    *zap.Logger
	client *apiclient.Client
	in     *bufio.Reader
	out    io.Writer
	now    func() time.Time
}

type globalFlags struct {
	configFile string
	baseURL    string
	token      string
	logLevel   string
}

func newRootCmd(a *app) *cobra.Command {
	var flags globalFlags

	root := &cobra.Command{
		Use:           "backoffice",
		Short:         "Client en ligne de commande du back-office",
		Long:          `Consulter, créer et modifier partenaires, cotations, appels d'offres, services, membres, bureaux et visiteurs.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(flags)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&flags.configFile, "config", "", "fichier de configuration (défaut: ./config.toml)")
	root.PersistentFlags().StringVar(&flags.baseURL, "api", "", "URL de l'API (défaut: client.base_url)")
	root.PersistentFlags().StringVar(&flags.token, "token", "", "jeton d'accès (défaut: client.token puis le jeton enregistré)")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "warn", "niveau de log (debug, info, warn, error)")

	root.AddCommand(
		newLoginCmd(a),
		newLogoutCmd(a),
		newListCmd(a),
		newCreateCmd(a),
		newEditCmd(a),
		newToggleCmd(a),
		newDeleteCmd(a),
		newStatsCmd(a),
		newExportCmd(a),
		newImportCmd(a),
	)
	return root
}

func (a *app) init(flags globalFlags) error {
	cfg, err := config.Load(flags.configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	a.cfg = cfg

	log, err := logger.New(logger.Config{Level: flags.logLevel, Format: "console", Output: "stderr"})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	a.log = log

	baseURL := cfg.Client.BaseURL
	if flags.baseURL != "" {
		baseURL = flags.baseURL
	}
	token := flags.token
	if token == "" {
		token = cfg.Client.Token
	}
	if token == "" {
		token, err = readToken()
		if err != nil {
			a.log.Warn("saved token unreadable", zap.Error(err))
		}
	}

	a.client, err = apiclient.New(baseURL,
		apiclient.WithTimeout(cfg.Client.Timeout),
		apiclient.WithToken(token),
		apiclient.WithLogger(log.Named("api")),
	)
	return err
}

func tokenPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "backoffice", "token"), nil
}

func readToken() (string, error) {
	path, err := tokenPath()
	if err != nil {
		return "", err
	}
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(raw)), nil
}

func saveToken(token string) error {
	path, err := tokenPath()
	if err != nil {
		return err
	}
	if token == "" {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(token+"\n"), 0o600)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{in: bufio.NewReader(os.Stdin), out: os.Stdout, now: time.Now}
	if err := newRootCmd(a).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("✗ "+err.Error()))
		stop()
		os.Exit(1)
	}
}
