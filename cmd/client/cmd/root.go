package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"timeline/cmd/client/cmd/auth"
	"timeline/cmd/client/cmd/ctype"
	"timeline/cmd/client/cmd/entry"
	"timeline/cmd/client/cmd/media"
	"timeline/cmd/client/cmd/sync"
	"timeline/cmd/client/cmd/types"
	"timeline/internal/app/client"
	"timeline/internal/app/client/config"
	"timeline/internal/utils/logger"
)

var (
	cfgFile   string
	debug     bool
	serverURL string
	logCloser io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "timeline",
	Short: "Timeline - клиент личной ленты записей",
	Long: `Timeline хранит записи ленты, типы контента и медиатеку локально
и синхронизирует их с сервером.

Локальные изменения копятся в базе SQLite, синхронизация отправляет
только изменившиеся элементы. Побеждает последний отправленный бандл.`,
	PersistentPreRunE:  setupApp,
	PersistentPostRunE: closeApp,
	SilenceUsage:       true,
	SilenceErrors:      true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка: %v\n", err)
		os.Exit(1)
	}
}

func setupApp(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("ошибка загрузки конфигурации: %w", err)
	}
	if serverURL != "" {
		cfg.ServerAddress = serverURL
	}

	env := cfg.Env
	if debug {
		env = "dev"
	}
	log, closer := logger.NewFile(env, cfg.LogFile)
	logCloser = closer

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	app, err := client.New(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("ошибка инициализации приложения: %w", err)
	}
	cmd.SetContext(context.WithValue(ctx, types.ClientAppKey, app))
	return nil
}

func closeApp(cmd *cobra.Command, _ []string) error {
	var errs []error
	if app, err := types.App(cmd); err == nil {
		errs = append(errs, app.Close())
	}
	if logCloser != nil {
		errs = append(errs, logCloser.Close())
	}
	return errors.Join(errs...)
}

func loadConfig() (*config.Config, error) {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		viper.AddConfigPath(filepath.Join(home, ".timeline"))
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	return config.Load()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "конфигурационный файл")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "подробный лог")
	rootCmd.PersistentFlags().BoolVar(&types.JSONOutput, "json", false, "вывод в формате JSON")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "адрес сервера Timeline")
	rootCmd.PersistentFlags().Int("batch-size", 0, "операций в одном запросе записи")
	_ = viper.BindPFlag("BATCH_SIZE", rootCmd.PersistentFlags().Lookup("batch-size"))

	rootCmd.AddCommand(auth.AuthCmd, sync.SyncCmd, entry.EntryCmd, ctype.CtypeCmd, media.MediaCmd)
}
