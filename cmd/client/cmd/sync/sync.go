package sync

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"timeline/cmd/client/cmd/types"
	"timeline/internal/app/client"
)

var (
	syncStatus bool
	watch      bool
	debounce   time.Duration
)

var SyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Синхронизация с сервером",
	Long: `Отправляет на сервер изменения с момента последней синхронизации.

Если на сервере есть более новый бандл, он сначала загружается и заменяет
локальное состояние. С флагом --watch синхронизация запускается по таймеру
и при каждом изменении локальной базы.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		if syncStatus {
			return showSyncStatus(app)
		}
		if watch {
			return runWatch(cmd.Context(), app)
		}
		return runSync(cmd.Context(), app)
	},
}

func runSync(ctx context.Context, app *client.App) error {
	result, err := app.Sync().Sync(ctx)
	if err != nil {
		if errors.Is(err, client.ErrNotLoggedIn) {
			return fmt.Errorf("требуется вход. Выполните: timeline auth login")
		}
		return fmt.Errorf("ошибка синхронизации: %w", err)
	}
	if types.JSONOutput {
		return types.PrintJSON(result)
	}

	if result.Pulled {
		fmt.Println("Загружен бандл с сервера")
	}
	if result.Batches == 0 {
		types.OK("Изменений нет")
		return nil
	}
	types.OK("Синхронизация завершена за %v", result.Duration.Round(time.Millisecond))
	fmt.Printf("Отправлено: %d, удалено: %d, запросов: %d\n", result.Upserted, result.Deleted, result.Batches)
	fmt.Printf("Версия на сервере: %d\n", result.LastModified)
	return nil
}

func runWatch(ctx context.Context, app *client.App) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := app.Config()
	trigger, err := client.WatchStore(ctx, cfg.DataPath, debounce, app.Logger())
	if err != nil {
		return fmt.Errorf("не удалось следить за базой: %w", err)
	}

	fmt.Printf("Автосинхронизация каждые %v, Ctrl+C для выхода\n", cfg.SyncInterval)
	<-app.Sync().StartAutoSync(ctx, cfg.SyncInterval, trigger)
	return nil
}

func showSyncStatus(app *client.App) error {
	status := app.Sync().Status()
	if types.JSONOutput {
		return types.PrintJSON(status)
	}

	fmt.Printf("Состояние: %s\n", status.State)
	if status.Error != "" {
		types.Warn("%s", status.Error)
	}
	if status.LastSync.IsZero() {
		fmt.Println("Последняя синхронизация: никогда")
	} else {
		fmt.Printf("Последняя синхронизация: %s\n", status.LastSync.Format("2006-01-02 15:04:05"))
	}
	fmt.Printf("Версия данных: %d\n", status.LastModified)
	fmt.Printf("Сервер: %s\n", app.Config().BaseURL())
	return nil
}

func init() {
	SyncCmd.Flags().BoolVarP(&syncStatus, "status", "s", false, "показать статус синхронизации")
	SyncCmd.Flags().BoolVarP(&watch, "watch", "w", false, "синхронизировать в фоне")
	SyncCmd.Flags().DurationVar(&debounce, "debounce", 2*time.Second, "задержка после изменения базы")
}
