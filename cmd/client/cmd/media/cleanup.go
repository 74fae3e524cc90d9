package media

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"timeline/cmd/client/cmd/types"
)

var yes bool

var CleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Удалить изображения, на которые ничего не ссылается",
	Long: `Собирает ссылки на изображения из локальных данных и бандла на сервере
и удаляет с сервера все остальные изображения. Операция необратима.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		confirmed := yes
		if !confirmed {
			fmt.Print("Удалить неиспользуемые изображения с сервера? [y/N]: ")
			answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
			answer = strings.ToLower(strings.TrimSpace(answer))
			confirmed = answer == "y" || answer == "yes" || answer == "д" || answer == "да"
		}
		if !confirmed {
			fmt.Println("Отменено")
			return nil
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
		defer cancel()

		report, err := app.Sync().CleanupImages(ctx, confirmed)
		if err != nil {
			return fmt.Errorf("ошибка очистки: %w", err)
		}
		if types.JSONOutput {
			return types.PrintJSON(report)
		}
		for _, key := range report.Deleted {
			fmt.Printf("  - %s\n", key)
		}
		types.OK("Удалено: %d, оставлено: %d", len(report.Deleted), len(report.Kept))
		return nil
	},
}

func init() {
	CleanupCmd.Flags().BoolVarP(&yes, "yes", "y", false, "не спрашивать подтверждение")
}
