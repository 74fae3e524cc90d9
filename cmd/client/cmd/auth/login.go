package auth

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"timeline/cmd/client/cmd/types"
)

var skipSync bool

var LoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Войти на сервер Timeline",
	Long: `Аутентификация на сервере Timeline общим паролем.

После входа токен сохраняется локально и используется для синхронизации.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		fmt.Print("Пароль: ")
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err != nil {
			return fmt.Errorf("ошибка чтения пароля: %w", err)
		}
		fmt.Println()

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		res, err := app.Sync().Login(ctx, string(password))
		if err != nil {
			return fmt.Errorf("ошибка аутентификации: %w", err)
		}
		if types.JSONOutput {
			return types.PrintJSON(res)
		}
		if !res.Success {
			return fmt.Errorf("вход не выполнен: %s", res.Error)
		}
		types.OK("Вход выполнен")

		if skipSync {
			return nil
		}
		result, err := app.Sync().Sync(ctx)
		if err != nil {
			types.Warn("ошибка синхронизации: %v", err)
			fmt.Println("Данные останутся локально до следующей синхронизации")
			return nil
		}
		types.OK("Данные синхронизированы (отправлено %d, удалено %d)", result.Upserted, result.Deleted)
		return nil
	},
}

func init() {
	LoginCmd.Flags().BoolVar(&skipSync, "no-sync", false, "не синхронизировать после входа")
}
