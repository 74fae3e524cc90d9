package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"timeline/cmd/client/cmd/types"
)

var LogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Выйти и отозвать токен",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		if err := app.Sync().Logout(ctx); err != nil {
			return fmt.Errorf("ошибка выхода: %w", err)
		}
		types.OK("Выход выполнен")
		return nil
	},
}
