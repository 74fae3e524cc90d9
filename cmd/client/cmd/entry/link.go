package entry

import (
	"fmt"

	"github.com/spf13/cobra"

	"timeline/cmd/client/cmd/types"
)

var LinkCmd = &cobra.Command{
	Use:   "link <id> <id>",
	Short: "Связать две записи",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}
		if err := app.LinkEntries(cmd.Context(), args[0], args[1]); err != nil {
			return fmt.Errorf("ошибка связывания: %w", err)
		}
		types.OK("Записи связаны")
		return nil
	},
}

var UnlinkCmd = &cobra.Command{
	Use:   "unlink <id> <id>",
	Short: "Убрать связь между записями",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}
		if err := app.UnlinkEntries(cmd.Context(), args[0], args[1]); err != nil {
			return fmt.Errorf("ошибка: %w", err)
		}
		types.OK("Связь удалена")
		return nil
	},
}
