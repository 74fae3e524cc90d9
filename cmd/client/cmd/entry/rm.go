package entry

import (
	"fmt"

	"github.com/spf13/cobra"

	"timeline/cmd/client/cmd/types"
)

var RmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Удалить запись",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}
		if err := app.DeleteEntry(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("ошибка удаления: %w", err)
		}
		types.OK("Запись %s удалена", args[0])
		return nil
	},
}
