// Package ctype команды для типов контента
package ctype

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"timeline/cmd/client/cmd/types"
	"timeline/internal/domain/journal"
)

var CtypeCmd = &cobra.Command{
	Use:   "ctype",
	Short: "Типы контента записей",
	Long: `Пользовательские типы контента задают набор полей записи.
Встроенные типы нельзя удалить.`,
}

var ListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "Показать типы контента",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}
		snap, err := app.Snapshot(cmd.Context())
		if err != nil {
			return err
		}
		all := journal.WithBuiltins(snap.ContentTypes)
		if types.JSONOutput {
			return types.PrintJSON(all)
		}
		for _, ct := range all {
			mark := ""
			if ct.BuiltIn {
				mark = " (встроенный)"
			}
			fmt.Printf("%-12s %s%s, полей: %d\n", ct.ID, ct.Name, mark, len(ct.Fields))
		}
		return nil
	},
}

var PutCmd = &cobra.Command{
	Use:   "put <file.json>",
	Short: "Добавить или заменить тип контента из JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		var ct journal.ContentType
		if err := json.Unmarshal(data, &ct); err != nil {
			return fmt.Errorf("некорректный JSON: %w", err)
		}
		if err := app.PutContentType(cmd.Context(), &ct); err != nil {
			return fmt.Errorf("ошибка сохранения: %w", err)
		}
		types.OK("Тип %s сохранен", ct.ID)
		return nil
	},
}

var RmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Удалить тип контента",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}
		if err := app.DeleteContentType(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("ошибка удаления: %w", err)
		}
		types.OK("Тип %s удален", args[0])
		return nil
	},
}

func init() {
	CtypeCmd.AddCommand(ListCmd, PutCmd, RmCmd)
}
