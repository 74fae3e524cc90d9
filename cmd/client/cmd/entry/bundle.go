package entry

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"timeline/cmd/client/cmd/types"
)

var ImportCmd = &cobra.Command{
	Use:   "import <file|->",
	Short: "Заменить локальные данные бандлом из файла",
	Long: `Импорт бандла в формате JSON. Бандл проверяется целиком до того,
как локальные данные будут заменены.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		var r io.Reader = os.Stdin
		if args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			r = f
		}

		report, err := app.Import(cmd.Context(), r)
		if err != nil {
			return fmt.Errorf("ошибка импорта: %w", err)
		}
		if types.JSONOutput {
			return types.PrintJSON(report)
		}
		types.OK("Импортировано записей: %d, типов: %d, медиа: %d",
			report.Entries, report.ContentTypes, report.MediaItems)
		return nil
	},
}

var output string

var ExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Выгрузить локальные данные в бандл",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		if output == "" || output == "-" {
			return app.Export(cmd.Context(), os.Stdout)
		}
		f, err := os.Create(output)
		if err != nil {
			return err
		}
		if err := app.Export(cmd.Context(), f); err != nil {
			_ = f.Close()
			return fmt.Errorf("ошибка экспорта: %w", err)
		}
		if err := f.Close(); err != nil {
			return err
		}
		types.OK("Бандл записан в %s", output)
		return nil
	},
}

func init() {
	ExportCmd.Flags().StringVarP(&output, "output", "o", "", "файл для записи (по умолчанию stdout)")
}
