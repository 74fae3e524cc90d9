package entry

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"timeline/cmd/client/cmd/types"
)

var limit int

var ListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "Показать записи, новые сверху",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		entries, err := app.Entries(cmd.Context())
		if err != nil {
			return fmt.Errorf("ошибка чтения записей: %w", err)
		}
		if limit > 0 && len(entries) > limit {
			entries = entries[:limit]
		}
		if types.JSONOutput {
			return types.PrintJSON(entries)
		}
		if len(entries) == 0 {
			fmt.Println("Записей нет")
			return nil
		}

		dim := color.New(color.Faint)
		for _, e := range entries {
			ts := time.UnixMilli(e.Timestamp).Format("2006-01-02 15:04")
			line := fmt.Sprintf("%s  %-13s %s", ts, e.Type, e.Content)
			if e.Category != "" {
				line += color.CyanString("  #%s", e.Category)
			}
			fmt.Println(line)
			meta := []string{e.ID}
			if e.ContentType != "" {
				meta = append(meta, "type="+e.ContentType)
			}
			if len(e.LinkedEntries) > 0 {
				meta = append(meta, "links="+strings.Join(e.LinkedEntries, ","))
			}
			dim.Printf("    %s\n", strings.Join(meta, " "))
		}
		return nil
	},
}

func init() {
	ListCmd.Flags().IntVarP(&limit, "limit", "n", 0, "максимум записей")
}
