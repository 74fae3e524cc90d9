package entry

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"timeline/cmd/client/cmd/types"
	"timeline/internal/domain/journal"
)

var (
	entryType   string
	category    string
	contentType string
	fields      []string
	tags        []string
)

var AddCmd = &cobra.Command{
	Use:   "add [текст]",
	Short: "Добавить запись",
	Example: `  timeline entry add "Прочитал главу" --category reading
  timeline entry add --content-type task --field done=true "Сдать отчет"
  timeline entry add --type SESSION_START`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		values, err := parseFields(fields)
		if err != nil {
			return err
		}
		e := &journal.Entry{
			Type:        journal.EntryType(strings.ToUpper(entryType)),
			Category:    category,
			ContentType: contentType,
			FieldValues: values,
			Tags:        tags,
		}
		if len(args) > 0 {
			e.Content = args[0]
		}

		saved, err := app.PutEntry(cmd.Context(), e)
		if err != nil {
			return fmt.Errorf("ошибка сохранения записи: %w", err)
		}
		if types.JSONOutput {
			return types.PrintJSON(saved)
		}
		types.OK("Запись %s сохранена", saved.ID)
		return nil
	},
}

// parseFields разбирает пары key=value. Значение трактуется как JSON,
// иначе как строка.
func parseFields(pairs []string) (journal.FieldValues, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	values := journal.FieldValues{}
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("поле %q: ожидается формат key=value", p)
		}
		var parsed any
		if err := json.Unmarshal([]byte(v), &parsed); err != nil {
			parsed = v
		}
		values[k] = parsed
	}
	return values, nil
}

func init() {
	AddCmd.Flags().StringVarP(&entryType, "type", "t", string(journal.EntryNote), "тип записи (NOTE, SESSION_START, SESSION_END)")
	AddCmd.Flags().StringVarP(&category, "category", "c", "", "категория")
	AddCmd.Flags().StringVar(&contentType, "content-type", "", "тип контента")
	AddCmd.Flags().StringArrayVarP(&fields, "field", "f", nil, "значение поля key=value")
	AddCmd.Flags().StringSliceVar(&tags, "tag", nil, "теги")
}
