package media

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"timeline/cmd/client/cmd/types"
	"timeline/internal/domain/journal"
)

var (
	itemID    string
	mediaType string
	notionURL string
	coverURL  string
)

var AddCmd = &cobra.Command{
	Use:   "add <название>",
	Short: "Добавить элемент медиатеки",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		item := &journal.MediaItem{
			ID:        itemID,
			Title:     args[0],
			MediaType: mediaType,
			NotionURL: notionURL,
			CoverURL:  coverURL,
		}
		if item.ID == "" {
			item.ID = uuid.NewString()
		}
		if err := app.PutMediaItem(cmd.Context(), item); err != nil {
			return fmt.Errorf("ошибка сохранения: %w", err)
		}
		types.OK("Элемент %s сохранен", item.ID)
		return nil
	},
}

var ListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "Показать медиатеку",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}
		snap, err := app.Snapshot(cmd.Context())
		if err != nil {
			return err
		}
		if types.JSONOutput {
			return types.PrintJSON(snap.MediaItems)
		}
		for _, m := range snap.MediaItems {
			fmt.Printf("%s  [%s] %s\n", m.ID, m.MediaType, m.Title)
		}
		return nil
	},
}

var RmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Удалить элемент медиатеки",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}
		if err := app.DeleteMediaItem(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("ошибка удаления: %w", err)
		}
		types.OK("Элемент %s удален", args[0])
		return nil
	},
}

func init() {
	AddCmd.Flags().StringVar(&itemID, "id", "", "идентификатор (по умолчанию новый)")
	AddCmd.Flags().StringVarP(&mediaType, "type", "t", "book", "вид медиа")
	AddCmd.Flags().StringVar(&notionURL, "notion", "", "ссылка на Notion")
	AddCmd.Flags().StringVar(&coverURL, "cover", "", "ссылка на обложку")
}
