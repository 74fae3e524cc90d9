package entry

import (
	"github.com/spf13/cobra"
)

// EntryCmd - родительская команда для работы с записями ленты
var EntryCmd = &cobra.Command{
	Use:     "entry",
	Aliases: []string{"e"},
	Short:   "Управление записями ленты",
	Long: `Добавление, просмотр, удаление и связывание записей.
Изменения сохраняются локально и отправляются на сервер командой sync.`,
}

func init() {
	EntryCmd.AddCommand(AddCmd, ListCmd, RmCmd, LinkCmd, UnlinkCmd, ImportCmd, ExportCmd)
}
