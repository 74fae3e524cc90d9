package media

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"timeline/cmd/client/cmd/types"
)

var UploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Загрузить изображение на сервер",
	Long: `Загружает изображение и печатает ссылку вида /api/image/<key>,
которую можно вставить в текст записи или обложку медиа.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		contentType := mime.TypeByExtension(filepath.Ext(args[0]))
		if contentType == "" {
			contentType = http.DetectContentType(data)
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
		defer cancel()

		ref, err := app.Sync().UploadImage(ctx, data, contentType)
		if err != nil {
			return fmt.Errorf("ошибка загрузки: %w", err)
		}
		if types.JSONOutput {
			return types.PrintJSON(ref)
		}
		types.OK("Загружено: %s", ref.URL)
		return nil
	},
}
