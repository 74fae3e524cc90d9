package media

import (
	"github.com/spf13/cobra"
)

// MediaCmd - родительская команда для медиатеки и изображений
var MediaCmd = &cobra.Command{
	Use:   "media",
	Short: "Медиатека и изображения",
}

func init() {
	MediaCmd.AddCommand(AddCmd, ListCmd, RmCmd, UploadCmd, CleanupCmd)
}
