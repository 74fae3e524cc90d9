package auth

import (
	"github.com/spf13/cobra"
)

// AuthCmd - родительская команда для входа и выхода
var AuthCmd = &cobra.Command{
	Use:   "auth",
	Short: "Управление доступом к серверу",
	Long:  `Вход по общему паролю и выход с отзывом токена.`,
}

func init() {
	AuthCmd.AddCommand(LoginCmd, LogoutCmd)
}
