// Package types общее состояние подкоманд клиента
package types

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"timeline/internal/app/client"
)

type ctxKey string

// ClientAppKey ключ *client.App в контексте команды
const ClientAppKey ctxKey = "app"

// JSONOutput выводить результаты в JSON
var JSONOutput bool

// App достает приложение из контекста команды
func App(cmd *cobra.Command) (*client.App, error) {
	app, ok := cmd.Context().Value(ClientAppKey).(*client.App)
	if !ok || app == nil {
		return nil, fmt.Errorf("приложение не инициализировано")
	}
	return app, nil
}

// PrintJSON печатает v с отступами
func PrintJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

var (
	okColor   = color.New(color.FgGreen)
	warnColor = color.New(color.FgYellow)
)

func OK(format string, args ...any) {
	okColor.Printf("✓ "+format+"\n", args...)
}

func Warn(format string, args ...any) {
	warnColor.Printf("⚠️  "+format+"\n", args...)
}
