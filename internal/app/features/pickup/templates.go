// internal/app/features/pickup/templates.go
package pickup

import (
	"embed"

	"github.com/dalemusser/waffle/pantry/templates"
)

//go:embed templates/*.gohtml
var FS embed.FS

func init() {
	templates.Register(templates.Set{
		Name:     "pickup",
		FS:       FS,
		Patterns: []string{"templates/*.gohtml"},
	})
}
