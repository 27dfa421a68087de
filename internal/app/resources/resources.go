// Package resources embeds the layout templates and the site's stylesheet
// and script.
package resources

import (
	"embed"
	"io/fs"
	"net/http"
	"sync"

	"github.com/dalemusser/waffle/pantry/templates"
)

//go:embed templates/*.gohtml
var sharedFS embed.FS

//go:embed assets/css/*.css assets/js/*.js
var assetsFS embed.FS

// AssetsMaxAge is the Cache-Control max-age for embedded assets, in seconds.
const AssetsMaxAge = "3600"

var registerOnce sync.Once

// LoadSharedTemplates registers the layout partials every page includes.
// It must run before the template engine boots.
func LoadSharedTemplates() {
	registerOnce.Do(func() {
		templates.Register(templates.Set{
			Name:     "shared",
			FS:       sharedFS,
			Patterns: []string{"templates/*.gohtml"},
		})
	})
}

// Assets returns the embedded css/ and js/ directories.
func Assets() fs.FS {
	sub, err := fs.Sub(assetsFS, "assets")
	if err != nil {
		panic("resources: " + err.Error())
	}
	return sub
}

// AssetsHandler serves Assets under prefix, for example /assets/js/site.js.
func AssetsHandler(prefix string) http.Handler {
	files := http.StripPrefix(prefix, http.FileServer(http.FS(Assets())))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age="+AssetsMaxAge)
		files.ServeHTTP(w, r)
	})
}
