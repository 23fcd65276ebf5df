// Package web embeds the default site served when no asset directory is
// configured.
package web

import (
	"embed"
	"io/fs"
)

//go:embed site
var siteFS embed.FS

// Site returns the embedded site rooted at its top directory.
func Site() fs.FS {
	sub, err := fs.Sub(siteFS, "site")
	if err != nil {
		// "site" is a compile-time embed path
		panic(err)
	}
	return sub
}
