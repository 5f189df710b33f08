// Package web embeds the static front-end pages.
package web

import (
	"embed"
	"io/fs"
)

const (
	DashboardPage = "dashboard.html"
	ProductPage   = "product.html"
)

//go:embed pages/*.html
var embedded embed.FS

// Pages holds the HTML pages at its root.
var Pages fs.FS = mustSub(embedded, "pages")

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}
	return sub
}
