// Package ui embeds the static admin login page.
package ui

import (
	"embed"
	"io/fs"
)

// LoginPage is the file name of the login page inside Dist.
const LoginPage = "login.html"

//go:embed all:dist
var dist embed.FS

// Dist returns the embedded assets rooted at the dist directory.
func Dist() fs.FS {
	sub, err := fs.Sub(dist, "dist")
	if err != nil {
		// fs.Sub only fails on an invalid path, and "dist" is a constant.
		panic(err)
	}
	return sub
}
