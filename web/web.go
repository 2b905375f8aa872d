// Package web embeds the admin panel's HTML templates.
package web

import "embed"

//go:embed templates/*.html
var TemplateFiles embed.FS
