// Package static embeds the stylesheet, the signup script and the icon.
package static

import "embed"

//go:embed *.css *.js *.svg
var FS embed.FS
