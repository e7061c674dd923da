// Package templates embeds the page templates. In development they are read from disk
// instead, see setup.
package templates

import "embed"

//go:embed *.html
var FS embed.FS
