// Package appfs exposes the files shipped inside the binary.
package appfs

import "embed"

//go:embed all:templates migrations
var FS embed.FS
