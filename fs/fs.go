// Package appfs embeds the app's static assets: database migrations
// and email/web templates.
package appfs

import "embed"

//go:embed migrations all:templates
var FS embed.FS
