// Package web embeds the dashboard's templates, stylesheet and page commentary.
package web

import "embed"

// TemplatesFS embeds HTML templates for server-side rendering.
//
//go:embed templates/*.html
var TemplatesFS embed.FS

// StaticFS embeds static assets (css/images).
//
//go:embed static/*
var StaticFS embed.FS

// ContentFS embeds the page manifest and markdown commentary.
//
//go:embed content/*.yaml content/*.md
var ContentFS embed.FS
