// Package content loads the page manifest and renders page commentary from markdown.
package content

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"regexp"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"gopkg.in/yaml.v3"
)

// ManifestFile is the manifest name inside the content filesystem.
const ManifestFile = "pages.yaml"

// Page kinds. The kind selects which data-driven block the page renders above its commentary.
const (
	KindText      = "text"
	KindWeather   = "weather"
	KindStations  = "stations"
	KindGeography = "geography"
)

var (
	ErrUnknownPage     = errors.New("unknown page")
	ErrInvalidManifest = errors.New("invalid page manifest")
)

var slugPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

type manifest struct {
	Site struct {
		Title    string `yaml:"title"`
		NavLabel string `yaml:"nav_label"`
		Footer   string `yaml:"footer"`
	} `yaml:"site"`
	Pages []pageEntry `yaml:"pages"`
}

type pageEntry struct {
	Slug     string `yaml:"slug"`
	Nav      string `yaml:"nav"`
	Title    string `yaml:"title"`
	Heading  string `yaml:"heading"`
	Lead     string `yaml:"lead"`
	Kind     string `yaml:"kind"`
	Body     string `yaml:"body"`
	Fallback string `yaml:"fallback"`
}

// Page is one rendered dashboard page.
type Page struct {
	Slug     string
	Nav      string
	Title    string
	Heading  string
	Lead     string
	Kind     string
	Body     template.HTML
	Fallback template.HTML
}

// Site is the rendered page set in navigation order.
type Site struct {
	Title    string
	NavLabel string
	Footer   template.HTML
	Pages    []Page

	bySlug map[string]int
}

// Load reads ManifestFile from fsys and renders every referenced markdown file.
// Markdown paths are relative to the manifest.
func Load(fsys fs.FS) (*Site, error) {
	raw, err := fs.ReadFile(fsys, ManifestFile)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var m manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidManifest, err)
	}
	if len(m.Pages) == 0 {
		return nil, fmt.Errorf("%w: no pages", ErrInvalidManifest)
	}

	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	render := func(name string) (template.HTML, error) {
		if name == "" {
			return "", nil
		}
		src, err := fs.ReadFile(fsys, path.Clean(name))
		if err != nil {
			return "", fmt.Errorf("read %s: %w", name, err)
		}
		var buf bytes.Buffer
		if err := md.Convert(src, &buf); err != nil {
			return "", fmt.Errorf("render %s: %w", name, err)
		}
		// goldmark escapes raw HTML unless WithUnsafe is set.
		return template.HTML(buf.String()), nil
	}

	site := &Site{
		Title:    m.Site.Title,
		NavLabel: m.Site.NavLabel,
		bySlug:   make(map[string]int, len(m.Pages)),
	}
	if site.Footer, err = render(m.Site.Footer); err != nil {
		return nil, err
	}

	for i, entry := range m.Pages {
		if err := entry.validate(); err != nil {
			return nil, fmt.Errorf("%w: page %d: %w", ErrInvalidManifest, i, err)
		}
		if _, dup := site.bySlug[entry.Slug]; dup {
			return nil, fmt.Errorf("%w: duplicate slug %q", ErrInvalidManifest, entry.Slug)
		}

		p := Page{
			Slug:    entry.Slug,
			Nav:     entry.Nav,
			Title:   entry.Title,
			Heading: entry.Heading,
			Lead:    entry.Lead,
			Kind:    entry.Kind,
		}
		if p.Nav == "" {
			p.Nav = p.Slug
		}
		if p.Body, err = render(entry.Body); err != nil {
			return nil, err
		}
		if p.Fallback, err = render(entry.Fallback); err != nil {
			return nil, err
		}

		site.bySlug[p.Slug] = len(site.Pages)
		site.Pages = append(site.Pages, p)
	}

	return site, nil
}

func (p pageEntry) validate() error {
	if !slugPattern.MatchString(p.Slug) {
		return fmt.Errorf("bad slug %q", p.Slug)
	}
	switch p.Kind {
	case KindText, KindWeather, KindStations, KindGeography:
	case "":
		return fmt.Errorf("page %q has no kind", p.Slug)
	default:
		return fmt.Errorf("page %q has unknown kind %q", p.Slug, p.Kind)
	}
	return nil
}

// Page looks a page up by slug.
func (s *Site) Page(slug string) (Page, error) {
	i, ok := s.bySlug[slug]
	if !ok {
		return Page{}, fmt.Errorf("%w: %q", ErrUnknownPage, slug)
	}
	return s.Pages[i], nil
}

// Home is the first page in navigation order.
func (s *Site) Home() Page {
	return s.Pages[0]
}
