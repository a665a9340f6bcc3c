// Package catalog holds the defense letter templates. Templates are parsed
// once from YAML documents, validated eagerly, and served from an immutable
// snapshot so concurrent requests never observe a partially loaded catalog.
package catalog

import (
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"sync/atomic"

	"defesadigital-backend/models"
)

var ErrNoTemplateAvailable = errors.New("no defense template available")

// Catalog resolves defense templates by fine-type category and difficulty.
// Lookups are lock-free; Reload swaps the whole snapshot atomically.
type Catalog struct {
	snap atomic.Pointer[snapshot]
}

type snapshot struct {
	// byCategory holds templates per category, sorted by template ID so
	// tie-breaks are deterministic.
	byCategory map[models.FineType][]*models.DefenseTemplate
	count      int
}

// Load parses every *.yaml/*.yml file in the source filesystem and builds
// a catalog. Any malformed template fails the whole load.
func Load(source fs.FS) (*Catalog, error) {
	c := &Catalog{}
	if err := c.Reload(source); err != nil {
		return nil, err
	}
	return c, nil
}

// Reload re-parses the template source and atomically replaces the current
// snapshot. In-flight lookups keep the previous snapshot until they finish.
func (c *Catalog) Reload(source fs.FS) error {
	next := &snapshot{byCategory: make(map[models.FineType][]*models.DefenseTemplate)}

	err := fs.WalkDir(source, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isTemplateFile(path) {
			return nil
		}

		data, err := fs.ReadFile(source, path)
		if err != nil {
			return fmt.Errorf("failed to read template %s: %w", path, err)
		}

		tmpl, err := ParseTemplate(data, path)
		if err != nil {
			return err
		}

		for _, existing := range next.byCategory[tmpl.Category] {
			if existing.ID == tmpl.ID {
				return fmt.Errorf("%w: %s: duplicate template id %q", ErrMalformedTemplate, path, tmpl.ID)
			}
		}

		next.byCategory[tmpl.Category] = append(next.byCategory[tmpl.Category], tmpl)
		next.count++
		return nil
	})
	if err != nil {
		return err
	}

	for _, templates := range next.byCategory {
		sort.Slice(templates, func(i, j int) bool { return templates[i].ID < templates[j].ID })
	}

	c.snap.Store(next)
	return nil
}

// Get resolves a template for the category. Selection policy: exact
// category+difficulty match, then any template for the category (lowest ID
// wins), then the designated general-defense category. Difficulty may be
// empty to skip the exact tier match.
func (c *Catalog) Get(category models.FineType, difficulty models.Difficulty) (*models.DefenseTemplate, error) {
	snap := c.snap.Load()
	if snap == nil {
		return nil, fmt.Errorf("%w: catalog not loaded", ErrNoTemplateAvailable)
	}

	if templates := snap.byCategory[category]; len(templates) > 0 {
		if difficulty != "" {
			for _, tmpl := range templates {
				if tmpl.Difficulty == difficulty {
					return tmpl, nil
				}
			}
		}
		return templates[0], nil
	}

	if category != models.FineTypeGeral {
		if templates := snap.byCategory[models.FineTypeGeral]; len(templates) > 0 {
			return templates[0], nil
		}
	}

	return nil, fmt.Errorf("%w: category %s", ErrNoTemplateAvailable, category)
}

// Templates returns every loaded template, sorted by ID.
func (c *Catalog) Templates() []*models.DefenseTemplate {
	snap := c.snap.Load()
	if snap == nil {
		return nil
	}

	all := make([]*models.DefenseTemplate, 0, snap.count)
	for _, templates := range snap.byCategory {
		all = append(all, templates...)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all
}

// Size returns the number of loaded templates.
func (c *Catalog) Size() int {
	snap := c.snap.Load()
	if snap == nil {
		return 0
	}
	return snap.count
}

func isTemplateFile(path string) bool {
	return strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml")
}
