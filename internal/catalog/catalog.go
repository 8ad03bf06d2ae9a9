// Package catalog knows the workshop's services, prices and opening hours.
package catalog

import (
	"strings"

	"github.com/gosimple/slug"

	"workshop-order-bot/internal/pkg/config"
)

type Category struct {
	Key      string
	Title    string
	Prices   []string
	Keywords []string
}

type Catalog struct {
	categories []Category
	byKey      map[string]int
}

func New(cfg *config.CatalogCfg) *Catalog {
	c := &Catalog{byKey: make(map[string]int, len(cfg.Categories))}
	for _, cc := range cfg.Categories {
		key := cc.Key
		if key == "" {
			key = slug.Make(cc.Title)
		}
		if _, dup := c.byKey[key]; dup || key == "" {
			continue
		}
		keywords := make([]string, 0, len(cc.Keywords))
		for _, kw := range cc.Keywords {
			if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
				keywords = append(keywords, kw)
			}
		}
		c.byKey[key] = len(c.categories)
		c.categories = append(c.categories, Category{
			Key:      key,
			Title:    cc.Title,
			Prices:   cc.Prices,
			Keywords: keywords,
		})
	}
	return c
}

func (c *Catalog) Categories() []Category {
	return c.categories
}

func (c *Catalog) Get(key string) (Category, bool) {
	i, ok := c.byKey[key]
	if !ok {
		return Category{}, false
	}
	return c.categories[i], true
}

// Title falls back to the raw key for categories that were removed from the configuration.
func (c *Catalog) Title(key string) string {
	if cat, ok := c.Get(key); ok {
		return cat.Title
	}
	return key
}

// GetCategorySummary returns the price lines of a category, false when there are none.
func (c *Catalog) GetCategorySummary(key string) (string, bool) {
	cat, ok := c.Get(key)
	if !ok || len(cat.Prices) == 0 {
		return "", false
	}

	var sb strings.Builder
	for i, price := range cat.Prices {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString("• ")
		sb.WriteString(price)
	}
	return sb.String(), true
}

// Match finds the category a free-text question is about.
func (c *Catalog) Match(text string) (Category, bool) {
	lower := strings.ToLower(text)
	for _, cat := range c.categories {
		for _, kw := range cat.Keywords {
			if strings.Contains(lower, kw) {
				return cat, true
			}
		}
	}
	return Category{}, false
}
