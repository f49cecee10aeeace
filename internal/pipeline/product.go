package pipeline

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/language"

	"vidx/internal/services"
)

// ProductContext is the immutable description of the item being advertised.
// The surrounding web layer supplies it together with staged image paths;
// the pipeline only reads it.
type ProductContext struct {
	Title       string
	Category    string
	Price       float64
	Description string
	Details     map[string]any
	Language    string
}

// Validate rejects contexts the script stage cannot work with.
func (p ProductContext) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return services.Wrap(services.ErrValidation, "script", "validate", "title is required", nil)
	}
	if strings.TrimSpace(p.Description) == "" {
		return services.Wrap(services.ErrValidation, "script", "validate", "description is required", nil)
	}
	if p.Price < 0 {
		return services.Wrap(services.ErrValidation, "script", "validate", fmt.Sprintf("price must be non-negative, got %.2f", p.Price), nil)
	}
	return nil
}

// NormalizedLanguage reduces the context's language field to a base code.
// Unparseable or empty values fall back to Romanian, the marketplace's
// primary locale.
func (p ProductContext) NormalizedLanguage() string {
	raw := strings.TrimSpace(p.Language)
	if raw == "" {
		return "ro"
	}
	tag, err := language.Parse(raw)
	if err != nil {
		return "ro"
	}
	base, _ := tag.Base()
	return base.String()
}

// detailLines renders the optional structured details in a stable order for
// prompt construction.
func (p ProductContext) detailLines() []string {
	if len(p.Details) == 0 {
		return nil
	}
	keys := make([]string, 0, len(p.Details))
	for key := range p.Details {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, key := range keys {
		value := strings.TrimSpace(fmt.Sprint(p.Details[key]))
		if value == "" {
			continue
		}
		lines = append(lines, fmt.Sprintf("- %s: %s", key, value))
	}
	return lines
}
