package mcpserver

import (
	"fmt"
	"strings"

	"github.com/starford/metron/internal/catalog"
)

// CatalogReference renders the catalog as a Markdown unit reference for LLM
// consumers: one section per category with unit ids in display order.
func CatalogReference(cat *catalog.Catalog) string {
	var b strings.Builder
	b.WriteString("# Metron Unit Reference\n\n")
	b.WriteString("Use the ids below with the `convert` tool. Category and unit ids are\n")
	b.WriteString("lower-case; unit ids are matched exactly.\n")

	for _, e := range cat.Entries() {
		fmt.Fprintf(&b, "\n## %s (`%s`)\n\n", e.Label, e.Category)
		switch e.Kind() {
		case catalog.KindAffine:
			b.WriteString("Affine conversion (scale and offset per unit pair).\n\n")
		default:
			fmt.Fprintf(&b, "Linear conversion through the base unit `%s`.\n\n", e.Base().ID)
		}
		b.WriteString("| id | label |\n|---|---|\n")
		for _, u := range e.Units() {
			fmt.Fprintf(&b, "| `%s` | %s |\n", u.ID, u.Label)
		}
	}
	return b.String()
}
