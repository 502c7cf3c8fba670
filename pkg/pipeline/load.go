package pipeline

import (
	"strings"

	"github.com/matzehuels/grapplegraph/pkg/catalog"
)

// Load reads the catalog named by opts.
func Load(opts Options) (*catalog.Catalog, error) {
	if err := opts.ValidateForLoad(); err != nil {
		return nil, err
	}
	if opts.CatalogPath != "" {
		return catalog.Load(opts.CatalogPath)
	}
	r := strings.NewReader(opts.Catalog)
	if opts.CatalogFormat == CatalogJSON {
		return catalog.ReadJSON(r)
	}
	return catalog.ReadText(r)
}
