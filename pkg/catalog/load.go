package catalog

import (
	"os"
	"path/filepath"
	"strings"

	errs "github.com/matzehuels/grapplegraph/pkg/errors"
)

// Load reads a catalog file, choosing the format by extension: ".json"
// is read with ReadJSON, anything else with ReadText.
func Load(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "catalog %s", path)
		}
		return nil, err
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".json") {
		return ReadJSON(f)
	}
	return ReadText(f)
}

// Save writes c to path in the format implied by its extension.
func Save(path string, c *Catalog) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = WriteJSON(f, c)
	} else {
		err = WriteText(f, c)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}
