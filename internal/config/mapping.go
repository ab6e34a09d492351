package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/afero"
)

// LoadMapping reads the legacy-to-NPM pass name mapping document: a JSON
// object of {legacy canonical name: npm canonical name}. A missing file is
// ErrMissingInput; an unparsable one is ErrMalformedMapping. Both are fatal.
func LoadMapping(fs afero.Fs, path string) (map[string]string, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: mapping file %s", ErrMissingInput, path)
		}
		return nil, fmt.Errorf("%w: mapping file %s: %v", ErrMissingInput, path, err)
	}

	var mapping map[string]string
	if err := json.Unmarshal(data, &mapping); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedMapping, path, err)
	}
	return mapping, nil
}
