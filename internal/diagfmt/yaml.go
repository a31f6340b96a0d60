package diagfmt

import (
	"io"

	"gopkg.in/yaml.v3"
)

// YAML writes the result contract as a YAML document.
func YAML(w io.Writer, res Result) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(res); err != nil {
		return err
	}
	return enc.Close()
}
