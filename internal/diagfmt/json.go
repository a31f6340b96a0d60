package diagfmt

import (
	"encoding/json"
	"io"

	prettyjson "github.com/hokaccha/go-prettyjson"
)

// JSON writes the result contract with two-space indentation. With Color the
// output is syntax-highlighted for a terminal; key order is then alphabetical.
func JSON(w io.Writer, res Result, opts JSONOpts) error {
	var (
		data []byte
		err  error
	)
	if opts.Color {
		f := prettyjson.NewFormatter()
		f.Indent = 2
		data, err = f.Marshal(res)
	} else {
		data, err = json.MarshalIndent(res, "", "  ")
	}
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
