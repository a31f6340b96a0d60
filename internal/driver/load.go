package driver

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/viant/afs"
)

// location turns a user path into an afs URL. Paths that already carry a
// scheme (file://, mem://, ...) are used as is; local paths become absolute.
func location(path string) (string, error) {
	if strings.Contains(path, "://") {
		return path, nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return abs, nil
}

func readFile(ctx context.Context, fs afs.Service, path string) ([]byte, error) {
	url, err := location(path)
	if err != nil {
		return nil, err
	}
	return fs.DownloadWithURL(ctx, url)
}
