package symbols

import (
	"context"
	"os"
)

// FileSource reads the static letters document from disk.
type FileSource struct {
	Path string
}

func (s FileSource) Letters(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable("read "+s.Path, err)
	}
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, unavailable("read "+s.Path, err)
	}
	defer f.Close()

	return Decode(f)
}
