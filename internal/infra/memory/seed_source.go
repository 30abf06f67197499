package memory

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"os"

	"lingo-trainer/internal/app"
)

//go:embed seed/*.json
var seedFiles embed.FS

// SeedSource serves seed documents named <document>.json from a file tree.
type SeedSource struct {
	fsys fs.FS
	dir  string
}

// NewSeedSource serves the documents bundled with the binary.
func NewSeedSource() *SeedSource {
	return &SeedSource{fsys: seedFiles, dir: "seed"}
}

// NewDirSeedSource serves documents from a directory on disk.
func NewDirSeedSource(dir string) *SeedSource {
	return &SeedSource{fsys: os.DirFS(dir), dir: "."}
}

func (s *SeedSource) Fetch(_ context.Context, doc app.SeedDocument) ([]byte, error) {
	name := string(doc) + ".json"
	if s.dir != "." {
		name = s.dir + "/" + name
	}
	raw, err := fs.ReadFile(s.fsys, name)
	if err != nil {
		return nil, fmt.Errorf("seed %s: %w", doc, err)
	}
	return raw, nil
}
