package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/mseclab/gramfuzz/dsl"
	"github.com/mseclab/gramfuzz/gram"
)

// loadRegistry reads and compiles one grammar file into a fresh registry.
// Each file gets its own registry, never shared across goroutines.
func loadRegistry(path string) (*gram.Registry, *dsl.Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "opening grammar %q", path)
	}
	defer f.Close()

	src, err := dsl.Parse(f)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "parsing grammar %q", path)
	}

	// Without a group header, the file's base name (extension dropped)
	// names the group.
	if src.Group == nil {
		group := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		src.Group = &group
	}

	reg := gram.NewRegistry()
	if err := dsl.Compile(reg, src); err != nil {
		return nil, nil, errors.Wrapf(err, "compiling grammar %q", path)
	}
	return reg, src, nil
}
