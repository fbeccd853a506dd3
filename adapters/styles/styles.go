// Package styles loads named styles from YAML files. Aliases and anchors are
// expanded by the YAML decoder and nested keys are flattened to dotted tokens.
package styles

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"tabstat/domain/core"
	"tabstat/domain/report"
	"tabstat/ports"
)

//go:embed builtin/*.yaml
var builtin embed.FS

// Source resolves styles from a directory first, then from the built-in set.
type Source struct {
	dir   string
	mu    sync.Mutex
	cache map[string]report.Style
}

var _ ports.StyleSource = (*Source)(nil)

// NewSource serves styles from dir (may be empty) and the built-in styles.
func NewSource(dir string) *Source {
	return &Source{dir: dir, cache: map[string]report.Style{}}
}

func (s *Source) Style(ctx context.Context, name string) (report.Style, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "default"
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.cache[name]; ok {
		return st, nil
	}

	data, err := s.read(name)
	if err != nil {
		return report.Style{}, err
	}
	st, err := Parse(name, data)
	if err != nil {
		return report.Style{}, err
	}
	s.cache[name] = st
	return st, nil
}

func (s *Source) read(name string) ([]byte, error) {
	if strings.ContainsAny(name, `/\`) {
		return nil, core.NewStyleError("invalid style name %q", name)
	}
	if s.dir != "" {
		data, err := os.ReadFile(filepath.Join(s.dir, name+".yaml"))
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, core.NewStyleError("reading style %q: %v", name, err)
		}
	}
	data, err := builtin.ReadFile("builtin/" + name + ".yaml")
	if err != nil {
		return nil, core.NewStyleError("unknown style %q", name)
	}
	return data, nil
}

// Names lists the styles available to the source.
func (s *Source) Names() []string {
	seen := map[string]bool{}
	collect := func(entries []fs.DirEntry) {
		for _, e := range entries {
			if !e.IsDir() && strings.HasSuffix(e.Name(), ".yaml") {
				seen[strings.TrimSuffix(e.Name(), ".yaml")] = true
			}
		}
	}
	if entries, err := builtin.ReadDir("builtin"); err == nil {
		collect(entries)
	}
	if s.dir != "" {
		if entries, err := os.ReadDir(s.dir); err == nil {
			collect(entries)
		}
	}
	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Parse decodes a style document into flat tokens.
func Parse(name string, data []byte) (report.Style, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return report.Style{}, core.NewStyleError("style %q is not valid YAML: %v", name, err)
	}
	tokens := map[string]string{}
	flatten("", doc, tokens)
	return report.Style{Name: name, Tokens: tokens}, nil
}

func flatten(prefix string, node any, out map[string]string) {
	switch n := node.(type) {
	case map[string]any:
		for k, v := range n {
			key := k
			if prefix != "" {
				key = prefix + "." + k
			}
			flatten(key, v, out)
		}
	case nil:
		out[prefix] = ""
	default:
		out[prefix] = fmt.Sprint(n)
	}
}
