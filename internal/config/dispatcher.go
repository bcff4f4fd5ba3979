// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package config

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/specialistvlad/blockflow/internal/ctxlog"
	"github.com/specialistvlad/blockflow/internal/fsutil"
)

// Dispatcher routes every file to the loader registered for its extension.
type Dispatcher struct {
	byExt map[string]Loader
	exts  []string
}

// NewDispatcher creates a Dispatcher over the given loaders. A later loader
// wins when two claim the same extension.
func NewDispatcher(loaders ...Loader) *Dispatcher {
	d := &Dispatcher{byExt: make(map[string]Loader)}
	for _, l := range loaders {
		for _, ext := range l.Extensions() {
			ext = strings.ToLower(ext)
			if _, ok := d.byExt[ext]; !ok {
				d.exts = append(d.exts, ext)
			}
			d.byExt[ext] = l
		}
	}
	return d
}

// Extensions implements Loader.
func (d *Dispatcher) Extensions() []string {
	return append([]string(nil), d.exts...)
}

// Load expands directories, loads each file with the matching loader and
// merges everything into one Document. Files are processed in sorted order.
func (d *Dispatcher) Load(ctx context.Context, paths ...string) (*Document, error) {
	logger := ctxlog.FromContext(ctx)

	files, err := fsutil.FindFiles(paths, d.exts...)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered definition files.", "count", len(files))

	doc := &Document{}
	for _, f := range files {
		l, ok := d.byExt[strings.ToLower(filepath.Ext(f))]
		if !ok {
			return nil, fmt.Errorf("no loader for %s: supported extensions are %s", f, strings.Join(d.exts, ", "))
		}
		part, err := l.Load(ctx, f)
		if err != nil {
			return nil, err
		}
		if err := doc.Merge(part); err != nil {
			return nil, err
		}
	}
	return doc, nil
}
