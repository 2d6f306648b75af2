// Package hclconf implements the HCL model-definition loader. It parses
// manifest files with hclparse, decodes them into the schema structs, and
// translates the result into the format-agnostic config model. Attribute
// expressions inside defaults/args blocks are never evaluated here; they are
// wrapped as deferred values and resolved only at dispatch time.
package hclconf

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/vk/modelspec/internal/config"
	"github.com/vk/modelspec/internal/ctxlog"
	"github.com/vk/modelspec/internal/fsutil"
	"github.com/vk/modelspec/internal/schema"
)

// Loader loads model definitions from HCL manifests.
type Loader struct{}

// NewLoader creates an HCL loader.
func NewLoader() *Loader {
	return &Loader{}
}

var _ config.Loader = (*Loader)(nil)

// Load reads every .hcl file under the given paths (files or directories)
// and translates them into one merged definition model.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)

	sources := make(map[string][]byte)
	var order []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("manifest path %q: %w", path, err)
		}
		var files []string
		if info.IsDir() {
			files, err = fsutil.FindFilesByExtension(path, ".hcl")
			if err != nil {
				return nil, err
			}
			if len(files) == 0 {
				logger.Warn("No .hcl manifest files found in path.", "path", path)
			}
		} else {
			files = []string{path}
		}
		for _, file := range files {
			src, err := os.ReadFile(file)
			if err != nil {
				return nil, err
			}
			sources[file] = src
			order = append(order, file)
		}
	}
	return l.loadOrdered(ctx, order, sources)
}

// LoadSources translates in-memory manifests, in sorted filename order for
// determinism.
func (l *Loader) LoadSources(ctx context.Context, sources map[string][]byte) (*config.Model, error) {
	order := make([]string, 0, len(sources))
	for name := range sources {
		order = append(order, name)
	}
	sort.Strings(order)
	return l.loadOrdered(ctx, order, sources)
}

func (l *Loader) loadOrdered(ctx context.Context, order []string, sources map[string][]byte) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	parser := hclparse.NewParser()

	var models []*config.Model
	for _, name := range order {
		hclFile, diags := parser.ParseHCL(sources[name], name)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse manifest %s: %w", name, diags)
		}

		var file schema.File
		if diags := gohcl.DecodeBody(hclFile.Body, nil, &file); diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode manifest %s: %w", name, diags)
		}

		m, err := translateFile(&file)
		if err != nil {
			return nil, fmt.Errorf("in manifest %s: %w", name, err)
		}
		models = append(models, m)
		logger.Debug("Loaded model definitions from manifest.", "file", name, "models", len(file.Models))
	}
	return config.Merge(models...), nil
}

// orderedAttributes returns a block body's attributes sorted by source
// position, so defaults and args keep their manifest order.
func orderedAttributes(body hcl.Body) ([]*hcl.Attribute, error) {
	if body == nil {
		return nil, nil
	}
	attrMap, diags := body.JustAttributes()
	if diags.HasErrors() {
		return nil, fmt.Errorf("reading attributes: %w", diags)
	}
	attrs := make([]*hcl.Attribute, 0, len(attrMap))
	for _, attr := range attrMap {
		attrs = append(attrs, attr)
	}
	sort.Slice(attrs, func(i, j int) bool {
		return attrs[i].Range.Start.Byte < attrs[j].Range.Start.Byte
	})
	return attrs, nil
}
