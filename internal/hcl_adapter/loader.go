// Package hcl_adapter loads workflows and dynamic block definitions written
// in HCL and translates HCL native expressions into expression trees.
package hcl_adapter

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/blockflow/internal/config"
	"github.com/specialistvlad/blockflow/internal/ctxlog"
	"github.com/specialistvlad/blockflow/internal/model"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Extensions implements config.Loader.
func (l *Loader) Extensions() []string {
	return []string{".hcl"}
}

// Load parses every given file. A file holding any input, step or output
// block contributes the workflow; `block` blocks become dynamic block
// definitions. Directories should be expanded by the caller.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Document, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	doc := &config.Document{}
	parser := hclparse.NewParser()

	for _, file := range paths {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}
		part, err := l.decode(ctx, hclFile.Body, model.NewFSInfo(file))
		if err != nil {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, err)
		}
		if err := doc.Merge(part); err != nil {
			return nil, err
		}
	}

	logger.Debug("HCL loading complete.", "has_workflow", doc.Workflow != nil, "blocks", len(doc.Blocks))
	return doc, nil
}

// LoadSource parses HCL source held in memory.
func (l *Loader) LoadSource(ctx context.Context, src []byte, filename string) (*config.Document, error) {
	hclFile, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL %s: %w", filename, diags)
	}
	return l.decode(ctx, hclFile.Body, model.NewFSInfo(filename))
}

func (l *Loader) decode(ctx context.Context, body hcl.Body, src *model.FSInfo) (*config.Document, error) {
	var root fileRoot
	if diags := gohcl.DecodeBody(body, nil, &root); diags.HasErrors() {
		return nil, diags
	}

	doc := &config.Document{}
	if root.Version != nil || len(root.Inputs) > 0 || len(root.Steps) > 0 || len(root.Outputs) > 0 {
		wf := &model.Workflow{FSInformation: src}
		version, err := versionString(root.Version)
		if err != nil {
			return nil, err
		}
		wf.Version = version
		for _, in := range root.Inputs {
			translated, err := l.translateInput(in)
			if err != nil {
				return nil, err
			}
			wf.Inputs = append(wf.Inputs, translated)
		}
		for _, s := range root.Steps {
			translated, err := l.translateStep(ctx, s, src)
			if err != nil {
				return nil, err
			}
			wf.Steps = append(wf.Steps, translated)
		}
		for _, o := range root.Outputs {
			translated, err := l.translateOutput(o)
			if err != nil {
				return nil, err
			}
			wf.Outputs = append(wf.Outputs, translated)
		}
		doc.Workflow = wf
	}

	for _, b := range root.Blocks {
		def, err := l.translateBlockDefinition(ctx, b, src)
		if err != nil {
			return nil, err
		}
		doc.Blocks = append(doc.Blocks, def)
	}
	return doc, nil
}
