package manifest

import (
	"context"
	_ "embed"
	"fmt"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/pioconf/internal/buildenv"
	"github.com/specialistvlad/pioconf/internal/ctxlog"
	"github.com/specialistvlad/pioconf/internal/installer"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

//go:embed tasks.hcl
var defaultSource []byte

const defaultFilename = "tasks.hcl"

type fileSchema struct {
	Copies []*copyBlock `hcl:"copy,block"`
}

type copyBlock struct {
	Name        string         `hcl:"name,label"`
	Source      hcl.Expression `hcl:"source"`
	Destination hcl.Expression `hcl:"destination"`
}

// Manifest is a parsed, not yet resolved, list of copy tasks.
type Manifest struct {
	filename string
	copies   []*copyBlock
}

// Default parses the manifest compiled into the binary.
func Default() (*Manifest, error) {
	return Parse(defaultSource, defaultFilename)
}

// Parse parses an HCL manifest. filename is used in diagnostics only.
func Parse(src []byte, filename string) (*Manifest, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse %s: %w", filename, diags)
	}

	var schema fileSchema
	if diags := gohcl.DecodeBody(file.Body, nil, &schema); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode %s: %w", filename, diags)
	}

	seen := make(map[string]struct{}, len(schema.Copies))
	for _, c := range schema.Copies {
		if c.Name == "" {
			return nil, fmt.Errorf("%s: copy block with empty name", filename)
		}
		if _, dup := seen[c.Name]; dup {
			return nil, fmt.Errorf("%s: duplicate copy block %q", filename, c.Name)
		}
		seen[c.Name] = struct{}{}
	}

	return &Manifest{filename: filename, copies: schema.Copies}, nil
}

// Names returns the task names in declaration order.
func (m *Manifest) Names() []string {
	names := make([]string, 0, len(m.copies))
	for _, c := range m.copies {
		names = append(names, c.Name)
	}
	return names
}

// Resolve evaluates every task against env. The returned slice is freshly
// allocated on each call.
func (m *Manifest) Resolve(ctx context.Context, env buildenv.Environment) ([]installer.CopyTask, error) {
	logger := ctxlog.FromContext(ctx)
	evalCtx := evalContext(env)

	tasks := make([]installer.CopyTask, 0, len(m.copies))
	for _, c := range m.copies {
		src, err := evalPath(c.Source, evalCtx)
		if err != nil {
			return nil, fmt.Errorf("%s: copy %q: source: %w", m.filename, c.Name, err)
		}
		dst, err := evalPath(c.Destination, evalCtx)
		if err != nil {
			return nil, fmt.Errorf("%s: copy %q: destination: %w", m.filename, c.Name, err)
		}

		if !filepath.IsAbs(src) {
			src = filepath.Join(env.ProjectDir(), src)
		}
		if !filepath.IsAbs(dst) {
			dst = filepath.Join(env.ProjectDir(), dst)
		}

		task := installer.CopyTask{Name: c.Name, Source: src, Destination: dst}
		logger.Debug("Resolved copy task.", "task", task.Name, "source", task.Source, "destination", task.Destination)
		tasks = append(tasks, task)
	}
	return tasks, nil
}

func evalContext(env buildenv.Environment) *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env":           env.CtyValue(),
			"project_dir":   cty.StringVal(env.ProjectDir()),
			"workspace_dir": cty.StringVal(env.WorkspaceDir()),
			"libdeps_dir":   cty.StringVal(env.LibDepsDir()),
		},
	}
}

// evalPath evaluates expr to a cleaned, OS-native path.
func evalPath(expr hcl.Expression, evalCtx *hcl.EvalContext) (string, error) {
	val, diags := expr.Value(evalCtx)
	if diags.HasErrors() {
		return "", diags
	}
	if val.IsNull() || !val.IsKnown() {
		return "", fmt.Errorf("path must be a known, non-null string")
	}

	converted, err := convert.Convert(val, cty.String)
	if err != nil {
		return "", fmt.Errorf("cannot convert %s to string: %w", val.Type().FriendlyName(), err)
	}

	var s string
	if err := gocty.FromCtyValue(converted, &s); err != nil {
		return "", err
	}
	if s == "" {
		return "", fmt.Errorf("path must not be empty")
	}
	return filepath.Clean(filepath.FromSlash(s)), nil
}
