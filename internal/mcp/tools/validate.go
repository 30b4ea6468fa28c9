package tools

import (
	"context"
	"os"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/critpath/internal/report"
	"github.com/usestring/critpath/pkg/types"
)

// ExportSchemaInput is the input for critpath_export_schema.
type ExportSchemaInput struct {
	Kind string `json:"kind" jsonschema:"Export kind: critical_paths, interaction_stats or call_context"`
}

// ExportSchemaOutput is the output for critpath_export_schema.
type ExportSchemaOutput struct {
	Kind   string `json:"kind"`
	Schema any    `json:"schema"`
}

// ValidateExportInput is the input for critpath_validate_export.
type ValidateExportInput struct {
	Path string `json:"path" jsonschema:"Export file to validate"`
	Kind string `json:"kind,omitempty" jsonschema:"Export kind (default: inferred from the file name suffix)"`
}

// ValidateExportOutput is the output for critpath_validate_export.
type ValidateExportOutput struct {
	Path   string   `json:"path"`
	Kind   string   `json:"kind"`
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// ToolExportSchema returns the JSON Schema of an export kind.
func ToolExportSchema(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input ExportSchemaInput) (*sdkmcp.CallToolResult, ExportSchemaOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input ExportSchemaInput) (*sdkmcp.CallToolResult, ExportSchemaOutput, error) {
		kind, err := report.ParseKind(input.Kind)
		if err != nil {
			return nil, ExportSchemaOutput{}, ErrInvalidInput(err.Error())
		}
		s, err := report.Schema(kind)
		if err != nil {
			return nil, ExportSchemaOutput{}, WrapError(err)
		}
		v, err := types.ToAny(s)
		if err != nil {
			return nil, ExportSchemaOutput{}, WrapError(err)
		}
		return nil, ExportSchemaOutput{Kind: string(kind), Schema: v}, nil
	}
}

// ToolValidateExport validates an export file on disk.
func ToolValidateExport(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input ValidateExportInput) (*sdkmcp.CallToolResult, ValidateExportOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input ValidateExportInput) (*sdkmcp.CallToolResult, ValidateExportOutput, error) {
		if input.Path == "" {
			return nil, ValidateExportOutput{}, ErrInvalidInput("path is required")
		}
		hint := input.Kind
		if hint == "" {
			hint = input.Path
		}
		kind, err := report.ParseKind(hint)
		if err != nil {
			return nil, ValidateExportOutput{}, ErrInvalidInput(err.Error())
		}

		data, err := os.ReadFile(input.Path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, ValidateExportOutput{}, ErrNotFound("export file", input.Path)
			}
			return nil, ValidateExportOutput{}, WrapError(err)
		}

		v, err := report.NewValidator(kind)
		if err != nil {
			return nil, ValidateExportOutput{}, WrapError(err)
		}
		result := v.Validate(data)
		return nil, ValidateExportOutput{
			Path:   input.Path,
			Kind:   string(kind),
			Valid:  result.Valid,
			Errors: result.Errors,
		}, nil
	}
}
