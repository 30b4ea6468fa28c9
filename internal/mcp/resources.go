package mcp

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/critpath/internal/mcp/tools"
	"github.com/usestring/critpath/internal/report"
	"github.com/usestring/critpath/pkg/types"
)

// Resource URI scheme: critpath://
// Supported URIs:
//   critpath://summary
//   critpath://interval/{interval}
//   critpath://trace/{trace}
//   critpath://interaction/{interaction}   (path-escaped "up --> down")
//   critpath://export/{kind}

const summaryURI = tools.URIScheme + "summary"

func (s *Server) registerResources() {
	s.mcpServer.AddResource(&sdkmcp.Resource{
		URI:         summaryURI,
		Name:        "Analysis Summary",
		Description: "Summary of the current analysis plus every distinct critical path.",
		MIMEType:    tools.MimeJSON,
		Annotations: &sdkmcp.Annotations{
			Audience: []sdkmcp.Role{"assistant"},
			Priority: 0.8,
		},
	}, s.handleResourceSummary)

	s.mcpServer.AddResourceTemplate(&sdkmcp.ResourceTemplate{
		URITemplate: tools.URIScheme + "interval/{interval}",
		Name:        "Interval",
		Description: "Every critical path and reconstruction failure of one interval. High context cost for large intervals; prefer critpath_query.",
		MIMEType:    tools.MimeJSON,
		Annotations: &sdkmcp.Annotations{
			Audience: []sdkmcp.Role{"assistant"},
			Priority: 0.3,
		},
	}, s.handleResourceInterval)

	s.mcpServer.AddResourceTemplate(&sdkmcp.ResourceTemplate{
		URITemplate: tools.URIScheme + "trace/{trace}",
		Name:        "Trace",
		Description: "One trace's critical path with its call context tree.",
		MIMEType:    tools.MimeJSON,
		Annotations: &sdkmcp.Annotations{
			Audience: []sdkmcp.Role{"assistant"},
			Priority: 0.6,
		},
	}, s.handleResourceTrace)

	s.mcpServer.AddResourceTemplate(&sdkmcp.ResourceTemplate{
		URITemplate: tools.URIScheme + "interaction/{interaction}",
		Name:        "Interaction",
		Description: "Per-interval distribution of one interaction. Same data as critpath_interaction.",
		MIMEType:    tools.MimeJSON,
		Annotations: &sdkmcp.Annotations{
			Audience: []sdkmcp.Role{"assistant"},
			Priority: 0.5,
		},
	}, s.handleResourceInteraction)

	s.mcpServer.AddResourceTemplate(&sdkmcp.ResourceTemplate{
		URITemplate: tools.URIScheme + "export/{kind}",
		Name:        "Export",
		Description: "A full export document (critical_paths, interaction_stats, call_context). High context cost; prefer critpath_query.",
		MIMEType:    tools.MimeJSON,
		Annotations: &sdkmcp.Annotations{
			Audience: []sdkmcp.Role{"assistant"},
			Priority: 0.2,
		},
	}, s.handleResourceExport)
}

func (s *Server) handleResourceSummary(ctx context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
	_, summary, err := tools.ToolSummary(s.deps)(ctx, nil, tools.SummaryInput{})
	if err != nil {
		return nil, err
	}
	res, err := s.deps.Result()
	if err != nil {
		return nil, err
	}
	content := map[string]any{
		"summary":        summary,
		"critical_paths": res.UniquePaths(),
	}
	return toResourceResult(req.Params.URI, content)
}

func (s *Server) handleResourceInterval(ctx context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
	params, err := parseResourceURI(req.Params.URI)
	if err != nil {
		return nil, err
	}
	index, err := strconv.Atoi(params["interval"])
	if err != nil {
		return nil, tools.ErrInvalidInput(fmt.Sprintf("interval must be an integer, got %q", params["interval"]))
	}

	res, err := s.deps.Result()
	if err != nil {
		return nil, err
	}
	ir, ok := res.Interval(index)
	if !ok {
		return nil, sdkmcp.ResourceNotFoundError(req.Params.URI)
	}

	content := map[string]any{
		"interval": ir.Index,
		"label":    s.deps.Summarizer.IntervalLabel(ir.Index),
		"paths":    ir.Paths,
		"failures": ir.Failures,
	}
	if stats, ok := res.Ingest[ir.Index]; ok {
		content["ingest"] = stats
	}
	return toResourceResult(req.Params.URI, content)
}

func (s *Server) handleResourceTrace(ctx context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
	params, err := parseResourceURI(req.Params.URI)
	if err != nil {
		return nil, err
	}
	_, out, err := tools.ToolTrace(s.deps)(ctx, nil, tools.TraceInput{TraceID: params["trace"], IncludeCCT: true})
	if err != nil {
		return nil, err
	}
	out.Resource = nil
	return toResourceResult(req.Params.URI, out)
}

func (s *Server) handleResourceInteraction(ctx context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
	params, err := parseResourceURI(req.Params.URI)
	if err != nil {
		return nil, err
	}
	_, out, err := tools.ToolInteraction(s.deps)(ctx, nil, tools.InteractionInput{Interaction: params["interaction"]})
	if err != nil {
		return nil, err
	}
	return toResourceResult(req.Params.URI, out)
}

func (s *Server) handleResourceExport(ctx context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
	params, err := parseResourceURI(req.Params.URI)
	if err != nil {
		return nil, err
	}
	kind, err := report.ParseKind(params["kind"])
	if err != nil {
		return nil, tools.ErrInvalidInput(err.Error())
	}
	res, err := s.deps.Result()
	if err != nil {
		return nil, err
	}
	doc, err := tools.ExportDocument(res, kind)
	if err != nil {
		return nil, tools.WrapError(err)
	}
	return toResourceResult(req.Params.URI, doc.Value)
}

// parseResourceURI extracts parameters from a critpath:// URI.
func parseResourceURI(uri string) (map[string]string, error) {
	if !strings.HasPrefix(uri, tools.URIScheme) {
		return nil, tools.ErrInvalidInput("invalid URI scheme: expected " + tools.URIScheme)
	}

	resourceType, rest, _ := strings.Cut(strings.TrimPrefix(uri, tools.URIScheme), "/")
	if resourceType == "" {
		return nil, tools.ErrInvalidInput("empty resource path")
	}

	var name string
	switch resourceType {
	case "interval", "trace", "interaction":
		name = resourceType
	case "export":
		name = "kind"
	case "summary":
		return map[string]string{}, nil
	default:
		return nil, tools.ErrInvalidInput(fmt.Sprintf("unknown resource type: %s", resourceType))
	}

	if rest == "" {
		return nil, tools.ErrInvalidInput(fmt.Sprintf("%s URI requires a %s", resourceType, name))
	}
	value, err := url.PathUnescape(rest)
	if err != nil {
		return nil, tools.ErrInvalidInput(fmt.Sprintf("invalid %s: %v", name, err))
	}
	return map[string]string{name: value}, nil
}

// toResourceResult serializes content to a ReadResourceResult.
func toResourceResult(uri string, content any) (*sdkmcp.ReadResourceResult, error) {
	data, err := types.MarshalIndent(content, "  ")
	if err != nil {
		return nil, fmt.Errorf("serializing resource: %w", err)
	}

	return &sdkmcp.ReadResourceResult{
		Contents: []*sdkmcp.ResourceContents{
			{
				URI:      uri,
				MIMEType: tools.MimeJSON,
				Text:     string(data),
			},
		},
	}, nil
}
