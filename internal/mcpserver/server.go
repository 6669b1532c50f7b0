// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes metron's conversion and calculator tools via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/metron/internal/apperr"
	"github.com/starford/metron/internal/calculator"
	"github.com/starford/metron/internal/catalog"
	"github.com/starford/metron/internal/conversionservice"
	"github.com/starford/metron/internal/engine"
)

const catalogURI = "metron://catalog"

// Server wraps the MCP server with metron tools.
type Server struct {
	mcp  *server.MCPServer
	conv *conversionservice.Service
	ref  string
}

// New creates a new MCP server with all metron tools registered.
func New(conv *conversionservice.Service, cat *catalog.Catalog, version string) *Server {
	s := &Server{conv: conv, ref: CatalogReference(cat)}

	s.mcp = server.NewMCPServer(
		"Metron",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_categories",
		mcp.WithDescription("List the conversion categories and their unit ids in display order."),
	), s.listCategories)

	s.mcp.AddTool(mcp.NewTool("list_units",
		mcp.WithDescription("List the units of one category in display order."),
		mcp.WithString("category", mcp.Required(), mcp.Description("Category id, e.g. length or temperature")),
	), s.listUnits)

	s.mcp.AddTool(mcp.NewTool("convert",
		mcp.WithDescription("Convert a value between two units of the same category. "+
			"Returns the converted value and a formula such as \"10 meter = 32.8084 foot\". "+
			"Read the "+catalogURI+" resource for valid ids."),
		mcp.WithString("category", mcp.Required(), mcp.Description("Category id")),
		mcp.WithString("from", mcp.Required(), mcp.Description("Source unit id")),
		mcp.WithString("to", mcp.Required(), mcp.Description("Target unit id")),
		mcp.WithNumber("value", mcp.Required(), mcp.Description("Value to convert")),
		mcp.WithBoolean("swap", mcp.Description("Exchange from and to before converting")),
	), s.convert)

	s.mcp.AddTool(mcp.NewTool("calculate",
		mcp.WithDescription("Evaluate a scientific calculator operation, or replay a keypad sequence. "+
			"Binary ops: + - × ÷ ^. Functions: "+strings.Join(calculator.Functions, ", ")+". "+
			"Constants: pi, e."),
		mcp.WithString("op", mcp.Description("Operator, function or constant name")),
		mcp.WithNumber("x", mcp.Description("First operand")),
		mcp.WithNumber("y", mcp.Description("Second operand for binary operators")),
		mcp.WithString("angle", mcp.Description("deg (default) or rad for trigonometric functions")),
		mcp.WithString("keys", mcp.Description("Space-separated keypad keys, e.g. \"1 2 + 3 =\"; overrides op")),
	), s.calculate)

	s.mcp.AddResource(
		mcp.NewResource(catalogURI, "Unit Reference",
			mcp.WithResourceDescription("Every category with its unit ids and labels."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readCatalogResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) *mcp.CallToolResult {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultText(string(out))
}

func (s *Server) listCategories(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.conv.Categories()), nil
}

func (s *Server) listUnits(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	category, err := req.RequireString("category")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	units, err := s.conv.Units(category)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(units), nil
}

// conversionOutput is the convert tool's JSON result.
type conversionOutput struct {
	Category string  `json:"category"`
	From     string  `json:"from"`
	To       string  `json:"to"`
	Value    float64 `json:"value"`
	Result   float64 `json:"result"`
	Formula  string  `json:"formula"`
	Fallback bool    `json:"fallback,omitempty"`
}

func (s *Server) convert(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var r engine.Request
	var err error
	if r.Category, err = req.RequireString("category"); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if r.From, err = req.RequireString("from"); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if r.To, err = req.RequireString("to"); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if r.Value, err = req.RequireFloat("value"); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if req.GetBool("swap", false) {
		r = r.Swap()
	}

	res, err := s.conv.Convert(ctx, r)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(conversionOutput{
		Category: res.Request.Category,
		From:     res.Request.From,
		To:       res.Request.To,
		Value:    res.Request.Value,
		Result:   res.Converted,
		Formula:  res.Formula,
		Fallback: res.Fallback,
	}), nil
}

func (s *Server) calculate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if keys := strings.Fields(req.GetString("keys", "")); len(keys) > 0 {
		display, err := calculator.NewKeypad().Run(keys)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(display), nil
	}

	op, err := req.RequireString("op")
	if err != nil {
		return mcp.NewToolResultError("either op or keys is required"), nil
	}
	x := req.GetFloat("x", 0)

	var v float64
	switch {
	case calculator.IsBinary(op):
		v = calculator.Binary(op, x, req.GetFloat("y", 0))
	default:
		if c, ok := calculator.Constant(op); ok {
			v = c
			break
		}
		angle, err := calculator.ParseAngle(req.GetString("angle", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if v, err = calculator.Unary(op, x, angle); err != nil {
			if errors.Is(err, calculator.ErrNegativeFactorial) || errors.Is(err, apperr.ErrInvalidInput) {
				return mcp.NewToolResultError(err.Error()), nil
			}
			return nil, fmt.Errorf("mcpserver: calculate: %w", err)
		}
	}
	return mcp.NewToolResultText(engine.FormatNumber(v)), nil
}

func (s *Server) readCatalogResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      catalogURI,
			MIMEType: "text/markdown",
			Text:     s.ref,
		},
	}, nil
}
