package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"ifcmass/internal/adapters/report"
	"ifcmass/internal/application/commands"
	"ifcmass/internal/ports"
)

// Deps are the collaborators the tools run against. Kernels and Lookup may be nil.
type Deps struct {
	Loader  ports.ModelLoader
	Kernels ports.GeometryKernelFactory
	Store   ports.DensityStore
	Lookup  ports.DensityLookup
}

// RegisterReadTools adds the calculation and query tools to the MCP server.
// calculate_mass persists newly looked-up densities like the CLI does.
func RegisterReadTools(s *server.MCPServer, deps Deps) {
	s.AddTool(calculateTool(), calculateHandler(deps))
	s.AddTool(lookupTool(), lookupHandler(deps))
	s.AddTool(listDensitiesTool(), listDensitiesHandler(deps))
}

// --- calculate_mass ---

func calculateTool() mcp.Tool {
	return mcp.NewTool("calculate_mass",
		mcp.WithDescription("Estimate the total mass of an IFC building model. Returns the volume and mass per element type and material, followed by the whole mass."),
		mcp.WithString("model_path",
			mcp.Description("Path to the .ifc file"),
			mcp.Required(),
		),
		mcp.WithString("format",
			mcp.Description("Output format: csv (default) or json"),
			mcp.Enum("csv", "json"),
		),
		mcp.WithNumber("temperature",
			mcp.Description("Sampling temperature for density lookups, 0 to 2 (default 0)"),
			mcp.Min(0),
			mcp.Max(2),
		),
	)
}

func calculateHandler(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		format, err := report.ParseFormat(req.GetString("format", string(report.FormatCSV)))
		if err != nil {
			return toolError(err)
		}
		if format == report.FormatTable {
			format = report.FormatCSV
		}

		cmd := commands.NewCalculateCommand(deps.Loader, deps.Kernels, deps.Store, deps.Lookup, req.GetString("model_path", ""))
		cmd.Temperature = req.GetFloat("temperature", 0)

		result, runErr := cmd.Execute(ctx)
		if result == nil {
			return toolError(runErr)
		}

		var sb strings.Builder
		if err := report.Write(&sb, result.Mass, format); err != nil {
			return toolError(err)
		}
		if format == report.FormatCSV {
			sb.WriteString(report.TotalLine(result.Mass.TotalMass))
			sb.WriteByte('\n')
		}
		if runErr != nil {
			fmt.Fprintf(&sb, "warning: %v\n", runErr)
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// --- lookup_density ---

func lookupTool() mcp.Tool {
	return mcp.NewTool("lookup_density",
		mcp.WithDescription("Ask the configured density source for a material's density in kg/m³. Bypasses and does not update the cache."),
		mcp.WithString("material",
			mcp.Description("Material name (e.g. concrete, Stahl S235)"),
			mcp.Required(),
		),
	)
}

func lookupHandler(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		cmd := commands.NewLookupDensityCommand(deps.Lookup, req.GetString("material", ""))
		result, err := cmd.Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		if !result.Valid {
			return mcp.NewToolResultText(fmt.Sprintf("%s is not a valid material", result.Material)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Density of %s: %d kg/m³", result.Material, result.Density)), nil
	}
}

// --- list_densities ---

func listDensitiesTool() mcp.Tool {
	return mcp.NewTool("list_densities",
		mcp.WithDescription("List the cached material densities. Invalid materials are marked as such."),
	)
}

func listDensitiesHandler(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		entries, err := commands.NewListDensitiesCommand(deps.Store).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return formatEntries(entries, formatEntry)
	}
}

// --- helpers ---

func toolError(err error) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(err.Error()), nil
}

func formatEntries[T any](entries []T, format func(T) string) (*mcp.CallToolResult, error) {
	if len(entries) == 0 {
		return mcp.NewToolResultText("No results."), nil
	}
	var sb strings.Builder
	for _, e := range entries {
		sb.WriteString(format(e))
		sb.WriteByte('\n')
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func formatEntry(e commands.DensityEntry) string {
	if e.Invalid() {
		return fmt.Sprintf("%s  invalid", e.Name)
	}
	return fmt.Sprintf("%s  %d", e.Name, e.Density)
}
