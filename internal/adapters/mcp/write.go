package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"ifcmass/internal/application/commands"
	"ifcmass/internal/ports"
)

// RegisterWriteTools adds the cache editing tools to the MCP server.
func RegisterWriteTools(s *server.MCPServer, store ports.DensityStore) {
	s.AddTool(setDensityTool(), setDensityHandler(store))
}

// --- set_density ---

func setDensityTool() mcp.Tool {
	return mcp.NewTool("set_density",
		mcp.WithDescription("Record a material density in the cache. The name is normalized the same way model materials are. A density of 0 marks the material as invalid so it is never looked up."),
		mcp.WithString("material",
			mcp.Description("Material name"),
			mcp.Required(),
		),
		mcp.WithNumber("density",
			mcp.Description("Density in kg/m³ (0 marks the material invalid)"),
			mcp.Required(),
			mcp.Min(0),
		),
	)
}

func setDensityHandler(store ports.DensityStore) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		density := req.GetFloat("density", -1)
		if density != float64(int(density)) {
			return toolError(fmt.Errorf("density must be a whole number, got %v", density))
		}

		cmd := commands.NewSetDensityCommand(store, req.GetString("material", ""), int(density))
		result, err := cmd.Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(result.Message), nil
	}
}
