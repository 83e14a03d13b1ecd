// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/bizcache/core"
	"github.com/huangsam/bizcache/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the bizcache MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, reg *core.Registry) *server.MCPServer {
	s := server.NewMCPServer(
		"bizcache Entity Cache Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := newToolHandler(baseCfg, reg)

	// --- 1. Tool: list_entities ---
	s.AddTool(mcp.NewTool("list_entities",
		mcp.WithDescription("List every cached entity type with its resource path, code prefix and references."),
	), h.handleListEntities)

	// --- 2. Tool: list_records ---
	s.AddTool(mcp.NewTool("list_records",
		mcp.WithDescription("Return every record of one entity type. Loads the entity on first use."),
		mcp.WithString("entity", mcp.Description("Entity name, e.g. 'warehouses'."), mcp.Required()),
		mcp.WithNumber("limit", mcp.Description("Limit the number of records returned.")),
	), h.handleListRecords)

	// --- 3. Tool: get_record ---
	s.AddTool(mcp.NewTool("get_record",
		mcp.WithDescription("Return one record by its _id."),
		mcp.WithString("entity", mcp.Description("Entity name."), mcp.Required()),
		mcp.WithString("id", mcp.Description("Record _id."), mcp.Required()),
	), h.handleGetRecord)

	// --- 4. Tool: create_record ---
	s.AddTool(mcp.NewTool("create_record",
		mcp.WithDescription("Create a record. Foreign keys such as warehouseId are embedded as display stubs."),
		mcp.WithString("entity", mcp.Description("Entity name."), mcp.Required()),
		mcp.WithString("fields", mcp.Description("JSON object holding the record fields."), mcp.Required()),
	), h.handleCreateRecord)

	// --- 5. Tool: update_record ---
	s.AddTool(mcp.NewTool("update_record",
		mcp.WithDescription("Shallow-merge fields into an existing record."),
		mcp.WithString("entity", mcp.Description("Entity name."), mcp.Required()),
		mcp.WithString("id", mcp.Description("Record _id."), mcp.Required()),
		mcp.WithString("fields", mcp.Description("JSON object holding the fields to change."), mcp.Required()),
	), h.handleUpdateRecord)

	// --- 6. Tool: delete_record ---
	s.AddTool(mcp.NewTool("delete_record",
		mcp.WithDescription("Delete a record. Deleting an unknown id succeeds without changes."),
		mcp.WithString("entity", mcp.Description("Entity name."), mcp.Required()),
		mcp.WithString("id", mcp.Description("Record _id."), mcp.Required()),
	), h.handleDeleteRecord)

	// --- 7. Tool: startup_status ---
	s.AddTool(mcp.NewTool("startup_status",
		mcp.WithDescription("Load every entity once and report the per-entity outcome and overall readiness."),
	), h.handleStartupStatus)

	return s
}

// StartMCPServer starts the bizcache MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, reg *core.Registry) error {
	s := NewMCPServer(baseCfg, reg)
	return server.ServeStdio(s)
}
