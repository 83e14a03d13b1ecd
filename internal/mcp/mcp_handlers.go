package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/huangsam/bizcache/core"
	"github.com/huangsam/bizcache/internal/contract"
	"github.com/huangsam/bizcache/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	reg     *core.Registry

	aggOnce sync.Once
	agg     *core.Aggregator
}

func newToolHandler(baseCfg *contract.Config, reg *core.Registry) *toolHandler {
	return &toolHandler{baseCfg: baseCfg, reg: reg}
}

// aggregator returns the single startup aggregator shared by every call.
func (h *toolHandler) aggregator() *core.Aggregator {
	h.aggOnce.Do(func() {
		h.agg = h.reg.Aggregator(h.baseCfg.Workers)
	})
	return h.agg
}

// loadedCache returns the named cache after making sure it has been fetched.
func (h *toolHandler) loadedCache(ctx context.Context, request mcp.CallToolRequest) (*core.EntityCache, error) {
	cache, err := h.reg.Cache(request.GetString("entity", ""))
	if err != nil {
		return nil, err
	}
	if err := cache.FetchAll(ctx); err != nil {
		return nil, err
	}
	return cache, nil
}

// writableCache is loadedCache plus the reference sources, so writes embed stubs.
func (h *toolHandler) writableCache(ctx context.Context, request mcp.CallToolRequest) (*core.EntityCache, error) {
	cache, err := h.loadedCache(ctx, request)
	if err != nil {
		return nil, err
	}
	if err := h.reg.FetchReferenced(ctx, cache); err != nil {
		return nil, err
	}
	return cache, nil
}

func (h *toolHandler) handleListEntities(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	type entityInfo struct {
		Name       string   `json:"name"`
		Resource   string   `json:"resource"`
		Prefix     string   `json:"id_prefix,omitempty"`
		References []string `json:"references,omitempty"`
	}

	var out []entityInfo
	for _, c := range h.reg.Caches() {
		e := c.Entity()
		info := entityInfo{Name: e.Name, Resource: e.ResourcePath, Prefix: e.IDPrefix}
		for _, r := range e.References {
			info.References = append(info.References, r.IDField+"->"+r.Source)
		}
		out = append(out, info)
	}
	return jsonResult(out)
}

func (h *toolHandler) handleListRecords(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cache, err := h.loadedCache(ctx, request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("list failed: %v", err)), nil
	}
	records := cache.Snapshot()
	if l := request.GetInt("limit", 0); l > 0 && l < len(records) {
		records = records[:l]
	}
	return jsonResult(records)
}

func (h *toolHandler) handleGetRecord(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cache, err := h.loadedCache(ctx, request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("get failed: %v", err)), nil
	}
	id := request.GetString("id", "")
	record, ok := cache.Get(id)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("get failed: %s %q: %v", cache.Name(), id, contract.ErrNotFound)), nil
	}
	return jsonResult(record)
}

func (h *toolHandler) handleCreateRecord(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	fields, err := parseFields(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid fields: %v", err)), nil
	}
	cache, err := h.writableCache(ctx, request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("create failed: %v", err)), nil
	}
	record, err := cache.Create(ctx, fields)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("create failed: %v", err)), nil
	}
	return jsonResult(record)
}

func (h *toolHandler) handleUpdateRecord(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	fields, err := parseFields(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid fields: %v", err)), nil
	}
	cache, err := h.writableCache(ctx, request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("update failed: %v", err)), nil
	}
	record, err := cache.Update(ctx, request.GetString("id", ""), fields)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("update failed: %v", err)), nil
	}
	return jsonResult(record)
}

func (h *toolHandler) handleDeleteRecord(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cache, err := h.loadedCache(ctx, request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("delete failed: %v", err)), nil
	}
	id := request.GetString("id", "")
	if err := cache.Delete(ctx, id); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("delete failed: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("deleted %s %s (%d remaining)", cache.Name(), id, cache.Len())), nil
}

func (h *toolHandler) handleStartupStatus(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	agg := h.aggregator()
	if err := agg.Run(ctx); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("startup interrupted: %v", err)), nil
	}
	return jsonResult(struct {
		Ready     bool                    `json:"ready"`
		Resources []schema.ResourceStatus `json:"resources"`
	}{agg.Ready(), agg.Statuses()})
}

// parseFields decodes the JSON object passed in the fields argument.
func parseFields(request mcp.CallToolRequest) (schema.Record, error) {
	raw := request.GetString("fields", "")
	if raw == "" {
		return nil, errors.New("fields is required")
	}
	var fields schema.Record
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		return nil, errors.New("fields must be a JSON object")
	}
	return fields, nil
}

// jsonResult wraps data as indented JSON text.
func jsonResult(data any) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode failed: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}
