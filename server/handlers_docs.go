/******************************************************************************
 * Copyright (c) 2025-2026 Tenebris Technologies Inc.                         *
 * Please see the LICENSE file for details                                    *
 ******************************************************************************/

package server

import (
	"context"
	"errors"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/PivotLLM/clickup-mcp/clickup"
	"github.com/PivotLLM/clickup-mcp/docimport"
	"github.com/PivotLLM/clickup-mcp/global"
)

// Doc Handlers

func (s *Server) handleDocCreate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	folderID := mcp.ParseString(request, "folder_id", "")
	name := strings.TrimSpace(mcp.ParseString(request, "name", ""))
	content := mcp.ParseString(request, "content", "")

	cid := s.logToolCall(global.ToolDocCreate, map[string]string{"folder_id": folderID, "name": name})

	if folderID == "" {
		return s.paramError(cid, "folder_id parameter is required"), nil
	}
	if name == "" {
		return s.paramError(cid, "name parameter is required"), nil
	}

	doc, err := s.client.CreateDoc(ctx, folderID, &clickup.DocRequest{Name: name, Content: content})
	if err != nil {
		return s.errorResult(cid, err), nil
	}
	s.logger.Infof("Created doc %s in folder %s [%s]", doc.ID, folderID, cid)
	return createJSONResult(doc)
}

func (s *Server) handleDocCreateFromFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	folderID := mcp.ParseString(request, "folder_id", "")
	path := mcp.ParseString(request, "path", "")
	name := strings.TrimSpace(mcp.ParseString(request, "name", ""))

	cid := s.logToolCall(global.ToolDocCreateFromFile, map[string]string{"folder_id": folderID, "path": path, "name": name})

	if folderID == "" {
		return s.paramError(cid, "folder_id parameter is required"), nil
	}
	if path == "" {
		return s.paramError(cid, "path parameter is required"), nil
	}

	source, err := s.importer.Load(path)
	if err != nil {
		if errors.Is(err, docimport.ErrDisabled) {
			return s.paramError(cid, err.Error()), nil
		}
		return s.paramError(cid, "failed to load file: "+err.Error()), nil
	}
	if name == "" {
		name = source.Name
	}

	doc, err := s.client.CreateDoc(ctx, folderID, &clickup.DocRequest{Name: name, Content: source.Content})
	if err != nil {
		return s.errorResult(cid, err), nil
	}
	s.logger.Infof("Created doc %s from %s [%s]", doc.ID, source.Source, cid)
	return createJSONResult(map[string]interface{}{
		"doc":    doc,
		"source": source,
	})
}

func (s *Server) handleDocGet(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	docID := mcp.ParseString(request, "doc_id", "")

	cid := s.logToolCall(global.ToolDocGet, map[string]string{"doc_id": docID})

	if docID == "" {
		return s.paramError(cid, "doc_id parameter is required"), nil
	}

	doc, err := s.client.GetDoc(ctx, docID)
	if err != nil {
		return s.errorResult(cid, err), nil
	}
	return createJSONResult(doc)
}

func (s *Server) handleDocUpdate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	docID := mcp.ParseString(request, "doc_id", "")
	name := strings.TrimSpace(mcp.ParseString(request, "name", ""))
	content := mcp.ParseString(request, "content", "")

	cid := s.logToolCall(global.ToolDocUpdate, map[string]string{"doc_id": docID, "name": name})

	if docID == "" {
		return s.paramError(cid, "doc_id parameter is required"), nil
	}
	if name == "" && content == "" {
		return s.paramError(cid, "name or content is required"), nil
	}

	doc, err := s.client.UpdateDoc(ctx, docID, &clickup.DocRequest{Name: name, Content: content})
	if err != nil {
		return s.errorResult(cid, err), nil
	}
	return createJSONResult(doc)
}

func (s *Server) handleDocList(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	workspace := mcp.ParseString(request, "workspace_id", "")

	cid := s.logToolCall(global.ToolDocList, map[string]string{"workspace_id": workspace})

	teamID, err := s.workspaceID(ctx, workspace)
	if err != nil {
		return s.errorResult(cid, err), nil
	}
	docs, err := s.client.ListDocs(ctx, teamID)
	if err != nil {
		return s.errorResult(cid, err), nil
	}
	return docsResult(teamID, "", docs)
}

func (s *Server) handleDocSearch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := strings.TrimSpace(mcp.ParseString(request, "query", ""))
	workspace := mcp.ParseString(request, "workspace_id", "")

	cid := s.logToolCall(global.ToolDocSearch, map[string]string{"query": query, "workspace_id": workspace})

	if query == "" {
		return s.paramError(cid, "query parameter is required"), nil
	}

	teamID, err := s.workspaceID(ctx, workspace)
	if err != nil {
		return s.errorResult(cid, err), nil
	}
	docs, err := s.client.SearchDocs(ctx, teamID, query)
	if err != nil {
		return s.errorResult(cid, err), nil
	}
	return docsResult(teamID, query, docs)
}

func docsResult(workspaceID, query string, docs []clickup.Doc) (*mcp.CallToolResult, error) {
	if docs == nil {
		docs = []clickup.Doc{}
	}
	result := map[string]interface{}{
		"workspace_id": workspaceID,
		"docs":         docs,
		"count":        len(docs),
	}
	if query != "" {
		result["query"] = query
	}
	return createJSONResult(result)
}
