/******************************************************************************
 * Copyright (c) 2025-2026 Tenebris Technologies Inc.                         *
 * Please see the LICENSE file for details                                    *
 ******************************************************************************/

package clickup

import (
	"context"
	"net/http"
	"net/url"
)

// CreateDoc creates a doc in a folder
func (c *Client) CreateDoc(ctx context.Context, folderID string, req *DocRequest) (*Doc, error) {
	var doc Doc
	if err := c.post(ctx, "/folder/"+pathEscape(folderID)+"/doc", req, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// GetDoc fetches a doc with its content
func (c *Client) GetDoc(ctx context.Context, docID string) (*Doc, error) {
	var doc Doc
	if err := c.get(ctx, "/doc/"+pathEscape(docID), nil, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// UpdateDoc changes a doc's name or content
func (c *Client) UpdateDoc(ctx context.Context, docID string, req *DocRequest) (*Doc, error) {
	var doc Doc
	if err := c.put(ctx, "/doc/"+pathEscape(docID), req, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// ListDocs lists the docs of a workspace through API v3
func (c *Client) ListDocs(ctx context.Context, workspaceID string) ([]Doc, error) {
	return c.listDocs(ctx, workspaceID, nil)
}

// SearchDocs lists the docs of a workspace matching query through API v3
func (c *Client) SearchDocs(ctx context.Context, workspaceID, query string) ([]Doc, error) {
	var q url.Values
	if query != "" {
		q = url.Values{"search": {query}}
	}
	return c.listDocs(ctx, workspaceID, q)
}

func (c *Client) listDocs(ctx context.Context, workspaceID string, q url.Values) ([]Doc, error) {
	var env struct {
		Docs []Doc `json:"docs"`
	}
	path := "/workspaces/" + pathEscape(workspaceID) + "/docs"
	if err := c.do(ctx, http.MethodGet, c.v3BaseURL, path, q, nil, &env); err != nil {
		return nil, err
	}
	return env.Docs, nil
}
