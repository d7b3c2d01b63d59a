/******************************************************************************
 * Copyright (c) 2025-2026 Tenebris Technologies Inc.                         *
 * Please see the LICENSE file for details                                    *
 ******************************************************************************/

package clickup

import (
	"context"
	"net/url"
	"strings"
)

// ListWorkspaces returns the workspaces the token can access
func (c *Client) ListWorkspaces(ctx context.Context) ([]Workspace, error) {
	var env struct {
		Teams []Workspace `json:"teams"`
	}
	if err := c.get(ctx, "/team", nil, &env); err != nil {
		return nil, err
	}
	return env.Teams, nil
}

// FirstWorkspaceID returns the ID of the first accessible workspace
func (c *Client) FirstWorkspaceID(ctx context.Context) (string, error) {
	workspaces, err := c.ListWorkspaces(ctx)
	if err != nil {
		return "", err
	}
	if len(workspaces) == 0 {
		return "", NewError(KindNotFound, "no workspaces found")
	}
	return workspaces[0].ID, nil
}

// GetWorkspace fetches one workspace with its members
func (c *Client) GetWorkspace(ctx context.Context, teamID string) (*Workspace, error) {
	var env struct {
		Team Workspace `json:"team"`
	}
	if err := c.get(ctx, "/team/"+pathEscape(teamID), nil, &env); err != nil {
		return nil, err
	}
	return &env.Team, nil
}

// ListSpaces returns the spaces in a workspace
func (c *Client) ListSpaces(ctx context.Context, teamID string, archived bool) ([]Space, error) {
	var env struct {
		Spaces []Space `json:"spaces"`
	}
	if err := c.get(ctx, "/team/"+pathEscape(teamID)+"/space", archivedQuery(archived), &env); err != nil {
		return nil, err
	}
	return env.Spaces, nil
}

// GetSpace fetches one space
func (c *Client) GetSpace(ctx context.Context, spaceID string) (*Space, error) {
	var space Space
	if err := c.get(ctx, "/space/"+pathEscape(spaceID), nil, &space); err != nil {
		return nil, err
	}
	return &space, nil
}

// ListFolders returns the folders in a space
func (c *Client) ListFolders(ctx context.Context, spaceID string, archived bool) ([]Folder, error) {
	var env struct {
		Folders []Folder `json:"folders"`
	}
	if err := c.get(ctx, "/space/"+pathEscape(spaceID)+"/folder", archivedQuery(archived), &env); err != nil {
		return nil, err
	}
	return env.Folders, nil
}

// GetFolder fetches one folder
func (c *Client) GetFolder(ctx context.Context, folderID string) (*Folder, error) {
	var folder Folder
	if err := c.get(ctx, "/folder/"+pathEscape(folderID), nil, &folder); err != nil {
		return nil, err
	}
	return &folder, nil
}

// ListFolderLists returns the lists in a folder
func (c *Client) ListFolderLists(ctx context.Context, folderID string, archived bool) ([]List, error) {
	var env struct {
		Lists []List `json:"lists"`
	}
	if err := c.get(ctx, "/folder/"+pathEscape(folderID)+"/list", archivedQuery(archived), &env); err != nil {
		return nil, err
	}
	return env.Lists, nil
}

// ListFolderlessLists returns the lists directly under a space
func (c *Client) ListFolderlessLists(ctx context.Context, spaceID string, archived bool) ([]List, error) {
	var env struct {
		Lists []List `json:"lists"`
	}
	if err := c.get(ctx, "/space/"+pathEscape(spaceID)+"/list", archivedQuery(archived), &env); err != nil {
		return nil, err
	}
	return env.Lists, nil
}

// GetList fetches one list
func (c *Client) GetList(ctx context.Context, listID string) (*List, error) {
	var list List
	if err := c.get(ctx, "/list/"+pathEscape(listID), nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// ListSpaceLists returns the folderless lists of a space followed by the
// lists of each of its folders. Aggregate: 2 + one request per folder.
func (c *Client) ListSpaceLists(ctx context.Context, spaceID string) ([]List, error) {
	lists, err := c.ListFolderlessLists(ctx, spaceID, false)
	if err != nil {
		return nil, err
	}
	folders, err := c.ListFolders(ctx, spaceID, false)
	if err != nil {
		return nil, err
	}
	for _, f := range folders {
		folderLists, err := c.ListFolderLists(ctx, f.ID, false)
		if err != nil {
			return nil, err
		}
		lists = append(lists, folderLists...)
	}
	return lists, nil
}

// FindListByName finds a list by case-insensitive name in one space, or in
// every space of the workspace when spaceID is empty. Aggregate.
func (c *Client) FindListByName(ctx context.Context, teamID, spaceID, name string) (*List, error) {
	spaceIDs := []string{spaceID}
	if spaceID == "" {
		spaces, err := c.ListSpaces(ctx, teamID, false)
		if err != nil {
			return nil, err
		}
		spaceIDs = spaceIDs[:0]
		for _, s := range spaces {
			spaceIDs = append(spaceIDs, s.ID)
		}
	}

	for _, id := range spaceIDs {
		lists, err := c.ListSpaceLists(ctx, id)
		if err != nil {
			return nil, err
		}
		for i := range lists {
			if strings.EqualFold(lists[i].Name, name) {
				return &lists[i], nil
			}
		}
	}
	return nil, NewError(KindNotFound, "no list named %q", name)
}

func archivedQuery(archived bool) url.Values {
	if !archived {
		return nil
	}
	return url.Values{"archived": {"true"}}
}
