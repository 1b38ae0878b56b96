package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NyiNyiSoePaing/blockscout-automation/internal/models"
)

func TestListProjects(t *testing.T) {
	env := newTestEnv(t)
	env.projects.Seed(models.Project{Name: "alpha"})
	env.projects.Seed(models.Project{Name: "beta"})

	rec, resp := env.do(t, http.MethodGet, "/api/projects", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, resp.Success)
	require.NotNil(t, resp.Count)
	assert.Equal(t, 2, *resp.Count)
}

func TestCreateProject(t *testing.T) {
	env := newTestEnv(t)

	rec, resp := env.do(t, http.MethodPost, "/api/projects", map[string]string{
		"name":        "alpha",
		"description": "test chain",
	})

	require.Equal(t, http.StatusCreated, rec.Code)
	require.True(t, resp.Success)
	require.Len(t, env.projects.Projects, 1)
	assert.Equal(t, "alpha", env.projects.Projects[1].Name)
}

func TestCreateProject_EmptyName(t *testing.T) {
	env := newTestEnv(t)

	rec, resp := env.do(t, http.MethodPost, "/api/projects", map[string]string{"description": "no name"})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, resp.Success)
	assert.Empty(t, env.projects.Projects)
}

func TestCreateProject_DuplicateName(t *testing.T) {
	env := newTestEnv(t)
	env.projects.Seed(models.Project{Name: "alpha"})

	rec, resp := env.do(t, http.MethodPost, "/api/projects", map[string]string{"name": "alpha"})

	require.Equal(t, http.StatusConflict, rec.Code)
	assert.False(t, resp.Success)
	assert.Equal(t, "Project with this name already exists", resp.Message)
}

func TestGetProject_NotFound(t *testing.T) {
	env := newTestEnv(t)

	rec, resp := env.do(t, http.MethodGet, "/api/projects/42", nil)

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Project not found", resp.Message)
}

func TestUpdateProject(t *testing.T) {
	env := newTestEnv(t)
	p := env.projects.Seed(models.Project{Name: "alpha", Description: "old"})

	rec, resp := env.do(t, http.MethodPut, "/api/projects/1", map[string]string{"description": "new"})

	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, resp.Success)
	assert.Equal(t, "new", env.projects.Projects[p.ID].Description)
	assert.Equal(t, "alpha", env.projects.Projects[p.ID].Name)
}

func TestDeleteProject(t *testing.T) {
	env := newTestEnv(t)
	env.projects.Seed(models.Project{Name: "alpha"})

	rec, resp := env.do(t, http.MethodDelete, "/api/projects/1", nil)

	require.Equal(t, http.StatusAccepted, rec.Code)
	require.True(t, resp.Success)
	require.Equal(t, []uint{1}, env.cleaner.projects)
}

func TestDeleteProject_NotFound(t *testing.T) {
	env := newTestEnv(t)

	rec, _ := env.do(t, http.MethodDelete, "/api/projects/9", nil)

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, env.cleaner.projects)
}

func TestDeleteProject_ShuttingDown(t *testing.T) {
	env := newTestEnv(t)
	env.projects.Seed(models.Project{Name: "alpha"})
	env.cleaner.err = assert.AnError

	rec, resp := env.do(t, http.MethodDelete, "/api/projects/1", nil)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.False(t, resp.Success)
}
