package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/NyiNyiSoePaing/blockscout-automation/internal/models"
	"github.com/NyiNyiSoePaing/blockscout-automation/internal/store"
)

type projectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ListProjects returns every project with its servers.
func (a *App) ListProjects(c echo.Context) error {
	projects, err := a.projects.List(c.Request().Context())
	if err != nil {
		a.log.Error("failed to list projects", zap.Error(err))
		return fail(c, http.StatusInternalServerError, "failed to retrieve projects")
	}
	return okCount(c, "Projects retrieved successfully", projects, len(projects))
}

// GetProject returns one project by id.
func (a *App) GetProject(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid project id")
	}

	project, err := a.projects.Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fail(c, http.StatusNotFound, "Project not found")
		}
		a.log.Error("failed to get project", zap.Uint("id", id), zap.Error(err))
		return fail(c, http.StatusInternalServerError, "failed to retrieve project")
	}
	return ok(c, "Project retrieved successfully", project)
}

// CreateProject persists a new project.
func (a *App) CreateProject(c echo.Context) error {
	var req projectRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	if req.Name == "" {
		return fail(c, http.StatusBadRequest, "name is required")
	}

	project := &models.Project{Name: req.Name, Description: req.Description}
	if err := a.projects.Create(c.Request().Context(), project); err != nil {
		if errors.Is(err, store.ErrProjectNameTaken) {
			return fail(c, http.StatusConflict, "Project with this name already exists")
		}
		a.log.Error("failed to create project", zap.Error(err))
		return fail(c, http.StatusInternalServerError, "failed to create project")
	}
	return created(c, "Project created successfully", project)
}

// UpdateProject applies a partial update.
func (a *App) UpdateProject(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid project id")
	}

	var req projectRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}

	upd := store.ProjectUpdate{}
	if req.Name != "" {
		upd.Name = &req.Name
	}
	if req.Description != "" {
		upd.Description = &req.Description
	}

	if err := a.projects.Update(c.Request().Context(), id, upd); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			return fail(c, http.StatusNotFound, "Project not found")
		case errors.Is(err, store.ErrProjectNameTaken):
			return fail(c, http.StatusConflict, "Project with this name already exists")
		default:
			a.log.Error("failed to update project", zap.Uint("id", id), zap.Error(err))
			return fail(c, http.StatusInternalServerError, "failed to update project")
		}
	}

	project, err := a.projects.Get(c.Request().Context(), id)
	if err != nil {
		a.log.Error("failed to reload project", zap.Uint("id", id), zap.Error(err))
		return fail(c, http.StatusInternalServerError, "failed to retrieve project")
	}
	return ok(c, "Project updated successfully", project)
}

// DeleteProject answers immediately and tears the project down as detached
// work: every owned server's cloud instance, then the project record.
func (a *App) DeleteProject(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid project id")
	}

	if _, err := a.projects.Get(c.Request().Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fail(c, http.StatusNotFound, "Project not found")
		}
		a.log.Error("failed to get project", zap.Uint("id", id), zap.Error(err))
		return fail(c, http.StatusInternalServerError, "failed to retrieve project")
	}

	if err := a.cleaner.RequestDeleteProject(id); err != nil {
		a.log.Error("failed to start project deletion", zap.Uint("id", id), zap.Error(err))
		return fail(c, http.StatusServiceUnavailable, "service is shutting down")
	}
	return accepted(c, "Project deletion started", nil)
}
