package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/NyiNyiSoePaing/blockscout-automation/internal/deploy"
	"github.com/NyiNyiSoePaing/blockscout-automation/internal/models"
	"github.com/NyiNyiSoePaing/blockscout-automation/internal/status"
	"github.com/NyiNyiSoePaing/blockscout-automation/internal/store"
)

type createServerRequest struct {
	ProjectID   uint   `json:"projectId"`
	Kind        string `json:"kind"`
	NetworkType string `json:"networkType"`
	ChainID     string `json:"chainId"`
	Description string `json:"description"`
}

type updateServerRequest struct {
	NetworkType *string `json:"networkType"`
	ChainID     *string `json:"chainId"`
	Description *string `json:"description"`
	ServerURL   *string `json:"serverUrl"`
}

type domainRequest struct {
	Domain string `json:"domain"`
}

// ListServers returns all active servers.
func (a *App) ListServers(c echo.Context) error {
	servers, err := a.servers.List(c.Request().Context(), store.ServerFilter{ActiveOnly: true})
	if err != nil {
		a.log.Error("failed to list servers", zap.Error(err))
		return fail(c, http.StatusInternalServerError, "failed to retrieve servers")
	}
	return okCount(c, "Servers retrieved successfully", servers, len(servers))
}

// ListProjectServers returns the active servers owned by one project.
func (a *App) ListProjectServers(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid project id")
	}

	servers, err := a.servers.List(c.Request().Context(), store.ServerFilter{ProjectID: id, ActiveOnly: true})
	if err != nil {
		a.log.Error("failed to list project servers", zap.Uint("project_id", id), zap.Error(err))
		return fail(c, http.StatusInternalServerError, "failed to retrieve servers")
	}
	return okCount(c, "Servers retrieved successfully", servers, len(servers))
}

// GetServer returns one server by id.
func (a *App) GetServer(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid server id")
	}

	server, err := a.servers.Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fail(c, http.StatusNotFound, "Server not found")
		}
		a.log.Error("failed to get server", zap.Uint("id", id), zap.Error(err))
		return fail(c, http.StatusInternalServerError, "failed to retrieve server")
	}
	return ok(c, "Server retrieved successfully", server)
}

// CreateServer persists a record in provisioning status, answers 201, then
// hands the provisioning flow to the background orchestrator.
func (a *App) CreateServer(c echo.Context) error {
	var req createServerRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}

	kind := models.ServerKind(req.Kind)
	if kind != models.KindRPC && kind != models.KindExplorer {
		return fail(c, http.StatusBadRequest, "kind must be rpc or explorer")
	}
	networkType := models.NetworkType(req.NetworkType)
	if networkType != "" && networkType != models.NetworkMainnet && networkType != models.NetworkTestnet {
		return fail(c, http.StatusBadRequest, "networkType must be mainnet or testnet")
	}
	if kind == models.KindExplorer && networkType == "" {
		return fail(c, http.StatusBadRequest, "networkType is required for explorer servers")
	}

	ctx := c.Request().Context()
	if _, err := a.projects.Get(ctx, req.ProjectID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fail(c, http.StatusNotFound, "Project not found")
		}
		a.log.Error("failed to check project", zap.Uint("project_id", req.ProjectID), zap.Error(err))
		return fail(c, http.StatusInternalServerError, "failed to create server")
	}

	server := &models.ManagedServer{
		ProjectID:   req.ProjectID,
		Kind:        kind,
		NetworkType: networkType,
		ChainID:     req.ChainID,
		Description: req.Description,
		Status:      status.Provisioning,
		IsActive:    true,
	}
	if err := a.servers.Create(ctx, server); err != nil {
		if errors.Is(err, store.ErrNetworkTypeConflict) {
			return fail(c, http.StatusConflict, "Project already has an explorer server for this network type")
		}
		a.log.Error("failed to create server", zap.Error(err))
		return fail(c, http.StatusInternalServerError, "failed to create server")
	}

	if err := a.provisioner.RequestProvision(server); err != nil {
		a.log.Error("failed to start provisioning", zap.Uint("id", server.ID), zap.Error(err))
		return fail(c, http.StatusServiceUnavailable, "service is shutting down")
	}
	return created(c, "Server created successfully", server)
}

// UpdateServer applies a partial update of caller-editable fields. Status and
// the provisioning identifiers are owned by the orchestration components and
// cannot be set here.
func (a *App) UpdateServer(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid server id")
	}

	var req updateServerRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}

	upd := store.ServerUpdate{
		ChainID:     req.ChainID,
		Description: req.Description,
		ServerURL:   req.ServerURL,
	}
	if req.NetworkType != nil {
		nt := models.NetworkType(*req.NetworkType)
		if nt != models.NetworkMainnet && nt != models.NetworkTestnet {
			return fail(c, http.StatusBadRequest, "networkType must be mainnet or testnet")
		}
		upd.NetworkType = &nt
	}

	if err := a.servers.Update(c.Request().Context(), id, upd); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			return fail(c, http.StatusNotFound, "Server not found")
		case errors.Is(err, store.ErrNetworkTypeConflict):
			return fail(c, http.StatusConflict, "Project already has an explorer server for this network type")
		default:
			a.log.Error("failed to update server", zap.Uint("id", id), zap.Error(err))
			return fail(c, http.StatusInternalServerError, "failed to update server")
		}
	}

	server, err := a.servers.Get(c.Request().Context(), id)
	if err != nil {
		a.log.Error("failed to reload server", zap.Uint("id", id), zap.Error(err))
		return fail(c, http.StatusInternalServerError, "failed to retrieve server")
	}
	return ok(c, "Server updated successfully", server)
}

// DeleteServer answers immediately and tears the server down as detached
// work. ?hard=true removes the record instead of deactivating it.
func (a *App) DeleteServer(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid server id")
	}

	if _, err := a.servers.Get(c.Request().Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fail(c, http.StatusNotFound, "Server not found")
		}
		a.log.Error("failed to get server", zap.Uint("id", id), zap.Error(err))
		return fail(c, http.StatusInternalServerError, "failed to retrieve server")
	}

	hard := c.QueryParam("hard") == "true"
	if err := a.cleaner.RequestDeleteServer(id, hard); err != nil {
		a.log.Error("failed to start server deletion", zap.Uint("id", id), zap.Error(err))
		return fail(c, http.StatusServiceUnavailable, "service is shutting down")
	}
	return accepted(c, "Server deletion started", nil)
}

// RequestDomain starts TLS/domain setup. The precondition (a known address)
// is checked synchronously; everything after the 202 is observable only via
// the record status.
func (a *App) RequestDomain(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid server id")
	}

	var req domainRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	if req.Domain == "" {
		return fail(c, http.StatusBadRequest, "domain is required")
	}

	err = a.certs.RequestCertificate(c.Request().Context(), id, req.Domain)
	if err != nil {
		var illegal *status.ErrIllegalTransition
		switch {
		case errors.Is(err, store.ErrNotFound):
			return fail(c, http.StatusNotFound, "Server not found")
		case errors.Is(err, deploy.ErrNoAddress):
			return fail(c, http.StatusPreconditionFailed, "Server has no IP address yet")
		case errors.As(err, &illegal):
			return fail(c, http.StatusConflict, "Server is not ready for domain setup")
		default:
			a.log.Error("failed to start certificate setup", zap.Uint("id", id), zap.Error(err))
			return fail(c, http.StatusInternalServerError, "failed to start domain setup")
		}
	}
	return accepted(c, "Domain setup started", nil)
}
