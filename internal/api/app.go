// Package api exposes the HTTP interface of the service.
//
// Lifecycle endpoints answer before any background work starts: creation and
// deletion hand off to detached tasks, and the persisted record's status is
// the only progress signal a client gets afterwards.
package api

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/NyiNyiSoePaing/blockscout-automation/internal/models"
	"github.com/NyiNyiSoePaing/blockscout-automation/internal/store"
)

// Provisioner starts the detached provisioning flow for a persisted record.
type Provisioner interface {
	RequestProvision(server *models.ManagedServer) error
}

// Cleaner starts detached teardown flows.
type Cleaner interface {
	RequestDeleteServer(id uint, hard bool) error
	RequestDeleteProject(id uint) error
}

// CertRequester starts detached TLS/domain setup.
type CertRequester interface {
	RequestCertificate(ctx context.Context, serverID uint, domain string) error
}

// App bundles the handler dependencies.
type App struct {
	log         *zap.Logger
	servers     store.ServerStore
	projects    store.ProjectStore
	provisioner Provisioner
	cleaner     Cleaner
	certs       CertRequester
}

// NewApp wires the handlers.
func NewApp(log *zap.Logger, servers store.ServerStore, projects store.ProjectStore, provisioner Provisioner, cleaner Cleaner, certs CertRequester) *App {
	return &App{
		log:         log.Named("api"),
		servers:     servers,
		projects:    projects,
		provisioner: provisioner,
		cleaner:     cleaner,
		certs:       certs,
	}
}

// Register binds all routes on e.
func (a *App) Register(e *echo.Echo) {
	e.GET("/healthz", a.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api")

	api.GET("/projects", a.ListProjects)
	api.POST("/projects", a.CreateProject)
	api.GET("/projects/:id", a.GetProject)
	api.PUT("/projects/:id", a.UpdateProject)
	api.DELETE("/projects/:id", a.DeleteProject)
	api.GET("/projects/:id/servers", a.ListProjectServers)

	api.GET("/servers", a.ListServers)
	api.POST("/servers", a.CreateServer)
	api.GET("/servers/:id", a.GetServer)
	api.PUT("/servers/:id", a.UpdateServer)
	api.DELETE("/servers/:id", a.DeleteServer)
	api.POST("/servers/:id/domain", a.RequestDomain)
}

// Health reports liveness.
func (a *App) Health(c echo.Context) error {
	return ok(c, "service healthy", nil)
}
