// Package storetest provides in-memory store implementations for tests.
package storetest

import (
	"context"
	"sync"
	"time"

	"github.com/NyiNyiSoePaing/blockscout-automation/internal/models"
	"github.com/NyiNyiSoePaing/blockscout-automation/internal/store"
)

// FakeServerStore is a mutex-guarded in-memory store.ServerStore.
type FakeServerStore struct {
	mu      sync.Mutex
	Servers map[uint]*models.ManagedServer
	nextID  uint

	// Optional error injection, keyed by method name.
	Errs map[string]error
}

// NewFakeServerStore returns an empty fake store.
func NewFakeServerStore() *FakeServerStore {
	return &FakeServerStore{
		Servers: make(map[uint]*models.ManagedServer),
		nextID:  1,
		Errs:    make(map[string]error),
	}
}

func (f *FakeServerStore) Get(_ context.Context, id uint) (*models.ManagedServer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.Errs["Get"]; err != nil {
		return nil, err
	}
	s, ok := f.Servers[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	clone := *s
	return &clone, nil
}

func (f *FakeServerStore) List(_ context.Context, filter store.ServerFilter) ([]models.ManagedServer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.Errs["List"]; err != nil {
		return nil, err
	}
	var out []models.ManagedServer
	for _, s := range f.Servers {
		if filter.ProjectID != 0 && s.ProjectID != filter.ProjectID {
			continue
		}
		if filter.Kind != "" && s.Kind != filter.Kind {
			continue
		}
		if filter.NetworkType != "" && s.NetworkType != filter.NetworkType {
			continue
		}
		if filter.ActiveOnly && !s.IsActive {
			continue
		}
		out = append(out, *s)
	}
	return out, nil
}

func (f *FakeServerStore) Create(_ context.Context, server *models.ManagedServer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.Errs["Create"]; err != nil {
		return err
	}
	if server.Kind == models.KindExplorer {
		for _, s := range f.Servers {
			if s.ProjectID == server.ProjectID && s.Kind == models.KindExplorer &&
				s.NetworkType == server.NetworkType && s.IsActive {
				return store.ErrNetworkTypeConflict
			}
		}
	}
	server.ID = f.nextID
	f.nextID++
	server.CreatedAt = time.Now()
	server.UpdatedAt = server.CreatedAt
	clone := *server
	f.Servers[server.ID] = &clone
	return nil
}

func (f *FakeServerStore) Update(_ context.Context, id uint, upd store.ServerUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.Errs["Update"]; err != nil {
		return err
	}
	s, ok := f.Servers[id]
	if !ok {
		return store.ErrNotFound
	}
	if upd.NetworkType != nil {
		s.NetworkType = *upd.NetworkType
	}
	if upd.ChainID != nil {
		s.ChainID = *upd.ChainID
	}
	if upd.Description != nil {
		s.Description = *upd.Description
	}
	if upd.CloudInstanceID != nil {
		s.CloudInstanceID = *upd.CloudInstanceID
	}
	if upd.IPAddress != nil {
		s.IPAddress = *upd.IPAddress
	}
	if upd.Domain != nil {
		s.Domain = *upd.Domain
	}
	if upd.ServerURL != nil {
		s.ServerURL = *upd.ServerURL
	}
	if upd.Status != nil {
		s.Status = *upd.Status
	}
	if upd.IsActive != nil {
		s.IsActive = *upd.IsActive
	}
	s.UpdatedAt = time.Now()
	return nil
}

func (f *FakeServerStore) Deactivate(ctx context.Context, id uint) error {
	inactive := false
	return f.Update(ctx, id, store.ServerUpdate{IsActive: &inactive})
}

func (f *FakeServerStore) Delete(_ context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.Errs["Delete"]; err != nil {
		return err
	}
	if _, ok := f.Servers[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.Servers, id)
	return nil
}

// Seed inserts a server as-is, assigning an ID when unset.
func (f *FakeServerStore) Seed(server models.ManagedServer) *models.ManagedServer {
	f.mu.Lock()
	defer f.mu.Unlock()
	if server.ID == 0 {
		server.ID = f.nextID
		f.nextID++
	} else if server.ID >= f.nextID {
		f.nextID = server.ID + 1
	}
	f.Servers[server.ID] = &server
	return &server
}

// FakeProjectStore is a mutex-guarded in-memory store.ProjectStore.
type FakeProjectStore struct {
	mu       sync.Mutex
	Projects map[uint]*models.Project
	nextID   uint

	Errs map[string]error
}

// NewFakeProjectStore returns an empty fake store.
func NewFakeProjectStore() *FakeProjectStore {
	return &FakeProjectStore{
		Projects: make(map[uint]*models.Project),
		nextID:   1,
		Errs:     make(map[string]error),
	}
}

func (f *FakeProjectStore) Get(_ context.Context, id uint) (*models.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.Errs["Get"]; err != nil {
		return nil, err
	}
	p, ok := f.Projects[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	clone := *p
	return &clone, nil
}

func (f *FakeProjectStore) List(_ context.Context) ([]models.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.Errs["List"]; err != nil {
		return nil, err
	}
	var out []models.Project
	for _, p := range f.Projects {
		out = append(out, *p)
	}
	return out, nil
}

func (f *FakeProjectStore) Create(_ context.Context, project *models.Project) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.Errs["Create"]; err != nil {
		return err
	}
	for _, p := range f.Projects {
		if p.Name == project.Name {
			return store.ErrProjectNameTaken
		}
	}
	project.ID = f.nextID
	f.nextID++
	project.CreatedAt = time.Now()
	project.UpdatedAt = project.CreatedAt
	clone := *project
	f.Projects[project.ID] = &clone
	return nil
}

func (f *FakeProjectStore) Update(_ context.Context, id uint, upd store.ProjectUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.Errs["Update"]; err != nil {
		return err
	}
	p, ok := f.Projects[id]
	if !ok {
		return store.ErrNotFound
	}
	if upd.Name != nil {
		for _, other := range f.Projects {
			if other.ID != id && other.Name == *upd.Name {
				return store.ErrProjectNameTaken
			}
		}
		p.Name = *upd.Name
	}
	if upd.Description != nil {
		p.Description = *upd.Description
	}
	p.UpdatedAt = time.Now()
	return nil
}

func (f *FakeProjectStore) Delete(_ context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.Errs["Delete"]; err != nil {
		return err
	}
	if _, ok := f.Projects[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.Projects, id)
	return nil
}

// Seed inserts a project as-is, assigning an ID when unset.
func (f *FakeProjectStore) Seed(project models.Project) *models.Project {
	f.mu.Lock()
	defer f.mu.Unlock()
	if project.ID == 0 {
		project.ID = f.nextID
		f.nextID++
	} else if project.ID >= f.nextID {
		f.nextID = project.ID + 1
	}
	f.Projects[project.ID] = &project
	return &project
}
