package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/NyiNyiSoePaing/blockscout-automation/internal/models"
)

// GormServerStore implements ServerStore on a gorm-managed Postgres database.
type GormServerStore struct {
	db *gorm.DB
}

// NewGormServerStore returns a ServerStore backed by db.
func NewGormServerStore(db *gorm.DB) *GormServerStore {
	return &GormServerStore{db: db}
}

func (s *GormServerStore) Get(ctx context.Context, id uint) (*models.ManagedServer, error) {
	var server models.ManagedServer
	if err := s.db.WithContext(ctx).First(&server, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get server %d: %w", id, err)
	}
	return &server, nil
}

func (s *GormServerStore) List(ctx context.Context, f ServerFilter) ([]models.ManagedServer, error) {
	q := s.db.WithContext(ctx).Order("created_at DESC")
	if f.ProjectID != 0 {
		q = q.Where("project_id = ?", f.ProjectID)
	}
	if f.Kind != "" {
		q = q.Where("kind = ?", f.Kind)
	}
	if f.NetworkType != "" {
		q = q.Where("network_type = ?", f.NetworkType)
	}
	if f.ActiveOnly {
		q = q.Where("is_active = ?", true)
	}

	var servers []models.ManagedServer
	if err := q.Find(&servers).Error; err != nil {
		return nil, fmt.Errorf("failed to list servers: %w", err)
	}
	return servers, nil
}

func (s *GormServerStore) Create(ctx context.Context, server *models.ManagedServer) error {
	// At most one active explorer server per (project, network type).
	if server.Kind == models.KindExplorer {
		if err := s.checkNetworkType(ctx, server.ProjectID, server.NetworkType, 0); err != nil {
			return err
		}
	}

	if err := s.db.WithContext(ctx).Create(server).Error; err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	return nil
}

func (s *GormServerStore) Update(ctx context.Context, id uint, upd ServerUpdate) error {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if upd.NetworkType != nil && existing.Kind == models.KindExplorer && *upd.NetworkType != existing.NetworkType {
		if err := s.checkNetworkType(ctx, existing.ProjectID, *upd.NetworkType, id); err != nil {
			return err
		}
	}

	fields := serverUpdateFields(upd)
	if len(fields) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).Model(&models.ManagedServer{}).Where("id = ?", id).Updates(fields).Error; err != nil {
		return fmt.Errorf("failed to update server %d: %w", id, err)
	}
	return nil
}

func (s *GormServerStore) Deactivate(ctx context.Context, id uint) error {
	inactive := false
	return s.Update(ctx, id, ServerUpdate{IsActive: &inactive})
}

func (s *GormServerStore) Delete(ctx context.Context, id uint) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Unscoped().Delete(&models.ManagedServer{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete server %d: %w", id, err)
	}
	return nil
}

func (s *GormServerStore) checkNetworkType(ctx context.Context, projectID uint, nt models.NetworkType, excludeID uint) error {
	q := s.db.WithContext(ctx).Model(&models.ManagedServer{}).
		Where("project_id = ? AND kind = ? AND network_type = ? AND is_active = ?",
			projectID, models.KindExplorer, nt, true)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check network type constraint: %w", err)
	}
	if count > 0 {
		return ErrNetworkTypeConflict
	}
	return nil
}

func serverUpdateFields(upd ServerUpdate) map[string]any {
	fields := map[string]any{}
	if upd.NetworkType != nil {
		fields["network_type"] = *upd.NetworkType
	}
	if upd.ChainID != nil {
		fields["chain_id"] = *upd.ChainID
	}
	if upd.Description != nil {
		fields["description"] = *upd.Description
	}
	if upd.CloudInstanceID != nil {
		fields["cloud_instance_id"] = *upd.CloudInstanceID
	}
	if upd.IPAddress != nil {
		fields["ip_address"] = *upd.IPAddress
	}
	if upd.Domain != nil {
		fields["domain"] = *upd.Domain
	}
	if upd.ServerURL != nil {
		fields["server_url"] = *upd.ServerURL
	}
	if upd.Status != nil {
		fields["status"] = *upd.Status
	}
	if upd.IsActive != nil {
		fields["is_active"] = *upd.IsActive
	}
	return fields
}

// GormProjectStore implements ProjectStore on a gorm-managed Postgres database.
type GormProjectStore struct {
	db *gorm.DB
}

// NewGormProjectStore returns a ProjectStore backed by db.
func NewGormProjectStore(db *gorm.DB) *GormProjectStore {
	return &GormProjectStore{db: db}
}

func (s *GormProjectStore) Get(ctx context.Context, id uint) (*models.Project, error) {
	var project models.Project
	if err := s.db.WithContext(ctx).Preload("Servers").First(&project, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get project %d: %w", id, err)
	}
	return &project, nil
}

func (s *GormProjectStore) List(ctx context.Context) ([]models.Project, error) {
	var projects []models.Project
	if err := s.db.WithContext(ctx).Preload("Servers").Order("created_at DESC").Find(&projects).Error; err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

func (s *GormProjectStore) Create(ctx context.Context, project *models.Project) error {
	if err := s.checkName(ctx, project.Name, 0); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Create(project).Error; err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}
	return nil
}

func (s *GormProjectStore) Update(ctx context.Context, id uint, upd ProjectUpdate) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	fields := map[string]any{}
	if upd.Name != nil {
		if err := s.checkName(ctx, *upd.Name, id); err != nil {
			return err
		}
		fields["name"] = *upd.Name
	}
	if upd.Description != nil {
		fields["description"] = *upd.Description
	}
	if len(fields) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).Model(&models.Project{}).Where("id = ?", id).Updates(fields).Error; err != nil {
		return fmt.Errorf("failed to update project %d: %w", id, err)
	}
	return nil
}

func (s *GormProjectStore) Delete(ctx context.Context, id uint) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Unscoped().Delete(&models.Project{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete project %d: %w", id, err)
	}
	return nil
}

func (s *GormProjectStore) checkName(ctx context.Context, name string, excludeID uint) error {
	q := s.db.WithContext(ctx).Model(&models.Project{}).Where("name = ?", name)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check project name: %w", err)
	}
	if count > 0 {
		return ErrProjectNameTaken
	}
	return nil
}
