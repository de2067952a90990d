package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"adstudio/internal/domain"
	"adstudio/internal/infra"
	"adstudio/internal/sqlinline"
)

// ProjectRepositoryPG implements domain.ProjectRepository.
type ProjectRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewProjectRepository creates a project repository backed by PostgreSQL.
func NewProjectRepository(sql infra.SQLExecutor) *ProjectRepositoryPG {
	return &ProjectRepositoryPG{sql: sql}
}

// List returns all projects, newest first.
func (r *ProjectRepositoryPG) List(ctx context.Context) ([]domain.Project, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QListProjects)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	projects := []domain.Project{}
	for rows.Next() {
		var p domain.Project
		if err := rows.Scan(&p.ID, &p.Name, &p.MasterPrompt, &p.CreatedAt); err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// Get fetches a project by its identifier.
func (r *ProjectRepositoryPG) Get(ctx context.Context, id string) (*domain.Project, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrProjectNotFound, id)
	}
	var p domain.Project
	err := r.sql.QueryRow(ctx, sqlinline.QSelectProject, id).Scan(&p.ID, &p.Name, &p.MasterPrompt, &p.CreatedAt)
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrProjectNotFound, id)
		}
		return nil, err
	}
	return &p, nil
}

// Save inserts or updates a project. A missing ID is generated.
func (r *ProjectRepositoryPG) Save(ctx context.Context, project *domain.Project) (*domain.Project, error) {
	if project == nil {
		return nil, errors.New("project is required")
	}
	name := strings.TrimSpace(project.Name)
	prompt := strings.TrimSpace(project.MasterPrompt)
	if name == "" || prompt == "" {
		return nil, errors.New("project name and master prompt are required")
	}
	id := strings.TrimSpace(project.ID)
	if id == "" {
		id = uuid.NewString()
	}

	var saved domain.Project
	err := r.sql.QueryRow(ctx, sqlinline.QUpsertProject, id, name, prompt).
		Scan(&saved.ID, &saved.Name, &saved.MasterPrompt, &saved.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

// Delete removes a project. Deleting an unknown project is not an error.
func (r *ProjectRepositoryPG) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return nil
	}
	_, err := r.sql.Exec(ctx, sqlinline.QDeleteProject, id)
	return err
}

var _ domain.ProjectRepository = (*ProjectRepositoryPG)(nil)
