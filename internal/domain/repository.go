package domain

import "context"

// ProjectRepository persists projects.
type ProjectRepository interface {
	List(ctx context.Context) ([]Project, error)
	Get(ctx context.Context, id string) (*Project, error)
	Save(ctx context.Context, project *Project) (*Project, error)
	Delete(ctx context.Context, id string) error
}

// CredentialSource loads the credentials a batch runs with.
type CredentialSource interface {
	Load(ctx context.Context) (GenerationCredentials, error)
}
