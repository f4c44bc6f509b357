package projects

import "context"

// RepositoryPort defines data access for projects and their lines.
type RepositoryPort interface {
	CreateProject(ctx context.Context, project Project) (*Project, error)
	GetProject(ctx context.Context, businessID, id int64) (*Project, error)
	ListProjects(ctx context.Context, req ListProjectsRequest) ([]Project, int, error)
	UpdateProject(ctx context.Context, businessID, id int64, patch UpdateProjectRequest) (*Project, error)
	SetReferenceQuote(ctx context.Context, projectID int64, quoteID *int64) error

	AddLine(ctx context.Context, line ServiceLine) (*ServiceLine, error)
	GetLine(ctx context.Context, projectID, lineID int64) (*ServiceLine, error)
	ListLines(ctx context.Context, projectID int64) ([]ServiceLine, error)
	UpdateLine(ctx context.Context, projectID, lineID int64, patch UpdateLineRequest) (*ServiceLine, error)
	DeleteLine(ctx context.Context, projectID, lineID int64) error
}
