package course

import "context"

// Course is the catalog row for one uploaded package. The package bytes
// live in the blob store under BlobKey; the in-memory runtime (index,
// resource table, rewritten launch document) is rebuilt from them on
// demand.
type Course struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Version    string `json:"version"` // "1.2" | "2004"
	LaunchPath string `json:"launch_path"`
	OrgID      string `json:"org_id,omitempty"`
	OriginName string `json:"origin_name,omitempty"`
	BlobKey    string `json:"-"`
	SizeBytes  int64  `json:"size_bytes"`
	CreatedAt  int64  `json:"created_at,omitempty"`
}

type ListOpts struct {
	Q      string
	Limit  int
	Offset int
}

type Store interface {
	PutCourse(ctx context.Context, c Course) error
	GetCourse(ctx context.Context, id string) (Course, error)
	ListCourses(ctx context.Context, opts ListOpts) ([]Course, error)
	DeleteCourse(ctx context.Context, id string) error
}
