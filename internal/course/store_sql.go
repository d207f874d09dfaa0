package course

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

var ErrNotFound = errors.New("course not found")

type SQLStore struct {
	db     *sql.DB
	driver string // "sqlite" or "postgres"
}

func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, driver: driver}
}

func (s *SQLStore) PutCourse(ctx context.Context, c Course) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO courses (id,title,version,launch_path,org_id,origin_name,blob_key,size_bytes,created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		 ON CONFLICT (id) DO UPDATE SET
		   title=EXCLUDED.title, version=EXCLUDED.version,
		   launch_path=EXCLUDED.launch_path, org_id=EXCLUDED.org_id,
		   origin_name=EXCLUDED.origin_name, blob_key=EXCLUDED.blob_key,
		   size_bytes=EXCLUDED.size_bytes`,
		c.ID, c.Title, c.Version, c.LaunchPath, c.OrgID, c.OriginName,
		c.BlobKey, c.SizeBytes, time.Now().Unix())
	return err
}

func (s *SQLStore) GetCourse(ctx context.Context, id string) (Course, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id,title,version,launch_path,org_id,origin_name,blob_key,size_bytes,created_at
		 FROM courses WHERE id=$1`, id)
	var c Course
	err := row.Scan(&c.ID, &c.Title, &c.Version, &c.LaunchPath, &c.OrgID,
		&c.OriginName, &c.BlobKey, &c.SizeBytes, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Course{}, ErrNotFound
	}
	if err != nil {
		return Course{}, err
	}
	return c, nil
}

func (s *SQLStore) ListCourses(ctx context.Context, opts ListOpts) ([]Course, error) {
	limit := opts.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	q := "%" + opts.Q + "%"
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,title,version,launch_path,org_id,origin_name,blob_key,size_bytes,created_at
		 FROM courses WHERE title LIKE $1
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		q, limit, opts.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Course
	for rows.Next() {
		var c Course
		if err := rows.Scan(&c.ID, &c.Title, &c.Version, &c.LaunchPath, &c.OrgID,
			&c.OriginName, &c.BlobKey, &c.SizeBytes, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *SQLStore) DeleteCourse(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM courses WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
