package sqlite

import "context"

// PragmaForTest reads back a connection setting.
func (s *SQLite) PragmaForTest(ctx context.Context, name string) (string, error) {
	var v string
	err := s.db.QueryRowContext(ctx, "PRAGMA "+name).Scan(&v)
	return v, err
}
