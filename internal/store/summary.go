package store

import (
	"context"
	"database/sql"
	"fmt"
)

// Summary is the reduced analysis of a stored scan.
type Summary struct {
	Total      int64
	Dirs       int64
	Files      int64
	Hidden     int64
	Bytes      int64
	WithFileID int64
	MaxDepth   int

	ByDepth    []Count // ascending depth
	ByLinkType []Count // descending count
	Extensions []Count // top extensions by file count
	Largest    []Entry // largest files
	Meta       map[string]string
}

// Count is a labelled row count.
type Count struct {
	Key   string
	Count int64
}

// Entry is a single record in a summary listing.
type Entry struct {
	Name     string
	FullPath string
	Size     int64
}

const summaryLimit = 10

// Summary computes totals and breakdowns over the stored records.
func (s *DB) Summary(ctx context.Context) (Summary, error) {
	var sum Summary
	var bytes, maxDepth sql.NullInt64
	row := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN "Is Directory" THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN "Is Hidden" THEN 1 ELSE 0 END), 0),
			SUM(CASE WHEN "Is Directory" THEN 0 ELSE "File Size" END),
			COALESCE(SUM(CASE WHEN "File ID" <> '' THEN 1 ELSE 0 END), 0),
			MAX("Depth")
		FROM `+quote(Table))
	if err := row.Scan(&sum.Total, &sum.Dirs, &sum.Hidden, &bytes, &sum.WithFileID, &maxDepth); err != nil {
		return Summary{}, fmt.Errorf("query totals: %w", err)
	}
	sum.Files = sum.Total - sum.Dirs
	sum.Bytes = bytes.Int64
	sum.MaxDepth = int(maxDepth.Int64)

	var err error
	if sum.ByDepth, err = s.counts(ctx,
		`SELECT CAST("Depth" AS TEXT), COUNT(*) FROM `+quote(Table)+` GROUP BY "Depth" ORDER BY "Depth"`); err != nil {
		return Summary{}, fmt.Errorf("query depth distribution: %w", err)
	}
	if sum.ByLinkType, err = s.counts(ctx,
		`SELECT "Link Type", COUNT(*) FROM `+quote(Table)+` GROUP BY "Link Type" ORDER BY COUNT(*) DESC, "Link Type"`); err != nil {
		return Summary{}, fmt.Errorf("query link types: %w", err)
	}
	if sum.Extensions, err = s.counts(ctx,
		`SELECT "File Extension", COUNT(*) FROM `+quote(Table)+`
		 WHERE NOT "Is Directory" AND "File Extension" <> ''
		 GROUP BY "File Extension" ORDER BY COUNT(*) DESC, "File Extension" LIMIT ?`, summaryLimit); err != nil {
		return Summary{}, fmt.Errorf("query extensions: %w", err)
	}
	if sum.Largest, err = s.largest(ctx); err != nil {
		return Summary{}, err
	}
	if sum.Meta, err = s.meta(ctx); err != nil {
		return Summary{}, err
	}
	return sum, nil
}

func (s *DB) counts(ctx context.Context, query string, args ...any) ([]Count, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Count
	for rows.Next() {
		var c Count
		if err := rows.Scan(&c.Key, &c.Count); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *DB) largest(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT "File Name", "Full Path", "File Size" FROM `+quote(Table)+`
		WHERE NOT "Is Directory"
		ORDER BY "File Size" DESC, "Full Path" LIMIT ?`, summaryLimit)
	if err != nil {
		return nil, fmt.Errorf("query largest files: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Name, &e.FullPath, &e.Size); err != nil {
			return nil, fmt.Errorf("scan largest files: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *DB) meta(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT key, value FROM scan_meta")
	if err != nil {
		return nil, fmt.Errorf("query scan meta: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scan scan meta: %w", err)
		}
		out[k] = v
	}
	return out, rows.Err()
}
