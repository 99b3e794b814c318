package portfolio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when no record matches the given id.
var ErrNotFound = errors.New("record not found")

// document is implemented by every record kind so one store can serve all of
// them.
type document interface {
	documentID() string
	setDocumentID(id string)
	displayOrder() int
	Validate() *ValidationError
	assetRefs() []string
}

// docPtr constrains a pointer type to its record kind.
type docPtr[T any] interface {
	*T
	document
}

// store is the generic persistence surface of one record kind. List results
// come back in ascending display order; ties follow storage order.
type store[T any] interface {
	List(ctx context.Context) ([]*T, error)
	ListByField(ctx context.Context, field, value string) ([]*T, error)
	Get(ctx context.Context, id string) (*T, error)
	Create(ctx context.Context, rec *T) (*T, error)
	Replace(ctx context.Context, id string, rec *T) (*T, error)
	Delete(ctx context.Context, id string) error
}

// pgStore keeps each record as a jsonb document in the records table,
// partitioned by kind, with display_order lifted into a column for ordering.
type pgStore[T any, P docPtr[T]] struct {
	db   *pgxpool.Pool
	kind string
}

func newPGStore[T any, P docPtr[T]](db *pgxpool.Pool, kind string) *pgStore[T, P] {
	return &pgStore[T, P]{db: db, kind: kind}
}

func (s *pgStore[T, P]) List(ctx context.Context) ([]*T, error) {
	rows, err := s.db.Query(ctx,
		`SELECT data FROM records WHERE kind = $1 ORDER BY display_order ASC`,
		s.kind,
	)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.kind, err)
	}
	defer rows.Close()
	return scanRecords[T](rows, s.kind)
}

// ListByField filters on a top-level document field, keeping display order.
func (s *pgStore[T, P]) ListByField(ctx context.Context, field, value string) ([]*T, error) {
	rows, err := s.db.Query(ctx,
		`SELECT data FROM records WHERE kind = $1 AND data ->> $2 = $3 ORDER BY display_order ASC`,
		s.kind, field, value,
	)
	if err != nil {
		return nil, fmt.Errorf("list %s by %s: %w", s.kind, field, err)
	}
	defer rows.Close()
	return scanRecords[T](rows, s.kind)
}

func (s *pgStore[T, P]) Get(ctx context.Context, id string) (*T, error) {
	var raw []byte
	err := s.db.QueryRow(ctx,
		`SELECT data FROM records WHERE kind = $1 AND id = $2`,
		s.kind, id,
	).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", s.kind, err)
	}

	rec := new(T)
	if err := json.Unmarshal(raw, rec); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.kind, err)
	}
	return rec, nil
}

func (s *pgStore[T, P]) Create(ctx context.Context, rec *T) (*T, error) {
	doc := P(rec)
	doc.setDocumentID(uuid.NewString())

	raw, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", s.kind, err)
	}

	_, err = s.db.Exec(ctx,
		`INSERT INTO records (id, kind, display_order, data) VALUES ($1, $2, $3, $4)`,
		doc.documentID(), s.kind, doc.displayOrder(), raw,
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", s.kind, err)
	}
	return rec, nil
}

// Replace overwrites the whole document, including unspecified fields.
func (s *pgStore[T, P]) Replace(ctx context.Context, id string, rec *T) (*T, error) {
	doc := P(rec)
	doc.setDocumentID(id)

	raw, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", s.kind, err)
	}

	tag, err := s.db.Exec(ctx,
		`UPDATE records SET display_order = $3, data = $4, updated_at = NOW()
		 WHERE kind = $1 AND id = $2`,
		s.kind, id, doc.displayOrder(), raw,
	)
	if err != nil {
		return nil, fmt.Errorf("replace %s: %w", s.kind, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return rec, nil
}

func (s *pgStore[T, P]) Delete(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx,
		`DELETE FROM records WHERE kind = $1 AND id = $2`,
		s.kind, id,
	)
	if err != nil {
		return fmt.Errorf("delete %s: %w", s.kind, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanRecords[T any](rows pgx.Rows, kind string) ([]*T, error) {
	out := []*T{}
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan %s: %w", kind, err)
		}
		rec := new(T)
		if err := json.Unmarshal(raw, rec); err != nil {
			return nil, fmt.Errorf("decode %s: %w", kind, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", kind, err)
	}
	return out, nil
}
