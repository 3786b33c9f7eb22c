package repo

import (
	"context"
	"errors"
	"reflect"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type call struct {
	query string
	args  []any
}

// stubExecutor answers QueryRow calls from a queue of rows.
type stubExecutor struct {
	rows    []pgx.Row
	execErr error
	calls   []call
}

func (s *stubExecutor) Exec(_ context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	s.calls = append(s.calls, call{query: query, args: args})
	return pgconn.NewCommandTag("INSERT 0 1"), s.execErr
}

func (s *stubExecutor) QueryRow(_ context.Context, query string, args ...any) pgx.Row {
	s.calls = append(s.calls, call{query: query, args: args})
	if len(s.rows) == 0 {
		return valuesRow{err: errors.New("unexpected query")}
	}
	row := s.rows[0]
	s.rows = s.rows[1:]
	return row
}

func (s *stubExecutor) Query(_ context.Context, query string, args ...any) (pgx.Rows, error) {
	s.calls = append(s.calls, call{query: query, args: args})
	return nil, errors.New("not implemented")
}

// valuesRow assigns values to the scan destinations in order.
type valuesRow struct {
	values []any
	err    error
}

func (r valuesRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) != len(r.values) {
		return errors.New("scan: column count mismatch")
	}
	for i, d := range dest {
		target := reflect.ValueOf(d).Elem()
		v := reflect.ValueOf(r.values[i])
		if !v.IsValid() {
			target.Set(reflect.Zero(target.Type()))
			continue
		}
		target.Set(v)
	}
	return nil
}
