package repository

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/kjardine00/Fantasy-Sports-APP-sub000/go/internal/draft/drafterr"
	"github.com/stretchr/testify/assert"
)

func TestMapWriteErr(t *testing.T) {
	unique := func(constraint string) error {
		return &pgconn.PgError{Code: "23505", ConstraintName: constraint}
	}

	tests := []struct {
		name string
		err  error
		want error
		kind drafterr.Kind
	}{
		{"draft per league", unique(constraintDraftPerLeague), drafterr.ErrDraftExists, drafterr.KindConflict},
		{"player drafted twice", unique(constraintPickPlayer), drafterr.ErrAlreadyDrafted, drafterr.KindConflict},
		{"overall pick taken", unique(constraintPickOverall), drafterr.ErrStalePick, drafterr.KindConflict},
		{"player queued twice", unique(constraintQueueMemberPlay), drafterr.ErrAlreadyQueued, drafterr.KindConflict},
		{"other unique", unique("something_else"), nil, drafterr.KindUnavailable},
		{"connection", errors.New("connection reset"), nil, drafterr.KindUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapWriteErr(tt.err, "failed")
			assert.Equal(t, tt.kind, drafterr.KindOf(got))
			if tt.want != nil {
				assert.ErrorIs(t, got, tt.want)
			}
		})
	}
}

func TestMapReadErr(t *testing.T) {
	assert.ErrorIs(t, mapReadErr(pgx.ErrNoRows, drafterr.ErrDraftNotFound, "x"), drafterr.ErrDraftNotFound)

	err := mapReadErr(errors.New("timeout"), drafterr.ErrDraftNotFound, "failed to get draft")
	assert.Equal(t, drafterr.KindUnavailable, drafterr.KindOf(err))
	assert.NotErrorIs(t, err, drafterr.ErrDraftNotFound)
}
