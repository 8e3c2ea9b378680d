package sqlerr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestErrCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{"not null", &pgconn.PgError{Code: "23502"}, NotNullViolation},
		{"wrapped unique", fmt.Errorf("insert item: %w", &pgconn.PgError{Code: "23505"}), UniqueViolation},
		{"bad numeric text", &pgconn.PgError{Code: "22P02"}, InvalidTextRepresentation},
		{"unknown sqlstate", &pgconn.PgError{Code: "57P01"}, Other},
		{"plain error", errors.New("connection refused"), Other},
		{"nil", nil, Other},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ErrCode(tt.err))
		})
	}
}

func TestIsRejectedAndColumn(t *testing.T) {
	err := fmt.Errorf("insert item: %w", &pgconn.PgError{Code: "23502", ColumnName: "category"})

	assert.True(t, IsRejected(err))
	assert.Equal(t, "category", Column(err))

	assert.False(t, IsRejected(errors.New("timeout")))
	assert.Empty(t, Column(errors.New("timeout")))
}
