package banks

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/chequeflow/chequeflow/internal/shared"
)

func TestMapConstraintErr(t *testing.T) {
	err := mapConstraintErr(&pgconn.PgError{Code: "23505", ConstraintName: "banks_bank_name_branch_key"})
	require.ErrorIs(t, err, shared.ErrConflict)

	passthrough := errors.New("connection reset")
	require.Equal(t, passthrough, mapConstraintErr(passthrough))
}
