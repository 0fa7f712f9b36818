package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slicehub/api/internal/models"
)

// txRecorder implements pgx.Tx and records every statement so tests can
// inject a failure at an arbitrary point in the transaction and assert that
// nothing ran past it and the whole thing rolled back.
type txRecorder struct {
	failOn     int // 1-based index of the statement that fails; 0 never fails
	execs      []string
	committed  bool
	rolledBack bool
}

func (t *txRecorder) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	t.execs = append(t.execs, sql)
	if t.failOn != 0 && len(t.execs) == t.failOn {
		return pgconn.CommandTag{}, errors.New("connection reset by peer")
	}
	return pgconn.NewCommandTag("DELETE 1"), nil
}

func (t *txRecorder) Commit(context.Context) error {
	t.committed = true
	return nil
}

func (t *txRecorder) Rollback(context.Context) error {
	if !t.committed {
		t.rolledBack = true
	}
	return nil
}

func (t *txRecorder) Begin(context.Context) (pgx.Tx, error) {
	return nil, errors.New("nested transactions not supported")
}

func (t *txRecorder) CopyFrom(context.Context, pgx.Identifier, []string, pgx.CopyFromSource) (int64, error) {
	return 0, errors.New("not supported")
}

func (t *txRecorder) SendBatch(context.Context, *pgx.Batch) pgx.BatchResults { return nil }

func (t *txRecorder) LargeObjects() pgx.LargeObjects { return pgx.LargeObjects{} }

func (t *txRecorder) Prepare(context.Context, string, string) (*pgconn.StatementDescription, error) {
	return nil, errors.New("not supported")
}

func (t *txRecorder) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("not supported")
}

func (t *txRecorder) QueryRow(context.Context, string, ...any) pgx.Row { return nil }

func (t *txRecorder) Conn() *pgx.Conn { return nil }

type txDB struct {
	tx *txRecorder
}

func (d *txDB) Begin(context.Context) (pgx.Tx, error) { return d.tx, nil }

func (d *txDB) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, errors.New("not supported")
}

func (d *txDB) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("not supported")
}

func (d *txDB) QueryRow(context.Context, string, ...any) pgx.Row { return nil }

func TestDeleteFranchise_CommitsAllStatements(t *testing.T) {
	tx := &txRecorder{}
	repo := NewFranchiseRepository(&txDB{tx: tx})

	require.NoError(t, repo.Delete(context.Background(), "f1"))

	require.Len(t, tx.execs, 3)
	assert.Contains(t, tx.execs[0], "DELETE FROM stores")
	assert.Contains(t, tx.execs[1], "DELETE FROM user_roles")
	assert.Contains(t, tx.execs[2], "DELETE FROM franchises")
	assert.True(t, tx.committed)
	assert.False(t, tx.rolledBack)
}

func TestDeleteFranchise_MidTransactionFailureRollsBack(t *testing.T) {
	tx := &txRecorder{failOn: 2}
	repo := NewFranchiseRepository(&txDB{tx: tx})

	err := repo.Delete(context.Background(), "f1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "delete franchise roles")

	// The stores delete ran, the role delete failed, and nothing after it
	// executed; the transaction rolled back, so no partial state survives.
	assert.Len(t, tx.execs, 2)
	assert.True(t, tx.rolledBack)
	assert.False(t, tx.committed)
}

func TestDeleteFranchise_LastStatementFailureRollsBack(t *testing.T) {
	tx := &txRecorder{failOn: 3}
	repo := NewFranchiseRepository(&txDB{tx: tx})

	err := repo.Delete(context.Background(), "f1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "delete franchise")
	assert.True(t, tx.rolledBack)
	assert.False(t, tx.committed)
}

func TestCreateFranchise_RoleInsertFailureRollsBack(t *testing.T) {
	tx := &txRecorder{failOn: 2}
	repo := NewFranchiseRepository(&txDB{tx: tx})

	_, err := repo.Create(context.Background(), "SliceHub North", []models.FranchiseAdmin{
		{ID: "u1", Name: "Frank", Email: "frank@test.com"},
	})
	require.Error(t, err)

	// Franchise row insert ran, the role grant failed; both are undone.
	assert.Len(t, tx.execs, 2)
	assert.Contains(t, tx.execs[0], "INSERT INTO franchises")
	assert.Contains(t, tx.execs[1], "INSERT INTO user_roles")
	assert.True(t, tx.rolledBack)
	assert.False(t, tx.committed)
}
