package txmanager

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tutorlink/TL-AdminService/pkg/dbmetrics"
)

// ---- фейки коллабораторов ----

type fakeTx struct {
	commitErr  error
	commits    int
	rolledBack int
}

func (t *fakeTx) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return nil, nil
}

func (t *fakeTx) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return nil, nil
}

func (t *fakeTx) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return nil
}

func (t *fakeTx) Commit() error {
	t.commits++
	return t.commitErr
}

func (t *fakeTx) Rollback() error {
	t.rolledBack++
	return nil
}

// fakeBeginner выдает по одной транзакции на каждую попытку
type fakeBeginner struct {
	txs   []*fakeTx
	begun int
}

func (b *fakeBeginner) BeginTx(ctx context.Context, opts *sql.TxOptions) (dbmetrics.TxExecutor, error) {
	tx := b.txs[b.begun]
	b.begun++
	return tx, nil
}

func serializationErr() error {
	return &pq.Error{Code: "40001"}
}

// ---- тесты ----

func TestDoPutsTransactionInContext(t *testing.T) {
	tx := &fakeTx{}
	beginner := &fakeBeginner{txs: []*fakeTx{tx}}
	manager := NewTransactionManager(beginner)

	err := manager.Do(context.Background(), func(ctx context.Context) error {
		assert.True(t, dbmetrics.IsInTransaction(ctx))
		assert.Same(t, tx, dbmetrics.GetExecutor(ctx, nil))
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, tx.commits)
}

func TestDoRollsBackOnFnError(t *testing.T) {
	tx := &fakeTx{}
	beginner := &fakeBeginner{txs: []*fakeTx{tx}}
	manager := NewTransactionManager(beginner)

	sentinel := errors.New("boom")
	err := manager.Do(context.Background(), func(ctx context.Context) error {
		return sentinel
	})

	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, 1, tx.rolledBack)
	assert.Equal(t, 0, tx.commits)
}

func TestDoSerializableRetriesCommitSerializationFailure(t *testing.T) {
	beginner := &fakeBeginner{txs: []*fakeTx{
		{commitErr: serializationErr()},
		{commitErr: serializationErr()},
		{commitErr: serializationErr()},
	}}
	manager := NewTransactionManager(beginner)

	fnCalls := 0
	err := manager.DoSerializable(context.Background(), func(ctx context.Context) error {
		fnCalls++
		return nil
	})

	require.Error(t, err)
	assert.Equal(t, maxSerializationRetries, beginner.begun)
	assert.Equal(t, maxSerializationRetries, fnCalls)

	// Ошибка сохраняет и сентинел, и цепочку pq.Error
	assert.ErrorIs(t, err, ErrTransaction)
	var pqErr *pq.Error
	require.ErrorAs(t, err, &pqErr)
	assert.Equal(t, pq.ErrorCode("40001"), pqErr.Code)
}

func TestDoSerializableSucceedsAfterCommitRetry(t *testing.T) {
	success := &fakeTx{}
	beginner := &fakeBeginner{txs: []*fakeTx{
		{commitErr: serializationErr()},
		success,
	}}
	manager := NewTransactionManager(beginner)

	fnCalls := 0
	err := manager.DoSerializable(context.Background(), func(ctx context.Context) error {
		fnCalls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, beginner.begun)
	assert.Equal(t, 2, fnCalls)
	assert.Equal(t, 1, success.commits)
}

func TestDoSerializableRetriesWrappedFnSerializationFailure(t *testing.T) {
	beginner := &fakeBeginner{txs: []*fakeTx{{}, {}, {}}}
	manager := NewTransactionManager(beginner)

	storeUnavailable := errors.New("store unavailable")
	fnCalls := 0
	err := manager.DoSerializable(context.Background(), func(ctx context.Context) error {
		fnCalls++
		if fnCalls < 3 {
			// Сервисы оборачивают ошибки репозитория, цепочка pq.Error сохраняется
			return fmt.Errorf("%w: list active bookings: %w", storeUnavailable, serializationErr())
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, fnCalls)
	assert.Equal(t, 1, beginner.txs[0].rolledBack)
	assert.Equal(t, 1, beginner.txs[1].rolledBack)
	assert.Equal(t, 1, beginner.txs[2].commits)
}

func TestDoSerializableDoesNotRetryOtherErrors(t *testing.T) {
	beginner := &fakeBeginner{txs: []*fakeTx{{}}}
	manager := NewTransactionManager(beginner)

	sentinel := errors.New("constraint violated")
	fnCalls := 0
	err := manager.DoSerializable(context.Background(), func(ctx context.Context) error {
		fnCalls++
		return sentinel
	})

	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, 1, fnCalls)
}

func TestDoSerializableDoesNotRetryOtherCommitErrors(t *testing.T) {
	beginner := &fakeBeginner{txs: []*fakeTx{
		{commitErr: errors.New("connection reset")},
	}}
	manager := NewTransactionManager(beginner)

	err := manager.DoSerializable(context.Background(), func(ctx context.Context) error {
		return nil
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransaction)
	assert.Equal(t, 1, beginner.begun)
}
