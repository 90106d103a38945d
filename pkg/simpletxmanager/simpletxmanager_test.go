package simpletxmanager

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"sync"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---- стаб-драйвер database/sql с заскриптованными ошибками Commit ----

type stubState struct {
	mu         sync.Mutex
	commitErrs []error
	begins     int
	commits    int
}

func (s *stubState) beginCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.begins
}

func (s *stubState) nextCommitErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var err error
	if s.commits < len(s.commitErrs) {
		err = s.commitErrs[s.commits]
	}
	s.commits++
	return err
}

var (
	registerOnce sync.Once
	statesMu     sync.Mutex
	states       = map[string]*stubState{}
)

type stubDriver struct{}

func (stubDriver) Open(name string) (driver.Conn, error) {
	statesMu.Lock()
	state := states[name]
	statesMu.Unlock()
	return &stubConn{state: state}, nil
}

type stubConn struct {
	state *stubState
}

func (c *stubConn) Prepare(query string) (driver.Stmt, error) {
	return nil, errors.New("not supported")
}

func (c *stubConn) Close() error { return nil }

func (c *stubConn) Begin() (driver.Tx, error) {
	return c.BeginTx(context.Background(), driver.TxOptions{})
}

func (c *stubConn) BeginTx(ctx context.Context, opts driver.TxOptions) (driver.Tx, error) {
	c.state.mu.Lock()
	c.state.begins++
	c.state.mu.Unlock()
	return &stubTx{state: c.state}, nil
}

type stubTx struct {
	state *stubState
}

func (t *stubTx) Commit() error   { return t.state.nextCommitErr() }
func (t *stubTx) Rollback() error { return nil }

func openStub(t *testing.T, commitErrs ...error) (*sql.DB, *stubState) {
	t.Helper()

	registerOnce.Do(func() {
		sql.Register("stubsql", stubDriver{})
	})

	state := &stubState{commitErrs: commitErrs}
	statesMu.Lock()
	states[t.Name()] = state
	statesMu.Unlock()

	db, err := sql.Open("stubsql", t.Name())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return db, state
}

func serializationErr() error {
	return &pq.Error{Code: "40001"}
}

// ---- тесты ----

func TestDoSerializableRetriesCommitSerializationFailure(t *testing.T) {
	db, state := openStub(t, serializationErr(), nil)
	manager := NewTransactionManager(db)

	fnCalls := 0
	err := manager.DoSerializable(context.Background(), func(ctx context.Context) error {
		fnCalls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, fnCalls)
	assert.Equal(t, 2, state.beginCount())
}

func TestDoSerializableExhaustsRetries(t *testing.T) {
	db, state := openStub(t, serializationErr(), serializationErr(), serializationErr())
	manager := NewTransactionManager(db)

	err := manager.DoSerializable(context.Background(), func(ctx context.Context) error {
		return nil
	})

	require.Error(t, err)
	assert.Equal(t, maxSerializationRetries, state.beginCount())

	assert.ErrorIs(t, err, ErrTransaction)
	var pqErr *pq.Error
	require.ErrorAs(t, err, &pqErr)
	assert.Equal(t, pq.ErrorCode("40001"), pqErr.Code)
}

func TestDoSerializableDoesNotRetryOtherCommitErrors(t *testing.T) {
	db, state := openStub(t, errors.New("connection reset"))
	manager := NewTransactionManager(db)

	err := manager.DoSerializable(context.Background(), func(ctx context.Context) error {
		return nil
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransaction)
	assert.Equal(t, 1, state.beginCount())
}

func TestDoReturnsFnErrorWithoutCommit(t *testing.T) {
	db, state := openStub(t)
	manager := NewTransactionManager(db)

	sentinel := errors.New("boom")
	err := manager.Do(context.Background(), func(ctx context.Context) error {
		return sentinel
	})

	assert.ErrorIs(t, err, sentinel)
	state.mu.Lock()
	defer state.mu.Unlock()
	assert.Equal(t, 0, state.commits)
}
