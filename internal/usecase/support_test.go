package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/iho/goremit/internal/domain"
)

type stubTx struct {
	committed  bool
	rolledBack bool
}

func (s *stubTx) Commit(ctx context.Context) error {
	s.committed = true
	return nil
}

func (s *stubTx) Rollback(ctx context.Context) error {
	if !s.committed {
		s.rolledBack = true
	}
	return nil
}

type stubTxManager struct {
	txs []*stubTx
}

func (m *stubTxManager) Begin(ctx context.Context) (Transaction, error) {
	tx := &stubTx{}
	m.txs = append(m.txs, tx)
	return tx, nil
}

type countingRetrier struct {
	attempts int
}

func (r *countingRetrier) Retry(ctx context.Context, op func() error) error {
	var err error
	for i := 0; i < 3; i++ {
		r.attempts++
		if err = op(); err == nil {
			return nil
		}
	}
	return err
}

func TestKeyedLockerSerializesSameKey(t *testing.T) {
	l := NewKeyedLocker()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		inside  int
		maxSeen int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := l.Lock("agency-1:EUR")
			defer unlock()

			mu.Lock()
			inside++
			if inside > maxSeen {
				maxSeen = inside
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			inside--
			mu.Unlock()
		}()
	}
	wg.Wait()

	if maxSeen != 1 {
		t.Fatalf("expected one holder at a time, saw %d", maxSeen)
	}
	if n := l.size(); n != 0 {
		t.Fatalf("expected released keys to be dropped, %d left", n)
	}
}

func TestKeyedLockerIndependentKeys(t *testing.T) {
	l := NewKeyedLocker()

	unlockA := l.Lock("a")
	done := make(chan struct{})
	go func() {
		unlock := l.Lock("b")
		unlock()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on a different key blocked")
	}
	unlockA()
}

func TestKeyedLockerLockAll(t *testing.T) {
	l := NewKeyedLocker()

	unlock := l.LockAll("agency-b:EUR", "agency-a:EUR", "agency-b:EUR")
	if n := l.size(); n != 2 {
		t.Fatalf("expected duplicate keys to be taken once, got %d", n)
	}

	acquired := make(chan struct{})
	go func() {
		release := l.Lock("agency-a:EUR")
		release()
		close(acquired)
	}()

	select {
	case <-acquired:
		t.Fatal("lock on a held key did not block")
	case <-time.After(20 * time.Millisecond):
	}

	unlock()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("lock was not released")
	}
	if n := l.size(); n != 0 {
		t.Fatalf("expected all keys released, %d left", n)
	}
}

func TestRunInTxCommitsOnSuccess(t *testing.T) {
	mgr := &stubTxManager{}

	err := runInTx(context.Background(), mgr, nil, func(ctx context.Context, tx Transaction) error {
		if _, ok := ctx.Deadline(); !ok {
			t.Error("expected a deadline on the transaction context")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mgr.txs) != 1 || !mgr.txs[0].committed {
		t.Fatal("expected one committed transaction")
	}
}

func TestRunInTxRollsBackOnError(t *testing.T) {
	mgr := &stubTxManager{}
	boom := errors.New("boom")

	err := runInTx(context.Background(), mgr, nil, func(ctx context.Context, tx Transaction) error {
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if mgr.txs[0].committed || !mgr.txs[0].rolledBack {
		t.Fatal("expected rollback without commit")
	}
}

func TestRunInTxRetriesWholeAttempt(t *testing.T) {
	mgr := &stubTxManager{}
	retrier := &countingRetrier{}
	calls := 0

	err := runInTx(context.Background(), mgr, retrier, func(ctx context.Context, tx Transaction) error {
		calls++
		if calls < 3 {
			return errors.New("serialization failure")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if retrier.attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", retrier.attempts)
	}
	if len(mgr.txs) != 3 {
		t.Fatalf("expected a fresh transaction per attempt, got %d", len(mgr.txs))
	}
	if !mgr.txs[2].committed {
		t.Fatal("expected the last attempt to commit")
	}
}

func TestCheckRole(t *testing.T) {
	tests := []struct {
		name    string
		ctx     context.Context
		wantErr error
	}{
		{"system", context.Background(), nil},
		{"manager", domain.ContextWithActor(context.Background(), &domain.Actor{ID: "m1", Role: domain.RoleManager}), nil},
		{"agent", domain.ContextWithActor(context.Background(), &domain.Actor{ID: "a1", Role: domain.RoleAgent}), domain.ErrInsufficientRole},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkRole(tt.ctx, domain.Role.CanConfigure)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestRequireActor(t *testing.T) {
	if _, err := requireActor(context.Background()); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}

	ctx := domain.ContextWithActor(context.Background(), &domain.Actor{ID: "s1", Role: domain.RoleSupervisor})
	actor, err := requireActor(ctx)
	if err != nil || actor.ID != "s1" {
		t.Fatalf("unexpected result: %v %v", actor, err)
	}
}

func TestPageSize(t *testing.T) {
	cases := map[int]int{0: DefaultPageSize, -5: DefaultPageSize, 20: 20, DefaultPageSize + 1: DefaultPageSize}
	for in, want := range cases {
		if got := pageSize(in); got != want {
			t.Errorf("pageSize(%d) = %d, want %d", in, got, want)
		}
	}
}
