package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mahesh-singh/hasjob/internal/model"
)

type fakeBoards struct {
	boards []model.Board
	err    error
}

func (f fakeBoards) Boards(ctx context.Context) ([]model.Board, error) { return f.boards, f.err }

type fakeRefresher struct {
	mu   sync.Mutex
	seen []string
	fail map[string]bool
}

func (f *fakeRefresher) Refresh(ctx context.Context, board *model.Board) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seen = append(f.seen, board.Name)
	if f.fail[board.Name] {
		return errors.New("boom")
	}
	return nil
}

func TestRunOnce_RefreshesEveryBoard(t *testing.T) {
	boards := fakeBoards{boards: []model.Board{{Name: "www"}, {Name: "design"}, {Name: "banking"}}}
	ref := &fakeRefresher{fail: map[string]bool{"design": true}}

	New(boards, ref, 15).RunOnce(context.Background())
	assert.Equal(t, []string{"www", "design", "banking"}, ref.seen)
}

func TestRunOnce_BoardListError(t *testing.T) {
	ref := &fakeRefresher{}
	New(fakeBoards{err: errors.New("db down")}, ref, 15).RunOnce(context.Background())
	assert.Empty(t, ref.seen)
}

func TestNew_Spec(t *testing.T) {
	s := New(fakeBoards{}, &fakeRefresher{}, 5)
	assert.Equal(t, "@every 5m", s.spec)
}

func TestStartStop(t *testing.T) {
	s := New(fakeBoards{}, &fakeRefresher{}, 60)
	require.NoError(t, s.Start(context.Background()))
	s.Stop()
}

// blockingRefresher holds every refresh until release is closed.
type blockingRefresher struct {
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (b *blockingRefresher) Refresh(ctx context.Context, board *model.Board) error {
	b.once.Do(func() { close(b.started) })
	<-b.release
	return nil
}

func TestStop_WaitsForStartupRefresh(t *testing.T) {
	ref := &blockingRefresher{started: make(chan struct{}), release: make(chan struct{})}
	s := New(fakeBoards{boards: []model.Board{{Name: "www"}}}, ref, 60)
	require.NoError(t, s.Start(context.Background()))

	select {
	case <-ref.started:
	case <-time.After(2 * time.Second):
		t.Fatal("startup refresh never ran")
	}

	stopped := make(chan struct{})
	go func() {
		s.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
		t.Fatal("Stop returned while a refresh was still running")
	case <-time.After(50 * time.Millisecond):
	}

	close(ref.release)
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return after the refresh finished")
	}
}
