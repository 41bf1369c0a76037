package session

import (
	"context"
	"sync"
	"time"

	"github.com/shouni/go-storybook-kit/pkg/domain"
	"github.com/shouni/go-storybook-kit/pkg/runner"
)

// StoryRunner は Session が利用する生成処理の契約です。
type StoryRunner interface {
	Start(ctx context.Context, req runner.StartRequest, onTransition runner.TransitionFunc) (*domain.Story, error)
	Continue(ctx context.Context, story *domain.Story, instruction string) (domain.Page, error)
}

// Snapshot はある時点での物語と状態の複製です。
type Snapshot struct {
	ID        string
	State     runner.State
	Story     *domain.Story
	UpdatedAt time.Time
}

// Session は 1 つの物語を保持し、生成処理を同時に 1 つだけ実行させます。
// 読み取りは生成中でも行え、常に直近の確定済みの物語を返します。
type Session struct {
	id     string
	runner StoryRunner

	writer sync.Mutex

	mu        sync.RWMutex
	state     runner.State
	story     *domain.Story
	updatedAt time.Time
}

// New は空の Session を生成します。
func New(id string, r StoryRunner) *Session {
	return &Session{id: id, runner: r, state: runner.StateIdle, updatedAt: time.Now()}
}

// ID はセッション ID を返します。
func (s *Session) ID() string {
	return s.id
}

// State は現在の状態を返します。
func (s *Session) State() runner.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Snapshot は物語の複製を返します。物語が無い場合 Story は nil です。
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{ID: s.id, State: s.state, Story: s.story.Clone(), UpdatedAt: s.updatedAt}
}

// Start は新しい物語を生成し、成功した場合にのみ現在の物語を置き換えます。
// 失敗した場合は物語を持たない Idle 状態に戻ります。
func (s *Session) Start(ctx context.Context, req runner.StartRequest) (*domain.Story, error) {
	if !s.writer.TryLock() {
		return nil, domain.ErrBusy
	}
	defer s.writer.Unlock()

	s.setState(runner.StateIdle, nil, true)
	story, err := s.runner.Start(ctx, req, func(st runner.State) {
		s.setState(st, nil, false)
	})
	if err != nil {
		s.setState(runner.StateIdle, nil, true)
		return nil, err
	}

	s.setState(runner.StateReady, story, true)
	return story.Clone(), nil
}

// Continue は次の 1 ページを生成して物語に追加し、追加したページとその 1 始まりのページ番号を返します。
// 失敗した場合、物語は呼び出し前の状態のまま変わりません。
func (s *Session) Continue(ctx context.Context, instruction string) (domain.Page, int, error) {
	if !s.writer.TryLock() {
		return domain.Page{}, 0, domain.ErrBusy
	}
	defer s.writer.Unlock()

	s.mu.Lock()
	current := s.story
	if current.Len() == 0 {
		s.mu.Unlock()
		return domain.Page{}, 0, domain.ErrEmptyHistory
	}
	s.state = runner.StateExtending
	s.mu.Unlock()

	page, err := s.runner.Continue(ctx, current, instruction)
	if err != nil {
		s.setState(runner.StateReady, current, true)
		return domain.Page{}, 0, err
	}

	next := current.Append(page)
	s.setState(runner.StateReady, next, true)
	return page, next.Len(), nil
}

// setState は状態を更新します。replaceStory が true の場合は物語も story で置き換えます。
func (s *Session) setState(st runner.State, story *domain.Story, replaceStory bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = st
	if replaceStory {
		s.story = story
	}
	s.updatedAt = time.Now()
}
