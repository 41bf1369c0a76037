package session

import (
	"log/slog"
	"time"

	"github.com/shouni/go-storybook-kit/pkg/domain"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// Store はプロセス内で物語セッションを保持します。一定時間アクセスの無いセッションは破棄されます。
type Store struct {
	sessions *cache.Cache
	ttl      time.Duration
	runner   StoryRunner
}

// NewStore は ttl で期限切れになるセッションストアを生成します。
func NewStore(r StoryRunner, ttl time.Duration) *Store {
	c := cache.New(ttl, ttl/2)
	c.OnEvicted(func(id string, _ interface{}) {
		slog.Info("物語セッションを破棄しました", "session_id", id)
	})
	return &Store{sessions: c, ttl: ttl, runner: r}
}

// Create は新しい空のセッションを登録して返します。
func (s *Store) Create() *Session {
	sess := New(uuid.NewString(), s.runner)
	s.sessions.Set(sess.ID(), sess, cache.DefaultExpiration)
	return sess
}

// Get はセッションを取得し、有効期限を延長します。
// 取得の直後に Delete されたセッションは復活させず、ErrSessionNotFound を返します。
func (s *Store) Get(id string) (*Session, error) {
	v, ok := s.sessions.Get(id)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	sess, ok := v.(*Session)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	if !s.touch(sess) {
		return nil, domain.ErrSessionNotFound
	}
	return sess, nil
}

// touch は登録済みのセッションに限り有効期限を ttl だけ延長します。
func (s *Store) touch(sess *Session) bool {
	return s.sessions.Replace(sess.ID(), sess, s.ttl) == nil
}

// Delete はセッションを破棄します。
func (s *Store) Delete(id string) {
	s.sessions.Delete(id)
}

// Len は保持しているセッション数を返します。
func (s *Store) Len() int {
	return s.sessions.ItemCount()
}
