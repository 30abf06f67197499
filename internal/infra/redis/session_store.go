package redis

import (
	"context"
	"time"

	"lingo-trainer/internal/app"
	"lingo-trainer/internal/infra/memory"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// SessionStore tracks live quiz sessions in process and mirrors a liveness marker
// per session into Redis, so operators can count sessions across instances.
// Controllers themselves never leave the process.
//
// A marker expires ttl after the last Put or Touch of its session.
type SessionStore struct {
	*memory.SessionStore
	client *redis.Client
	prefix string
	ttl    time.Duration
	log    *zap.Logger
}

func NewSessionStore(client *redis.Client, prefix string, ttl time.Duration, log *zap.Logger) *SessionStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &SessionStore{
		SessionStore: memory.NewSessionStore(),
		client:       client,
		prefix:       prefix,
		ttl:          ttl,
		log:          log,
	}
}

func (s *SessionStore) Put(id string, session *app.Controller) {
	s.SessionStore.Put(id, session)
	if err := s.client.Set(context.Background(), s.key(id), session.Snapshot().QuizID, s.ttl).Err(); err != nil {
		s.log.Warn("session marker write dropped", zap.String("conn_id", id), zap.Error(err))
	}
}

// Touch extends the marker of a session that is still in use.
func (s *SessionStore) Touch(id string) {
	if err := s.client.Expire(context.Background(), s.key(id), s.ttl).Err(); err != nil {
		s.log.Warn("session marker refresh dropped", zap.String("conn_id", id), zap.Error(err))
	}
}

func (s *SessionStore) Delete(id string) {
	s.SessionStore.Delete(id)
	if err := s.client.Del(context.Background(), s.key(id)).Err(); err != nil {
		s.log.Warn("session marker delete dropped", zap.String("conn_id", id), zap.Error(err))
	}
}

// CloseAll abandons every local session and removes its marker.
func (s *SessionStore) CloseAll() {
	ids := s.IDs()
	s.SessionStore.CloseAll()
	if len(ids) == 0 {
		return
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.key(id)
	}
	if err := s.client.Del(context.Background(), keys...).Err(); err != nil {
		s.log.Warn("session markers delete dropped", zap.Int("sessions", len(keys)), zap.Error(err))
	}
}

// CountLive counts the markers of every instance sharing this Redis.
func (s *SessionStore) CountLive(ctx context.Context) (int, error) {
	var (
		cursor uint64
		total  int
	)
	for {
		keys, next, err := s.client.Scan(ctx, cursor, s.prefix+"session:*", 100).Result()
		if err != nil {
			return 0, err
		}
		total += len(keys)
		if next == 0 {
			return total, nil
		}
		cursor = next
	}
}

func (s *SessionStore) key(id string) string {
	return s.prefix + "session:" + id
}
