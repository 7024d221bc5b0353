package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
	"trading_edu_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

type NotificationKind string

const (
	NotifyModuleCompleted NotificationKind = "module_completed"
	NotifyBadgeUnlocked   NotificationKind = "badge_unlocked"
	NotifyLevelUp         NotificationKind = "level_up"
	NotifyCourseComplete  NotificationKind = "course_complete"
	NotifyQuizReady       NotificationKind = "quiz_ready"
	NotifySignedOut       NotificationKind = "signed_out"
)

type Notification struct {
	UserID   string           `json:"-"`
	Kind     NotificationKind `json:"kind"`
	Title    string           `json:"title"`
	Message  string           `json:"message"`
	ModuleID string           `json:"moduleId,omitempty"`
	BadgeID  string           `json:"badgeId,omitempty"`
	Image    string           `json:"image,omitempty"`
}

// Notifier is a fire-and-forget message sink. Implementations must not block
// on slow consumers and never report failures to the caller.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// Notifiers 按顺序把通知发给每个接收方
type Notifiers []Notifier

func (ns Notifiers) Notify(ctx context.Context, n Notification) {
	for _, sink := range ns {
		sink.Notify(ctx, n)
	}
}

type ZapNotifier struct{}

func (ZapNotifier) Notify(_ context.Context, n Notification) {
	logger.Log.Info("学习通知",
		zap.String("userId", n.UserID),
		zap.String("kind", string(n.Kind)),
		zap.String("title", n.Title),
		zap.String("moduleId", n.ModuleID),
		zap.String("badgeId", n.BadgeID),
	)
}

// RedisNotifier publishes to a per-user channel so other instances and
// websocket gateways can push the message. Publishing happens on a background
// goroutine; Notify only enqueues.
type RedisNotifier struct {
	Redis *redis.Client

	mu     sync.RWMutex
	closed bool
	queue  chan redisMessage
	done   chan struct{}
}

type redisMessage struct {
	userID  string
	payload []byte
}

const (
	defaultNotifyBuffer = 256
	publishTimeout      = 2 * time.Second
)

// NewRedisNotifier starts the publishing goroutine. Close stops it.
func NewRedisNotifier(rdb *redis.Client, buffer int) *RedisNotifier {
	if buffer <= 0 {
		buffer = defaultNotifyBuffer
	}
	r := &RedisNotifier{
		Redis: rdb,
		queue: make(chan redisMessage, buffer),
		done:  make(chan struct{}),
	}
	go r.run()
	return r
}

func NotificationChannel(userID string) string {
	return fmt.Sprintf("edu:notify:%s", userID)
}

func (r *RedisNotifier) run() {
	defer close(r.done)
	for msg := range r.queue {
		// 每条消息独立超时，与请求的 context 无关
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		err := r.Redis.Publish(ctx, NotificationChannel(msg.userID), msg.payload).Err()
		cancel()
		if err != nil {
			logger.Log.Warn("发布通知失败", zap.String("userId", msg.userID), zap.Error(err))
		}
	}
}

func (r *RedisNotifier) Notify(_ context.Context, n Notification) {
	payload, err := json.Marshal(n)
	if err != nil {
		return
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return
	}
	select {
	case r.queue <- redisMessage{userID: n.UserID, payload: payload}:
	default:
		// 队列已满时丢弃
		logger.Log.Warn("通知队列已满，丢弃通知", zap.String("userId", n.UserID), zap.String("kind", string(n.Kind)))
	}
}

// Close stops accepting notifications and waits until the queued ones have
// been published or have timed out.
func (r *RedisNotifier) Close() {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.queue)
	}
	r.mu.Unlock()
	<-r.done
}

// Collector gathers the notifications raised while serving one request.
type Collector struct {
	mu    sync.Mutex
	items []Notification
}

type collectorKey struct{}

// WithCollector attaches a fresh Collector to ctx.
func WithCollector(ctx context.Context) (context.Context, *Collector) {
	c := &Collector{}
	return context.WithValue(ctx, collectorKey{}, c), c
}

func (c *Collector) Notifications() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Notification, len(c.items))
	copy(out, c.items)
	return out
}

// ContextNotifier 写入 ctx 中的 Collector（如果有）
type ContextNotifier struct{}

func (ContextNotifier) Notify(ctx context.Context, n Notification) {
	c, ok := ctx.Value(collectorKey{}).(*Collector)
	if !ok {
		return
	}
	c.mu.Lock()
	c.items = append(c.items, n)
	c.mu.Unlock()
}
