package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"trading_edu_backend/internal/model"

	"github.com/go-redis/redis/v8"
)

// RedisProgressStore keeps each learner under four keys: the cursor as a JSON
// string and one hash each for modules, quiz results and badges.
type RedisProgressStore struct {
	Redis *redis.Client
}

func NewRedisProgressStore(rdb *redis.Client) *RedisProgressStore {
	return &RedisProgressStore{Redis: rdb}
}

func progressKey(userID string) string { return fmt.Sprintf("edu:progress:%s", userID) }
func modulesKey(userID string) string  { return fmt.Sprintf("edu:modules:%s", userID) }
func quizKey(userID string) string     { return fmt.Sprintf("edu:quiz:%s", userID) }
func badgesKey(userID string) string   { return fmt.Sprintf("edu:badges:%s", userID) }

func (r *RedisProgressStore) LoadSnapshot(ctx context.Context, userID string) (*model.Snapshot, error) {
	snap := &model.Snapshot{}

	raw, err := r.Redis.Get(ctx, progressKey(userID)).Bytes()
	switch {
	case err == nil:
		var up model.UserProgress
		if err := json.Unmarshal(raw, &up); err != nil {
			return nil, fmt.Errorf("decoding user progress: %w", err)
		}
		up.UserID = userID
		snap.Progress = &up
	case errors.Is(err, redis.Nil):
	default:
		return nil, fmt.Errorf("loading user progress: %w", err)
	}

	if err := loadHash(ctx, r.Redis, modulesKey(userID), func(v []byte) error {
		var mp model.ModuleProgress
		if err := json.Unmarshal(v, &mp); err != nil {
			return err
		}
		mp.UserID = userID
		snap.Modules = append(snap.Modules, mp)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("loading module progress: %w", err)
	}

	if err := loadHash(ctx, r.Redis, quizKey(userID), func(v []byte) error {
		var qr model.QuizResult
		if err := json.Unmarshal(v, &qr); err != nil {
			return err
		}
		qr.UserID = userID
		snap.QuizResults = append(snap.QuizResults, qr)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("loading quiz results: %w", err)
	}

	if err := loadHash(ctx, r.Redis, badgesKey(userID), func(v []byte) error {
		var b model.UserBadge
		if err := json.Unmarshal(v, &b); err != nil {
			return err
		}
		b.UserID = userID
		snap.Badges = append(snap.Badges, b)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("loading badges: %w", err)
	}

	sort.Slice(snap.Modules, func(i, j int) bool { return snap.Modules[i].ModuleID < snap.Modules[j].ModuleID })
	sort.Slice(snap.QuizResults, func(i, j int) bool { return snap.QuizResults[i].ModuleID < snap.QuizResults[j].ModuleID })
	sort.Slice(snap.Badges, func(i, j int) bool { return snap.Badges[i].UnlockedAt.Before(snap.Badges[j].UnlockedAt) })
	return snap, nil
}

func loadHash(ctx context.Context, rdb *redis.Client, key string, decode func([]byte) error) error {
	fields, err := rdb.HGetAll(ctx, key).Result()
	if err != nil {
		return err
	}
	for field, v := range fields {
		if err := decode([]byte(v)); err != nil {
			return fmt.Errorf("field %s: %w", field, err)
		}
	}
	return nil
}

// watchRetries 被监视的键在更新期间变化时的最大重试次数
const watchRetries = 5

// update 在 WATCH 下执行 fn，被其他写入抢先时重试
func (r *RedisProgressStore) update(ctx context.Context, fn func(tx *redis.Tx) error, keys ...string) error {
	for i := 0; i < watchRetries; i++ {
		err := r.Redis.Watch(ctx, fn, keys...)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return redis.TxFailedErr
}

func storedProgress(ctx context.Context, tx *redis.Tx, userID string) (*model.UserProgress, error) {
	raw, err := tx.Get(ctx, progressKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var up model.UserProgress
	if err := json.Unmarshal(raw, &up); err != nil {
		return nil, fmt.Errorf("decoding user progress: %w", err)
	}
	up.UserID = userID
	return &up, nil
}

func storedModule(ctx context.Context, tx *redis.Tx, userID, moduleID string) (*model.ModuleProgress, error) {
	raw, err := tx.HGet(ctx, modulesKey(userID), moduleID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var mp model.ModuleProgress
	if err := json.Unmarshal(raw, &mp); err != nil {
		return nil, fmt.Errorf("decoding module progress: %w", err)
	}
	mp.UserID = userID
	return &mp, nil
}

func (r *RedisProgressStore) SaveUserProgress(ctx context.Context, p *model.UserProgress) error {
	key := progressKey(p.UserID)
	err := r.update(ctx, func(tx *redis.Tx) error {
		prev, err := storedProgress(ctx, tx, p.UserID)
		if err != nil {
			return err
		}
		data, err := json.Marshal(mergeUserProgress(prev, *p))
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			return nil
		})
		return err
	}, key)
	if err != nil {
		return fmt.Errorf("saving user progress: %w", err)
	}
	return nil
}

func (r *RedisProgressStore) SaveModuleProgress(ctx context.Context, p *model.ModuleProgress) error {
	key := modulesKey(p.UserID)
	err := r.update(ctx, func(tx *redis.Tx) error {
		prev, err := storedModule(ctx, tx, p.UserID, p.ModuleID)
		if err != nil {
			return err
		}
		data, err := json.Marshal(mergeModuleProgress(prev, *p))
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, p.ModuleID, data)
			return nil
		})
		return err
	}, key)
	if err != nil {
		return fmt.Errorf("saving module progress: %w", err)
	}
	return nil
}

// CompleteModule 在 WATCH 下读取现有记录，合并后用一次 MULTI/EXEC 写回
func (r *RedisProgressStore) CompleteModule(ctx context.Context, p *model.ModuleProgress, up *model.UserProgress, level model.Level) error {
	mKey, pKey := modulesKey(p.UserID), progressKey(up.UserID)
	err := r.update(ctx, func(tx *redis.Tx) error {
		prevMod, err := storedModule(ctx, tx, p.UserID, p.ModuleID)
		if err != nil {
			return err
		}
		prevUser, err := storedProgress(ctx, tx, up.UserID)
		if err != nil {
			return err
		}
		mp, cp := completeModule(prevMod, prevUser, *p, *up, level)
		mpData, err := json.Marshal(mp)
		if err != nil {
			return err
		}
		upData, err := json.Marshal(cp)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, mKey, p.ModuleID, mpData)
			pipe.Set(ctx, pKey, upData, 0)
			return nil
		})
		return err
	}, mKey, pKey)
	if err != nil {
		return fmt.Errorf("completing module: %w", err)
	}
	return nil
}

func (r *RedisProgressStore) SaveQuizResult(ctx context.Context, res *model.QuizResult) error {
	data, err := json.Marshal(res)
	if err != nil {
		return err
	}
	if err := r.Redis.HSet(ctx, quizKey(res.UserID), res.ModuleID, data).Err(); err != nil {
		return fmt.Errorf("saving quiz result: %w", err)
	}
	return nil
}

func (r *RedisProgressStore) UnlockBadge(ctx context.Context, b *model.UserBadge) (bool, error) {
	data, err := json.Marshal(b)
	if err != nil {
		return false, err
	}
	created, err := r.Redis.HSetNX(ctx, badgesKey(b.UserID), b.BadgeID, data).Result()
	if err != nil {
		return false, fmt.Errorf("unlocking badge: %w", err)
	}
	return created, nil
}

func (r *RedisProgressStore) Ping(ctx context.Context) error {
	return r.Redis.Ping(ctx).Err()
}
