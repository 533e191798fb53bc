package user

import (
	"errors"
	"fmt"
	"math/rand"
)

// ErrTaskIndex 表示按序号删除任务时序号越界，属于用法错误，列表保持不变。
var ErrTaskIndex = errors.New("user: task index out of range")

// ScoreMirror 接收积分变化的通知，用于维护排行榜镜像。
// 实现必须是尽力而为的，失败不得影响交互处理。
type ScoreMirror interface {
	SetScore(userID int64, name string, points int)
}

// Service 封装了面向交互层的全部用户操作。
// 读写都走工作集缓存；缓存未命中时从存储按需重载（被逐出的用户）。
type Service struct {
	store  *Store
	cache  *Cache
	mirror ScoreMirror
}

// NewService 构造用户服务。mirror 可以为nil，此时不维护排行榜镜像。
func NewService(store *Store, cache *Cache, mirror ScoreMirror) *Service {
	return &Service{store: store, cache: cache, mirror: mirror}
}

// Store 暴露底层存储，供排行榜降级读取等跨用户查询使用。
func (s *Service) Store() *Store {
	return s.store
}

// Cache 暴露工作集缓存，供同步调度器使用。
func (s *Service) Cache() *Cache {
	return s.cache
}

// EnsureUser 保证一个用户在缓存和存储中都存在，返回其当前条目。
// 首次接触时创建记录；并发创建导致的重复键按已创建处理。
func (s *Service) EnsureUser(userID int64, name string) (Entry, error) {
	if e, ok := s.cache.Read(userID); ok {
		return e, nil
	}

	// 缓存未命中：可能是新用户，也可能是被逐出的老用户
	record, err := s.store.Get(userID)
	if err != nil {
		return Entry{}, err
	}
	if record == nil {
		if err := s.store.Create(userID, name); err != nil && !errors.Is(err, ErrDuplicateKey) {
			return Entry{}, err
		}
		record, err = s.store.Get(userID)
		if err != nil {
			return Entry{}, err
		}
		if record == nil {
			return Entry{}, fmt.Errorf("用户 %d 创建后仍不可读", userID)
		}
	}

	s.cache.Insert(userID, Entry{
		Name:               record.Name,
		Points:             record.Points,
		Wins:               record.Wins,
		Losses:             record.Losses,
		Tasks:              record.Tasks,
		DailyTask:          record.DailyTask,
		DailyTaskCompleted: record.DailyTaskCompleted,
		LastDailyCheck:     record.LastDailyCheck,
	})

	e, _ := s.cache.Read(userID)
	return e, nil
}

// mutate 对一个用户应用一次变更；缓存未命中时按 EnsureUser 补全后重试一次。
func (s *Service) mutate(userID int64, name string, fn func(*Entry)) error {
	if s.cache.Mutate(userID, fn) {
		return nil
	}
	if _, err := s.EnsureUser(userID, name); err != nil {
		return err
	}
	if !s.cache.Mutate(userID, fn) {
		return fmt.Errorf("用户 %d 补全缓存后变更仍失败", userID)
	}
	return nil
}

// syncScore 把一个用户的当前积分通知给排行榜镜像。
func (s *Service) syncScore(userID int64) {
	if s.mirror == nil {
		return
	}
	if e, ok := s.cache.Read(userID); ok {
		s.mirror.SetScore(userID, e.Name, e.Points)
	}
}

// AwardPoints 给用户加分（delta必须非负）。
func (s *Service) AwardPoints(userID int64, name string, delta int) error {
	if delta < 0 {
		return fmt.Errorf("积分增量不能为负: %d", delta)
	}
	err := s.mutate(userID, name, func(e *Entry) {
		e.Points += delta
	})
	if err != nil {
		return err
	}
	s.syncScore(userID)
	return nil
}

// RecordGameResult 记录一局猜拳的结果并发放奖励：
// 胜 +1胜场 +3分；负 +1负场 +1分；平局不变。
func (s *Service) RecordGameResult(userID int64, name string, won, lost bool) error {
	err := s.mutate(userID, name, func(e *Entry) {
		switch {
		case won:
			e.Wins++
			e.Points += 3
		case lost:
			e.Losses++
			e.Points++
		}
	})
	if err != nil {
		return err
	}
	if won || lost {
		s.syncScore(userID)
	}
	return nil
}

// AddTask 在任务列表末尾追加一条任务。
func (s *Service) AddTask(userID int64, name, text string) error {
	return s.mutate(userID, name, func(e *Entry) {
		e.Tasks = append(e.Tasks, text)
	})
}

// DeleteTask 按1起始的序号删除一条任务，其余任务保持原有相对顺序。
// 序号越界时返回 ErrTaskIndex，列表不变。
func (s *Service) DeleteTask(userID int64, name string, index int) error {
	var indexErr error
	err := s.mutate(userID, name, func(e *Entry) {
		if index < 1 || index > len(e.Tasks) {
			indexErr = ErrTaskIndex
			return
		}
		e.Tasks = append(e.Tasks[:index-1], e.Tasks[index:]...)
	})
	if err != nil {
		return err
	}
	return indexErr
}

// Tasks 返回用户任务列表的快照。
func (s *Service) Tasks(userID int64, name string) ([]string, error) {
	e, err := s.EnsureUser(userID, name)
	if err != nil {
		return nil, err
	}
	return e.Tasks, nil
}

// EnsureDailyFresh 对单个用户做每日边界检查：
// 如果其盖章日期早于今天，就地清除每日任务状态并盖章。
// 这是调度器全局重置之外的兜底，保证跨天后的首次交互看到新的一天。
func (s *Service) EnsureDailyFresh(userID int64, name string) error {
	today := Today()
	return s.mutate(userID, name, func(e *Entry) {
		if e.LastDailyCheck < today {
			e.DailyTask = ""
			e.DailyTaskCompleted = false
			e.LastDailyCheck = today
		}
	})
}

// AssignDailyTask 为用户分配今日任务（如果尚未分配且未完成）。
// 返回当前生效的任务文本。
func (s *Service) AssignDailyTask(userID int64, name string, pool []string) (string, error) {
	if len(pool) == 0 {
		return "", fmt.Errorf("每日任务池为空")
	}
	if err := s.EnsureDailyFresh(userID, name); err != nil {
		return "", err
	}
	var assigned string
	err := s.mutate(userID, name, func(e *Entry) {
		if e.DailyTask == "" && !e.DailyTaskCompleted {
			e.DailyTask = pool[rand.Intn(len(pool))]
		}
		assigned = e.DailyTask
	})
	return assigned, err
}

// CompleteDailyTask 标记今日任务完成并奖励5分。
// 只有处于已分配且未完成状态时才生效，返回是否真的发生了状态迁移。
func (s *Service) CompleteDailyTask(userID int64, name string) (bool, error) {
	var completed bool
	err := s.mutate(userID, name, func(e *Entry) {
		if e.DailyTask != "" && !e.DailyTaskCompleted {
			e.DailyTaskCompleted = true
			e.Points += 5
			completed = true
		}
	})
	if err != nil {
		return false, err
	}
	if completed {
		s.syncScore(userID)
	}
	return completed, nil
}
