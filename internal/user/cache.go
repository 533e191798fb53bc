package user

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// Entry 是工作集缓存中一个用户的可变进度字段。
// 两次flush之间缓存是权威数据，数据库只是滞后的快照。
type Entry struct {
	Name               string
	Points             int
	Wins               int
	Losses             int
	Tasks              []string
	DailyTask          string
	DailyTaskCompleted bool
	LastDailyCheck     string
}

// clone 返回条目的深拷贝，保证读取方拿到的快照不随后续变更而变化。
func (e Entry) clone() Entry {
	c := e
	c.Tasks = append([]string(nil), e.Tasks...)
	return c
}

// entrySlot 持有一个用户的条目以及它的并发控制状态。
// mu 串行化同一用户的读-改-写；gen 在每次变更时递增，
// flush用它判断写库期间条目是否又被改过。
type entrySlot struct {
	mu         sync.Mutex
	data       Entry
	dirty      bool
	gen        uint64
	lastActive time.Time
}

// Cache 是进程级的工作集缓存：user_id 到可变进度字段的映射。
// 外层读写锁只保护映射本身，逐用户的互斥由 entrySlot.mu 承担。
type Cache struct {
	mu      sync.RWMutex
	entries map[int64]*entrySlot
}

// NewCache 创建一个空的工作集缓存。
func NewCache() *Cache {
	return &Cache{entries: make(map[int64]*entrySlot)}
}

// Hydrate 把存储中的全部用户记录加载进缓存。
// 必须在任何交互处理开始之前完成，否则未加载用户的读取会扑空。
func (c *Cache) Hydrate(store *Store) error {
	users, err := store.GetAll()
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()
	for _, u := range users {
		c.entries[u.UserID] = &entrySlot{
			data: Entry{
				Name:               u.Name,
				Points:             u.Points,
				Wins:               u.Wins,
				Losses:             u.Losses,
				Tasks:              append([]string(nil), u.Tasks...),
				DailyTask:          u.DailyTask,
				DailyTaskCompleted: u.DailyTaskCompleted,
				LastDailyCheck:     u.LastDailyCheck,
			},
			lastActive: now,
		}
	}
	fmt.Printf("工作集缓存水合完成，共加载 %d 个用户。\n", len(users))
	return nil
}

func (c *Cache) slot(userID int64) *entrySlot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.entries[userID]
}

// Read 返回一个用户当前的内存值快照，不触达存储。
func (c *Cache) Read(userID int64) (Entry, bool) {
	s := c.slot(userID)
	if s == nil {
		return Entry{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.clone(), true
}

// Mutate 在该用户的锁内原地应用一次更新。
// 同一用户的并发事件在这里被串行化；不同用户互不阻塞。
// 条目不存在时返回false，fn不会被调用。
func (c *Cache) Mutate(userID int64, fn func(*Entry)) bool {
	s := c.slot(userID)
	if s == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.data)
	s.dirty = true
	s.gen++
	s.lastActive = time.Now()
	return true
}

// Insert 为一个新用户（或从存储重新加载的用户）建立缓存条目。
// 已存在的条目不会被覆盖，避免并发首次接触时丢失已有变更。
func (c *Cache) Insert(userID int64, e Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[userID]; exists {
		return
	}
	c.entries[userID] = &entrySlot{
		data:       e.clone(),
		lastActive: time.Now(),
	}
}

// Len 返回当前缓存的用户数。
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// userIDs 返回当前全部缓存键的快照，按升序排列。
func (c *Cache) userIDs() []int64 {
	c.mu.RLock()
	ids := make([]int64, 0, len(c.entries))
	for id := range c.entries {
		ids = append(ids, id)
	}
	c.mu.RUnlock()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// FlushAll 把所有脏条目逐个写回存储。
// 单个用户写入失败只记录日志并跳过，该条目保持脏标记等待下一轮；
// 不存在回滚整批的语义。返回成功与失败的条数。
func (c *Cache) FlushAll(store *Store) (flushed, failed int) {
	for _, id := range c.userIDs() {
		s := c.slot(id)
		if s == nil {
			continue
		}

		s.mu.Lock()
		if !s.dirty {
			s.mu.Unlock()
			continue
		}
		snapshot := s.data.clone()
		gen := s.gen
		s.mu.Unlock()

		err := store.Update(id, map[string]interface{}{
			"name":                 snapshot.Name,
			"points":               snapshot.Points,
			"wins":                 snapshot.Wins,
			"losses":               snapshot.Losses,
			"tasks":                snapshot.Tasks,
			"daily_task":           snapshot.DailyTask,
			"daily_task_completed": snapshot.DailyTaskCompleted,
			"last_daily_check":     snapshot.LastDailyCheck,
		})
		if err == ErrNotFound {
			// 缓存里有而库里没有，说明行从未落库，补一次创建后重试
			if cerr := store.Create(id, snapshot.Name); cerr == nil || cerr == ErrDuplicateKey {
				err = store.Update(id, map[string]interface{}{
					"name":                 snapshot.Name,
					"points":               snapshot.Points,
					"wins":                 snapshot.Wins,
					"losses":               snapshot.Losses,
					"tasks":                snapshot.Tasks,
					"daily_task":           snapshot.DailyTask,
					"daily_task_completed": snapshot.DailyTaskCompleted,
					"last_daily_check":     snapshot.LastDailyCheck,
				})
			}
		}
		if err != nil {
			fmt.Printf("flush警告: 写回用户 %d 失败: %v\n", id, err)
			failed++
			continue
		}

		// 写库期间条目又被改过的话保持脏标记
		s.mu.Lock()
		if s.gen == gen {
			s.dirty = false
		}
		s.mu.Unlock()
		flushed++
	}
	return flushed, failed
}

// ResetDaily 把缓存侧的每日任务状态与存储侧的每日重置对齐：
// 清除盖章日期早于today的条目的每日字段，并把所有条目统一盖章。
// 存储侧已由 ResetStaleDailyState 写入同样的值，这里不标脏。
func (c *Cache) ResetDaily(today string) {
	for _, id := range c.userIDs() {
		s := c.slot(id)
		if s == nil {
			continue
		}
		s.mu.Lock()
		if s.data.LastDailyCheck < today {
			s.data.DailyTask = ""
			s.data.DailyTaskCompleted = false
		}
		s.data.LastDailyCheck = today
		s.gen++
		s.mu.Unlock()
	}
}

// EvictIdle 逐出闲置超过maxIdle的干净条目，返回逐出数量。
// 脏条目从不逐出；被逐出的用户在下次交互时由服务层从存储重新加载。
func (c *Cache) EvictIdle(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)
	evicted := 0

	c.mu.Lock()
	defer c.mu.Unlock()
	for id, s := range c.entries {
		s.mu.Lock()
		idle := !s.dirty && s.lastActive.Before(cutoff)
		s.mu.Unlock()
		if idle {
			delete(c.entries, id)
			evicted++
		}
	}
	return evicted
}
