package user_test

import (
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/mrp23231/coffee1-bot/internal/user"
)

func TestCacheReadAbsent(t *testing.T) {
	cache := user.NewCache()
	if _, ok := cache.Read(1); ok {
		t.Fatal("空缓存的读取不应命中")
	}
	if cache.Mutate(1, func(e *user.Entry) {}) {
		t.Fatal("空缓存的变更不应成功")
	}
}

func TestCacheConcurrentMutateSerializesPerUser(t *testing.T) {
	cache := user.NewCache()
	cache.Insert(1, user.Entry{Name: "A"})
	cache.Insert(2, user.Entry{Name: "B"})

	const workers = 50
	const perWorker = 20

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(2)
		// 目标用户的并发加分
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				cache.Mutate(1, func(e *user.Entry) {
					e.Points++
				})
			}
		}()
		// 其他用户的并发变更不得干扰
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				cache.Mutate(2, func(e *user.Entry) {
					e.Points++
					e.Tasks = append(e.Tasks, "x")
					e.Tasks = e.Tasks[:0]
				})
			}
		}()
	}
	wg.Wait()

	e, ok := cache.Read(1)
	if !ok {
		t.Fatal("用户1丢失")
	}
	if want := workers * perWorker; e.Points != want {
		t.Errorf("points = %d, want %d (加分操作被交错覆盖)", e.Points, want)
	}
}

func TestCacheReadReturnsSnapshot(t *testing.T) {
	cache := user.NewCache()
	cache.Insert(1, user.Entry{Tasks: []string{"a", "b"}})

	snap, _ := cache.Read(1)
	cache.Mutate(1, func(e *user.Entry) {
		e.Tasks[0] = "changed"
		e.Tasks = append(e.Tasks, "c")
	})

	if !reflect.DeepEqual(snap.Tasks, []string{"a", "b"}) {
		t.Errorf("读取到的快照随后续变更发生了变化: %v", snap.Tasks)
	}
}

func TestCacheFlushHydrateRoundTrip(t *testing.T) {
	store := newTestStore(t)
	cache := user.NewCache()

	for id := int64(1); id <= 3; id++ {
		if err := store.Create(id, "u"); err != nil {
			t.Fatalf("创建失败: %v", err)
		}
	}
	if err := cache.Hydrate(store); err != nil {
		t.Fatalf("水合失败: %v", err)
	}

	cache.Mutate(1, func(e *user.Entry) {
		e.Points = 42
		e.Wins = 3
		e.Losses = 1
		e.Tasks = []string{"кофе", "зал, вечером"}
		e.DailyTask = "Выпей 2 литра воды"
		e.DailyTaskCompleted = true
	})
	cache.Mutate(2, func(e *user.Entry) {
		e.Points = 7
	})

	if flushed, failed := cache.FlushAll(store); failed != 0 || flushed != 2 {
		t.Fatalf("flushed=%d failed=%d, want 2/0", flushed, failed)
	}

	// flush后在全新缓存上水合，必须重现flush时刻的字段值
	fresh := user.NewCache()
	if err := fresh.Hydrate(store); err != nil {
		t.Fatalf("二次水合失败: %v", err)
	}
	for id := int64(1); id <= 3; id++ {
		want, _ := cache.Read(id)
		got, ok := fresh.Read(id)
		if !ok {
			t.Fatalf("用户 %d 在新缓存中缺失", id)
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("用户 %d 往返不一致:\ngot  %+v\nwant %+v", id, got, want)
		}
	}
}

func TestCacheFlushSkipsCleanEntries(t *testing.T) {
	store := newTestStore(t)
	cache := user.NewCache()

	if err := store.Create(1, "u"); err != nil {
		t.Fatalf("创建失败: %v", err)
	}
	if err := cache.Hydrate(store); err != nil {
		t.Fatalf("水合失败: %v", err)
	}

	if flushed, failed := cache.FlushAll(store); flushed != 0 || failed != 0 {
		t.Errorf("干净缓存的flush应为空操作: flushed=%d failed=%d", flushed, failed)
	}

	cache.Mutate(1, func(e *user.Entry) { e.Points = 1 })
	if flushed, _ := cache.FlushAll(store); flushed != 1 {
		t.Errorf("脏条目应被写回: flushed=%d", flushed)
	}
	// 第二轮无新变更，不应再写
	if flushed, _ := cache.FlushAll(store); flushed != 0 {
		t.Errorf("已写回的条目不应重复写: flushed=%d", flushed)
	}
}

func TestCacheFlushCreatesMissingRow(t *testing.T) {
	store := newTestStore(t)
	cache := user.NewCache()

	// 缓存里有、库里没有的用户（行从未落库）
	cache.Insert(7, user.Entry{Name: "N", LastDailyCheck: user.Today()})
	cache.Mutate(7, func(e *user.Entry) { e.Points = 9 })

	if flushed, failed := cache.FlushAll(store); failed != 0 || flushed != 1 {
		t.Fatalf("flushed=%d failed=%d, want 1/0", flushed, failed)
	}
	u, err := store.Get(7)
	if err != nil || u == nil {
		t.Fatalf("flush后库中无记录: %v", err)
	}
	if u.Points != 9 || u.Name != "N" {
		t.Errorf("落库字段不对: %+v", u)
	}
}

func TestCacheResetDaily(t *testing.T) {
	cache := user.NewCache()
	const today = "2100-06-15"

	cache.Insert(1, user.Entry{
		DailyTask:          "старое задание",
		DailyTaskCompleted: true,
		LastDailyCheck:     "2100-06-14",
	})
	cache.Insert(2, user.Entry{
		DailyTask:      "сегодняшнее задание",
		LastDailyCheck: today,
	})

	cache.ResetDaily(today)

	e1, _ := cache.Read(1)
	if e1.DailyTask != "" || e1.DailyTaskCompleted || e1.LastDailyCheck != today {
		t.Errorf("过期条目未被重置: %+v", e1)
	}
	e2, _ := cache.Read(2)
	if e2.DailyTask != "сегодняшнее задание" || e2.LastDailyCheck != today {
		t.Errorf("今日条目不应被清除: %+v", e2)
	}
}

func TestCacheEvictIdle(t *testing.T) {
	store := newTestStore(t)
	cache := user.NewCache()

	cache.Insert(1, user.Entry{Name: "clean"})
	cache.Insert(2, user.Entry{Name: "dirty"})
	cache.Mutate(2, func(e *user.Entry) { e.Points = 1 })

	// 阈值为0时，所有干净条目都算闲置
	time.Sleep(5 * time.Millisecond)
	evicted := cache.EvictIdle(time.Millisecond)
	if evicted != 1 {
		t.Fatalf("evicted = %d, want 1", evicted)
	}
	if _, ok := cache.Read(1); ok {
		t.Error("干净的闲置条目应被逐出")
	}
	// 脏条目从不逐出，否则未落库的变更会丢失
	if _, ok := cache.Read(2); !ok {
		t.Error("脏条目不应被逐出")
	}

	// 脏条目flush后（走创建重试路径落库）才有资格被逐出
	if flushed, failed := cache.FlushAll(store); flushed != 1 || failed != 0 {
		t.Fatalf("flushed=%d failed=%d, want 1/0", flushed, failed)
	}
	time.Sleep(5 * time.Millisecond)
	if evicted := cache.EvictIdle(time.Millisecond); evicted != 1 {
		t.Errorf("flush后的干净条目应可逐出: evicted = %d", evicted)
	}
}
