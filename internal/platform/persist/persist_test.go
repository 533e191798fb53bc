package persist_test

import (
	"path/filepath"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrp23231/coffee1-bot/internal/platform/persist"
	"github.com/mrp23231/coffee1-bot/internal/user"
)

func newTestService(t *testing.T) *user.Service {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("打开测试数据库失败: %v", err)
	}
	store := user.NewStore(db)
	if err := store.Migrate(); err != nil {
		t.Fatalf("迁移失败: %v", err)
	}
	cache := user.NewCache()
	if err := cache.Hydrate(store); err != nil {
		t.Fatalf("水合失败: %v", err)
	}
	return user.NewService(store, cache, nil)
}

func TestRunFlushPersistsMutations(t *testing.T) {
	svc := newTestService(t)

	if err := svc.AwardPoints(1, "u", 7); err != nil {
		t.Fatalf("加分失败: %v", err)
	}
	flushed, failed := persist.RunFlush(svc, 0)
	if failed != 0 || flushed != 1 {
		t.Fatalf("flushed=%d failed=%d, want 1/0", flushed, failed)
	}

	u, err := svc.Store().Get(1)
	if err != nil || u == nil {
		t.Fatalf("flush后读取失败: %v", err)
	}
	if u.Points != 7 {
		t.Errorf("points = %d, want 7", u.Points)
	}
}

// 每日重置必须同时作用于缓存，否则缓存里未写回的旧每日状态
// 会在下一轮flush时把重置结果覆盖回去。
func TestDailyResetIsNotRevivedByFlush(t *testing.T) {
	svc := newTestService(t)

	if _, err := svc.EnsureUser(1, "u"); err != nil {
		t.Fatalf("创建用户失败: %v", err)
	}
	// 缓存里有昨天的、尚未写回的每日任务状态
	svc.Cache().Mutate(1, func(e *user.Entry) {
		e.DailyTask = "старое задание"
		e.DailyTaskCompleted = true
		e.LastDailyCheck = "2000-01-01"
	})

	if err := persist.RunDailyReset(svc); err != nil {
		t.Fatalf("每日重置失败: %v", err)
	}
	if flushed, failed := persist.RunFlush(svc, 0); failed != 0 {
		t.Fatalf("flush失败: flushed=%d failed=%d", flushed, failed)
	}

	u, err := svc.Store().Get(1)
	if err != nil || u == nil {
		t.Fatalf("读取失败: %v", err)
	}
	if u.DailyTask != "" || u.DailyTaskCompleted {
		t.Errorf("旧的每日状态在flush后复活了: %+v", u)
	}
	if u.LastDailyCheck != user.Today() {
		t.Errorf("last_daily_check = %s, want %s", u.LastDailyCheck, user.Today())
	}
}
