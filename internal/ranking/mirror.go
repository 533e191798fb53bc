package ranking

import (
	"fmt"
	"strconv"

	"github.com/mrp23231/coffee1-bot/internal/platform/database"
	"github.com/mrp23231/coffee1-bot/internal/user"
	"github.com/redis/go-redis/v9"
)

// Row 是排行榜的一行。
type Row struct {
	UserID int64
	Name   string
	Points int
}

// Mirror 在Redis中维护积分排行榜的镜像（Sorted Set + 名字Hash）。
// 镜像是尽力而为的：Redis不可用时写入被跳过，读取降级到数据库，
// Redis恢复后由健康检查器触发 Warmup 重建。
type Mirror struct {
	rdb   *redis.Client
	store *user.Store
}

// New 构造排行榜镜像。
func New(rdb *redis.Client, store *user.Store) *Mirror {
	return &Mirror{rdb: rdb, store: store}
}

// SetScore 更新一个用户在镜像中的积分和显示名。实现 user.ScoreMirror。
// 任何失败只记录日志，绝不影响交互处理。
func (m *Mirror) SetScore(userID int64, name string, points int) {
	if m.rdb == nil || !database.IsRedisHealthy() {
		return
	}
	member := strconv.FormatInt(userID, 10)
	pipe := m.rdb.Pipeline()
	pipe.ZAdd(database.Ctx, RankingKey, redis.Z{Score: float64(points), Member: member})
	pipe.HSet(database.Ctx, NamesKey, member, name)
	if _, err := pipe.Exec(database.Ctx); err != nil {
		fmt.Printf("排行榜镜像: 更新用户 %d 失败: %v\n", userID, err)
	}
}

// Warmup 从数据库全量重建排行榜镜像。
// 启动时和Redis恢复后调用。先清空旧键再写入，保证镜像与库一致。
func (m *Mirror) Warmup() error {
	if m.rdb == nil {
		return nil
	}
	users, err := m.store.GetAll()
	if err != nil {
		return err
	}

	pipe := m.rdb.TxPipeline()
	pipe.Del(database.Ctx, RankingKey, NamesKey)
	if len(users) > 0 {
		members := make([]redis.Z, 0, len(users))
		names := make([]interface{}, 0, len(users)*2)
		for _, u := range users {
			member := strconv.FormatInt(u.UserID, 10)
			members = append(members, redis.Z{Score: float64(u.Points), Member: member})
			names = append(names, member, u.Name)
		}
		pipe.ZAdd(database.Ctx, RankingKey, members...)
		pipe.HSet(database.Ctx, NamesKey, names...)
	}
	if _, err := pipe.Exec(database.Ctx); err != nil {
		return fmt.Errorf("重建排行榜镜像失败: %w", err)
	}

	fmt.Printf("排行榜镜像重建完成，共 %d 个用户。\n", len(users))
	return nil
}

// Top 返回积分最高的前n个用户。
// Redis健康时走镜像（ZREVRANGE + HMGET），否则降级为数据库查询。
// 同分用户之间的顺序由实现决定。
func (m *Mirror) Top(n int) ([]Row, error) {
	if m.rdb == nil || !database.IsRedisHealthy() {
		return m.topFromStore(n)
	}

	zs, err := m.rdb.ZRevRangeWithScores(database.Ctx, RankingKey, 0, int64(n-1)).Result()
	if err != nil {
		fmt.Printf("排行榜镜像: 读取失败，降级到数据库: %v\n", err)
		return m.topFromStore(n)
	}
	if len(zs) == 0 {
		return nil, nil
	}

	members := make([]string, len(zs))
	for i, z := range zs {
		members[i] = z.Member.(string)
	}
	names, err := m.rdb.HMGet(database.Ctx, NamesKey, members...).Result()
	if err != nil {
		fmt.Printf("排行榜镜像: 读取名字失败，降级到数据库: %v\n", err)
		return m.topFromStore(n)
	}

	rows := make([]Row, 0, len(zs))
	for i, z := range zs {
		id, err := strconv.ParseInt(members[i], 10, 64)
		if err != nil {
			continue
		}
		name := "Аноним"
		if s, ok := names[i].(string); ok && s != "" {
			name = s
		}
		rows = append(rows, Row{UserID: id, Name: name, Points: int(z.Score)})
	}
	return rows, nil
}

func (m *Mirror) topFromStore(n int) ([]Row, error) {
	users, err := m.store.TopByPoints(n)
	if err != nil {
		return nil, err
	}
	rows := make([]Row, 0, len(users))
	for _, u := range users {
		name := u.Name
		if name == "" {
			name = "Аноним"
		}
		rows = append(rows, Row{UserID: u.UserID, Name: name, Points: u.Points})
	}
	return rows, nil
}
