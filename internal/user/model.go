package user

import (
	"time"
)

// User 定义了用户进度在数据库中的持久化模型，一行对应一个用户。
// 运行期间该表是滞后的快照，工作集缓存才是权威数据；两者在每次flush时收敛。
type User struct {
	// UserID 是消息平台分配的用户ID，主键。
	UserID int64 `gorm:"primarykey;autoIncrement:false"`

	// Name 是用户显示名的最近一次快照。
	Name string

	// Points 是累计积分，只增不减。
	Points int

	// Wins / Losses 是猜拳游戏的胜负计数。
	Wins   int
	Losses int

	// Tasks 是用户自管理的待办列表，顺序即插入顺序，按1起始的序号删除。
	// 以JSON文本落库，避免原来逗号拼接对含逗号任务的破坏。
	Tasks []string `gorm:"serializer:json;type:text"`

	// DailyTask 是今日分配的每日任务，空串表示未分配。
	DailyTask string

	// DailyTaskCompleted 标记今日任务是否已完成。
	DailyTaskCompleted bool

	// LastDailyCheck 是最近一次每日状态评估的日期，ISO格式 YYYY-MM-DD。
	// 字符串的字典序与日期序一致，比较时直接用 < 。
	LastDailyCheck string `gorm:"type:varchar(10);index"`

	// 由GORM自动管理
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DateLayout 是 LastDailyCheck 使用的日期格式。
const DateLayout = "2006-01-02"

// Today 返回本地时区的当前日期串。
func Today() string {
	return time.Now().Format(DateLayout)
}
