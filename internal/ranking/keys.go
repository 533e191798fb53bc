package ranking

// 本模块管理的Redis键名
const (
	// RankingKey 是一个Sorted Set。
	// Score: 用户当前积分
	// Member: 用户ID的十进制字符串
	RankingKey = "user:ranking"

	// NamesKey 是一个Hash，缓存用户ID到显示名的映射，
	// 供排行榜渲染时免查数据库。
	// Field: 用户ID的十进制字符串
	// Value: 显示名
	NamesKey = "user:names"
)
