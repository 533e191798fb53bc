package user

// Level 由积分换算等级：每10分一级。
func Level(points int) int {
	return points / 10
}

// LevelTitle 返回等级对应的称号。
func LevelTitle(level int) string {
	switch {
	case level < 5:
		return "🌱 Новичок"
	case level < 10:
		return "✨ Стажёр"
	case level < 20:
		return "⚡️ Эксперт"
	default:
		return "🏆 Мастер"
	}
}

// TitleForPoints 是 LevelTitle(Level(points)) 的快捷方式。
func TitleForPoints(points int) string {
	return LevelTitle(Level(points))
}
