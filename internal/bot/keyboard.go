package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/mrp23231/coffee1-bot/internal/game"
)

// 回调数据常量。猜拳的三手直接复用game.Choice的取值。
const (
	callbackFact        = "fact"
	callbackJoke        = "api_joke"
	callbackTasks       = "tasks"
	callbackGame        = "game"
	callbackLeaderboard = "leaderboard"
	callbackDaily       = "daily"
	callbackDailyDone   = "daily_done"
)

// mainKeyboard 是主菜单的内联键盘。
func mainKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("☕ Факт", callbackFact),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("😂 Шутка API", callbackJoke),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📝 Задачи", callbackTasks),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🎯 Задание дня", callbackDaily),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🎮 Камень-ножницы-бумага", callbackGame),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🏆 Лидерборд", callbackLeaderboard),
		),
	)
}

// gameKeyboard 是猜拳的选择键盘。
func gameKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🪨 Камень", string(game.Rock)),
			tgbotapi.NewInlineKeyboardButtonData("✂️ Ножницы", string(game.Scissors)),
			tgbotapi.NewInlineKeyboardButtonData("📄 Бумага", string(game.Paper)),
		),
	)
}

// dailyDoneKeyboard 是每日任务下方的完成按钮。
func dailyDoneKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Выполнил", callbackDailyDone),
		),
	)
}
