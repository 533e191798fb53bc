package bot

// 展示给用户的静态内容。文案沿用原机器人的俄文。

// factGifs 是“факт”按钮随机发送的GIF地址池。
var factGifs = []string{
	"https://media.giphy.com/media/ABC123/fact1.gif",
	"https://media.giphy.com/media/DEF456/fact2.gif",
}

// dailyTaskPool 是每日任务的候选池，每天为用户随机分配一条。
var dailyTaskPool = []string{
	"Выпей 2 литра воды",
	"Сделай 10 приседаний",
	"Запиши 3 цели на день",
	"Прогуляйся 20 минут",
	"Послушай музыку без телефона",
}

const (
	msgChooseAction = "Выбери, что хочешь:"
	msgWantMore     = "Хочешь ещё?"
	msgWantMoreGame = "Хочешь ещё раз?"
	msgFactIncoming = "Лови факт!"
	msgTaskHint     = "Напиши новую задачу или 'удалить N', чтобы очистить."
	msgTaskDeleted  = "🗑 Задача удалена."
	msgTaskUsage    = "Используй: удалить N"
	msgGamePrompt   = "🎮 Выбери: камень, ножницы или бумага?"
	msgResultDraw   = "Ничья!"
	msgResultWin    = "Ты выиграл! 🎉"
	msgResultLose   = "Ты проиграл 😢"
	msgNoTasks      = "Нет задач."
	msgDailyDone    = "✅ Выполнено!"
	msgDailyReward  = "🎯 Задание выполнено! +5 баллов"
	msgDailyNothing = "Сегодня уже всё выполнено. Возвращайся завтра!"
	msgApology      = "Что-то пошло не так 😔 Попробуй ещё раз."
)
