package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/mrp23231/coffee1-bot/internal/game"
	"github.com/mrp23231/coffee1-bot/internal/user"
)

// handleCommand 处理斜杠命令。
func (b *Bot) handleCommand(msg *tgbotapi.Message) {
	userID := msg.From.ID
	name := msg.From.FirstName

	switch msg.Command() {
	case "start":
		if _, err := b.svc.EnsureUser(userID, name); err != nil {
			fmt.Printf("处理/start失败 (用户 %d): %v\n", userID, err)
			b.send(tgbotapi.NewMessage(msg.Chat.ID, msgApology))
			return
		}
		// 跨天后的首次交互在这里对齐每日状态
		if err := b.svc.EnsureDailyFresh(userID, name); err != nil {
			fmt.Printf("每日状态检查失败 (用户 %d): %v\n", userID, err)
		}

		e, _ := b.svc.EnsureUser(userID, name)
		level := user.Level(e.Points)
		text := fmt.Sprintf("Привет, %s! 🧠 Уровень: %d — %s\n\n%s",
			name, level, user.LevelTitle(level), msgChooseAction)
		b.sendWithMenu(msg.Chat.ID, text)

	case "myinfo":
		e, err := b.svc.EnsureUser(userID, name)
		if err != nil {
			fmt.Printf("处理/myinfo失败 (用户 %d): %v\n", userID, err)
			b.send(tgbotapi.NewMessage(msg.Chat.ID, msgApology))
			return
		}
		level := user.Level(e.Points)
		daily := e.DailyTask
		if daily == "" {
			daily = "Нет"
		}
		if e.DailyTaskCompleted {
			daily = msgDailyDone
		}
		stats := fmt.Sprintf(`
📊 Статистика %s:
🧬 Уровень: %d — %s
💯 Баллов: %d
🎮 Победы: %d | Поражения: %d
📌 Задачи: %d
🎯 Ежедневное задание: %s
`, name, level, user.LevelTitle(level), e.Points, e.Wins, e.Losses, len(e.Tasks), daily)
		b.sendWithMenu(msg.Chat.ID, stats)
	}
}

// handleText 处理普通文本：任务的新增与按序号删除。
func (b *Bot) handleText(msg *tgbotapi.Message) {
	userID := msg.From.ID
	name := msg.From.FirstName
	text := strings.ToLower(strings.TrimSpace(msg.Text))

	if strings.HasPrefix(text, "удалить") {
		fields := strings.Fields(text)
		if len(fields) < 2 {
			b.send(tgbotapi.NewMessage(msg.Chat.ID, msgTaskUsage))
			return
		}
		index, err := strconv.Atoi(fields[1])
		if err != nil {
			b.send(tgbotapi.NewMessage(msg.Chat.ID, msgTaskUsage))
			return
		}
		if err := b.svc.DeleteTask(userID, name, index); err != nil {
			if errors.Is(err, user.ErrTaskIndex) {
				b.send(tgbotapi.NewMessage(msg.Chat.ID, msgTaskUsage))
				return
			}
			fmt.Printf("删除任务失败 (用户 %d): %v\n", userID, err)
			b.send(tgbotapi.NewMessage(msg.Chat.ID, msgApology))
			return
		}
		b.send(tgbotapi.NewMessage(msg.Chat.ID, msgTaskDeleted))
		return
	}

	if err := b.svc.AddTask(userID, name, text); err != nil {
		fmt.Printf("添加任务失败 (用户 %d): %v\n", userID, err)
		b.send(tgbotapi.NewMessage(msg.Chat.ID, msgApology))
		return
	}
	b.send(tgbotapi.NewMessage(msg.Chat.ID, fmt.Sprintf("✅ Добавлена задача: %s", text)))
}

// handleCallback 处理内联键盘的回调。
func (b *Bot) handleCallback(cq *tgbotapi.CallbackQuery) {
	// 先应答回调，让客户端的加载指示消失
	if _, err := b.api.Request(tgbotapi.NewCallback(cq.ID, "")); err != nil {
		fmt.Printf("应答回调失败: %v\n", err)
	}
	if cq.Message == nil {
		return
	}

	userID := cq.From.ID
	name := cq.From.FirstName
	chatID := cq.Message.Chat.ID
	messageID := cq.Message.MessageID

	switch cq.Data {
	case callbackFact:
		if err := b.svc.AwardPoints(userID, name, 1); err != nil {
			fmt.Printf("факт加分失败 (用户 %d): %v\n", userID, err)
		}
		b.send(tgbotapi.NewEditMessageText(chatID, messageID, msgFactIncoming))
		b.send(tgbotapi.NewAnimation(chatID, tgbotapi.FileURL(randomFactGif())))
		b.sendWithMenu(chatID, msgWantMore)

	case callbackJoke:
		if err := b.svc.AwardPoints(userID, name, 1); err != nil {
			fmt.Printf("шутка加分失败 (用户 %d): %v\n", userID, err)
		}
		jokeText := b.jokes.Fetch(context.Background())
		b.send(tgbotapi.NewEditMessageText(chatID, messageID,
			fmt.Sprintf("😂 Вот тебе шутка:\n\n%s", jokeText)))
		b.sendWithMenu(chatID, msgWantMore)

	case callbackTasks:
		tasks, err := b.svc.Tasks(userID, name)
		if err != nil {
			fmt.Printf("读取任务失败 (用户 %d): %v\n", userID, err)
			b.send(tgbotapi.NewMessage(chatID, msgApology))
			return
		}
		list := msgNoTasks
		if len(tasks) > 0 {
			var sb strings.Builder
			for i, t := range tasks {
				fmt.Fprintf(&sb, "%d. %s\n", i+1, t)
			}
			list = strings.TrimRight(sb.String(), "\n")
		}
		b.send(tgbotapi.NewEditMessageText(chatID, messageID, "📝 Твои задачи:\n"+list))
		b.sendWithMenu(chatID, msgTaskHint)

	case callbackGame:
		b.send(tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, msgGamePrompt, gameKeyboard()))

	case callbackLeaderboard:
		b.sendLeaderboard(chatID, messageID)

	case callbackDaily:
		task, err := b.svc.AssignDailyTask(userID, name, dailyTaskPool)
		if err != nil {
			fmt.Printf("分配每日任务失败 (用户 %d): %v\n", userID, err)
			b.send(tgbotapi.NewMessage(chatID, msgApology))
			return
		}
		if task == "" {
			// 任务为空且未重新分配，说明今天已经完成
			b.send(tgbotapi.NewEditMessageText(chatID, messageID, msgDailyNothing))
			b.sendWithMenu(chatID, msgWantMore)
			return
		}
		b.send(tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID,
			fmt.Sprintf("🎯 Задание дня:\n\n%s", task), dailyDoneKeyboard()))

	case callbackDailyDone:
		done, err := b.svc.CompleteDailyTask(userID, name)
		if err != nil {
			fmt.Printf("完成每日任务失败 (用户 %d): %v\n", userID, err)
			b.send(tgbotapi.NewMessage(chatID, msgApology))
			return
		}
		if done {
			b.send(tgbotapi.NewEditMessageText(chatID, messageID, msgDailyReward))
		} else {
			b.send(tgbotapi.NewEditMessageText(chatID, messageID, msgDailyNothing))
		}
		b.sendWithMenu(chatID, msgWantMore)

	default:
		if choice, ok := game.ParseChoice(cq.Data); ok {
			b.playRound(chatID, messageID, userID, name, choice)
		}
	}
}

// playRound 进行一局猜拳并应答结果。
func (b *Bot) playRound(chatID int64, messageID int, userID int64, name string, userChoice game.Choice) {
	botChoice := game.RandomChoice()
	outcome := game.Resolve(userChoice, botChoice)

	var result string
	switch outcome {
	case game.UserWins:
		result = msgResultWin
	case game.UserLoses:
		result = msgResultLose
	default:
		result = msgResultDraw
	}

	err := b.svc.RecordGameResult(userID, name, outcome == game.UserWins, outcome == game.UserLoses)
	if err != nil {
		fmt.Printf("记录对局结果失败 (用户 %d): %v\n", userID, err)
		b.send(tgbotapi.NewMessage(chatID, msgApology))
		return
	}

	b.send(tgbotapi.NewEditMessageText(chatID, messageID,
		fmt.Sprintf("Вы выбрали: %s\nБот выбрал: %s\n\n%s",
			capitalize(string(userChoice)), capitalize(string(botChoice)), result)))
	b.sendWithMenu(chatID, msgWantMoreGame)
}

// sendLeaderboard 渲染前10名的排行榜。
func (b *Bot) sendLeaderboard(chatID int64, messageID int) {
	rows, err := b.mirror.Top(10)
	if err != nil {
		fmt.Printf("读取排行榜失败: %v\n", err)
		b.send(tgbotapi.NewMessage(chatID, msgApology))
		return
	}

	var sb strings.Builder
	sb.WriteString("🏆 Лидерборд:\n")
	for i, row := range rows {
		fmt.Fprintf(&sb, "%d. %s — %s | 💯 %d баллов\n",
			i+1, row.Name, user.TitleForPoints(row.Points), row.Points)
	}

	msg := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID,
		strings.TrimRight(sb.String(), "\n"), mainKeyboard())
	b.send(msg)
}

// capitalize 把首字母大写，兼容西里尔字母。
func capitalize(s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return s
	}
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
