package bot

import (
	"fmt"
	"math/rand"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/mrp23231/coffee1-bot/internal/joke"
	"github.com/mrp23231/coffee1-bot/internal/platform/config"
	"github.com/mrp23231/coffee1-bot/internal/ranking"
	"github.com/mrp23231/coffee1-bot/internal/user"
	"github.com/mrp23231/coffee1-bot/pkg/lifecycle"
)

// Bot 是消息平台边界：把Telegram事件翻译成对用户服务的调用，
// 把返回的普通值渲染成文本/键盘回复。核心状态全部在服务层，这里无状态。
type Bot struct {
	api    *tgbotapi.BotAPI
	svc    *user.Service
	mirror *ranking.Mirror
	jokes  *joke.Client
}

// New 建立与Telegram的连接并构造Bot。
func New(cfg config.TelegramConfig, svc *user.Service, mirror *ranking.Mirror, jokes *joke.Client) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("无法连接到Telegram: %w", err)
	}
	api.Debug = cfg.Debug
	fmt.Printf("Telegram已授权: @%s\n", api.Self.UserName)

	return &Bot{api: api, svc: svc, mirror: mirror, jokes: jokes}, nil
}

// Run 启动长轮询主循环，直到收到停机信号。
// 每个更新在独立的Goroutine中处理：一个用户的故障不影响其他用户的在途处理，
// 同一用户的并发变更由缓存的逐用户锁串行化。
func (b *Bot) Run(handle *lifecycle.Handle) {
	defer handle.Close()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.api.GetUpdatesChan(u)
	fmt.Println("Бот запущен!")

	for {
		select {
		case <-handle.Done():
			fmt.Println("Telegram主循环: 收到停机信号，退出。")
			return
		case update, ok := <-updates:
			if !ok {
				fmt.Println("Telegram主循环: 更新通道已关闭，退出。")
				return
			}
			go b.handleUpdate(update)
		}
	}
}

// Stop 停止接收新的更新，令Run的更新通道尽快关闭。
func (b *Bot) Stop() {
	b.api.StopReceivingUpdates()
}

// handleUpdate 是单个事件的处理边界。
// 任何未预期的故障在这里被兜住：记录日志并给用户一条通用的道歉消息，
// 绝不让单个处理器的panic拖垮进程。
func (b *Bot) handleUpdate(update tgbotapi.Update) {
	var chatID int64
	switch {
	case update.Message != nil:
		chatID = update.Message.Chat.ID
	case update.CallbackQuery != nil && update.CallbackQuery.Message != nil:
		chatID = update.CallbackQuery.Message.Chat.ID
	}

	defer func() {
		if r := recover(); r != nil {
			fmt.Printf("处理器panic已兜住: %v\n", r)
			if chatID != 0 {
				b.send(tgbotapi.NewMessage(chatID, msgApology))
			}
		}
	}()

	switch {
	case update.Message != nil && update.Message.IsCommand():
		b.handleCommand(update.Message)
	case update.Message != nil:
		b.handleText(update.Message)
	case update.CallbackQuery != nil:
		b.handleCallback(update.CallbackQuery)
	}
}

// send 发送一条消息，失败只记录日志。
func (b *Bot) send(c tgbotapi.Chattable) {
	if _, err := b.api.Send(c); err != nil {
		fmt.Printf("发送消息失败: %v\n", err)
	}
}

// sendWithMenu 发送带主菜单键盘的文本消息。
func (b *Bot) sendWithMenu(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = mainKeyboard()
	b.send(msg)
}

// randomFactGif 返回一个随机的факт GIF地址。
func randomFactGif() string {
	return factGifs[rand.Intn(len(factGifs))]
}
