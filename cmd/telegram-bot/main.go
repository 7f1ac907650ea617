package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"taskboard/internal/board"
	"taskboard/internal/client"
	"taskboard/internal/config"
	"taskboard/internal/logger"
	"taskboard/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
)

type Bot struct {
	api   *tgbotapi.BotAPI
	store board.Store
	mode  board.SortMode
	// send подменяется в тестах
	send func(chatID int64, text string)
}

func NewBot(token string, debug bool, store board.Store, mode board.SortMode) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания бота: %w", err)
	}

	api.Debug = debug
	logger.Info(context.Background(), "Авторизован", "bot", api.Self.UserName)

	b := &Bot{api: api, store: store, mode: mode}
	b.send = b.sendMessage
	return b, nil
}

func (b *Bot) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates, err := b.api.GetUpdatesChan(u)
	if err != nil {
		return fmt.Errorf("ошибка получения updates: %w", err)
	}

	logger.Info(ctx, "Бот запущен и слушает сообщения...")

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			go b.handleMessage(ctx, update.Message)
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	user := ""
	if msg.From != nil {
		user = msg.From.UserName
	}
	logger.Info(ctx, "Получено сообщение", "user", user, "text", msg.Text)

	if !msg.IsCommand() {
		b.send(msg.Chat.ID, "Используйте /help для списка команд.")
		return
	}
	b.handleCommand(ctx, msg.Chat.ID, msg.Command(), msg.CommandArguments())
}

func (b *Bot) handleCommand(ctx context.Context, chatID int64, command, args string) {
	args = strings.TrimSpace(args)
	switch command {
	case "start", "help":
		b.send(chatID, helpText)
	case "list":
		b.listTasks(ctx, chatID, args)
	case "add":
		b.addTask(ctx, chatID, args)
	case "done":
		b.completeTask(ctx, chatID, args)
	case "delete":
		b.deleteTask(ctx, chatID, args)
	default:
		b.send(chatID, "Неизвестная команда. Используйте /help для списка команд.")
	}
}

// chatPrompter отвечает на подтверждение заранее заданным флагом, а
// алерты отправляет в чат.
type chatPrompter struct {
	bot     *Bot
	chatID  int64
	confirm bool
}

func (p chatPrompter) Confirm(string) bool { return p.confirm }

func (p chatPrompter) Alert(message string) {
	p.bot.send(p.chatID, "❌ "+escapeMarkdown(message))
}

// loadBoard строит контроллер для одной команды и загружает список
func (b *Bot) loadBoard(ctx context.Context, chatID int64, confirm bool, mode board.SortMode) (*board.Controller, bool) {
	ctrl := board.NewController(b.store, chatPrompter{bot: b, chatID: chatID, confirm: confirm}, board.WithSortMode(mode))
	if err := ctrl.Load(ctx); err != nil {
		b.send(chatID, "❌ "+board.ErrorHeading)
		return nil, false
	}
	return ctrl, true
}

func (b *Bot) listTasks(ctx context.Context, chatID int64, args string) {
	mode := b.mode
	if args != "" {
		mode = board.ParseSortMode(args)
	}
	ctrl, ok := b.loadBoard(ctx, chatID, false, mode)
	if !ok {
		return
	}
	b.send(chatID, formatView(ctrl.View()))
}

func (b *Bot) addTask(ctx context.Context, chatID int64, args string) {
	if args == "" {
		b.send(chatID, "Укажите задачу после команды: /add Купить молоко !urgent @2025-01-31")
		return
	}
	ctrl, ok := b.loadBoard(ctx, chatID, false, b.mode)
	if !ok {
		return
	}

	form := parseAddArgs(args)
	ctrl.OpenCreate()
	if err := ctrl.Submit(ctx, form); err != nil {
		// алерт уже отправлен
		return
	}
	b.send(chatID, fmt.Sprintf("✅ *Задача добавлена!*\n\n%s", formatView(ctrl.View())))
}

func (b *Bot) completeTask(ctx context.Context, chatID int64, args string) {
	id, err := strconv.Atoi(args)
	if err != nil {
		b.send(chatID, "Укажите номер задачи: /done 1")
		return
	}
	ctrl, ok := b.loadBoard(ctx, chatID, false, b.mode)
	if !ok {
		return
	}

	if !b.fire(ctx, chatID, ctrl, board.CheckboxID(id)) {
		return
	}
	task, _ := ctrl.State().Find(id)
	status := "выполненной"
	if !task.Completed {
		status = "невыполненной"
	}
	b.send(chatID, fmt.Sprintf("✅ Задача #%d отмечена %s!", id, status))
}

func (b *Bot) deleteTask(ctx context.Context, chatID int64, args string) {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		b.send(chatID, "Укажите номер задачи: /delete 1 confirm")
		return
	}
	id, err := strconv.Atoi(fields[0])
	if err != nil {
		b.send(chatID, "Номер задачи должен быть числом")
		return
	}
	confirm := len(fields) > 1 && fields[1] == "confirm"

	ctrl, ok := b.loadBoard(ctx, chatID, confirm, b.mode)
	if !ok {
		return
	}

	if _, found := ctrl.State().Find(id); found && !confirm {
		b.send(chatID, fmt.Sprintf("⚠️ %s\nОтправьте /delete %d confirm", board.MsgConfirmDelete, id))
		return
	}
	if !b.fire(ctx, chatID, ctrl, board.DeleteID(id)) {
		return
	}
	b.send(chatID, fmt.Sprintf("🗑️ Задача #%d удалена!", id))
}

// fire вызывает обработчик элемента так же, как клик в интерфейсе
func (b *Bot) fire(ctx context.Context, chatID int64, ctrl *board.Controller, element string) bool {
	h, ok := ctrl.View().Handlers[element]
	if !ok {
		b.send(chatID, "Задача не найдена")
		return false
	}
	return h(ctx) == nil
}

// parseAddArgs: "Купить молоко !urgent @2025-01-31"
func parseAddArgs(args string) board.Form {
	form := board.EmptyForm()
	var title []string
	for _, word := range strings.Fields(args) {
		switch {
		case strings.HasPrefix(word, "!") && models.Priority(word[1:]).Valid():
			form.Priority = models.Priority(word[1:])
		case strings.HasPrefix(word, "@") && len(word) > 1:
			form.DueDate = word[1:]
		default:
			title = append(title, word)
		}
	}
	form.Title = strings.Join(title, " ")
	return form
}

var markdownEscaper = strings.NewReplacer("_", "\\_", "*", "\\*", "[", "\\[", "`", "\\`")

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

func formatView(v board.View) string {
	switch v.Placeholder {
	case board.PlaceholderError:
		return "❌ " + board.ErrorHeading
	case board.PlaceholderEmpty:
		return "📭 Список задач пуст"
	}

	var response strings.Builder
	response.WriteString(fmt.Sprintf("📋 *Ваши задачи* (%s):\n\n", escapeMarkdown(v.Sort.Label())))

	for _, c := range v.Cards {
		status := "🟢"
		if c.Completed {
			status = "✅"
		}

		// Эмодзи приоритета
		priorityEmoji := "⚪"
		switch models.Priority(c.Priority) {
		case models.PriorityImportant:
			priorityEmoji = "🟡"
		case models.PriorityUrgent:
			priorityEmoji = "🔴"
		}

		response.WriteString(fmt.Sprintf("%s%s #%d: %s", status, priorityEmoji, c.TaskID, escapeMarkdown(c.Title)))
		if c.DueDate != "" {
			response.WriteString(fmt.Sprintf(" 📅 %s", c.DueDate))
		}
		if c.Description != "" {
			response.WriteString("\n    " + escapeMarkdown(c.Description))
		}
		response.WriteString("\n\n")
	}
	return response.String()
}

const helpText = `🤖 *Помощь по командам*

*/list [sort]* - Показать задачи (default, due-date-asc, due-date-desc, priority-asc, priority-desc)
*/add [задача]* - Добавить задачу, !important или !urgent задают приоритет, @ГГГГ-ММ-ДД срок
*/done [номер]* - Переключить выполнение
*/delete [номер] confirm* - Удалить задачу
*/help* - Показать эту справку

*Примеры использования:*
/add Купить молоко !urgent @2025-01-31
/done 1
/list priority-asc`

func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "Markdown"

	if _, err := b.api.Send(msg); err != nil {
		logger.Error(context.Background(), err, "Ошибка отправки сообщения", "chat", chatID)
	}
}

func main() {
	configPath := flag.String("config", "taskboard.yaml", "path to YAML config")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error(ctx, err, "Ошибка загрузки конфига")
		os.Exit(1)
	}
	if level, err := logger.ParseLevel(cfg.Log.Level); err == nil {
		logger.SetLevel(level)
	}
	logger.Info(ctx, "Запуск Telegram-бота...", "api", cfg.API.BaseURL)

	if cfg.Telegram.Token == "" {
		logger.Error(ctx, fmt.Errorf("token is empty"), "Не задан TELEGRAM_BOT_TOKEN")
		os.Exit(1)
	}

	store := client.New(cfg.API.BaseURL, client.WithTimeout(cfg.API.Timeout))
	bot, err := NewBot(cfg.Telegram.Token, cfg.Telegram.Debug, store, board.ParseSortMode(cfg.Board.DefaultSort))
	if err != nil {
		logger.Error(ctx, err, "Ошибка создания бота")
		os.Exit(1)
	}

	logger.Info(ctx, "Бот успешно инициализирован")
	if err := bot.Start(ctx); err != nil {
		logger.Error(ctx, err, "Бот остановлен с ошибкой")
		os.Exit(1)
	}
}
