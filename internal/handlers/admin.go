package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/SayanChouni/osint/internal/models"
	"github.com/SayanChouni/osint/internal/services"
)

const defaultTokenTTL = 24 * time.Hour

// callbackOps maps admin panel callback data to pending operations.
var callbackOps = map[string]models.PendingOp{
	"admin_add_credit":    models.OpAddCredit,
	"admin_remove_credit": models.OpRemoveCredit,
	"admin_add_bonus":     models.OpAddBonus,
	"admin_suspend":       models.OpSuspend,
	"admin_unban":         models.OpUnban,
	"admin_status":        models.OpStatus,
	"admin_view_logs":     models.OpViewLogs,
	"admin_add_block":     models.OpAddBlock,
	"admin_remove_block":  models.OpRemoveBlock,
}

func (b *Bot) handleAdminPanel(msg *tgbotapi.Message) {
	if msg.From.ID != b.cfg.AdminUserID {
		b.reply(msg.Chat.ID, "❌ ADMIN ACCESS DENIED.")
		return
	}

	out := tgbotapi.NewMessage(msg.Chat.ID, "Admin Panel:")
	out.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("➕ ADD CREDIT", "admin_add_credit"),
			tgbotapi.NewInlineKeyboardButtonData("➖ REMOVE CREDIT", "admin_remove_credit"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🎁 ADD BONUS", "admin_add_bonus"),
			tgbotapi.NewInlineKeyboardButtonData("👤 CHECK STATUS", "admin_status"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🛑 SUSPEND USER", "admin_suspend"),
			tgbotapi.NewInlineKeyboardButtonData("🟢 UNBAN USER", "admin_unban"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📝 VIEW LOGS", "admin_view_logs"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔒 ADD BLOCK", "admin_add_block"),
			tgbotapi.NewInlineKeyboardButtonData("🔓 REMOVE BLOCK", "admin_remove_block"),
		),
	)
	b.send(out)
}

func (b *Bot) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	defer func() {
		if _, err := b.api.Request(tgbotapi.NewCallback(cq.ID, "")); err != nil {
			log.Printf("callback answer error: %v", err)
		}
	}()

	if cq.Data == "try_num" {
		b.reply(cq.Message.Chat.ID, "To search a number use: /num <phone>")
		return
	}

	op, ok := callbackOps[cq.Data]
	if !ok {
		return
	}

	prompt, err := b.admin.Begin(ctx, cq.From.ID, op)
	if err != nil {
		if errors.Is(err, services.ErrAdminOnly) {
			b.reply(cq.Message.Chat.ID, "❌ ADMIN ACCESS DENIED.")
			return
		}
		b.replyStoreDown(cq.Message.Chat.ID, err)
		return
	}
	b.reply(cq.Message.Chat.ID, prompt)
}

// handleAdminText feeds a freeform text message into the pending admin
// operation, if any. Silently ignores text from anyone but the admin.
func (b *Bot) handleAdminText(ctx context.Context, msg *tgbotapi.Message) {
	result, err := b.admin.ConsumeInput(ctx, msg.From.ID, msg.Text)
	if err != nil {
		b.replyStoreDown(msg.Chat.ID, err)
		return
	}
	if !result.Handled {
		return
	}

	switch {
	case result.Account != nil:
		b.reply(msg.Chat.ID, services.FormatAccountStatus(result.Account))
	case result.Op == models.OpViewLogs:
		filename, content := services.BuildLogsReport(result.Logs, result.LogsN)
		b.sendDocument(msg.Chat.ID, filename, content, fmt.Sprintf("Last %d logs", result.LogsN))
	default:
		b.reply(msg.Chat.ID, result.Reply)
	}
}

// handleGenToken issues a one-time bonus token: /gentoken <amount> [hours].
func (b *Bot) handleGenToken(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From.ID != b.cfg.AdminUserID {
		b.reply(msg.Chat.ID, "❌ ADMIN ACCESS DENIED.")
		return
	}

	parts := strings.Fields(msg.CommandArguments())
	if len(parts) < 1 || len(parts) > 2 {
		b.reply(msg.Chat.ID, "Use: /gentoken <amount> [hours]")
		return
	}
	amount, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || amount <= 0 {
		b.reply(msg.Chat.ID, "Use: /gentoken <amount> [hours]")
		return
	}
	ttl := defaultTokenTTL
	if len(parts) == 2 {
		hours, err := strconv.Atoi(parts[1])
		if err != nil || hours <= 0 {
			b.reply(msg.Chat.ID, "Use: /gentoken <amount> [hours]")
			return
		}
		ttl = time.Duration(hours) * time.Hour
	}

	token, err := b.tokens.Issue(ctx, msg.From.ID, amount, ttl)
	if err != nil {
		b.replyStoreDown(msg.Chat.ID, err)
		return
	}
	b.reply(msg.Chat.ID, fmt.Sprintf("🎟 Token for %d bonus searches (valid %s):\n`%s`\n\nUsers redeem with /redeem <token>.",
		amount, ttl, token))
}
