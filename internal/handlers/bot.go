package handlers

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/SayanChouni/osint/internal/config"
	"github.com/SayanChouni/osint/internal/models"
	"github.com/SayanChouni/osint/internal/services"
)

const updateTimeout = 30 * time.Second

// Bot wires the Telegram dispatch shell to the ledger core. One HandleUpdate
// call per inbound update; the core serializes concurrent same-user requests
// at the store.
type Bot struct {
	api       *tgbotapi.BotAPI
	cfg       *config.Config
	ledger    *services.LedgerService
	blocklist *services.BlocklistService
	tokens    *services.TokenService
	auditLog  *services.SearchLogService
	lookup    *services.LookupService
	admin     *services.AdminStateMachine
	stream    *services.LogStream
}

func NewBot(
	api *tgbotapi.BotAPI,
	cfg *config.Config,
	ledger *services.LedgerService,
	blocklist *services.BlocklistService,
	tokens *services.TokenService,
	auditLog *services.SearchLogService,
	lookup *services.LookupService,
	admin *services.AdminStateMachine,
	stream *services.LogStream,
) *Bot {
	return &Bot{
		api:       api,
		cfg:       cfg,
		ledger:    ledger,
		blocklist: blocklist,
		tokens:    tokens,
		auditLog:  auditLog,
		lookup:    lookup,
		admin:     admin,
		stream:    stream,
	}
}

// HandleUpdate routes one inbound Telegram update.
func (b *Bot) HandleUpdate(update tgbotapi.Update) {
	ctx, cancel := context.WithTimeout(context.Background(), updateTimeout)
	defer cancel()

	switch {
	case update.CallbackQuery != nil && update.CallbackQuery.Message != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil && update.Message.From != nil && update.Message.IsCommand():
		b.handleCommand(ctx, update.Message)
	case update.Message != nil && update.Message.From != nil && update.Message.Text != "":
		b.handleText(ctx, update.Message)
	}
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	userID := msg.From.ID
	command := msg.Command()

	if command == "start" {
		b.handleStart(msg)
		return
	}

	if !msg.Chat.IsPrivate() {
		b.reply(msg.Chat.ID, "⚠️ **PLEASE USE THIS BOT IN PRIVATE CHAT.** ⚠️")
		return
	}

	if b.cfg.MaintenanceMode && userID != b.cfg.AdminUserID {
		b.reply(msg.Chat.ID, "🛠️ **MAINTENANCE MODE!**\n\n**The bot is under maintenance.**")
		return
	}

	account, err := b.ledger.GetOrCreateAccount(ctx, userID)
	if err != nil {
		b.replyStoreDown(msg.Chat.ID, err)
		return
	}

	if account.IsSuspended && account.Role != models.RoleAdmin {
		b.reply(msg.Chat.ID, "⚠️ **ACCOUNT SUSPENDED!** 🚫\n\n**CONTACT ADMIN.**")
		return
	}

	if account.Role != models.RoleAdmin && !b.isChannelMember(userID) {
		keyboard := tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonURL("🔒 JOIN MANDATORY GROUP", b.cfg.GroupJoinLink),
			),
		)
		out := tgbotapi.NewMessage(msg.Chat.ID, "⛔️ **ACCESS REQUIRED!** ⛔️\n\n**YOU MUST JOIN THE GROUP TO USE THE BOT.**")
		out.ReplyMarkup = keyboard
		b.send(out)
		return
	}

	switch command {
	case "num":
		b.handleNum(ctx, msg, account)
	case "balance":
		b.handleBalance(msg.Chat.ID, account)
	case "redeem":
		b.handleRedeem(ctx, msg)
	case "donate", "support", "buyapi":
		b.reply(msg.Chat.ID, "✨ SUPPORT: DM "+b.cfg.SupportContact)
	case "admin":
		b.handleAdminPanel(msg)
	case "gentoken":
		b.handleGenToken(ctx, msg)
	default:
		b.reply(msg.Chat.ID, "Unknown command. Use /num <phone> to search.")
	}
}

func (b *Bot) handleStart(msg *tgbotapi.Message) {
	startText := fmt.Sprintf(`┏━━✨ INFORA PRO ✨━━┓

👋 Hey! I'm your OSINT/Search copilot—fast, precise & private.
📊 ONE TIME FREE TRIAL
• PER searches cost %d credit 💳
• Works in BOT only for privacy 👥🔐

🔎 Basic Lookups
• /num <phone> — 10-digit mobile details
• /balance — credits & free uses left
• /redeem <token> — activate a bonus token

⚡️ Powered by: %s
🌐 Stay Safe • Respect Privacy • Use Responsibly 🚀`, b.cfg.CostPerSearch, b.cfg.SupportContact)

	if b.isChannelMember(msg.From.ID) {
		out := tgbotapi.NewMessage(msg.Chat.ID, startText)
		out.ParseMode = tgbotapi.ModeMarkdown
		out.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("🔎 Try /num", "try_num"),
			),
		)
		b.send(out)
		return
	}

	out := tgbotapi.NewMessage(msg.Chat.ID, "👋 WELCOME TO OSINT BOT! You MUST JOIN THE GROUP to use commands:")
	out.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("🔒 JOIN MANDATORY GROUP", b.cfg.GroupJoinLink),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔎 Try /num", "try_num"),
		),
	)
	b.send(out)
}

// handleNum runs the full metered lookup flow: blocklist first, then the
// atomic charge, then the external lookup, reversing the charge when every
// lookup source fails.
func (b *Bot) handleNum(ctx context.Context, msg *tgbotapi.Message, account *models.UserAccount) {
	phone := strings.TrimSpace(msg.CommandArguments())
	if phone == "" {
		b.reply(msg.Chat.ID, "👉 INPUT MISSING! Use: /num <phone>")
		return
	}
	if fields := strings.Fields(phone); len(fields) > 0 {
		phone = fields[0]
	}

	blocked, err := b.blocklist.IsBlocked(ctx, phone)
	if err != nil {
		b.replyStoreDown(msg.Chat.ID, err)
		return
	}
	if blocked {
		b.appendAudit(ctx, models.SearchLogEntry{
			UserID:         msg.From.ID,
			Target:         phone,
			OutcomeSummary: "blocked_check",
			WasBlocked:     true,
		})
		b.reply(msg.Chat.ID, "🚫 This number is blocked from searches.")
		return
	}

	charge, err := b.ledger.EvaluateAndCharge(ctx, msg.From.ID, b.cfg.CostPerSearch, b.cfg.FreeTrialLimit, b.cfg.SearchCooldown, time.Now())
	if err != nil {
		b.replyStoreDown(msg.Chat.ID, err)
		return
	}
	if !charge.Allowed {
		b.replyChargeDenied(msg.Chat.ID, charge)
		return
	}

	if charge.ChargeType != services.ChargeAdminExempt {
		if updated, err := b.ledger.GetAccount(ctx, msg.From.ID); err == nil && updated != nil {
			freeLeft := b.cfg.FreeTrialLimit - updated.TrialUsed
			if freeLeft < 0 {
				freeLeft = 0
			}
			b.reply(msg.Chat.ID, fmt.Sprintf("💳 Transaction processed. COST: %d TK. BALANCE: %d TK. FREE LEFT: %d.",
				charge.Cost, updated.Balance, freeLeft))
		}
	}

	b.reply(msg.Chat.ID, fmt.Sprintf("🔎 Searching for: `%s`", phone))

	result, err := b.lookup.LookupNumber(ctx, phone)
	if err != nil {
		// Charge first, lookup second: a fully failed lookup refunds the
		// charge with the inverse increment.
		if revErr := b.ledger.ReverseCharge(ctx, msg.From.ID, charge.ChargeType, charge.Cost); revErr != nil {
			log.Printf("charge reversal failed for user %d (%s, cost %d): %v",
				msg.From.ID, charge.ChargeType, charge.Cost, revErr)
		}
		b.appendAudit(ctx, models.SearchLogEntry{
			UserID:         msg.From.ID,
			Target:         phone,
			OutcomeSummary: "lookup_failed_refunded",
		})
		b.reply(msg.Chat.ID, "❌ API error. Please try again later.")
		return
	}

	filename, content := services.BuildNumberReport(result)
	b.sendDocument(msg.Chat.ID, filename, content, "✅ Report generated for phone number.")

	b.appendAudit(ctx, models.SearchLogEntry{
		UserID:         msg.From.ID,
		Target:         phone,
		OutcomeSummary: services.OutcomeSummary(result),
		CostCharged:    charge.Cost,
	})
}

func (b *Bot) handleBalance(chatID int64, account *models.UserAccount) {
	freeLeft := b.cfg.FreeTrialLimit - account.TrialUsed
	if freeLeft < 0 {
		freeLeft = 0
	}
	b.reply(chatID, fmt.Sprintf("💰 BALANCE: %d TK\nBONUS SEARCHES: %d\nFREE USES LEFT: %d",
		account.Balance, account.BonusCount, freeLeft))
}

func (b *Bot) handleRedeem(ctx context.Context, msg *tgbotapi.Message) {
	token := strings.TrimSpace(msg.CommandArguments())
	if token == "" {
		b.reply(msg.Chat.ID, "👉 INPUT MISSING! Use: /redeem <token>")
		return
	}

	result, err := b.tokens.Redeem(ctx, token, msg.From.ID)
	if err != nil {
		b.replyStoreDown(msg.Chat.ID, err)
		return
	}

	switch result.Status {
	case services.RedeemSuccess:
		b.reply(msg.Chat.ID, fmt.Sprintf("🎁 Token activated! %d bonus searches added.", result.CreditGranted))
	case services.RedeemAlreadyUsed:
		b.reply(msg.Chat.ID, "⚠️ This token has already been used.")
	default:
		b.reply(msg.Chat.ID, "❌ Invalid or expired token.")
	}
}

func (b *Bot) handleText(ctx context.Context, msg *tgbotapi.Message) {
	b.handleAdminText(ctx, msg)
}

func (b *Bot) replyChargeDenied(chatID int64, charge services.ChargeResult) {
	switch charge.Reason {
	case services.DenyCooldownActive:
		status := services.CooldownStatus{Remaining: charge.RemainingCooldown}
		b.reply(chatID, fmt.Sprintf("⏱️ Please wait %ds before next search.", status.RemainingSeconds()))
	case services.DenyAccountSuspended:
		b.reply(chatID, "⚠️ **ACCOUNT SUSPENDED!** 🚫\n\n**CONTACT ADMIN.**")
	default:
		b.reply(chatID, fmt.Sprintf(`⚠️ **INSUFFICIENT BALANCE!**

**YOU HAVE USED YOUR %d FREE SEARCH.**
**RECHARGE MINIMUM ₹%d TO CONTINUE.**
CONTACT: %s`, b.cfg.FreeTrialLimit, b.cfg.MinRecharge, b.cfg.SupportContact))
	}
}

func (b *Bot) isChannelMember(userID int64) bool {
	member, err := b.api.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
			ChatID: b.cfg.MandatoryChannelID,
			UserID: userID,
		},
	})
	if err != nil {
		log.Printf("Membership check error: %v", err)
		return false
	}
	switch member.Status {
	case "member", "administrator", "creator":
		return true
	}
	return false
}

// appendAudit writes the audit row and mirrors it to the ops log stream.
func (b *Bot) appendAudit(ctx context.Context, entry models.SearchLogEntry) {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	if err := b.auditLog.Append(ctx, entry); err != nil {
		log.Printf("audit log append failed: %v", err)
		return
	}
	b.stream.Broadcast(entry)
}

func (b *Bot) reply(chatID int64, text string) {
	out := tgbotapi.NewMessage(chatID, text)
	out.ParseMode = tgbotapi.ModeMarkdown
	out.DisableWebPagePreview = true
	b.send(out)
}

func (b *Bot) replyStoreDown(chatID int64, err error) {
	log.Printf("store error: %v", err)
	b.reply(chatID, "⚠️ Temporary issue on our side. Please try again in a moment.")
}

// sendDocument attaches content as a text file; falls back to a plain
// message when the upload fails.
func (b *Bot) sendDocument(chatID int64, filename, content, caption string) {
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: filename, Bytes: []byte(content)})
	doc.Caption = caption
	if _, err := b.api.Send(doc); err != nil {
		log.Printf("Error sending document: %v", err)
		b.reply(chatID, caption+"\n\nReport attached but failed to send file.")
	}
}

func (b *Bot) send(c tgbotapi.Chattable) {
	if _, err := b.api.Send(c); err != nil {
		log.Printf("Telegram send error: %v", err)
	}
}
