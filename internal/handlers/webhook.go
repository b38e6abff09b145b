package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Webhook is the HTTP entry point Telegram posts updates to.
func (b *Bot) Webhook(w http.ResponseWriter, r *http.Request) {
	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		log.Printf("webhook decode error: %v", err)
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	b.HandleUpdate(update)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// WebhookStatus answers GETs on the webhook path so deploy checks see the
// bot is alive.
func (b *Bot) WebhookStatus(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("INFORA-PRO Bot is running (webhook)."))
}
