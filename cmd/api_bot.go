package main

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/CaioMigueldeSaRodrigues/ai-assistpro/internal/model"
)

func (s *apiServer) handleGetBotConfig(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	botCfg, err := s.store.GetBotConfig(r.Context(), userID)
	if err != nil {
		serverError(w, err)
		return
	}
	if botCfg == nil {
		defaults := model.DefaultBotConfig()
		writeJSON(w, http.StatusOK, defaults)
		return
	}
	writeJSON(w, http.StatusOK, botCfg)
}

func (s *apiServer) handleSaveBotConfig(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var botCfg model.BotConfig
	if !decodeBody(w, r, &botCfg) {
		return
	}
	if botCfg.BotName == "" || botCfg.Company == "" {
		writeError(w, http.StatusBadRequest, "botName and company are required")
		return
	}

	botCfg.UserID = userID
	if err := s.store.UpsertBotConfig(r.Context(), botCfg); err != nil {
		serverError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Configuration saved successfully",
		"config":  botCfg,
	})
}

// handleTestBot simulates the agent's reply for a message using the
// saved configuration.
func (s *apiServer) handleTestBot(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var req struct {
		Message string `json:"message"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	botCfg, err := s.store.GetBotConfig(r.Context(), userID)
	if err != nil {
		serverError(w, err)
		return
	}
	if botCfg == nil {
		writeError(w, http.StatusNotFound, "Bot configuration not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"userMessage": req.Message,
		"botResponse": botReply(botCfg, req.Message),
		"config": map[string]string{
			"personality": botCfg.Personality,
			"tone":        botCfg.Tone,
			"company":     botCfg.Company,
		},
	})
}

// botReply picks a canned response by intent and adjusts it for the
// configured personality.
func botReply(cfg *model.BotConfig, message string) string {
	lower := strings.ToLower(message)

	var response string
	switch {
	case strings.Contains(lower, "olá"), strings.Contains(lower, "oi"):
		response = strings.ReplaceAll(cfg.Messages.Welcome, "{company}", cfg.Company)
	case strings.Contains(lower, "preço"), strings.Contains(lower, "valor"):
		response = "Ótima pergunta! Na " + cfg.Company + ", oferecemos diferentes planos para atender suas necessidades. Gostaria de saber mais sobre nossos preços?"
	case strings.Contains(lower, "demo"), strings.Contains(lower, "demonstração"):
		response = "Ficaria feliz em mostrar como nossa solução pode ajudar a " + cfg.Company + "! Posso agendar uma demonstração personalizada para você."
	default:
		response = "Obrigado por entrar em contato com a " + cfg.Company + "! Como posso ajudar você hoje?"
	}

	switch cfg.Personality {
	case "casual":
		response = strings.ReplaceAll(response, "Obrigado", "Valeu")
		response = strings.ReplaceAll(response, "Gostaria", "Quer")
	case "formal":
		response = strings.ReplaceAll(response, "Oi", "Bom dia")
		response = strings.ReplaceAll(response, "Valeu", "Agradeço")
	}
	return response
}
