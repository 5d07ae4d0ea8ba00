package model

import "time"

// DayHours is one weekday's window in a bot working-hours config.
type DayHours struct {
	Start   string `json:"start"`
	End     string `json:"end"`
	Enabled bool   `json:"enabled"`
}

// WorkingHours is the per-weekday availability attached to a bot.
type WorkingHours struct {
	Enabled   bool     `json:"enabled"`
	Timezone  string   `json:"timezone"`
	Monday    DayHours `json:"monday"`
	Tuesday   DayHours `json:"tuesday"`
	Wednesday DayHours `json:"wednesday"`
	Thursday  DayHours `json:"thursday"`
	Friday    DayHours `json:"friday"`
	Saturday  DayHours `json:"saturday"`
	Sunday    DayHours `json:"sunday"`
}

// BusinessRules toggles the bot's conversation behaviors.
type BusinessRules struct {
	MaxConversationTime int  `json:"maxConversationTime"`
	TransferToHuman     bool `json:"transferToHuman"`
	CollectLeadInfo     bool `json:"collectLeadInfo"`
	SendFollowUp        bool `json:"sendFollowUp"`
	AutoQualifyLeads    bool `json:"autoQualifyLeads"`
}

// Integrations marks which channels the bot is connected to.
type Integrations struct {
	WhatsApp bool `json:"whatsapp"`
	Telegram bool `json:"telegram"`
	Webchat  bool `json:"webchat"`
	Email    bool `json:"email"`
}

// BotMessages holds the canned responses for lifecycle events.
// The {company} placeholder is substituted at send time.
type BotMessages struct {
	Welcome  string `json:"welcome"`
	Offline  string `json:"offline"`
	Transfer string `json:"transfer"`
	Goodbye  string `json:"goodbye"`
}

// BotConfig is the per-user virtual agent configuration.
type BotConfig struct {
	UserID        string        `json:"-"`
	BotName       string        `json:"botName"`
	Company       string        `json:"company"`
	Industry      string        `json:"industry"`
	Description   string        `json:"description"`
	Personality   string        `json:"personality"`
	Tone          string        `json:"tone"`
	Language      string        `json:"language"`
	WorkingHours  WorkingHours  `json:"workingHours"`
	BusinessRules BusinessRules `json:"businessRules"`
	Integrations  Integrations  `json:"integrations"`
	Messages      BotMessages   `json:"messages"`
	UpdatedAt     time.Time     `json:"-"`
}

// DefaultBotConfig returns the configuration served before a user saves one.
func DefaultBotConfig() BotConfig {
	week := DayHours{Start: "09:00", End: "18:00", Enabled: true}
	weekend := DayHours{Start: "09:00", End: "14:00", Enabled: false}
	return BotConfig{
		BotName:     "Assistente IA",
		Company:     "Minha Empresa",
		Industry:    "tecnologia",
		Description: "Somos uma empresa focada em soluções inovadoras.",
		Personality: "profissional",
		Tone:        "amigavel",
		Language:    "pt-BR",
		WorkingHours: WorkingHours{
			Enabled:   true,
			Timezone:  "America/Sao_Paulo",
			Monday:    week,
			Tuesday:   week,
			Wednesday: week,
			Thursday:  week,
			Friday:    week,
			Saturday:  weekend,
			Sunday:    weekend,
		},
		BusinessRules: BusinessRules{
			MaxConversationTime: 30,
			TransferToHuman:     true,
			CollectLeadInfo:     true,
			SendFollowUp:        true,
			AutoQualifyLeads:    true,
		},
		Integrations: Integrations{WhatsApp: true, Webchat: true, Email: true},
		Messages: BotMessages{
			Welcome:  "Olá! Sou o assistente virtual da {company}. Como posso ajudar você hoje?",
			Offline:  "No momento estamos offline. Deixe sua mensagem que retornaremos em breve!",
			Transfer: "Vou transferir você para um de nossos especialistas. Um momento, por favor.",
			Goodbye:  "Foi um prazer ajudar você! Tenha um ótimo dia!",
		},
	}
}
