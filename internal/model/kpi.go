package model

// KPIMetrics is the dashboard headline block. Counts come from the store;
// the conversation-derived numbers are fixed demo values until the chat
// pipeline reports real ones.
type KPIMetrics struct {
	TotalLeads           int     `json:"total_leads"`
	LeadsToday           int     `json:"leads_today"`
	LeadsThisWeek        int     `json:"leads_this_week"`
	LeadsThisMonth       int     `json:"leads_this_month"`
	ConversionRate       float64 `json:"conversion_rate"`
	AvgResponseTime      int     `json:"avg_response_time"`
	ActiveConversations  int     `json:"active_conversations"`
	CustomerSatisfaction float64 `json:"customer_satisfaction"`
}
