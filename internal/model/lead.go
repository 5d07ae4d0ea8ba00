// Package model defines the domain types shared across the backend.
package model

// Lead is a prospective business record sourced from the analytical lead
// query. Field names mirror the public CNPJ registry columns; the scorer
// treats the record as read-only.
type Lead struct {
	CNPJ                string `json:"cnpj"`
	RazaoSocial         string `json:"razao_social"`
	PorteDaEmpresa      string `json:"porte_da_empresa,omitempty"`
	Email               string `json:"email,omitempty"`
	Telefone1           string `json:"telefone_1,omitempty"`
	Telefone2           string `json:"telefone_2,omitempty"`
	CNAEFiscalPrincipal string `json:"cnae_fiscal_principal"`
	UF                  string `json:"uf"`
	Municipio           string `json:"municipio,omitempty"`
	// DataInicioAtividade is the incorporation date as YYYY-MM-DD.
	DataInicioAtividade string `json:"data_inicio_atividade"`

	CEP                 string `json:"cep,omitempty"`
	DDD1                string `json:"ddd_1,omitempty"`
	DDD2                string `json:"ddd_2,omitempty"`
	CEPFormatado        string `json:"cep_formatado,omitempty"`
	Telefone1Formatado  string `json:"telefone1_formatado,omitempty"`
	Telefone2Formatado  string `json:"telefone2_formatado,omitempty"`
	Telefones           string `json:"telefones,omitempty"`
}

// CaptureConfig parameterizes one lead-capture query against the
// analytical source.
type CaptureConfig struct {
	CNAE       string `json:"cnae"`
	WindowDays int    `json:"window_days"`
	UFFilter   string `json:"uf_filter,omitempty"`
	Limit      int    `json:"limit"`
}

// LeadStats aggregates lead counts for a CNAE over a trailing window.
type LeadStats struct {
	TotalLeads  int `json:"total_leads"`
	StatesCount int `json:"states_count"`
	CitiesCount int `json:"cities_count"`
}
