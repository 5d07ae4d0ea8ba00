package salesforce

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/CaioMigueldeSaRodrigues/ai-assistpro/internal/model"
)

// leadSourceLabel marks captured records inside Salesforce.
const leadSourceLabel = "CNPJ Capture"

// CRMSink delivers captured leads as Salesforce Lead sObjects. It
// satisfies the sheets.Sink Append contract; lookup is not supported
// because the CRM is not the system of record for captures.
type CRMSink struct {
	client Client
}

// NewCRMSink creates a sink inserting through the given client.
func NewCRMSink(client Client) *CRMSink {
	return &CRMSink{client: client}
}

// Append inserts one Lead sObject per captured lead. Partial failures
// are logged and aggregated into a single error.
func (s *CRMSink) Append(ctx context.Context, leads []model.Lead) error {
	if len(leads) == 0 {
		return nil
	}

	records := make([]map[string]any, len(leads))
	for i, lead := range leads {
		records[i] = leadRecord(lead)
	}

	results, err := s.client.InsertCollection(ctx, "Lead", records)
	if err != nil {
		return err
	}

	failed := 0
	for i, r := range results {
		if !r.Success {
			failed++
			zap.L().Warn("salesforce lead insert failed",
				zap.String("cnpj", leads[i].CNPJ),
				zap.Strings("errors", r.Errors))
		}
	}
	if failed > 0 {
		return eris.Errorf("salesforce: %d of %d lead inserts failed", failed, len(leads))
	}
	return nil
}

// FindByCNPJ is not supported; captures are looked up in the sheet sink.
func (s *CRMSink) FindByCNPJ(_ context.Context, _ string) (*model.Lead, error) {
	return nil, eris.New("salesforce: lead lookup not supported")
}

// leadRecord maps a captured lead onto Lead sObject fields. The company
// name doubles as LastName because Lead requires one.
func leadRecord(lead model.Lead) map[string]any {
	rec := map[string]any{
		"Company":    lead.RazaoSocial,
		"LastName":   lead.RazaoSocial,
		"LeadSource": leadSourceLabel,
		"CNPJ__c":    lead.CNPJ,
	}
	if lead.Email != "" {
		rec["Email"] = lead.Email
	}
	if phone := leadPhone(lead); phone != "" {
		rec["Phone"] = phone
	}
	if lead.UF != "" {
		rec["State"] = lead.UF
	}
	if lead.Municipio != "" {
		rec["City"] = lead.Municipio
	}
	if lead.PorteDaEmpresa != "" {
		rec["Description"] = fmt.Sprintf("Porte: %s / CNAE: %s", lead.PorteDaEmpresa, lead.CNAEFiscalPrincipal)
	}
	return rec
}

// leadPhone prefers the pre-formatted number, falling back to DDD+raw.
func leadPhone(lead model.Lead) string {
	if lead.Telefone1Formatado != "" {
		return lead.Telefone1Formatado
	}
	if lead.Telefone1 == "" {
		return ""
	}
	return strings.TrimSpace(lead.DDD1 + " " + lead.Telefone1)
}
