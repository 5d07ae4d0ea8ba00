// Package sheets delivers captured leads to a spreadsheet-shaped sink:
// a local XLSX workbook or a webhook that feeds one.
package sheets

import (
	"context"

	"github.com/CaioMigueldeSaRodrigues/ai-assistpro/internal/model"
)

// Sink receives qualified leads from the capture job.
type Sink interface {
	// Append adds the leads to the sink, stamping the capture time.
	Append(ctx context.Context, leads []model.Lead) error
	// FindByCNPJ looks up a previously captured lead. Returns nil when
	// the lead is not present.
	FindByCNPJ(ctx context.Context, cnpj string) (*model.Lead, error)
}

// columns is the sheet header, in order. The final column is the capture
// timestamp, stamped at append time.
var columns = []string{
	"cnpj",
	"data_inicio_atividade",
	"cnae_fiscal_principal",
	"uf",
	"municipio",
	"razao_social",
	"porte_da_empresa",
	"cep",
	"ddd_1",
	"telefone_1",
	"ddd_2",
	"telefone_2",
	"email",
	"cep_formatado",
	"telefone1_formatado",
	"telefone2_formatado",
	"telefones",
	"data_captura",
}

// leadCells flattens a lead into the column order, minus data_captura.
func leadCells(l model.Lead) []string {
	return []string{
		l.CNPJ,
		l.DataInicioAtividade,
		l.CNAEFiscalPrincipal,
		l.UF,
		l.Municipio,
		l.RazaoSocial,
		l.PorteDaEmpresa,
		l.CEP,
		l.DDD1,
		l.Telefone1,
		l.DDD2,
		l.Telefone2,
		l.Email,
		l.CEPFormatado,
		l.Telefone1Formatado,
		l.Telefone2Formatado,
		l.Telefones,
	}
}

// leadFromCells rebuilds a lead from a sheet row.
func leadFromCells(cells []string) model.Lead {
	at := func(i int) string {
		if i < len(cells) {
			return cells[i]
		}
		return ""
	}
	return model.Lead{
		CNPJ:                at(0),
		DataInicioAtividade: at(1),
		CNAEFiscalPrincipal: at(2),
		UF:                  at(3),
		Municipio:           at(4),
		RazaoSocial:         at(5),
		PorteDaEmpresa:      at(6),
		CEP:                 at(7),
		DDD1:                at(8),
		Telefone1:           at(9),
		DDD2:                at(10),
		Telefone2:           at(11),
		Email:               at(12),
		CEPFormatado:        at(13),
		Telefone1Formatado:  at(14),
		Telefone2Formatado:  at(15),
		Telefones:           at(16),
	}
}
