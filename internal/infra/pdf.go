package infra

// pdf.go — closing-report generation using go-pdf/fpdf.
// One A4 page per closed session:
//   - Session header (operator, opened/closed timestamps)
//   - Totals per payment method
//   - Manual movement list with signed values
//   - Expected drawer cash, bold
//
// The output file is saved to storagePath/fechamento_{sessao}.pdf.

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/wmakeouthill/Mercearia-R-V-sub001/internal/dto"
	"github.com/wmakeouthill/Mercearia-R-V-sub001/internal/model"

	"github.com/go-pdf/fpdf"
)

// GenerateFechamentoPDF renders the closing report of a session.
// storagePath is created if needed. Returns the absolute path of the file.
func GenerateFechamentoPDF(sessao *dto.SessaoResponse, rec *dto.ReconciliacaoResponse, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	filePath := filepath.Join(storagePath, fmt.Sprintf("fechamento_%s.pdf", sessao.ID))

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 30

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(contentW, 9, "Mercearia R&V", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(contentW, 6, "Relatório de Fechamento de Caixa", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	// ── Session info ─────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, "Sessão: "+sessao.ID, "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 5, "Aberta por: "+sessao.AbertoPorNome+"  em  "+sessao.AbertaEm, "", 1, "L", false, 0, "")
	if sessao.FechadoPorNome != nil && sessao.FechadaEm != nil {
		pdf.CellFormat(contentW, 5, "Fechada por: "+*sessao.FechadoPorNome+"  em  "+*sessao.FechadaEm, "", 1, "L", false, 0, "")
	}
	pdf.Ln(3)
	pdf.Line(15, pdf.GetY(), pageW-15, pdf.GetY())
	pdf.Ln(3)

	// ── Totals per payment method ────────────────────────────────────────────
	col1 := contentW * 0.6
	col2 := contentW * 0.4

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(contentW, 6, "Vendas por forma de pagamento", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	linhas := []struct {
		label string
		valor string
	}{
		{"Dinheiro (líquido de troco)", model.FormatBRL(rec.PorPagamento.Dinheiro)},
		{"Cartão de Crédito", model.FormatBRL(rec.PorPagamento.CartaoCredito)},
		{"Cartão de Débito", model.FormatBRL(rec.PorPagamento.CartaoDebito)},
		{"PIX", model.FormatBRL(rec.PorPagamento.Pix)},
	}
	for _, l := range linhas {
		pdf.CellFormat(col1, 5, l.label, "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 5, l.valor, "", 1, "R", false, 0, "")
	}
	pdf.Ln(3)

	// ── Manual movements ─────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(contentW, 6, "Movimentações manuais", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	if len(rec.Movimentacoes) == 0 {
		pdf.CellFormat(contentW, 5, "Nenhuma movimentação registrada", "", 1, "L", false, 0, "")
	}
	for _, m := range rec.Movimentacoes {
		sinal := "+"
		if m.Tipo == model.MovimentacaoRetirada {
			sinal = "-"
		}
		pdf.CellFormat(col1, 5, m.Descricao+" ("+m.Operador+")", "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 5, sinal+" "+model.FormatBRL(m.Valor), "", 1, "R", false, 0, "")
	}
	pdf.CellFormat(col1, 5, "Total movimentado", "T", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 5, model.FormatBRL(rec.TotalMovimentado), "T", 1, "R", false, 0, "")
	pdf.Ln(4)

	// ── Expected cash ────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(col1, 7, "DINHEIRO ESPERADO NA GAVETA:", "", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 7, model.FormatBRL(rec.DinheiroEsperado), "", 1, "R", false, 0, "")

	if rec.Contagem != nil && rec.Variacao != nil {
		pdf.SetFont("Helvetica", "", 9)
		pdf.CellFormat(col1, 5, "Contagem física:", "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 5, model.FormatBRL(*rec.Contagem), "", 1, "R", false, 0, "")
		pdf.CellFormat(col1, 5, "Variação:", "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 5, model.FormatBRL(*rec.Variacao), "", 1, "R", false, 0, "")
	}

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return filePath, nil
}
