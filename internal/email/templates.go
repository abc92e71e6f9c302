package email

import (
	"fmt"
	"strings"

	"festarent/internal/models"
)

func formatCentavos(cents int64) string {
	reais := cents / 100
	rest := cents % 100
	if rest < 0 {
		rest = -rest
	}
	return fmt.Sprintf("R$ %d,%02d", reais, rest)
}

func (s *Service) generateConfirmationText(client *models.Client, party *models.Party) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Olá %s,\n\n", client.Name)
	fmt.Fprintf(&b, "Sua festa foi confirmada!\n\n")
	fmt.Fprintf(&b, "Data: %s\n", party.PartyDate)
	fmt.Fprintf(&b, "Início: %s\n", party.StartTime)
	fmt.Fprintf(&b, "Montagem: %s\n", party.AssemblyTime)
	fmt.Fprintf(&b, "Desmontagem: %s\n", party.DisassemblyTime)
	fmt.Fprintf(&b, "Valor total: %s\n", formatCentavos(party.TotalCents))
	fmt.Fprintf(&b, "Entrada: %s\n\n", formatCentavos(party.EntryCents))
	fmt.Fprintf(&b, "Qualquer dúvida, responda este email.\n\n%s\n", s.senderName)

	return b.String()
}

func (s *Service) generateConfirmationHTML(client *models.Client, party *models.Party) string {
	var b strings.Builder

	b.WriteString(`<html><body style="font-family: sans-serif; color: #222;">`)
	fmt.Fprintf(&b, "<p>Olá <strong>%s</strong>,</p>", client.Name)
	b.WriteString("<p>Sua festa foi confirmada!</p><table cellpadding=\"4\">")
	fmt.Fprintf(&b, "<tr><td>Data</td><td><strong>%s</strong></td></tr>", party.PartyDate)
	fmt.Fprintf(&b, "<tr><td>Início</td><td>%s</td></tr>", party.StartTime)
	fmt.Fprintf(&b, "<tr><td>Montagem</td><td>%s</td></tr>", party.AssemblyTime)
	fmt.Fprintf(&b, "<tr><td>Desmontagem</td><td>%s</td></tr>", party.DisassemblyTime)
	fmt.Fprintf(&b, "<tr><td>Valor total</td><td>%s</td></tr>", formatCentavos(party.TotalCents))
	fmt.Fprintf(&b, "<tr><td>Entrada</td><td>%s</td></tr>", formatCentavos(party.EntryCents))
	b.WriteString("</table>")
	fmt.Fprintf(&b, "<p>Qualquer dúvida, responda este email.</p><p>%s</p>", s.senderName)
	b.WriteString("</body></html>")

	return b.String()
}
