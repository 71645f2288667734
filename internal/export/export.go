// Package export serializes persona sets to JSON, CSV, and PDF. Pure
// rendering: no store access, no external calls.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/perzonai/persona-engine/internal/models"
)

// Envelope is the JSON export wrapper. ToJSON/FromJSON round-trip every
// persona field losslessly.
type Envelope struct {
	ExportedAt    time.Time        `json:"exportedAt"`
	Version       string           `json:"version"`
	TotalPersonas int              `json:"totalPersonas"`
	Personas      []models.Persona `json:"personas"`
}

const envelopeVersion = "1.0"

// ToJSON renders the personas inside the metadata envelope.
func ToJSON(personas []models.Persona) ([]byte, error) {
	env := Envelope{
		ExportedAt:    time.Now().UTC(),
		Version:       envelopeVersion,
		TotalPersonas: len(personas),
		Personas:      personas,
	}
	return json.MarshalIndent(env, "", "  ")
}

// FromJSON decodes a JSON export back into its persona list.
func FromJSON(data []byte) ([]models.Persona, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode export: %w", err)
	}
	return env.Personas, nil
}

var csvHeader = []string{
	"Name", "Age", "Gender", "Location", "Occupation", "Income",
	"Traits", "Pain Points", "Motivations", "Messaging Tone",
	"Preferred Channels", "Budget Range",
}

// ToCSV renders one quoted row per persona; list fields are joined with
// "; " inside their cells.
func ToCSV(personas []models.Persona) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, p := range personas {
		row := []string{
			p.Name,
			fmt.Sprintf("%d", p.Demographics.Age),
			p.Demographics.Gender,
			p.Demographics.Location,
			p.Demographics.Occupation,
			p.Demographics.Income,
			strings.Join(p.Traits, "; "),
			strings.Join(p.PainPoints, "; "),
			strings.Join(p.Motivations, "; "),
			p.MessagingTone,
			strings.Join(p.PreferredChannels, "; "),
			p.BuyingBehavior.BudgetRange,
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// ToPDF renders a title page followed by one page per persona.
func ToPDF(personas []models.Persona) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(18, 18, 18)

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 24)
	pdf.CellFormat(0, 14, "PerzonAI - Customer Personas", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(0, 10, "Generated on: "+time.Now().Format("January 2, 2006"), "", 1, "C", false, 0, "")

	for _, p := range personas {
		pdf.AddPage()
		writePersonaPage(pdf, p)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func writePersonaPage(pdf *gofpdf.Fpdf, p models.Persona) {
	pdf.SetFont("Helvetica", "B", 20)
	pdf.SetTextColor(233, 30, 99)
	pdf.CellFormat(0, 12, p.Name, "", 1, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)

	section(pdf, "Demographics")
	line(pdf, fmt.Sprintf("Age: %d", p.Demographics.Age))
	line(pdf, "Gender: "+p.Demographics.Gender)
	line(pdf, "Location: "+p.Demographics.Location)
	line(pdf, "Occupation: "+p.Demographics.Occupation)
	line(pdf, "Income: "+p.Demographics.Income)

	section(pdf, "Key Traits")
	bullets(pdf, p.Traits)

	section(pdf, "Pain Points")
	bullets(pdf, p.PainPoints)

	section(pdf, "Goals & Motivations")
	bullets(pdf, append(append([]string{}, p.Goals...), p.Motivations...))

	section(pdf, "Messaging & Communication")
	line(pdf, "Preferred Tone: "+p.MessagingTone)
	line(pdf, "Preferred Channels: "+strings.Join(p.PreferredChannels, ", "))

	section(pdf, "Buying Behavior")
	line(pdf, "Budget Range: "+p.BuyingBehavior.BudgetRange)
	line(pdf, "Purchase Frequency: "+p.BuyingBehavior.PurchaseFrequency)
	line(pdf, "Decision Factors: "+strings.Join(p.BuyingBehavior.DecisionFactors, ", "))

	if len(p.Quotes) > 0 {
		section(pdf, "Typical Quotes")
		pdf.SetFont("Helvetica", "I", 11)
		for _, q := range p.Quotes {
			pdf.MultiCell(0, 6, `"`+q+`"`, "", "L", false)
		}
	}

	if len(p.Campaigns) > 0 {
		section(pdf, "Campaign Recommendations")
		bullets(pdf, p.Campaigns)
	}
}

func section(pdf *gofpdf.Fpdf, title string) {
	pdf.Ln(3)
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 9, title, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
}

func line(pdf *gofpdf.Fpdf, text string) {
	pdf.MultiCell(0, 6, text, "", "L", false)
}

func bullets(pdf *gofpdf.Fpdf, items []string) {
	for _, item := range items {
		pdf.MultiCell(0, 6, "- "+item, "", "L", false)
	}
}
