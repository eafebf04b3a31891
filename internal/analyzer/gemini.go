package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/mkessler/ablage/internal/models"
)

const defaultModel = "gemini-2.0-flash"

const analyzePrompt = `You are a document archiving assistant. Analyze the attached personal
document and answer with a single JSON object, no markdown fences:
{
  "title": "...",
  "category": "...",
  "subCategory": "...",
  "date": "YYYY-MM-DD",
  "summary": "one or two sentences",
  "isTaxRelevant": false,
  "salaryData": {"year":0,"month":0,"netIncome":0,"grossIncome":0,"deductions":{}},
  "dailyExpenseData": {"date":"YYYY-MM-DD","merchant":"","amount":0,"currency":"EUR"},
  "taxData": {"desc":"","amount":0,"currency":"EUR","year":0}
}
Omit salaryData, dailyExpenseData and taxData entirely when they do not
apply to the document.`

// Gemini implements Analyzer on top of the Google generative AI API.
type Gemini struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGemini creates a Gemini analyzer. modelName may be empty.
func NewGemini(ctx context.Context, apiKey, modelName string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("analyzer: api key is empty")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("analyzer: create client: %w", err)
	}
	if modelName == "" {
		modelName = defaultModel
	}
	model := client.GenerativeModel(modelName)
	model.SetTemperature(0.1)
	return &Gemini{client: client, model: model}, nil
}

// Close releases the underlying client.
func (g *Gemini) Close() error {
	return g.client.Close()
}

// Analyze sends the document bytes to the model and parses the JSON answer
// into a validated Result.
func (g *Gemini) Analyze(ctx context.Context, data []byte, filename string) (*Result, error) {
	mimeType := mime.TypeByExtension(filepath.Ext(filename))
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	resp, err := g.model.GenerateContent(ctx,
		genai.Blob{MIMEType: mimeType, Data: data},
		genai.Text(analyzePrompt),
	)
	if err != nil {
		return nil, fmt.Errorf("analyzer: generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, nil
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	return parseWire(sb.String())
}

// Wire types mirror the model's JSON answer; everything is optional and
// validated before it becomes a Result.
type wireResult struct {
	Title            string       `json:"title"`
	Category         string       `json:"category"`
	SubCategory      string       `json:"subCategory"`
	Date             string       `json:"date"`
	Summary          string       `json:"summary"`
	IsTaxRelevant    bool         `json:"isTaxRelevant"`
	SalaryData       *wireSalary  `json:"salaryData"`
	DailyExpenseData *wireExpense `json:"dailyExpenseData"`
	TaxData          *wireTax     `json:"taxData"`
}

type wireSalary struct {
	Year        int                `json:"year"`
	Month       int                `json:"month"`
	NetIncome   float64            `json:"netIncome"`
	GrossIncome float64            `json:"grossIncome"`
	Deductions  map[string]float64 `json:"deductions"`
}

type wireExpense struct {
	Date     string  `json:"date"`
	Merchant string  `json:"merchant"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

type wireTax struct {
	Desc     string  `json:"desc"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	Year     int     `json:"year"`
}

// parseWire validates the raw model answer and builds the tagged facts.
// Unusable payloads are dropped rather than propagated.
func parseWire(raw string) (*Result, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")

	var w wireResult
	if err := json.Unmarshal([]byte(raw), &w); err != nil {
		return nil, fmt.Errorf("analyzer: parse answer: %w", err)
	}

	res := &Result{
		Title:       strings.TrimSpace(w.Title),
		Summary:     strings.TrimSpace(w.Summary),
		SubCategory: strings.TrimSpace(w.SubCategory),
		TaxRelevant: w.IsTaxRelevant,
	}
	// An absent category keeps the built-in classifier in charge.
	if strings.TrimSpace(w.Category) != "" {
		res.Category = models.CustomCategory(w.Category)
	}
	if d, err := time.Parse("2006-01-02", w.Date); err == nil {
		res.Date = d
	}

	if s := w.SalaryData; s != nil && s.Year > 0 && s.Month >= 1 && s.Month <= 12 {
		res.Facts = append(res.Facts, SalaryFact{
			Year:        s.Year,
			Month:       s.Month,
			NetIncome:   s.NetIncome,
			GrossIncome: s.GrossIncome,
			Deductions:  s.Deductions,
		})
	}
	if e := w.DailyExpenseData; e != nil && e.Amount > 0 {
		fact := ExpenseFact{Merchant: strings.TrimSpace(e.Merchant), Amount: e.Amount, Currency: e.Currency}
		if d, err := time.Parse("2006-01-02", e.Date); err == nil {
			fact.Date = d
		}
		res.Facts = append(res.Facts, fact)
	}
	if t := w.TaxData; t != nil && t.Amount > 0 {
		res.Facts = append(res.Facts, TaxFact{
			Description: strings.TrimSpace(t.Desc),
			Amount:      t.Amount,
			Currency:    t.Currency,
			Year:        t.Year,
		})
	}
	return res, nil
}
