package assistant

import (
	"context"
	"fmt"
	"strings"

	"github.com/rendimo/rendimo/pkg/listing"
	"github.com/rendimo/rendimo/pkg/market"
	"github.com/rendimo/rendimo/pkg/yield"
)

const systemPrompt = `Tu es Rendimo, un assistant spécialisé dans l'investissement immobilier locatif en France.

Ton rôle :
- analyser des annonces immobilières et leur rentabilité locative
- expliquer les calculs financiers simplement (rendement brut, cash-flow)
- répondre aux questions sur le marché, la fiscalité et le financement immobilier

Règles :
- réponds en français, de façon concise et concrète
- appuie-toi d'abord sur les données du bien fournies dans le contexte
- quand une donnée manque, dis-le plutôt que d'inventer`

// Assistant holds a conversation about one listing. The listing context is
// rebuilt into the system turn on every request; the record itself is never
// modified.
type Assistant struct {
	provider    Provider
	temperature float64
	maxTokens   int
	context     string
	history     []Message
}

// AssistantOption configures an Assistant.
type AssistantOption func(*Assistant)

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) AssistantOption {
	return func(a *Assistant) { a.temperature = t }
}

// WithMaxTokens bounds each reply.
func WithMaxTokens(n int) AssistantOption {
	return func(a *Assistant) { a.maxTokens = n }
}

// New creates an assistant over the given provider.
func New(p Provider, opts ...AssistantOption) *Assistant {
	a := &Assistant{
		provider:    p,
		temperature: 0.2,
		maxTokens:   1024,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// SetListing attaches the extracted record, and optionally its yield and
// market analysis, as conversational context. Passing nil values clears the
// corresponding block.
func (a *Assistant) SetListing(rec *listing.Record, yld *yield.Result, cmp *market.Comparison) {
	a.context = contextBlock(rec, yld, cmp)
}

// Ask sends a question and returns the reply. The exchange is kept so
// follow-up questions see prior turns.
func (a *Assistant) Ask(ctx context.Context, question string) (string, error) {
	system := systemPrompt
	if a.context != "" {
		system += "\n\nContexte du bien analysé :\n" + a.context
	}

	messages := make([]Message, 0, len(a.history)+2)
	messages = append(messages, Message{Role: RoleSystem, Content: system})
	messages = append(messages, a.history...)
	messages = append(messages, Message{Role: RoleUser, Content: question})

	resp, err := a.provider.Execute(ctx, Request{
		Messages:    messages,
		MaxTokens:   a.maxTokens,
		Temperature: a.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("assistant: %w", err)
	}

	a.history = append(a.history,
		Message{Role: RoleUser, Content: question},
		Message{Role: RoleAssistant, Content: resp.Content},
	)
	return resp.Content, nil
}

// Reset clears the conversation history, keeping the listing context.
func (a *Assistant) Reset() {
	a.history = nil
}

// contextBlock renders the known facts about the listing as a compact
// key/value block for the system prompt.
func contextBlock(rec *listing.Record, yld *yield.Result, cmp *market.Comparison) string {
	if rec == nil {
		return ""
	}

	var b strings.Builder
	add := func(label, value string) {
		if value != "" {
			fmt.Fprintf(&b, "- %s : %s\n", label, value)
		}
	}

	add("Titre", rec.Title)
	add("Type de bien", rec.PropertyType)
	add("Ville", rec.City)
	add("Code postal", rec.PostalCode)
	if rec.Price != nil {
		add("Prix", fmt.Sprintf("%.0f €", *rec.Price))
	}
	if rec.Surface != nil {
		add("Surface", fmt.Sprintf("%.0f m²", *rec.Surface))
	}
	if rec.Rooms != nil {
		add("Pièces", fmt.Sprintf("%d", *rec.Rooms))
	}
	if rec.Bedrooms != nil {
		add("Chambres", fmt.Sprintf("%d", *rec.Bedrooms))
	}
	if rec.PricePerSqm != nil {
		add("Prix au m²", fmt.Sprintf("%.0f €/m²", *rec.PricePerSqm))
	}
	add("Classe énergie", rec.EnergyClass)
	add("GES", rec.GESClass)
	if rec.YearBuilt != nil {
		add("Année de construction", fmt.Sprintf("%d", *rec.YearBuilt))
	}

	if yld != nil {
		add("Rentabilité brute", fmt.Sprintf("%.2f %% (%s)", yld.GrossYield, yld.Rating))
		add("Loyer mensuel estimé", fmt.Sprintf("%.0f €", yld.MonthlyRent))
	}
	if cmp != nil {
		add("Prix marché local", fmt.Sprintf("%.0f €/m²", cmp.MarketPricePerSqm))
		add("Écart au marché", fmt.Sprintf("%+.1f %% (%s)", cmp.PercentDifference, cmp.Verdict))
	}

	return strings.TrimRight(b.String(), "\n")
}
