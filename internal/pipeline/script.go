package pipeline

import (
	"context"
	"fmt"
	"strings"

	"vidx/internal/logging"
	"vidx/internal/services"
	"vidx/internal/services/openai"
)

// ScriptResult is the output of the script stage.
type ScriptResult struct {
	Text              string
	WordCount         int
	EstimatedDuration float64
	Cost              float64
}

const (
	systemPromptRO = "Ești un copywriter pentru un marketplace online. Scrii texte scurte și naturale pentru reclame video vorbite."
	systemPromptEN = "You are a copywriter for an online marketplace. You write short, natural scripts for spoken video ads."
)

// generateScript turns the product context into short ad copy and estimates
// how long it takes to read aloud.
func (p *Pipeline) generateScript(ctx context.Context, product ProductContext) (ScriptResult, error) {
	logger := logging.WithContext(ctx, p.logger)

	result, err := p.chat.CreateChatCompletion(ctx, openai.ChatRequest{
		Model:       p.cfg.OpenAI.ChatModel,
		Messages:    buildScriptMessages(product, p.cfg.Script.MaxWords),
		Temperature: float64(p.cfg.Script.TemperaturePct) / 100,
		MaxTokens:   p.cfg.Script.MaxOutputTokens,
	})
	if err != nil {
		return ScriptResult{}, services.Wrap(services.ErrGeneration, "script", "generate", "chat completion failed", err)
	}

	text := strings.TrimSpace(result.Content)
	wordCount := len(strings.Fields(text))
	if wordCount == 0 {
		return ScriptResult{}, services.Wrap(services.ErrGeneration, "script", "generate", "generator returned no words", nil)
	}

	duration := p.estimateSpokenDuration(wordCount, product.NormalizedLanguage())
	logger.Info("script generated",
		logging.Int("word_count", wordCount),
		logging.Float64("estimated_duration_sec", duration),
		logging.Int("completion_tokens", result.Usage.CompletionTokens))

	return ScriptResult{
		Text:              text,
		WordCount:         wordCount,
		EstimatedDuration: duration,
		Cost:              scriptCost(),
	}, nil
}

// estimateSpokenDuration converts a word count to seconds using the
// per-language speaking rate plus a fixed lead-in/lead-out buffer.
func (p *Pipeline) estimateSpokenDuration(wordCount int, lang string) float64 {
	wpm := p.cfg.Script.WordsPerMinuteEN
	if lang == "ro" {
		wpm = p.cfg.Script.WordsPerMinuteRO
	}
	if wpm <= 0 {
		wpm = 150
	}
	return float64(wordCount)/float64(wpm)*60 + float64(p.cfg.Script.DurationBufferSec)
}

func buildScriptMessages(product ProductContext, maxWords int) []openai.ChatMessage {
	if maxWords <= 0 {
		maxWords = 90
	}
	if product.NormalizedLanguage() == "ro" {
		return []openai.ChatMessage{
			{Role: "system", Content: systemPromptRO},
			{Role: "user", Content: buildUserPromptRO(product, maxWords)},
		}
	}
	return []openai.ChatMessage{
		{Role: "system", Content: systemPromptEN},
		{Role: "user", Content: buildUserPromptEN(product, maxWords)},
	}
}

func buildUserPromptRO(product ProductContext, maxWords int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Scrie un scenariu de reclamă video pentru următorul anunț:\n\n")
	fmt.Fprintf(&b, "Titlu: %s\n", product.Title)
	if product.Category != "" {
		fmt.Fprintf(&b, "Categorie: %s\n", product.Category)
	}
	if product.Price > 0 {
		fmt.Fprintf(&b, "Preț: %.0f lei\n", product.Price)
	}
	fmt.Fprintf(&b, "Descriere: %s\n", product.Description)
	if lines := product.detailLines(); len(lines) != 0 {
		fmt.Fprintf(&b, "Detalii:\n%s\n", strings.Join(lines, "\n"))
	}
	fmt.Fprintf(&b, "\nReguli:\n")
	fmt.Fprintf(&b, "- Folosește doar informațiile de mai sus, nu inventa caracteristici.\n")
	fmt.Fprintf(&b, "- Maxim %d de cuvinte, potrivit pentru aproximativ 30 de secunde de vorbire.\n", maxWords)
	fmt.Fprintf(&b, "- Ton prietenos și natural, fără exagerări de vânzare.\n")
	fmt.Fprintf(&b, "- Încheie cu o propoziție simplă de final, fără îndemnuri agresive.\n")
	fmt.Fprintf(&b, "- Răspunde doar cu textul scenariului, fără titluri sau explicații.")
	return b.String()
}

func buildUserPromptEN(product ProductContext, maxWords int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write a video ad script for the following listing:\n\n")
	fmt.Fprintf(&b, "Title: %s\n", product.Title)
	if product.Category != "" {
		fmt.Fprintf(&b, "Category: %s\n", product.Category)
	}
	if product.Price > 0 {
		fmt.Fprintf(&b, "Price: %.0f\n", product.Price)
	}
	fmt.Fprintf(&b, "Description: %s\n", product.Description)
	if lines := product.detailLines(); len(lines) != 0 {
		fmt.Fprintf(&b, "Details:\n%s\n", strings.Join(lines, "\n"))
	}
	fmt.Fprintf(&b, "\nRules:\n")
	fmt.Fprintf(&b, "- Use only the facts above, do not invent features.\n")
	fmt.Fprintf(&b, "- At most %d words, suitable for roughly 30 seconds of speech.\n", maxWords)
	fmt.Fprintf(&b, "- Friendly, natural tone without hard-sell language.\n")
	fmt.Fprintf(&b, "- End with one plain closing sentence, no aggressive call to action.\n")
	fmt.Fprintf(&b, "- Reply with the script text only, no headings or explanations.")
	return b.String()
}
