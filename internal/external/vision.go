package external

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const visionModel = "gemini-2.0-flash"

const receiptPrompt = `You are reading a receipt or invoice for a precious metals purchase.
Extract the purchase details and answer ONLY with a JSON object with these keys:
{
  "vendor": string or null,
  "date": "YYYY-MM-DD" or null,
  "metal": "gold" | "silver" | null,
  "itemName": string or null,
  "weightOzt": number or null,
  "purity": number or null,
  "quantity": number or null,
  "pricePaid": number or null
}
Use null for anything you cannot read. Do not add commentary.`

// ReceiptFields is what the vision model extracts from a purchase receipt.
// Every field is optional: the app pre-fills a form the user can correct.
type ReceiptFields struct {
	Vendor    *string  `json:"vendor"`
	Date      *string  `json:"date"`
	Metal     *string  `json:"metal"`
	ItemName  *string  `json:"itemName"`
	WeightOzt *float64 `json:"weightOzt"`
	Purity    *float64 `json:"purity"`
	Quantity  *float64 `json:"quantity"`
	PricePaid *float64 `json:"pricePaid"`
}

// VisionClient extracts structured fields from receipt images via Gemini.
type VisionClient struct {
	client *genai.Client
}

func NewVisionClient(ctx context.Context, apiKey string) (*VisionClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("init gemini client: %w", err)
	}
	return &VisionClient{client: client}, nil
}

// AnalyzeReceipt sends the image with the extraction prompt and parses the
// JSON answer. Any parse failure fails the whole call; there is no partial
// extraction.
func (v *VisionClient) AnalyzeReceipt(ctx context.Context, image []byte, mimeType string) (*ReceiptFields, error) {
	contents := []*genai.Content{{
		Parts: []*genai.Part{
			{InlineData: &genai.Blob{MIMEType: mimeType, Data: image}},
			{Text: receiptPrompt},
		},
	}}

	resp, err := v.client.Models.GenerateContent(ctx, visionModel, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("empty response from vision model")
	}

	text := stripCodeFences(resp.Candidates[0].Content.Parts[0].Text)

	var fields ReceiptFields
	if err := json.Unmarshal([]byte(text), &fields); err != nil {
		return nil, fmt.Errorf("parse model output: %w", err)
	}
	return &fields, nil
}

// stripCodeFences removes a surrounding markdown code fence, with or without
// a language tag. The model frequently wraps its JSON in one despite the
// prompt.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.Index(s, "\n"); i >= 0 && !strings.ContainsAny(s[:i], "{[") {
		s = s[i+1:] // drop the language tag line, e.g. "json"
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
