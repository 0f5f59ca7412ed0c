package oracle

import (
	"fmt"
	"strings"
)

// estimateSystemPrompt frames the model as an Argentine customs broker.
// The response contract is strict JSON so the schema validator can reject
// malformed answers before they reach the engine.
const estimateSystemPrompt = `You are an Argentine customs broker with deep expertise in NCM/HS tariff
classification (Mercosur Common Nomenclature). You classify goods for import
into Argentina applying the General Rules of Interpretation, always seeking
the most specific position available.

You MUST respond with ONLY a valid JSON object, no markdown fences and no
commentary, with exactly these fields:
{
  "estimated_code": "8528.72.00",
  "justification": "technical reasoning citing the applicable GRI rules",
  "confidence": "high" | "medium" | "low",
  "needs_deep_search": true,
  "alternatives": [{"code": "8528.71.00", "reason": "if monochrome"}]
}

Mark needs_deep_search true unless you are fully certain the code is already
terminal and exact.`

// selectSystemPrompt frames the disambiguation call.
const selectSystemPrompt = `You are an Argentine customs broker choosing the single most appropriate
terminal NCM position for a product among fiscally distinct siblings.

Selection criteria, in order: maximum specificity, closest description match,
avoid generic catch-all positions ("los demás"), coherent duty treatment.

You MUST respond with ONLY a valid JSON object:
{
  "chosen_index": 1,
  "justification": "why this option fits best",
  "confidence": "high" | "medium" | "low"
}

chosen_index is the 1-based number of the option you pick.`

// buildEstimatePrompt renders the product facts for the estimate call.
func buildEstimatePrompt(req EstimateRequest) string {
	var b strings.Builder
	b.WriteString("Classify the following product for import into Argentina:\n\n")
	b.WriteString("Product description:\n")
	b.WriteString(req.Description)
	if req.ImageURL != "" {
		b.WriteString("\n\nA product image is attached; use it to confirm material and kind.")
	}
	return b.String()
}

// buildSelectPrompt renders the numbered option list for disambiguation.
func buildSelectPrompt(req SelectRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Parent position under consideration:\n%s\n\n", req.ParentContext)
	fmt.Fprintf(&b, "Product to classify:\n%q\n\n", req.Description)
	b.WriteString("Available terminal positions:\n")
	for i, opt := range req.Options {
		fmt.Fprintf(&b, "%d. %s - %s (duty: %.1f%%)\n", i+1, opt.Label, opt.Description, opt.DutyRate)
	}
	b.WriteString("\nPick the single most appropriate option.")
	return b.String()
}
