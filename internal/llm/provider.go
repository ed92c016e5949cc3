package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/ppiankov/casefile/internal/model"
)

// Provider defines the interface for generative-text providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Analyze sends the case to the model and returns its raw reply.
	// The reply is untrusted text; callers repair and normalize it.
	Analyze(ctx context.Context, req AnalyzeRequest) (*AnalyzeResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// AnalyzeRequest contains the input for one analysis call
type AnalyzeRequest struct {
	// Inputs is the narrative and optional context the user typed in
	Inputs model.CaseInputs

	// History holds earlier turns, oldest first
	History []model.ChatMessage

	// Prompt overrides the generated user prompt when set
	Prompt string

	// Model is the specific model to use (provider-specific)
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// AnalyzeResponse is the provider's unparsed reply
type AnalyzeResponse struct {
	// Text is the raw reply, possibly fenced, wrapped in prose or malformed
	Text string

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int
}

// Config holds provider configuration
type Config struct {
	// Provider name: "openai", "anthropic", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI/Anthropic
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// MaxTokens for response generation
	MaxTokens int

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:  "", // Disabled by default
		Timeout:   90,
		MaxTokens: 4000,
	}
}

// SystemPrompt frames every analysis call
const SystemPrompt = "You are an employment-law case analyst. You organize a claimant's narrative into allegations, " +
	"potential claims, response strategies and discovery preparation. You never give a verdict on the merits. " +
	"Reply with a single JSON object and nothing else."

// BuildPrompt constructs the default analysis prompt listing the expected JSON shape
func BuildPrompt(inputs model.CaseInputs) string {
	var b strings.Builder
	b.WriteString("Analyze the following case.\n\nNARRATIVE:\n")
	b.WriteString(strings.TrimSpace(inputs.Narrative))
	b.WriteString("\n")
	if s := strings.TrimSpace(inputs.OpposingPosition); s != "" {
		fmt.Fprintf(&b, "\nOPPOSING POSITION:\n%s\n", s)
	}
	if s := strings.TrimSpace(inputs.DesiredOutcome); s != "" {
		fmt.Fprintf(&b, "\nDESIRED OUTCOME:\n%s\n", s)
	}

	b.WriteString(`
Return one JSON object with exactly these keys:
- "statedAllegations": [{"claim", "summary", "category", "evidenceMentioned": [string], "texasCaseExamples": [{"caseName", "citation", "relevance"}]}]
- "unstatedClaims": [{"claim", "reasoning", "category", "evidenceMentioned": [string], "texasCaseExamples": [...]}]
- "responseStrategies": [{"claim", "strategy", "suggestedActionSteps": [string], "evidenceToGather": [{"item", "potentialSource", "rationale"}]}]
- "counterArguments": [{"argument", "rebuttal"}]
- "investigatoryQuestions": {"forClaimant": [string], "forWitnesses": [string], "forRespondent": [string]}
- "goodFaithConferenceGuide": {"summary", "talkingPoints": [string], "documentRequests": [{"request", "rationale"}]}

category is one of: discrimination, retaliation, harassment, wage_and_hour, wrongful_termination, contract, other.
Each responseStrategies entry repeats the claim text of the allegation it addresses.
`)
	return b.String()
}

// chatHistory trims history to the turns a provider can replay
func chatHistory(history []model.ChatMessage) []model.ChatMessage {
	out := make([]model.ChatMessage, 0, len(history))
	for _, m := range history {
		if m.Role != "user" && m.Role != "assistant" {
			continue
		}
		if strings.TrimSpace(m.Content) == "" {
			continue
		}
		out = append(out, m)
	}
	return out
}

func promptFor(req AnalyzeRequest) string {
	if req.Prompt != "" {
		return req.Prompt
	}
	return BuildPrompt(req.Inputs)
}

func pick(values ...int) int {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}
