// Package llm adapts the chat completion API to the analysis gateway port.
package llm

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/invopop/jsonschema"
	openai "github.com/sashabaranov/go-openai"

	"wellbeing_server/core/domain"
	"wellbeing_server/pkg/logger"
	"wellbeing_server/pkg/resilience"
)

// Completer is the subset of Client used by the gateway.
type Completer interface {
	CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	CompleteStructured(ctx context.Context, systemPrompt, userPrompt string, format *openai.ChatCompletionResponseFormat) (string, error)
}

// GatewayConfig holds prompts and call limits.
type GatewayConfig struct {
	SystemPrompt     string
	AnalysisPrompt   string
	FallbackResponse string
	Timeout          time.Duration
	StrictSchema     bool
}

// analysisPayload is the structured object requested from the model.
// Pointer fields distinguish a missing key from its zero value.
type analysisPayload struct {
	Response     *string  `json:"response" jsonschema:"required,description=Reply to the user's message"`
	ViolentWords []string `json:"violent_words" jsonschema:"required,description=Words or phrases indicating violence or psychological distress"`
	ScopeFlag    *bool    `json:"scopeflag" jsonschema:"required,description=True when the message is outside the professional context"`
}

var errMalformedPayload = errors.New("malformed analysis payload")

// Gateway implements out.AnalysisGateway on top of a chat completion client.
type Gateway struct {
	client  Completer
	cfg     GatewayConfig
	breaker *resilience.CircuitBreaker
	format  *openai.ChatCompletionResponseFormat
	log     *logger.Logger
}

// NewGateway creates a gateway. A nil breaker gets the default policy.
func NewGateway(client Completer, cfg GatewayConfig, breaker *resilience.CircuitBreaker, log *logger.Logger) *Gateway {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if log == nil {
		log = logger.Default()
	}
	if breaker == nil {
		breaker = resilience.NewCircuitBreaker(resilience.DefaultCircuitBreakerConfig("llm"), nil)
	}
	return &Gateway{
		client:  client,
		cfg:     cfg,
		breaker: breaker,
		format:  responseFormat(cfg.StrictSchema),
		log:     log.WithField("component", "llm_gateway"),
	}
}

// responseFormat builds either a strict JSON schema reflected from
// analysisPayload or the plain JSON object mode.
func responseFormat(strict bool) *openai.ChatCompletionResponseFormat {
	if !strict {
		return &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	reflector := jsonschema.Reflector{
		AllowAdditionalProperties:  false,
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
	}
	schema := reflector.Reflect(&analysisPayload{})
	schema.Version = ""
	schema.ID = ""

	return &openai.ChatCompletionResponseFormat{
		Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
		JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
			Name:   "message_analysis",
			Schema: schema,
			Strict: true,
		},
	}
}

// Analyze requests the structured analysis of message.
func (g *Gateway) Analyze(ctx context.Context, message string) (*domain.GatewayResult, error) {
	ctx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	system := g.cfg.SystemPrompt + "\n\n" + g.cfg.AnalysisPrompt
	raw, err := g.breaker.ExecuteString(func() (string, error) {
		return g.client.CompleteStructured(ctx, system, message, g.format)
	})
	if err != nil {
		return nil, &domain.GatewayError{Stage: domain.StageAnalyze, Err: err}
	}

	result, err := g.parse(raw)
	if err != nil {
		g.log.WithError(err).WithField("raw", raw).Warn("unparseable analysis payload")
		return nil, &domain.GatewayError{Stage: domain.StageAnalyze, Err: err}
	}
	return result, nil
}

// Fallback requests a free-text reply using only the persona prompt.
func (g *Gateway) Fallback(ctx context.Context, message string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	text, err := g.breaker.ExecuteString(func() (string, error) {
		return g.client.CompleteWithSystem(ctx, g.cfg.SystemPrompt, message)
	})
	if err != nil {
		return "", &domain.GatewayError{Stage: domain.StageFallback, Err: err}
	}
	return strings.TrimSpace(text), nil
}

// parse decodes the model payload. Missing fields degrade to defaults;
// anything that is not a JSON object is an error.
func (g *Gateway) parse(raw string) (*domain.GatewayResult, error) {
	cleaned := cleanJSONResponse(raw)
	if !strings.HasPrefix(cleaned, "{") {
		return nil, errMalformedPayload
	}

	var payload analysisPayload
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return nil, err
	}

	result := &domain.GatewayResult{
		Response:     g.cfg.FallbackResponse,
		ViolentWords: make([]string, 0, len(payload.ViolentWords)),
	}
	if payload.Response != nil {
		result.Response = *payload.Response
	}
	if payload.ScopeFlag != nil {
		result.ScopeFlag = *payload.ScopeFlag
	}
	for _, w := range payload.ViolentWords {
		if w = strings.TrimSpace(w); w != "" {
			result.ViolentWords = append(result.ViolentWords, w)
		}
	}
	return result, nil
}

func cleanJSONResponse(resp string) string {
	resp = strings.TrimSpace(resp)
	resp = strings.TrimPrefix(resp, "```json")
	resp = strings.TrimPrefix(resp, "```")
	resp = strings.TrimSuffix(resp, "```")
	return strings.TrimSpace(resp)
}
