package intent

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/dd0wney/infragraph/pkg/logging"
)

// Classifier maps one question to one intent. history carries prior
// question/answer turns for pronoun resolution and may be empty.
type Classifier interface {
	Classify(ctx context.Context, question string, history []Turn) (Intent, error)
}

// Turn is one prior exchange in a conversation.
type Turn struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

const systemPrompt = `You are a query intent extractor for an infrastructure dependency graph.

Your ONLY job is to output a JSON object naming the tool call needed. Nothing else.

Node ID patterns:
- Services: service-<name> (e.g., service-api-gateway)
- Databases: database-<name> (e.g., database-orders-db)
- Caches: cache-<name> (e.g., cache-redis-main)
- Teams: team-<name> (e.g., team-platform)
- Kubernetes: k8s-deployment-<name>, k8s-service-<name>

Available tools:

1. find_path - dependency path between two nodes
   Use for: "How does X connect to Y?", "What's between X and Y?"
   Format: {"tool": "find_path", "params": {"from_id": "service-x", "to_id": "database-y"}}

2. calculate_blast_radius - impact if a node fails, including owning teams
   Use for: "What breaks if X fails?", "Blast radius of X"
   Format: {"tool": "calculate_blast_radius", "params": {"node_id": "cache-redis-main"}}

3. get_upstream_dependents - what depends on a node
   Use for: "What depends on X?", "What uses X?"
   Format: {"tool": "get_upstream_dependents", "params": {"node_id": "database-users-db"}}

4. get_downstream_dependencies - what a node depends on
   Use for: "What does X depend on?", "What does X use?"
   Format: {"tool": "get_downstream_dependencies", "params": {"node_id": "service-orders"}}

5. get_owner - team that owns a resource
   Use for: "Who owns X?", "Who should I page if X is down?"
   Format: {"tool": "get_owner", "params": {"node_id": "service-payments"}}

6. list_nodes - all nodes of a type
   Use for: "List all services", "Show all databases"
   Format: {"tool": "list_nodes", "params": {"node_type": "service"}}
   node_type is one of: service, database, cache, team, k8s_deployment, k8s_service

7. get_team_resources - resources a team owns
   Use for: "What does the X team own?"
   Format: {"tool": "get_team_resources", "params": {"team_name": "platform"}}

IMPORTANT:
- Always emit full node ids with a type prefix: "orders-db" becomes "database-orders-db".
- Names are lowercased with hyphens: "API Gateway" becomes "service-api-gateway".
- Output ONLY valid JSON, no other text.

Examples:

Query: "Who owns orders-db?"
Output: {"tool": "get_owner", "params": {"node_id": "database-orders-db"}}

Query: "What breaks if redis goes down?"
Output: {"tool": "calculate_blast_radius", "params": {"node_id": "cache-redis"}}

Query: "How does api-gateway connect to orders-db?"
Output: {"tool": "find_path", "params": {"from_id": "service-api-gateway", "to_id": "database-orders-db"}}

Now extract the tool call for this query:`

var jsonBlock = regexp.MustCompile(`(?s)\{.*\}`)

// LLMClassifier extracts intents with an OpenAI-compatible chat
// completion endpoint at temperature zero.
type LLMClassifier struct {
	client *openai.Client
	model  string
	logger logging.Logger
}

// NewLLMClassifier creates a classifier against the given endpoint.
// baseURL may point at any OpenAI-compatible API.
func NewLLMClassifier(baseURL, apiKey, model string, logger logging.Logger) *LLMClassifier {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &LLMClassifier{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		logger: logger.With(logging.Component("intent")),
	}
}

// Classify sends the question (plus the last few conversation turns for
// context) and parses the JSON tool call out of the completion.
func (c *LLMClassifier) Classify(ctx context.Context, question string, history []Turn) (Intent, error) {
	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
	}
	for _, turn := range lastTurns(history, 4) {
		role := openai.ChatMessageRoleUser
		if turn.Role == "assistant" {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: turn.Content})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: "Query: " + question,
	})

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: 0,
	})
	if err != nil {
		return Intent{}, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Intent{}, fmt.Errorf("chat completion returned no choices")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	raw := jsonBlock.FindString(content)
	if raw == "" {
		c.logger.Warn("no JSON in completion", logging.String("content", content))
		return Intent{Op: OpUnknown}, nil
	}

	var in Intent
	if err := json.Unmarshal([]byte(raw), &in); err != nil {
		c.logger.Warn("unparseable tool call", logging.Error(err))
		return Intent{Op: OpUnknown}, nil
	}
	if err := in.Validate(); err != nil {
		c.logger.Warn("incomplete tool call", logging.Error(err))
		return Intent{Op: OpUnknown}, nil
	}
	return in, nil
}

func lastTurns(history []Turn, n int) []Turn {
	if len(history) <= n {
		return history
	}
	return history[len(history)-n:]
}
