package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/custodia-labs/papertrail/internal/core/domain"
	"github.com/custodia-labs/papertrail/internal/core/ports/driven"
	"github.com/custodia-labs/papertrail/internal/core/ports/driving"
	"github.com/custodia-labs/papertrail/internal/logger"
)

// Ensure TopicExpander implements the interface.
var _ driving.TopicService = (*TopicExpander)(nil)

// Built-in prompts used when no PromptStore is configured.
const (
	DefaultResearchRewritePrompt = "You write a better prompt that is towards research, keep it broad."
	DefaultTopicSystemPrompt     = "You are a data aggregator and topic extractor."
	DefaultTopicExtractPrompt    = "Aggregate the following data and provide a list of potential topics, " +
		"even if they relate only slightly. You can go straight into it starting with 1. but only go to 3:\n\n\"%s\""
)

// Sampling parameters for the two stages.
var (
	rewriteOptions = driven.ChatOptions{MaxTokens: 150, Temperature: 0.7}
	extractOptions = driven.ChatOptions{MaxTokens: 200, Temperature: 0.7}
)

// enumerationPrefix matches a leading "12. " style marker.
var enumerationPrefix = regexp.MustCompile(`^\d+\.\s*`)

// TopicExpander derives research topics from a user query with two chat calls:
// one broadens the query, the next lists topics from the broadened text.
type TopicExpander struct {
	llm         driven.LLMService
	promptStore driven.PromptStore
}

// NewTopicExpander creates a topic expander. promptStore may be nil.
func NewTopicExpander(llm driven.LLMService, promptStore driven.PromptStore) *TopicExpander {
	return &TopicExpander{
		llm:         llm,
		promptStore: promptStore,
	}
}

// Expand returns at most domain.MaxTopics topics for query.
// Any stage failure aborts the whole expansion; no partial list is returned.
func (e *TopicExpander) Expand(ctx context.Context, query string) ([]string, error) {
	logger.Section("Topic Expansion")

	if strings.TrimSpace(query) == "" {
		return nil, domain.ErrEmptyQuery
	}
	if e.llm == nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrTopicExpansionFailure, domain.ErrLLMUnavailable)
	}

	broadened, err := e.Rewrite(ctx, query)
	if err != nil {
		return nil, err
	}
	logger.Debug("Broadened query: %q", broadened)

	listing, err := e.ListTopics(ctx, broadened)
	if err != nil {
		return nil, err
	}

	topics := ParseTopics(listing)
	logger.Info("Derived %d topics: %v", len(topics), topics)
	return topics, nil
}

// Rewrite is stage one: it reframes the query as a broad research prompt.
func (e *TopicExpander) Rewrite(ctx context.Context, query string) (string, error) {
	messages := []driven.ChatMessage{
		{Role: driven.RoleSystem, Content: e.loadPrompt(driven.PromptResearchRewrite, DefaultResearchRewritePrompt)},
		{Role: driven.RoleUser, Content: query},
	}
	out, err := e.llm.Chat(ctx, messages, rewriteOptions)
	if err != nil {
		return "", fmt.Errorf("%w: rewrite stage: %w", domain.ErrTopicExpansionFailure, err)
	}
	return strings.TrimSpace(out), nil
}

// ListTopics is stage two: it asks for an enumerated topic list.
func (e *TopicExpander) ListTopics(ctx context.Context, broadened string) (string, error) {
	template := e.loadPrompt(driven.PromptTopicExtract, DefaultTopicExtractPrompt)
	if !strings.Contains(template, "%s") {
		logger.Warn("Prompt %q has no %%s placeholder, using built-in prompt", driven.PromptTopicExtract)
		template = DefaultTopicExtractPrompt
	}

	messages := []driven.ChatMessage{
		{Role: driven.RoleSystem, Content: e.loadPrompt(driven.PromptTopicSystem, DefaultTopicSystemPrompt)},
		{Role: driven.RoleUser, Content: fmt.Sprintf(template, broadened)},
	}
	out, err := e.llm.Chat(ctx, messages, extractOptions)
	if err != nil {
		return "", fmt.Errorf("%w: topic stage: %w", domain.ErrTopicExpansionFailure, err)
	}
	return out, nil
}

// ParseTopics turns an enumerated listing into topics. Blank lines and
// "-" sub-bullets are dropped, "N. " prefixes are stripped, and the result
// is capped at domain.MaxTopics.
func ParseTopics(listing string) []string {
	topics := make([]string, 0, domain.MaxTopics)
	for _, line := range strings.Split(listing, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "-") {
			continue
		}
		topic := strings.TrimSpace(enumerationPrefix.ReplaceAllString(line, ""))
		if topic == "" {
			continue
		}
		topics = append(topics, topic)
		if len(topics) == domain.MaxTopics {
			break
		}
	}
	return topics
}

// loadPrompt loads a prompt from the store, falling back to the default if unavailable.
func (e *TopicExpander) loadPrompt(name, fallback string) string {
	if e.promptStore == nil {
		return fallback
	}
	prompt, err := e.promptStore.Load(name)
	if err != nil || strings.TrimSpace(prompt) == "" {
		return fallback
	}
	return prompt
}
