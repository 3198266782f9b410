package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// If the prompt is not found, implementations should return a sensible default
	// or an error, depending on whether the prompt is required.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names used by topic expansion.
const (
	// PromptResearchRewrite is the stage-one system prompt that broadens
	// the user's query towards research. It has no placeholders.
	PromptResearchRewrite = "research_rewrite"

	// PromptTopicSystem is the stage-two system prompt. It has no placeholders.
	PromptTopicSystem = "topic_system"

	// PromptTopicExtract is the stage-two user prompt.
	// The template expects one %s placeholder for the stage-one output.
	PromptTopicExtract = "topic_extract"
)
