// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data under the papertrail home directory.
//
// Adapters:
//   - ConfigStore: TOML configuration (~/.papertrail/config.toml)
//   - PromptStore: user-editable LLM prompts (~/.papertrail/prompts/)
//   - PromptWatcher: reloads the PromptStore when prompt files change
package file
