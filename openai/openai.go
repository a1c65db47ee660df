// Package openai implements [streamable.Provider] for the OpenAI chat
// completion API.
//
// It wraps the github.com/openai/openai-go SDK, translating between
// streamable's domain types and the chat completion wire types.
// Streaming uses the SDK's SSE stream, wrapped into the pull-based
// [streamable.CompletionStream] interface. Tool-call argument fragments
// are accumulated per call and repaired if the model truncates the
// JSON mid-stream.
package openai

const (
	defaultModel     = "gpt-5"
	defaultMaxTokens = 32768
)
