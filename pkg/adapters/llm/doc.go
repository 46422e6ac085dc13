// Package llm provides LLM client implementations and the step executor that
// calls them.
//
// The factory creates LLM clients based on provider configuration.
// Supported provider kinds:
//   - anthropic: Anthropic Claude through the official SDK
//   - gemini: Google Gemini through the genai SDK
//   - openai: any OpenAI-compatible chat completions API (ChatGPT, Grok)
//   - echo: deterministic offline responses for local runs and tests
//
// The registry resolves provider names case-insensitively. The executor adds
// per-call timeouts, retries retryable failures with exponential backoff and
// classifies every failure as a typed step error.
package llm
