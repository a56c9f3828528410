// Package openrouter talks to the OpenRouter chat completion API for answer
// extraction, conversation summarization, and cross-conversation Q&A.
package openrouter
