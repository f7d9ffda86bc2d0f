package ai

import (
	"fmt"

	"github.com/MrSnakeDoc/smartnote/internal/domain"
)

// Greeting is the first assistant message shown before any user input.
const Greeting = "Hello! I am SmartBot. How can I help you today?"

const summarizeSystemPrompt = `You summarize personal notes.
Write a short summary in the same language as the note.
Respond with JSON only: {"summary": "..."}`

const translateSystemPrompt = `You translate personal notes.
Respond with JSON only: {"translatedTitle": "...", "translatedBody": "..."}`

const chatSystemPrompt = `You are a helpful assistant named SmartBot, part of the SmartNote app.
Your role is to assist users with their questions.
Keep your responses concise and helpful.
Respond with JSON only: {"response": "..."}`

func summarizeUserPrompt(body string) string {
	return "Summarize the following note:\n\n" + body
}

func translateUserPrompt(title, body string, target domain.Language) string {
	return fmt.Sprintf("Translate the following note title and body into %s.\n\nTitle: %s\nBody:\n%s",
		target.Name(), title, body)
}
