package commands

import (
	tele "gopkg.in/telebot.v4"
)

// Command represents a bot command with its handler, description, and metadata.
type Command struct {
	Handler     tele.HandlerFunc
	Description string
	AdminOnly   bool
	Hidden      bool
	Aliases     []string
	// Global commands are bound as telebot endpoints and run even while a
	// dialog is in progress. Other commands are only looked up when the user
	// has no active step.
	Global bool
}
