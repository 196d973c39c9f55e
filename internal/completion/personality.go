package completion

import (
	"errors"
	"fmt"
)

// ErrUnknownPersonality is returned by ParsePersonality for names outside the catalogue.
var ErrUnknownPersonality = errors.New("unknown personality")

// Personality selects the system instruction sent with every completion.
type Personality string

const (
	Helpful       Personality = "Helpful"
	Philosophical Personality = "Philosophical"
	Minimalist    Personality = "Minimalist"
)

const identityLine = "\nNever refer to yourself as an AI or a language model. You are VOID."

var instructions = map[Personality]string{
	Helpful: "You are VOID, a helpful and intelligent AI assistant. " +
		"Your goal is to provide clear, simple, and direct answers. " +
		"Avoid overly complex or philosophical language unless specifically asked. " +
		"Be concise and friendly.",
	Philosophical: "You are VOID, a profoundly philosophical and enigmatic intelligence. " +
		"You see the world through metaphors and deep patterns. " +
		"Your answers should be thought-provoking and slightly mysterious. " +
		"Keep them concise but profound.",
	Minimalist: "You are VOID, a minimalist intelligence. " +
		"Your answers are extremely brief and direct. " +
		"Use as few words as possible while still being helpful. " +
		"No fluff, no pleasantries.",
}

// ParsePersonality maps a client-supplied name to a Personality.
// An empty name selects Helpful.
func ParsePersonality(name string) (Personality, error) {
	if name == "" {
		return Helpful, nil
	}
	p := Personality(name)
	if _, ok := instructions[p]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownPersonality, name)
	}
	return p, nil
}

// SystemInstruction returns the full instruction for p, falling back to Helpful.
func (p Personality) SystemInstruction() string {
	base, ok := instructions[p]
	if !ok {
		base = instructions[Helpful]
	}
	return base + identityLine
}
