package internal

import (
	"strings"
	"testing"
)

func TestAssemblePrompt(t *testing.T) {
	results := []SearchResult{
		{Chunk: Chunk{Text: "Fever is a symptom."}},
		{Chunk: Chunk{Text: "Aspirin reduces fever."}},
	}

	prompt := AssemblePrompt("What reduces fever?", results)

	for _, want := range []string{
		DefaultInstruction,
		"Context:\nFever is a symptom.\n\nAspirin reduces fever.",
		"Question:\nWhat reduces fever?",
		"do not know",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}

	if !strings.HasSuffix(prompt, "Answer:\n") {
		t.Errorf("prompt should end with the answer cue, got %q", prompt[len(prompt)-20:])
	}

	if got := strings.Index(prompt, "Context:"); got > strings.Index(prompt, "Question:") {
		t.Error("context must come before the question")
	}
}

func TestAssemblePromptDeterministic(t *testing.T) {
	results := []SearchResult{{Chunk: Chunk{Text: "a"}}}
	if AssemblePrompt("q", results) != AssemblePrompt("q", results) {
		t.Error("prompt assembly should be deterministic")
	}
}

func TestPromptTemplateCustomInstruction(t *testing.T) {
	tmpl := NewPromptTemplate("Answer in one word.")
	prompt := tmpl.Assemble("What reduces fever?", nil)

	if !strings.HasPrefix(prompt, "Answer in one word.\n\nContext:\n") {
		t.Errorf("unexpected prompt prefix: %q", prompt)
	}
	if strings.Contains(prompt, "medical assistant") {
		t.Error("custom instruction should replace the default")
	}

	if NewPromptTemplate("  ").Instruction != DefaultInstruction {
		t.Error("blank instruction should fall back to the default")
	}
}
