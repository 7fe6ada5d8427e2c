package internal

import "strings"

// DefaultInstruction keeps answers short and grounded in the retrieved
// context.
const DefaultInstruction = `You are a medical assistant. Answer the following medical question in **2-3 lines maximum**
using only the information provided in the context. If the answer is not contained in
the context, say that you do not know and do not invent or guess.`

// PromptTemplate assembles the generation request for one question.
type PromptTemplate struct {
	Instruction string
}

func NewPromptTemplate(instruction string) PromptTemplate {
	if strings.TrimSpace(instruction) == "" {
		instruction = DefaultInstruction
	}
	return PromptTemplate{Instruction: instruction}
}

// Assemble joins the instruction, the chunk texts and the verbatim
// question. Output depends only on its inputs.
func (p PromptTemplate) Assemble(question string, results []SearchResult) string {
	instruction := p.Instruction
	if instruction == "" {
		instruction = DefaultInstruction
	}

	var sb strings.Builder
	sb.WriteString(strings.TrimSpace(instruction))
	sb.WriteString("\n\nContext:\n")
	for i, r := range results {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(r.Chunk.Text)
	}
	sb.WriteString("\n\nQuestion:\n")
	sb.WriteString(question)
	sb.WriteString("\n\nAnswer:\n")
	return sb.String()
}

// AssemblePrompt uses the default instruction.
func AssemblePrompt(question string, results []SearchResult) string {
	return PromptTemplate{}.Assemble(question, results)
}
