package agent

import (
	"strings"

	"github.com/hupe1980/agentdesk/core"
)

// Instruction is the system prompt source of an agent: fixed text or a
// function of the running turn. Either form may contain text/template
// markers; the step loop renders them over the thread data.
type Instruction struct {
	text string
	fn   func(*core.RunContext) (string, error)
}

// NewInstructionFromText creates an Instruction from fixed text.
func NewInstructionFromText(text string) Instruction { return Instruction{text: text} }

// NewInstructionFromFunc creates an Instruction computed for every model call.
func NewInstructionFromFunc(fn func(*core.RunContext) (string, error)) Instruction {
	return Instruction{fn: fn}
}

// JoinInstructions concatenates parts with a blank line in between. Parts
// that resolve to empty text are skipped.
func JoinInstructions(parts ...Instruction) Instruction {
	return NewInstructionFromFunc(func(rc *core.RunContext) (string, error) {
		texts := make([]string, 0, len(parts))
		for _, p := range parts {
			s, err := p.Resolve(rc)
			if err != nil {
				return "", err
			}
			if s = strings.TrimSpace(s); s != "" {
				texts = append(texts, s)
			}
		}

		return strings.Join(texts, "\n\n"), nil
	})
}

// IsStatic reports whether the instruction is fixed text.
func (i Instruction) IsStatic() bool { return i.fn == nil }

// IsZero reports whether the instruction has neither text nor function.
func (i Instruction) IsZero() bool { return i.fn == nil && i.text == "" }

// Resolve returns the raw instruction text for rc.
func (i Instruction) Resolve(rc *core.RunContext) (string, error) {
	if i.fn != nil {
		return i.fn(rc)
	}

	return i.text, nil
}
