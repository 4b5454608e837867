package view

import "glowdesk/internal/models"

// Class selects how an instruction is styled.
type Class string

const (
	ClassUser Class = "user"
	ClassAI   Class = "ai"
)

// Instruction is one rendered entry of the transcript.
type Instruction struct {
	Text  string `json:"text"`
	Class Class  `json:"class"`
}

// Renderer receives a full transcript on every render.
type Renderer interface {
	Clear()
	Append(Instruction)
}

// Project maps messages to render instructions. Anything not authored by the
// user is shown as the assistant.
func Project(msgs []models.Message) []Instruction {
	out := make([]Instruction, 0, len(msgs))
	for _, m := range msgs {
		class := ClassAI
		if m.Role == models.RoleUser {
			class = ClassUser
		}
		out = append(out, Instruction{Text: m.Content, Class: class})
	}
	return out
}

// Render replaces whatever r currently shows with instrs.
func Render(r Renderer, instrs []Instruction) {
	r.Clear()
	for _, in := range instrs {
		r.Append(in)
	}
}

func User(text string) Instruction { return Instruction{Text: text, Class: ClassUser} }
func AI(text string) Instruction   { return Instruction{Text: text, Class: ClassAI} }

// Buffer is an in-memory Renderer.
type Buffer struct {
	items []Instruction
}

func (b *Buffer) Clear() { b.items = b.items[:0] }

func (b *Buffer) Append(in Instruction) { b.items = append(b.items, in) }

// Items returns a copy of the rendered instructions.
func (b *Buffer) Items() []Instruction {
	return append([]Instruction{}, b.items...)
}

func (b *Buffer) Len() int { return len(b.items) }
