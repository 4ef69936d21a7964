// Package prompt assembles the system instruction and user turn sent to
// the model: a per-subject tutoring profile plus a grounded or ungrounded
// question template.
package prompt

import (
	"fmt"
	"sort"
	"strings"
)

// Library maps subject keys to system instructions. The zero value is not
// usable; construct with NewLibrary.
//
// A Library is immutable after construction aside from Register, so it is
// safe to share across request handlers once wiring is done.
type Library struct {
	profiles map[string]string
}

// NewLibrary returns a library seeded with the built-in subject profiles.
func NewLibrary() *Library {
	profiles := make(map[string]string, len(builtinProfiles))
	for key, instruction := range builtinProfiles {
		profiles[key] = instruction
	}
	return &Library{profiles: profiles}
}

// Register adds or replaces a profile. Keys are stored lowercase.
func (l *Library) Register(subject, instruction string) {
	l.profiles[strings.ToLower(subject)] = instruction
}

// Instruction returns the system instruction for a subject. Lookup is
// case-insensitive; unknown or empty subjects fall back to the generic
// profile, never an error.
func (l *Library) Instruction(subject string) string {
	if instruction, ok := l.profiles[strings.ToLower(subject)]; ok {
		return instruction
	}
	return l.profiles[SubjectGeneric]
}

// Subjects lists the registered subject keys in sorted order.
func (l *Library) Subjects() []string {
	keys := make([]string, 0, len(l.profiles))
	for key := range l.profiles {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Assemble resolves the subject profile and builds the user turn for a
// question, grounded in context when any was retrieved.
func (l *Library) Assemble(subject, question, context string) (systemInstruction, userTurn string) {
	return l.Instruction(subject), BuildUserTurn(question, context)
}

// BuildUserTurn wraps the question in the grounded template when context
// is non-empty, instructing the model to cite the numbered sources, or in
// the ungrounded template that discloses no materials were found.
func BuildUserTurn(question, context string) string {
	if context == "" {
		return fmt.Sprintf(`%s

Note: I couldn't find specific course materials related to this question, so I'll provide general guidance.`, question)
	}

	return fmt.Sprintf(`Here are relevant materials from the course:

%s

Student question: %s

Please answer the student's question using the course materials provided above. Cite the sources when you use them (e.g., "According to Source 1..."). If the course materials don't contain the answer, you can say so and provide general guidance.`, context, question)
}

// CustomInstruction builds a profile for a user-declared subject, with
// optional course and university context. The tutoring contract matches
// the generic profile.
func CustomInstruction(subject, course, university string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "You are a friendly, helpful %s tutor", subject)
	if course != "" {
		fmt.Fprintf(&sb, " for the course %s", course)
	}
	if university != "" {
		fmt.Fprintf(&sb, " at %s", university)
	}
	sb.WriteString(`.
Show students step-by-step how to approach homework questions, but never give them the final answer.
If the student asks a conceptual question, explain the concept in a way that is easy for a student
to understand, and give examples to illustrate the concept in action. Always prioritize learning
over straight answers.`)
	return sb.String()
}
