package dialog

// Question identifies what the skill last asked. It is the only per-turn
// state, carried between turns in the platform's session attributes and
// used solely to interpret a bare yes/no follow-up.
type Question string

const (
	QuestionNone            Question = ""
	QuestionConfirmStart    Question = "should_start_training"
	QuestionConfirmTraining Question = "training_confirmation"
	QuestionNameAsked       Question = "dog_name_asked"
	QuestionSexAsked        Question = "male_or_female"
)

const attrLastQuestion = "last_question"

// QuestionFromAttributes reads the last-question marker out of the previous
// turn's session attributes. Missing or unrecognized markers degrade to
// QuestionNone rather than failing the turn.
func QuestionFromAttributes(attrs map[string]any) Question {
	v, ok := attrs[attrLastQuestion]
	if !ok {
		return QuestionNone
	}
	s, ok := v.(string)
	if !ok {
		return QuestionNone
	}
	switch q := Question(s); q {
	case QuestionConfirmStart, QuestionConfirmTraining, QuestionNameAsked, QuestionSexAsked:
		return q
	}
	return QuestionNone
}

// Attributes renders the session-state payload to echo into the next turn.
func (q Question) Attributes() map[string]any {
	if q == QuestionNone {
		return map[string]any{}
	}
	return map[string]any{attrLastQuestion: string(q)}
}
