package alexa

// Output speech formats.
const (
	SpeechPlainText = "PlainText"
	SpeechSSML      = "SSML"
)

// DirectiveDelegate asks the platform to re-elicit a missing slot itself.
const DirectiveDelegate = "Dialog.Delegate"

// ResponseEnvelope is the webhook reply: the speech to say, an optional
// display card, and the session attributes to echo back next turn.
type ResponseEnvelope struct {
	Version           string         `json:"version"`
	SessionAttributes map[string]any `json:"sessionAttributes,omitempty"`
	Response          Response       `json:"response"`
}

// Response is the per-turn output payload.
type Response struct {
	OutputSpeech     *OutputSpeech `json:"outputSpeech,omitempty"`
	Card             *Card         `json:"card,omitempty"`
	Reprompt         *Reprompt     `json:"reprompt,omitempty"`
	Directives       []Directive   `json:"directives,omitempty"`
	ShouldEndSession bool          `json:"shouldEndSession"`
}

// OutputSpeech is either plain text or SSML markup, never both.
type OutputSpeech struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
	SSML string `json:"ssml,omitempty"`
}

// Card is a simple display card shown in the companion app.
type Card struct {
	Type    string `json:"type"`
	Title   string `json:"title,omitempty"`
	Content string `json:"content,omitempty"`
}

// Reprompt is spoken when the user stays silent after a question.
type Reprompt struct {
	OutputSpeech *OutputSpeech `json:"outputSpeech,omitempty"`
}

// Directive instructs the platform to take over part of the dialogue.
type Directive struct {
	Type string `json:"type"`
}

// PlainSpeech wraps text in a plain-text output speech.
func PlainSpeech(text string) *OutputSpeech {
	return &OutputSpeech{Type: SpeechPlainText, Text: text}
}

// SSMLSpeech wraps markup in an SSML output speech.
func SSMLSpeech(ssml string) *OutputSpeech {
	return &OutputSpeech{Type: SpeechSSML, SSML: ssml}
}

// NewEnvelope creates a response envelope carrying the given session
// attributes into the next turn.
func NewEnvelope(attrs map[string]any) *ResponseEnvelope {
	return &ResponseEnvelope{Version: "1.0", SessionAttributes: attrs}
}

// EmptyEnvelope is the no-speech reply used for session-ended events.
func EmptyEnvelope() *ResponseEnvelope {
	return &ResponseEnvelope{Version: "1.0"}
}
