package alexa

import (
	"fmt"
	"strings"
	"time"
)

var ssmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
)

// SSML incrementally builds markup-annotated speech with pauses and
// emphasis. Text fragments are escaped; tags are emitted verbatim.
type SSML struct {
	b strings.Builder
}

// NewSSML creates an empty speech builder.
func NewSSML() *SSML {
	return &SSML{}
}

// Text appends an escaped text fragment.
func (s *SSML) Text(text string) *SSML {
	s.space()
	s.b.WriteString(ssmlEscaper.Replace(text))
	return s
}

// Emphasis appends a strongly emphasized fragment.
func (s *SSML) Emphasis(text string) *SSML {
	s.space()
	s.b.WriteString(`<emphasis level="strong">`)
	s.b.WriteString(ssmlEscaper.Replace(text))
	s.b.WriteString(`</emphasis>`)
	return s
}

// Break appends a pause of the given duration.
func (s *SSML) Break(d time.Duration) *SSML {
	s.space()
	fmt.Fprintf(&s.b, `<break time="%.1fs" />`, d.Seconds())
	return s
}

func (s *SSML) space() {
	if s.b.Len() > 0 {
		s.b.WriteByte(' ')
	}
}

// String returns the speech wrapped in a speak element.
func (s *SSML) String() string {
	return "<speak>" + s.b.String() + "</speak>"
}
