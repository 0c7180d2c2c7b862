// Package alexa models the voice platform's webhook envelope: the inbound
// request, the outbound response, and the markup-annotated speech format.
package alexa

import (
	"strings"
	"time"
)

// Request types carried in the envelope.
const (
	TypeLaunchRequest       = "LaunchRequest"
	TypeIntentRequest       = "IntentRequest"
	TypeSessionEndedRequest = "SessionEndedRequest"
)

// Resolution status code for a successful entity match.
const resolutionMatch = "ER_SUCCESS_MATCH"

// IntentKind is the closed set of intents the skill understands.
// Dispatching on this enum keeps new intents a compile-time-checked addition.
type IntentKind int

const (
	IntentUnknown IntentKind = iota
	IntentSetDogName
	IntentSetDogSex
	IntentStartTraining
	IntentYes
	IntentNo
	IntentStop
	IntentCancel
	IntentHelp
)

// KindOf maps a platform intent name onto an IntentKind.
// Unrecognized names map to IntentUnknown rather than failing.
func KindOf(name string) IntentKind {
	switch name {
	case "SetDogNameIntent":
		return IntentSetDogName
	case "SetDogSexIntent":
		return IntentSetDogSex
	case "StartTrainingIntent":
		return IntentStartTraining
	case "AMAZON.YesIntent":
		return IntentYes
	case "AMAZON.NoIntent":
		return IntentNo
	case "AMAZON.StopIntent":
		return IntentStop
	case "AMAZON.CancelIntent":
		return IntentCancel
	case "AMAZON.HelpIntent":
		return IntentHelp
	}
	return IntentUnknown
}

func (k IntentKind) String() string {
	switch k {
	case IntentSetDogName:
		return "set_dog_name"
	case IntentSetDogSex:
		return "set_dog_sex"
	case IntentStartTraining:
		return "start_training"
	case IntentYes:
		return "yes"
	case IntentNo:
		return "no"
	case IntentStop:
		return "stop"
	case IntentCancel:
		return "cancel"
	case IntentHelp:
		return "help"
	}
	return "unknown"
}

// RequestEnvelope is the decoded webhook payload from the voice platform.
type RequestEnvelope struct {
	Version string  `json:"version"`
	Session Session `json:"session"`
	Request Request `json:"request"`
}

// Session carries conversation identity and the previous turn's attributes.
type Session struct {
	New         bool           `json:"new"`
	SessionID   string         `json:"sessionId"`
	Application Application    `json:"application"`
	Attributes  map[string]any `json:"attributes,omitempty"`
	User        User           `json:"user"`
}

// Application identifies the skill the request was sent to.
type Application struct {
	ApplicationID string `json:"applicationId"`
}

// User is the opaque per-user identity assigned by the platform.
type User struct {
	UserID string `json:"userId"`
}

// Request is the per-turn event: launch, intent, or session end.
type Request struct {
	Type      string  `json:"type"`
	RequestID string  `json:"requestId"`
	Timestamp string  `json:"timestamp,omitempty"`
	Locale    string  `json:"locale,omitempty"`
	Intent    *Intent `json:"intent,omitempty"`
	Reason    string  `json:"reason,omitempty"`
}

// Time parses the request timestamp.
func (r *Request) Time() (time.Time, error) {
	return time.Parse(time.RFC3339, r.Timestamp)
}

// Intent is a recognized spoken command with named slot values.
type Intent struct {
	Name  string          `json:"name"`
	Slots map[string]Slot `json:"slots,omitempty"`
}

// Slot is a named parameter extracted from the utterance, possibly with
// entity-resolution metadata attached.
type Slot struct {
	Name        string       `json:"name"`
	Value       string       `json:"value,omitempty"`
	Resolutions *Resolutions `json:"resolutions,omitempty"`
}

// Resolutions holds the per-authority entity resolution results for a slot.
type Resolutions struct {
	ResolutionsPerAuthority []Resolution `json:"resolutionsPerAuthority,omitempty"`
}

// Resolution is one authority's attempt at canonicalizing a slot value.
type Resolution struct {
	Authority string            `json:"authority"`
	Status    ResolutionStatus  `json:"status"`
	Values    []ResolutionValue `json:"values,omitempty"`
}

// ResolutionStatus carries the match outcome code.
type ResolutionStatus struct {
	Code string `json:"code"`
}

// ResolutionValue wraps one canonical candidate.
type ResolutionValue struct {
	Value ResolvedValue `json:"value"`
}

// ResolvedValue is the canonical id/name pair for a matched entity.
type ResolvedValue struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

// SlotValue returns the raw spoken value of the named slot, if any.
func (i *Intent) SlotValue(name string) string {
	if i == nil {
		return ""
	}
	return i.Slots[name].Value
}

// ResolvedSlotValue returns the canonical value of the named slot when
// entity resolution produced exactly one distinct match. Zero matches or
// ambiguous matches return ok=false; this is control flow, not an error,
// so callers re-elicit instead of failing the turn.
func (i *Intent) ResolvedSlotValue(name string) (string, bool) {
	if i == nil {
		return "", false
	}
	slot, ok := i.Slots[name]
	if !ok || slot.Resolutions == nil {
		return "", false
	}

	var matched string
	for _, res := range slot.Resolutions.ResolutionsPerAuthority {
		if res.Status.Code != resolutionMatch {
			continue
		}
		for _, v := range res.Values {
			if matched == "" {
				matched = v.Value.Name
				continue
			}
			if !strings.EqualFold(matched, v.Value.Name) {
				return "", false
			}
		}
	}
	if matched == "" {
		return "", false
	}
	return matched, true
}
