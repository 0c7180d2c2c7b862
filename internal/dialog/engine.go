// Package dialog implements the dialogue state machine that decides which
// question to ask next and how to merge a dog's name and sex arriving
// piecemeal across turns.
package dialog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ashureev/dogtrainer/internal/alexa"
	"github.com/ashureev/dogtrainer/internal/domain"
	"github.com/ashureev/dogtrainer/internal/store"
)

// Slot names defined in the interaction model.
const (
	slotDog = "Dog"
	slotSex = "Sex"
)

// The first two sessions get an explanatory confirmation before training.
const explainedTrainings = 2

// Engine runs one dialogue turn at a time against the profile store.
type Engine struct {
	repo store.Repository
	log  *slog.Logger
}

// NewEngine creates a dialogue engine with injected dependencies.
func NewEngine(repo store.Repository, log *slog.Logger) *Engine {
	return &Engine{repo: repo, log: log}
}

// Result is the terminal outcome of one turn: either a follow-up question
// (session continues) or an end-of-session statement.
type Result struct {
	Speech     string   // plain-text output
	SSML       string   // markup output, set instead of Speech
	Reprompt   string   // spoken if the user stays silent
	CardTitle  string   // display card, optional
	CardBody   string
	Delegate   bool     // hand slot elicitation back to the platform
	EndSession bool
	Question   Question // state to carry into the next turn
}

// Launch handles a session start with no intent.
func (e *Engine) Launch(ctx context.Context, userID string) *Result {
	return &Result{
		Speech:    speechWelcome,
		Reprompt:  repromptShouldStart,
		CardTitle: "Welcome",
		CardBody:  cardBodyWelcome,
		Question:  QuestionConfirmStart,
	}
}

// HandleIntent dispatches one spoken intent. Unknown intents degrade to a
// graceful end of session instead of propagating an error.
func (e *Engine) HandleIntent(ctx context.Context, userID string, kind alexa.IntentKind, intent *alexa.Intent, last Question) *Result {
	switch kind {
	case alexa.IntentSetDogName:
		return e.setName(ctx, userID, intent)
	case alexa.IntentSetDogSex:
		return e.setSex(ctx, userID, intent)
	case alexa.IntentStartTraining:
		return e.startTraining(ctx, userID, intent, false)
	case alexa.IntentYes:
		return e.affirm(ctx, userID, intent, last)
	case alexa.IntentNo, alexa.IntentStop, alexa.IntentCancel:
		return e.endSession(ctx, userID)
	case alexa.IntentHelp:
		return e.help()
	case alexa.IntentUnknown:
	}
	var name string
	if intent != nil {
		name = intent.Name
	}
	e.log.Warn("unrecognized intent, ending session", "user_id", userID, "intent", name)
	return e.endSession(ctx, userID)
}

// setName records or changes the dog's name. A rename archives the old
// name with its sex; renaming back to an archived name restores that sex.
func (e *Engine) setName(ctx context.Context, userID string, intent *alexa.Intent) *Result {
	name := strings.TrimSpace(intent.SlotValue(slotDog))
	if name == "" {
		return &Result{Delegate: true, Question: QuestionNameAsked}
	}

	dog := e.loadDog(ctx, userID)
	if dog == nil {
		dog = domain.NewDog(name)
		e.saveDog(ctx, userID, dog)
	} else if dog.Rename(name) {
		e.saveDog(ctx, userID, dog)
	}

	greeting := fmt.Sprintf(speechNameSet, dog.Name, dog.Name)

	// A restored sex of unknown still means we have to ask.
	if !dog.Sex.Known() {
		return &Result{
			Speech:    greeting + " " + fmt.Sprintf(speechAskSex, dog.Name),
			Reprompt:  repromptAskSex,
			CardTitle: "Dog name updated",
			CardBody:  fmt.Sprintf("Your dog is now called %s.", dog.Name),
			Question:  QuestionSexAsked,
		}
	}
	return &Result{
		Speech:    greeting + " Should I start training now?",
		Reprompt:  repromptShouldStart,
		CardTitle: "Dog name updated",
		CardBody:  fmt.Sprintf("Your dog is now called %s.", dog.Name),
		Question:  QuestionConfirmStart,
	}
}

// setSex records the dog's sex. A resolution yielding zero or ambiguous
// matches re-elicits the sex; the name already given is never re-asked.
func (e *Engine) setSex(ctx context.Context, userID string, intent *alexa.Intent) *Result {
	dog := e.loadDog(ctx, userID)

	name := strings.TrimSpace(intent.SlotValue(slotDog))
	if name == "" && dog.HasName() {
		name = dog.Name
	}
	if name == "" {
		return &Result{Delegate: true, Question: QuestionNameAsked}
	}

	value, ok := intent.ResolvedSlotValue(slotSex)
	if !ok {
		value = intent.SlotValue(slotSex)
	}
	sex, ok := domain.ParseSex(value)
	if !ok {
		return &Result{
			Speech:   fmt.Sprintf(speechSexUnclear, name),
			Reprompt: repromptAskSex,
			Question: QuestionSexAsked,
		}
	}

	if dog == nil {
		dog = domain.NewDog(name)
	} else {
		dog.Rename(name)
	}
	dog.Sex = sex
	e.saveDog(ctx, userID, dog)

	return &Result{
		Speech:    fmt.Sprintf(speechSexSet, dog.Name, dog.Sex.Praise()),
		Reprompt:  repromptShouldStart,
		CardTitle: "Dog profile updated",
		CardBody:  fmt.Sprintf("%s is a %s.", dog.Name, dog.Sex.Praise()),
		Question:  QuestionConfirmStart,
	}
}

// startTraining runs the scripted session once the name and sex are known,
// asking for whichever is missing first. The first two sessions get an
// explanatory confirmation instead of starting immediately.
func (e *Engine) startTraining(ctx context.Context, userID string, intent *alexa.Intent, confirmed bool) *Result {
	dog := e.loadDog(ctx, userID)

	name := strings.TrimSpace(intent.SlotValue(slotDog))
	if name == "" && dog == nil {
		return &Result{Delegate: true, Question: QuestionNameAsked}
	}
	if name != "" {
		if dog == nil {
			dog = domain.NewDog(name)
			e.saveDog(ctx, userID, dog)
		} else if dog.Rename(name) {
			e.saveDog(ctx, userID, dog)
		}
	}

	if !dog.Sex.Known() {
		return &Result{
			Speech:   fmt.Sprintf(speechAskSex, dog.Name),
			Reprompt: repromptAskSex,
			Question: QuestionSexAsked,
		}
	}

	if dog.TrainingCount < explainedTrainings && !confirmed {
		return &Result{
			SSML:      confirmationSpeech(dog.Name),
			Reprompt:  repromptReadyToGo,
			CardTitle: "Prepare Training",
			CardBody:  confirmationCard(dog.Name),
			Question:  QuestionConfirmTraining,
		}
	}
	return e.train(ctx, userID, dog)
}

// train plays the scripted session and counts it as completed.
func (e *Engine) train(ctx context.Context, userID string, dog *domain.Dog) *Result {
	dog.TrainingCount++
	e.saveDog(ctx, userID, dog)

	return &Result{
		SSML:      trainingScript(dog.Name, dog.Sex),
		Reprompt:  repromptTrainAgain,
		CardTitle: "Start training",
		CardBody:  cardBodyTraining,
		Question:  QuestionConfirmStart,
	}
}

// affirm interprets a bare "yes" through the last question asked.
// An absent or unexpected last question ends the session fail-safe.
func (e *Engine) affirm(ctx context.Context, userID string, intent *alexa.Intent, last Question) *Result {
	switch last {
	case QuestionConfirmStart:
		return e.startTraining(ctx, userID, intent, false)
	case QuestionConfirmTraining:
		dog := e.loadDog(ctx, userID)
		if dog == nil {
			e.log.Warn("training confirmed but no profile known", "user_id", userID)
			return &Result{Delegate: true, Question: QuestionNameAsked}
		}
		return e.train(ctx, userID, dog)
	case QuestionNameAsked:
		return e.setName(ctx, userID, intent)
	case QuestionNone, QuestionSexAsked:
	}
	e.log.Warn("no question pending for affirmation, ending session", "user_id", userID, "last_question", string(last))
	return e.endSession(ctx, userID)
}

// help explains the skill and offers to start.
func (e *Engine) help() *Result {
	return &Result{
		Speech:    speechHelp,
		Reprompt:  repromptStartNow,
		CardTitle: "Help for Dog trainer",
		CardBody:  speechHelp,
		Question:  QuestionConfirmStart,
	}
}

// endSession emits the farewell, naming the dog when the profile is known.
func (e *Engine) endSession(ctx context.Context, userID string) *Result {
	dog := e.loadDog(ctx, userID)
	var name string
	if dog.HasName() {
		name = dog.Name
	}
	return &Result{
		Speech:     speechGoodbye,
		CardTitle:  "Session Ended",
		CardBody:   farewellCard(name),
		EndSession: true,
	}
}

// loadDog degrades store read failures to "no profile known".
func (e *Engine) loadDog(ctx context.Context, userID string) *domain.Dog {
	dog, err := e.repo.GetDog(ctx, userID)
	if err != nil {
		e.log.Warn("profile read failed, treating as absent", "user_id", userID, "error", err)
		return nil
	}
	return dog
}

// saveDog logs write failures and keeps the turn going; persistence is
// best effort, never transactional across turns.
func (e *Engine) saveDog(ctx context.Context, userID string, dog *domain.Dog) {
	if err := e.repo.PutDog(ctx, userID, dog); err != nil {
		e.log.Error("profile write failed", "user_id", userID, "error", err)
	}
}
