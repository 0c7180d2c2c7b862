package dialog

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/ashureev/dogtrainer/internal/alexa"
	"github.com/ashureev/dogtrainer/internal/domain"
)

// memRepo is an in-memory Repository for tests. failReads/failWrites
// simulate an unavailable store.
type memRepo struct {
	dogs       map[string]*domain.Dog
	failReads  bool
	failWrites bool
	puts       int
}

func newMemRepo() *memRepo {
	return &memRepo{dogs: map[string]*domain.Dog{}}
}

func (m *memRepo) GetDog(_ context.Context, userID string) (*domain.Dog, error) {
	if m.failReads {
		return nil, errors.New("store unavailable")
	}
	dog, ok := m.dogs[userID]
	if !ok {
		return nil, nil
	}
	copied := *dog
	copied.PriorNames = map[string]domain.Sex{}
	for k, v := range dog.PriorNames {
		copied.PriorNames[k] = v
	}
	return &copied, nil
}

func (m *memRepo) PutDog(_ context.Context, userID string, dog *domain.Dog) error {
	if m.failWrites {
		return errors.New("store unavailable")
	}
	m.puts++
	copied := *dog
	m.dogs[userID] = &copied
	return nil
}

func (m *memRepo) Ping(context.Context) error { return nil }
func (m *memRepo) Close() error               { return nil }

func newTestEngine(repo *memRepo) *Engine {
	return NewEngine(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func nameIntent(name string) *alexa.Intent {
	intent := &alexa.Intent{Name: "SetDogNameIntent", Slots: map[string]alexa.Slot{}}
	if name != "" {
		intent.Slots[slotDog] = alexa.Slot{Name: slotDog, Value: name}
	}
	return intent
}

func sexIntent(resolved string) *alexa.Intent {
	slot := alexa.Slot{Name: slotSex, Value: resolved}
	if resolved != "" {
		slot.Resolutions = &alexa.Resolutions{
			ResolutionsPerAuthority: []alexa.Resolution{{
				Status: alexa.ResolutionStatus{Code: "ER_SUCCESS_MATCH"},
				Values: []alexa.ResolutionValue{{Value: alexa.ResolvedValue{Name: resolved}}},
			}},
		}
	}
	return &alexa.Intent{Name: "SetDogSexIntent", Slots: map[string]alexa.Slot{slotSex: slot}}
}

func ambiguousSexIntent() *alexa.Intent {
	return &alexa.Intent{Name: "SetDogSexIntent", Slots: map[string]alexa.Slot{
		slotSex: {
			Name:  slotSex,
			Value: "it",
			Resolutions: &alexa.Resolutions{
				ResolutionsPerAuthority: []alexa.Resolution{{
					Status: alexa.ResolutionStatus{Code: "ER_SUCCESS_NO_MATCH"},
				}},
			},
		},
	}}
}

func trainingIntent(name string) *alexa.Intent {
	intent := &alexa.Intent{Name: "StartTrainingIntent", Slots: map[string]alexa.Slot{}}
	if name != "" {
		intent.Slots[slotDog] = alexa.Slot{Name: slotDog, Value: name}
	}
	return intent
}

func TestLaunchAsksToStart(t *testing.T) {
	e := newTestEngine(newMemRepo())

	res := e.Launch(context.Background(), "user-1")

	if res.EndSession {
		t.Error("Launch must not end the session")
	}
	if res.Question != QuestionConfirmStart {
		t.Errorf("Expected confirmStart, got %q", res.Question)
	}
	if res.Speech == "" {
		t.Error("Expected a welcome prompt")
	}
}

func TestSetNameCreatesProfileAndAsksSex(t *testing.T) {
	repo := newMemRepo()
	e := newTestEngine(repo)

	res := e.HandleIntent(context.Background(), "user-1", alexa.IntentSetDogName, nameIntent("Rex"), QuestionNone)

	dog := repo.dogs["user-1"]
	if dog == nil {
		t.Fatal("Expected profile created")
	}
	if dog.Name != "Rex" || dog.Sex != domain.SexUnknown || dog.TrainingCount != 0 {
		t.Errorf("Unexpected profile %+v", dog)
	}
	if res.Question != QuestionSexAsked {
		t.Errorf("Expected sexAsked, got %q", res.Question)
	}
	if !strings.Contains(res.Speech, "boy or a girl") {
		t.Errorf("Expected sex question, got %q", res.Speech)
	}
}

func TestSetNameWithoutSlotDelegates(t *testing.T) {
	repo := newMemRepo()
	e := newTestEngine(repo)

	res := e.HandleIntent(context.Background(), "user-1", alexa.IntentSetDogName, nameIntent(""), QuestionNone)

	if !res.Delegate {
		t.Error("Expected delegation when the name slot is empty")
	}
	if res.Question != QuestionNameAsked {
		t.Errorf("Expected nameAsked, got %q", res.Question)
	}
	if len(repo.dogs) != 0 {
		t.Error("No profile must be created without a name")
	}
}

func TestRenameBackRestoresSexAndSkipsSexQuestion(t *testing.T) {
	repo := newMemRepo()
	e := newTestEngine(repo)
	ctx := context.Background()

	e.HandleIntent(ctx, "user-1", alexa.IntentSetDogName, nameIntent("Rex"), QuestionNone)
	e.HandleIntent(ctx, "user-1", alexa.IntentSetDogSex, sexIntent("male"), QuestionSexAsked)
	e.HandleIntent(ctx, "user-1", alexa.IntentSetDogName, nameIntent("Fido"), QuestionConfirmStart)

	res := e.HandleIntent(ctx, "user-1", alexa.IntentSetDogName, nameIntent("Rex"), QuestionSexAsked)

	dog := repo.dogs["user-1"]
	if dog.Sex != domain.SexMale {
		t.Errorf("Expected restored sex male, got %v", dog.Sex)
	}
	if res.Question != QuestionConfirmStart {
		t.Errorf("Expected confirmStart after restoring a known sex, got %q", res.Question)
	}
	if dog.RenameCount != 2 {
		t.Errorf("Expected rename count 2, got %d", dog.RenameCount)
	}
	if _, ok := dog.PriorNames["rex"]; ok {
		t.Error("Current name must not remain in PriorNames")
	}
}

func TestRenameBackToUnknownSexStillAsksSex(t *testing.T) {
	repo := newMemRepo()
	e := newTestEngine(repo)
	ctx := context.Background()

	// Rex archived with sex unknown, Fido gets a sex, then back to Rex.
	e.HandleIntent(ctx, "user-1", alexa.IntentSetDogName, nameIntent("Rex"), QuestionNone)
	e.HandleIntent(ctx, "user-1", alexa.IntentSetDogName, nameIntent("Fido"), QuestionSexAsked)
	e.HandleIntent(ctx, "user-1", alexa.IntentSetDogSex, sexIntent("female"), QuestionSexAsked)

	res := e.HandleIntent(ctx, "user-1", alexa.IntentSetDogName, nameIntent("Rex"), QuestionConfirmStart)

	if res.Question != QuestionSexAsked {
		t.Errorf("Expected sexAsked for a restored unknown sex, got %q", res.Question)
	}
}

func TestSetSexInvalidResolutionReasksSex(t *testing.T) {
	repo := newMemRepo()
	e := newTestEngine(repo)
	ctx := context.Background()

	e.HandleIntent(ctx, "user-1", alexa.IntentSetDogName, nameIntent("Rex"), QuestionNone)
	res := e.HandleIntent(ctx, "user-1", alexa.IntentSetDogSex, ambiguousSexIntent(), QuestionSexAsked)

	if res.EndSession {
		t.Error("Ambiguous resolution must not end the session")
	}
	if res.Question != QuestionSexAsked {
		t.Errorf("Expected sexAsked re-elicit, got %q", res.Question)
	}
	if !strings.Contains(res.Speech, "Rex") {
		t.Errorf("Re-ask must keep the already-given name, got %q", res.Speech)
	}
	if repo.dogs["user-1"].Sex != domain.SexUnknown {
		t.Error("Invalid resolution must not record a sex")
	}
}

func TestSetSexWithoutNameDelegates(t *testing.T) {
	e := newTestEngine(newMemRepo())

	res := e.HandleIntent(context.Background(), "user-1", alexa.IntentSetDogSex, sexIntent("male"), QuestionNone)

	if !res.Delegate || res.Question != QuestionNameAsked {
		t.Errorf("Expected name delegation, got %+v", res)
	}
}

func TestStartTrainingAsksForMissingSex(t *testing.T) {
	repo := newMemRepo()
	e := newTestEngine(repo)
	ctx := context.Background()

	e.HandleIntent(ctx, "user-1", alexa.IntentSetDogName, nameIntent("Rex"), QuestionNone)
	res := e.HandleIntent(ctx, "user-1", alexa.IntentStartTraining, trainingIntent(""), QuestionConfirmStart)

	if res.Question != QuestionSexAsked {
		t.Errorf("Expected sexAsked, got %q", res.Question)
	}
	if !strings.Contains(res.Speech, "Rex") {
		t.Errorf("Known name must be carried into the sex question, got %q", res.Speech)
	}
}

func TestStartTrainingBelowThresholdAsksConfirmation(t *testing.T) {
	repo := newMemRepo()
	e := newTestEngine(repo)
	ctx := context.Background()

	dog := domain.NewDog("Rex")
	dog.Sex = domain.SexMale
	repo.dogs["user-1"] = dog

	res := e.HandleIntent(ctx, "user-1", alexa.IntentStartTraining, trainingIntent(""), QuestionConfirmStart)

	if res.Question != QuestionConfirmTraining {
		t.Errorf("Expected confirmTraining, got %q", res.Question)
	}
	if repo.dogs["user-1"].TrainingCount != 0 {
		t.Error("A confirmation prompt must not count as training")
	}
	if res.SSML == "" {
		t.Error("Expected the explanatory confirmation speech")
	}
}

func TestAffirmAfterConfirmationRunsTraining(t *testing.T) {
	repo := newMemRepo()
	e := newTestEngine(repo)
	ctx := context.Background()

	dog := domain.NewDog("Rex")
	dog.Sex = domain.SexMale
	repo.dogs["user-1"] = dog

	res := e.HandleIntent(ctx, "user-1", alexa.IntentYes, &alexa.Intent{Name: "AMAZON.YesIntent"}, QuestionConfirmTraining)

	if repo.dogs["user-1"].TrainingCount != 1 {
		t.Errorf("Expected training count 1, got %d", repo.dogs["user-1"].TrainingCount)
	}
	if res.Question != QuestionConfirmStart {
		t.Errorf("Expected confirmStart after training, got %q", res.Question)
	}
	if !strings.Contains(res.SSML, "Rex, come here!") {
		t.Errorf("Expected training script, got %q", res.SSML)
	}
	if !strings.Contains(res.SSML, "Good boy!") {
		t.Errorf("Expected sex-appropriate praise, got %q", res.SSML)
	}
}

func TestStartTrainingAtThresholdRunsImmediately(t *testing.T) {
	repo := newMemRepo()
	e := newTestEngine(repo)
	ctx := context.Background()

	dog := domain.NewDog("Luna")
	dog.Sex = domain.SexFemale
	dog.TrainingCount = 2
	repo.dogs["user-1"] = dog

	res := e.HandleIntent(ctx, "user-1", alexa.IntentStartTraining, trainingIntent(""), QuestionConfirmStart)

	if repo.dogs["user-1"].TrainingCount != 3 {
		t.Errorf("Expected training count 3, got %d", repo.dogs["user-1"].TrainingCount)
	}
	if res.Question != QuestionConfirmStart {
		t.Errorf("Expected confirmStart, got %q", res.Question)
	}
	if !strings.Contains(res.SSML, "Good girl!") {
		t.Errorf("Expected female praise word, got %q", res.SSML)
	}
}

func TestAffirmWithoutQuestionEndsSession(t *testing.T) {
	e := newTestEngine(newMemRepo())

	res := e.HandleIntent(context.Background(), "user-1", alexa.IntentYes, &alexa.Intent{Name: "AMAZON.YesIntent"}, QuestionNone)

	if !res.EndSession {
		t.Error("Affirmation with no recorded question must end the session")
	}
}

func TestDenyEndsSessionWithDogName(t *testing.T) {
	repo := newMemRepo()
	e := newTestEngine(repo)
	ctx := context.Background()

	repo.dogs["user-1"] = domain.NewDog("Rex")

	res := e.HandleIntent(ctx, "user-1", alexa.IntentNo, &alexa.Intent{Name: "AMAZON.NoIntent"}, QuestionConfirmStart)

	if !res.EndSession {
		t.Error("No must end the session")
	}
	if !strings.Contains(res.CardBody, "Rex") {
		t.Errorf("Farewell card must name the dog, got %q", res.CardBody)
	}
}

func TestStopWithoutProfileUsesGenericFarewell(t *testing.T) {
	e := newTestEngine(newMemRepo())

	res := e.HandleIntent(context.Background(), "user-1", alexa.IntentStop, &alexa.Intent{Name: "AMAZON.StopIntent"}, QuestionNone)

	if !res.EndSession {
		t.Error("Stop must end the session")
	}
	if !strings.Contains(res.CardBody, "you") {
		t.Errorf("Expected generic farewell, got %q", res.CardBody)
	}
}

func TestUnknownIntentEndsSessionGracefully(t *testing.T) {
	e := newTestEngine(newMemRepo())

	res := e.HandleIntent(context.Background(), "user-1", alexa.IntentUnknown, &alexa.Intent{Name: "BogusIntent"}, QuestionConfirmStart)

	if !res.EndSession {
		t.Error("Unknown intents must degrade to ending the session")
	}
}

func TestHelpOffersToStart(t *testing.T) {
	e := newTestEngine(newMemRepo())

	res := e.HandleIntent(context.Background(), "user-1", alexa.IntentHelp, &alexa.Intent{Name: "AMAZON.HelpIntent"}, QuestionNone)

	if res.Question != QuestionConfirmStart {
		t.Errorf("Expected confirmStart, got %q", res.Question)
	}
	if res.EndSession {
		t.Error("Help must not end the session")
	}
}

func TestReadFailureDegradesToAbsentProfile(t *testing.T) {
	repo := newMemRepo()
	repo.failReads = true
	e := newTestEngine(repo)

	res := e.HandleIntent(context.Background(), "user-1", alexa.IntentStartTraining, trainingIntent(""), QuestionConfirmStart)

	if !res.Delegate || res.Question != QuestionNameAsked {
		t.Errorf("Read failure must degrade to asking the name, got %+v", res)
	}
}

func TestWriteFailureStillAnswers(t *testing.T) {
	repo := newMemRepo()
	repo.failWrites = true
	e := newTestEngine(repo)

	res := e.HandleIntent(context.Background(), "user-1", alexa.IntentSetDogName, nameIntent("Rex"), QuestionNone)

	if res.Speech == "" {
		t.Error("Write failure must still produce a spoken response")
	}
	if res.EndSession {
		t.Error("Write failure must not end the session")
	}
}

func TestQuestionAttributesRoundTrip(t *testing.T) {
	for _, q := range []Question{QuestionConfirmStart, QuestionConfirmTraining, QuestionNameAsked, QuestionSexAsked} {
		if got := QuestionFromAttributes(q.Attributes()); got != q {
			t.Errorf("Round trip for %q gave %q", q, got)
		}
	}
	if got := QuestionFromAttributes(nil); got != QuestionNone {
		t.Errorf("Expected none for nil attributes, got %q", got)
	}
	if got := QuestionFromAttributes(map[string]any{attrLastQuestion: 7}); got != QuestionNone {
		t.Errorf("Expected none for non-string marker, got %q", got)
	}
	if got := QuestionFromAttributes(map[string]any{attrLastQuestion: "bogus"}); got != QuestionNone {
		t.Errorf("Expected none for unrecognized marker, got %q", got)
	}
}
