package intake

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

type fakeSubmitter struct {
	mu      sync.Mutex
	calls   []AnswerSet
	result  *SubmissionResult
	err     error
	release chan struct{}
}

func (f *fakeSubmitter) Submit(_ context.Context, answers AnswerSet) (*SubmissionResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, answers)
	release := f.release
	f.mu.Unlock()
	if release != nil {
		<-release
	}
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	return &SubmissionResult{TicketID: "t-1", ExternalKey: "TCK-ABCD1234"}, nil
}

func (f *fakeSubmitter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func testCatalog() Catalog {
	return Catalog{
		Departments: []Option{{ID: "d1", Name: "IT"}, {ID: "d2", Name: "Billing"}},
		Categories:  []Option{{ID: "c1", Name: "Incident"}, {ID: "c2", Name: "Question"}},
		Priorities:  []Option{{ID: "p1", Name: "Low"}, {ID: "p2", Name: "High"}},
	}
}

func newTestConversation(t *testing.T, catalog Catalog, submitter TicketSubmitter) *Conversation {
	t.Helper()
	if submitter == nil {
		submitter = &fakeSubmitter{}
	}
	return NewConversation(ConversationConfig{
		ID:            "sess-1",
		Catalog:       catalog,
		Submitter:     submitter,
		SubmitTimeout: 2 * time.Second,
	})
}

func waitDone(t *testing.T, conv *Conversation) {
	t.Helper()
	select {
	case <-conv.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("submission did not finish in time")
	}
}

func lastTurn(turns []Turn) Turn {
	return turns[len(turns)-1]
}

func TestStartEmitsWelcomeAndFirstPrompt(t *testing.T) {
	conv := newTestConversation(t, testCatalog(), nil)
	turns := conv.Start()

	require.Len(t, turns, 2)
	assert.Equal(t, SpeakerBot, turns[0].Speaker)
	assert.Equal(t, msgWelcome, turns[0].Text)
	assert.Equal(t, "What email address can we reach you at?", turns[1].Text)
	assert.Empty(t, turns[1].Suggestions)
	assert.Equal(t, PhaseAsking, conv.Phase())
}

func TestStartIsIdempotent(t *testing.T) {
	conv := newTestConversation(t, testCatalog(), nil)
	first := conv.Start()
	second := conv.Start()

	assert.NotEmpty(t, first)
	assert.Nil(t, second)
	assert.Len(t, conv.Transcript(), len(first))
}

func TestStartReportsCatalogDegradationOnce(t *testing.T) {
	catalog := Catalog{LoadErr: errors.New("db down")}
	conv := newTestConversation(t, catalog, nil)
	turns := conv.Start()

	require.Len(t, turns, 3)
	assert.Equal(t, msgCatalogDegraded, turns[1].Text)
}

func TestEmptyInputProducesValidationTurnOnly(t *testing.T) {
	conv := newTestConversation(t, testCatalog(), nil)
	conv.Start()
	before := len(conv.Transcript())

	turns, err := conv.SubmitAnswer("   ")
	require.NoError(t, err)
	require.Len(t, turns, 1)
	assert.Equal(t, SpeakerBot, turns[0].Speaker)
	assert.Equal(t, msgEmptyInput, turns[0].Text)
	// no user turn was recorded and the step did not move
	assert.Len(t, conv.Transcript(), before+1)
	assert.Empty(t, conv.Answers().Email)
}

func TestInvalidEmailRetriesInPlace(t *testing.T) {
	conv := newTestConversation(t, testCatalog(), nil)
	conv.Start()

	for _, bad := range []string{"nope", "a@b", "no spaces@x.com", "@x.com"} {
		turns, err := conv.SubmitAnswer(bad)
		require.NoError(t, err)
		require.Len(t, turns, 2)
		assert.Equal(t, bad, turns[0].Text)
		assert.Equal(t, msgInvalidEmail, turns[1].Text)
		assert.Empty(t, conv.Answers().Email)
	}

	turns, err := conv.SubmitAnswer("bob@x.com")
	require.NoError(t, err)
	assert.Equal(t, "Which department should handle this?", lastTurn(turns).Text)
	assert.Equal(t, "bob@x.com", conv.Answers().Email)
}

func TestCatalogMatchIsCaseInsensitive(t *testing.T) {
	conv := newTestConversation(t, testCatalog(), nil)
	conv.Start()
	_, err := conv.SubmitAnswer("bob@x.com")
	require.NoError(t, err)

	turns, err := conv.SubmitAnswer("billing")
	require.NoError(t, err)

	answer := conv.Answers().Department
	require.NotNil(t, answer.Ref)
	assert.Equal(t, "d2", answer.Ref.ID)
	assert.Equal(t, "Billing", answer.Ref.Name)
	assert.Empty(t, answer.FreeText)
	// known department keeps the category question
	assert.Equal(t, "What kind of issue is it?", lastTurn(turns).Text)
	assert.ElementsMatch(t, []string{"Incident", "Question"}, lastTurn(turns).Suggestions)
}

func TestUnknownDepartmentKeepsFreeTextAndSkipsCategory(t *testing.T) {
	conv := newTestConversation(t, testCatalog(), nil)
	conv.Start()
	_, err := conv.SubmitAnswer("bob@x.com")
	require.NoError(t, err)

	turns, err := conv.SubmitAnswer("Zarquon")
	require.NoError(t, err)

	answer := conv.Answers().Department
	assert.Nil(t, answer.Ref)
	assert.Equal(t, "Zarquon", answer.FreeText)
	assert.Equal(t, "How urgent is it?", lastTurn(turns).Text)
	assert.False(t, conv.Answers().Category.Answered())
}

func TestSuggestionsComeFromCatalog(t *testing.T) {
	conv := newTestConversation(t, testCatalog(), nil)
	conv.Start()
	turns, err := conv.SubmitAnswer("bob@x.com")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"IT", "Billing"}, lastTurn(turns).Suggestions)
}

func TestSelectSuggestionBehavesLikeTypedAnswer(t *testing.T) {
	conv := newTestConversation(t, testCatalog(), nil)
	conv.Start()
	_, err := conv.SubmitAnswer("bob@x.com")
	require.NoError(t, err)

	_, err = conv.SelectSuggestion("IT")
	require.NoError(t, err)
	require.NotNil(t, conv.Answers().Department.Ref)
	assert.Equal(t, "d1", conv.Answers().Department.Ref.ID)
}

func TestFullRunSubmitsExactlyOnce(t *testing.T) {
	submitter := &fakeSubmitter{result: &SubmissionResult{
		TicketID:        "t-9",
		ExternalKey:     "TCK-FEEDFACE",
		DepartmentLabel: "Billing",
		PriorityLabel:   "High",
	}}
	conv := newTestConversation(t, testCatalog(), submitter)
	conv.Start()

	for _, answer := range []string{"bob@x.com", "Zarquon", "High", "the printer is jammed again"} {
		turns, err := conv.SubmitAnswer(answer)
		require.NoError(t, err)
		require.NotEmpty(t, turns)
	}
	assert.Equal(t, PhaseSubmitting, conv.Phase())
	waitDone(t, conv)

	require.Equal(t, 1, submitter.callCount())
	answers := submitter.calls[0]
	assert.Equal(t, "bob@x.com", answers.Email)
	assert.Equal(t, "Zarquon", answers.Department.FreeText)
	require.NotNil(t, answers.Priority.Ref)
	assert.Equal(t, "p2", answers.Priority.Ref.ID)
	assert.Equal(t, "the printer is jammed again", answers.Description)

	assert.Equal(t, PhaseSucceeded, conv.Phase())
	require.NotNil(t, conv.Result())
	assert.Equal(t, "TCK-FEEDFACE", conv.Result().ExternalKey)
	assert.Contains(t, lastTurn(conv.Transcript()).Text, "TCK-FEEDFACE")
}

func TestSubmissionFailureSurfacesDomainMessage(t *testing.T) {
	submitter := &fakeSubmitter{err: apperrors.NewValidationError("contact email required", nil)}
	conv := newTestConversation(t, testCatalog(), submitter)
	conv.Start()

	for _, answer := range []string{"bob@x.com", "IT", "Incident", "High", "help"} {
		_, err := conv.SubmitAnswer(answer)
		require.NoError(t, err)
	}
	waitDone(t, conv)

	assert.Equal(t, PhaseFailed, conv.Phase())
	assert.Nil(t, conv.Result())
	assert.Contains(t, lastTurn(conv.Transcript()).Text, "contact email required")
}

func TestAnswerDuringSubmissionIsRejected(t *testing.T) {
	submitter := &fakeSubmitter{release: make(chan struct{})}
	conv := newTestConversation(t, testCatalog(), submitter)
	conv.Start()
	for _, answer := range []string{"bob@x.com", "IT", "Incident", "High", "help"} {
		_, err := conv.SubmitAnswer(answer)
		require.NoError(t, err)
	}

	_, err := conv.SubmitAnswer("late input")
	assert.ErrorIs(t, err, ErrSubmissionInFlight)

	close(submitter.release)
	waitDone(t, conv)

	_, err = conv.SubmitAnswer("even later")
	assert.ErrorIs(t, err, ErrConversationOver)
}

func TestCloseDuringSubmissionDiscardsResult(t *testing.T) {
	submitter := &fakeSubmitter{release: make(chan struct{})}
	conv := newTestConversation(t, testCatalog(), submitter)
	conv.Start()
	for _, answer := range []string{"bob@x.com", "IT", "Incident", "High", "help"} {
		_, err := conv.SubmitAnswer(answer)
		require.NoError(t, err)
	}
	before := len(conv.Transcript())

	conv.Close()
	close(submitter.release)
	waitDone(t, conv)

	// no success or failure turn was appended after closing
	assert.Len(t, conv.Transcript(), before)
	assert.Nil(t, conv.Result())
	_, err := conv.SubmitAnswer("anything")
	assert.ErrorIs(t, err, ErrSessionClosed)
}

func TestTranscriptIsAppendOnlyCopy(t *testing.T) {
	conv := newTestConversation(t, testCatalog(), nil)
	conv.Start()

	snapshot := conv.Transcript()
	snapshot[0].Text = "tampered"

	assert.Equal(t, msgWelcome, conv.Transcript()[0].Text)

	_, err := conv.SubmitAnswer("bob@x.com")
	require.NoError(t, err)
	assert.Greater(t, len(conv.Transcript()), len(snapshot))
}

func TestDescriptionStoredVerbatim(t *testing.T) {
	submitter := &fakeSubmitter{}
	conv := newTestConversation(t, testCatalog(), submitter)
	conv.Start()

	desc := "  spaces and CAPS preserved exactly  "
	for _, answer := range []string{"bob@x.com", "IT", "Incident", "High", desc} {
		_, err := conv.SubmitAnswer(answer)
		require.NoError(t, err)
	}
	waitDone(t, conv)

	require.Equal(t, 1, submitter.callCount())
	assert.Equal(t, desc, submitter.calls[0].Description)
}
