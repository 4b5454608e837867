package chat

import (
	"context"
	"errors"
	"testing"

	"glowdesk/internal/completion"
	"glowdesk/internal/conversation"
	"glowdesk/internal/models"
	"glowdesk/internal/topic"
	"glowdesk/internal/view"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCompleter struct {
	reply completion.Reply
	err   error
	calls [][]models.Message
}

func (f *fakeCompleter) Complete(_ context.Context, msgs []models.Message) (completion.Reply, error) {
	f.calls = append(f.calls, msgs)
	return f.reply, f.err
}

func (f *fakeCompleter) last() []models.Message { return f.calls[len(f.calls)-1] }

type fakeArchive struct {
	msgs []models.Message
	err  error
}

func (f *fakeArchive) Record(m models.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, m)
	return nil
}

var texts = Texts{OffTopic: "off topic", Failure: "failed", Pending: "Thinking..."}

type harness struct {
	session   *Session
	completer *fakeCompleter
	buf       *view.Buffer
	archive   *fakeArchive
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		completer: &fakeCompleter{reply: completion.Reply{Content: "Try a hydrating shampoo.", PromptTokens: 10, CompletionTokens: 4}},
		buf:       &view.Buffer{},
		archive:   &fakeArchive{},
	}
	h.session = New(Options{
		Settings:  conversation.Settings{SystemPrompt: "sys", ContextTracking: true, ShowHistory: true},
		Texts:     texts,
		Gate:      topic.NewGate(topic.DefaultKeywords()),
		Completer: h.completer,
		Renderer:  h.buf,
		Archive:   h.archive,
	})
	return h
}

func TestSubmit_OnTopicQuestion(t *testing.T) {
	h := newHarness(t)
	q := "What shampoo do you recommend for dry hair?"

	reply, err := h.session.Submit(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, "Try a hydrating shampoo.", reply.Content)

	hist := h.session.State().History()
	require.Len(t, hist, 3)
	assert.Equal(t, models.Message{Role: models.RoleUser, Content: q}, hist[1])
	assert.Equal(t, models.Message{Role: models.RoleAssistant, Content: reply.Content}, hist[2])

	require.Len(t, h.completer.calls, 1)
	assert.Equal(t, hist[:2], h.completer.last())

	assert.Equal(t, []view.Instruction{view.User(q), view.AI(reply.Content)}, h.buf.Items())
	assert.Equal(t, hist[1:], h.archive.msgs)
	assert.Equal(t, models.Usage{PromptTokens: 10, CompletionTokens: 4}, h.session.Usage())
	assert.False(t, h.session.State().Pending())
}

func TestSubmit_TrimsInput(t *testing.T) {
	h := newHarness(t)
	_, err := h.session.Submit(context.Background(), "  shampoo?  \n")
	require.NoError(t, err)
	assert.Equal(t, "shampoo?", h.session.State().History()[1].Content)
}

func TestSubmit_EmptyInput(t *testing.T) {
	h := newHarness(t)
	for _, in := range []string{"", "   ", "\n\t"} {
		_, err := h.session.Submit(context.Background(), in)
		assert.ErrorIs(t, err, ErrEmptyInput)
	}
	assert.Equal(t, 1, h.session.State().Len())
	assert.Empty(t, h.completer.calls)
	assert.Equal(t, 0, h.buf.Len())
}

func TestSubmit_OffTopic(t *testing.T) {
	h := newHarness(t)
	_, err := h.session.Submit(context.Background(), "What's the weather today?")
	require.ErrorIs(t, err, ErrOffTopic)

	assert.Equal(t, 1, h.session.State().Len())
	assert.Empty(t, h.completer.calls)
	assert.Empty(t, h.archive.msgs)
	assert.Equal(t, []view.Instruction{view.User("What's the weather today?"), view.AI("off topic")}, h.buf.Items())
}

func TestSubmit_RequestFailed(t *testing.T) {
	h := newHarness(t)
	h.completer.err = errors.New("connection refused")

	_, err := h.session.Submit(context.Background(), "serum tips")
	require.ErrorIs(t, err, ErrRequestFailed)

	hist := h.session.State().History()
	require.Len(t, hist, 2)
	assert.Equal(t, models.RoleUser, hist[1].Role)
	assert.False(t, h.session.State().Pending())
	assert.Equal(t, []view.Instruction{view.User("serum tips"), view.AI("failed")}, h.buf.Items())

	// the session stays usable
	h.completer.err = nil
	_, err = h.session.Submit(context.Background(), "serum tips again")
	require.NoError(t, err)
	assert.Equal(t, 4, h.session.State().Len())
}

func TestSubmit_MalformedReplyNotAppended(t *testing.T) {
	h := newHarness(t)
	h.completer.err = completion.ErrRequestFailed

	_, err := h.session.Submit(context.Background(), "mascara?")
	require.ErrorIs(t, err, ErrRequestFailed)
	for _, m := range h.session.State().History() {
		assert.NotEqual(t, models.RoleAssistant, m.Role)
	}
}

func TestSubmit_ContextTrackingOffSendsTwoMessages(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	for _, q := range []string{"skin care?", "hair care?", "nail care?"} {
		_, err := h.session.Submit(ctx, q)
		require.NoError(t, err)
	}
	assert.Len(t, h.completer.last(), 6)

	h.session.ToggleContext()
	_, err := h.session.Submit(ctx, "lipstick shades?")
	require.NoError(t, err)

	sent := h.completer.last()
	require.Len(t, sent, 2)
	assert.Equal(t, models.RoleSystem, sent[0].Role)
	assert.Equal(t, models.Message{Role: models.RoleUser, Content: "lipstick shades?"}, sent[1])
	assert.Equal(t, 9, h.session.State().Len())
}

func TestBegin_RejectsWhilePending(t *testing.T) {
	h := newHarness(t)
	req, err := h.session.Begin("toner?")
	require.NoError(t, err)

	_, err = h.session.Begin("cleanser?")
	assert.ErrorIs(t, err, ErrBusy)
	assert.Equal(t, 2, h.session.State().Len())

	reply, err := h.session.Send(context.Background(), req)
	require.NoError(t, h.session.Finish(reply, err))
	_, err = h.session.Begin("cleanser?")
	assert.NoError(t, err)
}

func TestBegin_PendingView(t *testing.T) {
	h := newHarness(t)
	_, err := h.session.Submit(context.Background(), "toner?")
	require.NoError(t, err)

	_, err = h.session.Begin("cleanser?")
	require.NoError(t, err)
	assert.Equal(t, []view.Instruction{
		view.User("toner?"), view.AI("Try a hydrating shampoo."), view.User("cleanser?"), view.AI("Thinking..."),
	}, h.buf.Items())
	assert.Equal(t, h.buf.Items(), h.session.View())
}

func TestBegin_PendingViewCollapsed(t *testing.T) {
	h := newHarness(t)
	_, err := h.session.Submit(context.Background(), "toner?")
	require.NoError(t, err)
	h.session.ToggleHistory()

	_, err = h.session.Begin("cleanser?")
	require.NoError(t, err)
	assert.Equal(t, []view.Instruction{view.User("cleanser?"), view.AI("Thinking...")}, h.buf.Items())
}

func TestFinish_FailureViewCollapsed(t *testing.T) {
	h := newHarness(t)
	_, err := h.session.Submit(context.Background(), "toner?")
	require.NoError(t, err)
	h.session.ToggleHistory()

	h.completer.err = errors.New("boom")
	_, err = h.session.Submit(context.Background(), "cleanser?")
	require.ErrorIs(t, err, ErrRequestFailed)
	assert.Equal(t, []view.Instruction{view.User("cleanser?"), view.AI("failed")}, h.buf.Items())
}

func TestFinish_FailureViewFull(t *testing.T) {
	h := newHarness(t)
	_, err := h.session.Submit(context.Background(), "toner?")
	require.NoError(t, err)

	h.completer.err = errors.New("boom")
	_, err = h.session.Submit(context.Background(), "cleanser?")
	require.ErrorIs(t, err, ErrRequestFailed)
	assert.Equal(t, []view.Instruction{
		view.User("toner?"), view.AI("Try a hydrating shampoo."), view.User("cleanser?"), view.AI("failed"),
	}, h.buf.Items())
}

func TestToggles_RerenderAndLabels(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.session.Submit(ctx, "q1 skin")
	require.NoError(t, err)
	h.completer.reply.Content = "a2"
	_, err = h.session.Submit(ctx, "q2 skin")
	require.NoError(t, err)
	assert.Equal(t, 4, h.buf.Len())

	c, hl := h.session.Labels()
	assert.Equal(t, "Context Tracking: ON", c)
	assert.Equal(t, "Show Full Conversation: ON", hl)

	assert.False(t, h.session.ToggleHistory())
	assert.Equal(t, []view.Instruction{view.User("q2 skin"), view.AI("a2")}, h.buf.Items())

	assert.False(t, h.session.ToggleContext())
	c, hl = h.session.Labels()
	assert.Equal(t, "Context Tracking: OFF", c)
	assert.Equal(t, "Show Full Conversation: OFF", hl)

	// toggles never mutate history
	assert.Equal(t, 5, h.session.State().Len())
}

func TestArchiveFailureDoesNotFailTurn(t *testing.T) {
	h := newHarness(t)
	h.archive.err = errors.New("disk full")
	_, err := h.session.Submit(context.Background(), "sunscreen?")
	require.NoError(t, err)
	assert.Equal(t, 3, h.session.State().Len())
}

func TestNew_RestoresHistory(t *testing.T) {
	buf := &view.Buffer{}
	s := New(Options{
		Settings: conversation.Settings{SystemPrompt: "sys", ShowHistory: true},
		Texts:    texts,
		Gate:     topic.NewGate([]string{"hair"}),
		Renderer: buf,
		History: []models.Message{
			{Role: models.RoleUser, Content: "hair?"},
			{Role: models.RoleAssistant, Content: "yes"},
		},
	})
	assert.Equal(t, 3, s.State().Len())
	assert.Equal(t, []view.Instruction{view.User("hair?"), view.AI("yes")}, buf.Items())
	assert.NotEmpty(t, s.ID())
}
