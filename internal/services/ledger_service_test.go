package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"void-backend/internal/auth"
	"void-backend/internal/completion"
	"void-backend/internal/models"
)

func newIdentity(t *testing.T, env *testEnv, username string) auth.Identity {
	t.Helper()
	account, err := env.auth.CreateAccount(context.Background(), username, "pw", "Q", "a")
	require.NoError(t, err)
	return auth.Identity{AccountID: account.ID, Username: account.Username}
}

func TestLedgerService_AppendAndList(t *testing.T) {
	env := newTestEnv(t)
	ledger := NewLedgerService(env.store)
	ctx := context.Background()
	ann := newIdentity(t, env, "ann")

	_, err := ledger.Append(ctx, ann, "user", "hi")
	require.NoError(t, err)
	_, err = ledger.Append(ctx, ann, "assistant", "hello")
	require.NoError(t, err)

	msgs, err := ledger.List(ctx, ann)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, models.RoleUser, msgs[0].Role)
	assert.Equal(t, "hi", msgs[0].Content)
	assert.Equal(t, models.RoleAssistant, msgs[1].Role)
	assert.Equal(t, "hello", msgs[1].Content)
}

func TestLedgerService_ScopedToCaller(t *testing.T) {
	env := newTestEnv(t)
	ledger := NewLedgerService(env.store)
	ctx := context.Background()
	a := newIdentity(t, env, "a")
	b := newIdentity(t, env, "b")

	_, err := ledger.Append(ctx, a, "user", "secret of a")
	require.NoError(t, err)

	msgs, err := ledger.List(ctx, b)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestLedgerService_RejectsUnknownRole(t *testing.T) {
	env := newTestEnv(t)
	ledger := NewLedgerService(env.store)
	ctx := context.Background()
	ann := newIdentity(t, env, "ann")

	for _, role := range []string{"", "system", "model", "User"} {
		_, err := ledger.Append(ctx, ann, role, "x")
		assert.ErrorIs(t, err, ErrValidation, "role %q", role)
	}
	msgs, err := ledger.List(ctx, ann)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

type fakeCompleter struct {
	reply       string
	err         error
	history     []models.Turn
	personality completion.Personality
}

func (f *fakeCompleter) Complete(_ context.Context, history []models.Turn, p completion.Personality) (string, error) {
	f.history = history
	f.personality = p
	return f.reply, f.err
}

func TestChatService_Reply(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ann := newIdentity(t, env, "ann")
	ledger := NewLedgerService(env.store)
	_, err := ledger.Append(ctx, ann, "user", "earlier")
	require.NoError(t, err)

	completer := &fakeCompleter{reply: "Silence."}
	chat := NewChatService(env.store, completer)

	msg, err := chat.Reply(ctx, ann, "Speak.", "Minimalist")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAssistant, msg.Role)
	assert.Equal(t, "Silence.", msg.Content)

	assert.Equal(t, completion.Minimalist, completer.personality)
	assert.Equal(t, []models.Turn{
		{Role: models.RoleUser, Content: "earlier"},
		{Role: models.RoleUser, Content: "Speak."},
	}, completer.history)

	msgs, err := ledger.List(ctx, ann)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, "Silence.", msgs[2].Content)
}

func TestChatService_DefaultPersonality(t *testing.T) {
	env := newTestEnv(t)
	completer := &fakeCompleter{reply: "ok"}
	_, err := NewChatService(env.store, completer).Reply(context.Background(), newIdentity(t, env, "ann"), "hi", "")
	require.NoError(t, err)
	assert.Equal(t, completion.Helpful, completer.personality)
}

func TestChatService_CompleterFailureKeepsUserTurn(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ann := newIdentity(t, env, "ann")
	chat := NewChatService(env.store, &fakeCompleter{err: errors.New("quota")})

	_, err := chat.Reply(ctx, ann, "hi", "Helpful")
	assert.ErrorIs(t, err, ErrCompletionFailed)

	msgs, err := NewLedgerService(env.store).List(ctx, ann)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, models.RoleUser, msgs[0].Role)
}

func TestChatService_RejectsBeforeAppending(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ann := newIdentity(t, env, "ann")
	chat := NewChatService(env.store, &fakeCompleter{reply: "x"})

	_, err := chat.Reply(ctx, ann, "hi", "Sarcastic")
	assert.ErrorIs(t, err, ErrUnknownPersonality)
	_, err = chat.Reply(ctx, ann, "  ", "")
	assert.ErrorIs(t, err, ErrValidation)

	msgs, err := NewLedgerService(env.store).List(ctx, ann)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}
