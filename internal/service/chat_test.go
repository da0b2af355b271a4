package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pageza/dininghall/backend/internal/logging"
)

// scriptedModel replays canned turns and records the requests it saw.
type scriptedModel struct {
	turns    []Content
	requests []*GenerateRequest
}

func (m *scriptedModel) GenerateContent(ctx context.Context, req *GenerateRequest) (*Content, error) {
	m.requests = append(m.requests, req)
	if len(m.turns) == 0 {
		return nil, errors.New("script exhausted")
	}
	turn := m.turns[0]
	if len(m.turns) > 1 {
		m.turns = m.turns[1:]
	}
	return &turn, nil
}

type mockTools struct {
	mock.Mock
}

func (m *mockTools) Declarations() []FunctionDeclaration {
	return []FunctionDeclaration{{Name: "search_foods", Description: "search"}}
}

func (m *mockTools) Invoke(ctx context.Context, name string, args json.RawMessage) (any, error) {
	ret := m.Called(name, string(args))
	return ret.Get(0), ret.Error(1)
}

func callTurn(name, args string) Content {
	return Content{Role: "model", Parts: []Part{{FunctionCall: &FunctionCall{Name: name, Args: json.RawMessage(args)}}}}
}

func textTurn(text string) Content {
	return Content{Role: "model", Parts: []Part{{Text: text}}}
}

func setupChat(t *testing.T, model LanguageModel, tools ToolInvoker) (*ChatService, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewChatService(model, tools, client, logging.Discard()), mr
}

func TestChatDispatchesToolCalls(t *testing.T) {
	model := &scriptedModel{turns: []Content{
		callTurn("search_foods", `{"query":"oatmeal"}`),
		textTurn("Oatmeal has 150 calories."),
	}}
	tools := &mockTools{}
	tools.On("Invoke", "search_foods", `{"query":"oatmeal"}`).Return([]string{"Oatmeal"}, nil).Once()

	svc, mr := setupChat(t, model, tools)
	reply, err := svc.Chat(context.Background(), "", "How many calories in oatmeal?")
	require.NoError(t, err)
	tools.AssertExpectations(t)

	assert.Equal(t, "Oatmeal has 150 calories.", reply.Reply)
	require.Len(t, reply.ToolCalls, 1)
	assert.Equal(t, "search_foods", reply.ToolCalls[0].Name)
	assert.Empty(t, reply.ToolCalls[0].Error)

	require.Len(t, model.requests, 2)
	require.Len(t, model.requests[0].Tools, 1)
	assert.Equal(t, "search_foods", model.requests[0].Tools[0].FunctionDeclarations[0].Name)
	second := model.requests[1].Contents
	require.Len(t, second, 3)
	assert.Equal(t, "search_foods", second[2].Parts[0].FunctionResponse.Name)

	key := chatKeyPrefix + reply.SessionID
	require.True(t, mr.Exists(key))
	assert.Equal(t, 24*time.Hour, mr.TTL(key))

	history, err := svc.History(context.Background(), reply.SessionID)
	require.NoError(t, err)
	require.Len(t, history, 4)
	assert.Equal(t, "user", history[0].Role)
	assert.Equal(t, "Oatmeal has 150 calories.", history[3].Text())
}

func TestChatContinuesSession(t *testing.T) {
	model := &scriptedModel{turns: []Content{textTurn("Hi."), textTurn("Again.")}}
	svc, _ := setupChat(t, model, &mockTools{})
	ctx := context.Background()

	first, err := svc.Chat(ctx, "", "hello")
	require.NoError(t, err)
	_, err = svc.Chat(ctx, first.SessionID, "hello again")
	require.NoError(t, err)

	assert.Len(t, model.requests[1].Contents, 3)

	require.NoError(t, svc.Reset(ctx, first.SessionID))
	history, err := svc.History(ctx, first.SessionID)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestChatToolErrorIsReturnedToModel(t *testing.T) {
	model := &scriptedModel{turns: []Content{
		callTurn("search_foods", `{}`),
		textTurn("I could not search."),
	}}
	tools := &mockTools{}
	tools.On("Invoke", "search_foods", `{}`).Return(nil, errors.New("missing query"))

	svc, _ := setupChat(t, model, tools)
	reply, err := svc.Chat(context.Background(), "", "find food")
	require.NoError(t, err)
	require.Len(t, reply.ToolCalls, 1)
	assert.Equal(t, "missing query", reply.ToolCalls[0].Error)

	resp := model.requests[1].Contents[2].Parts[0].FunctionResponse
	assert.Equal(t, "missing query", resp.Response["error"])
}

func TestChatStopsAfterMaxToolRounds(t *testing.T) {
	model := &scriptedModel{turns: []Content{callTurn("search_foods", `{"query":"x"}`)}}
	tools := &mockTools{}
	tools.On("Invoke", "search_foods", `{"query":"x"}`).Return([]string{}, nil)

	svc, _ := setupChat(t, model, tools)
	_, err := svc.Chat(context.Background(), "", "loop")
	assert.ErrorIs(t, err, ErrToolRounds)
	assert.Len(t, model.requests, MaxToolRounds+1)
	tools.AssertNumberOfCalls(t, "Invoke", MaxToolRounds)
}

func TestChatRejectsBadInput(t *testing.T) {
	svc, _ := setupChat(t, &scriptedModel{}, &mockTools{})

	_, err := svc.Chat(context.Background(), "", "   ")
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.Chat(context.Background(), "not-a-session", "hi")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestChatModelFailure(t *testing.T) {
	svc, mr := setupChat(t, &scriptedModel{}, &mockTools{})
	_, err := svc.Chat(context.Background(), "", "hi")
	require.Error(t, err)
	assert.Empty(t, mr.Keys(), "nothing stored on failure")
}
