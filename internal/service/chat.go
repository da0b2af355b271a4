package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/pageza/dininghall/backend/internal/logging"
)

const (
	chatKeyPrefix = "chat:session:"
	chatTTL       = 24 * time.Hour
	// MaxToolRounds bounds how many times one message may dispatch tools.
	MaxToolRounds = 4
)

var ErrToolRounds = errors.New("tool call limit reached")

const systemPrompt = `You help students with the campus dining halls: menus, nutrition, orders and calorie tracking.
Answer with facts returned by the tools. Dates are YYYY-MM-DD. Locations are Berkshire, Worcester, Franklin and Hampshire.`

// ToolInvoker exposes named operations to the model.
type ToolInvoker interface {
	Declarations() []FunctionDeclaration
	Invoke(ctx context.Context, name string, args json.RawMessage) (any, error)
}

// ToolCall records one dispatched tool for the reply.
type ToolCall struct {
	Name  string          `json:"name"`
	Args  json.RawMessage `json:"args,omitempty"`
	Error string          `json:"error,omitempty"`
}

type ChatReply struct {
	SessionID string     `json:"session_id"`
	Reply     string     `json:"reply"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
}

// ChatService runs a conversation against the language model, dispatching
// its function calls through the tool registry. Sessions live in Redis.
type ChatService struct {
	model LanguageModel
	tools ToolInvoker
	redis *redis.Client
	log   *slog.Logger
}

var _ IChatService = (*ChatService)(nil)

func NewChatService(model LanguageModel, tools ToolInvoker, redisClient *redis.Client, log *slog.Logger) *ChatService {
	return &ChatService{
		model: model,
		tools: tools,
		redis: redisClient,
		log:   logging.Component(log, "chat"),
	}
}

// Chat appends message to the session and returns the model's answer. An
// empty sessionID starts a new session.
func (s *ChatService) Chat(ctx context.Context, sessionID, message string) (*ChatReply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, invalid("message is required")
	}
	if sessionID == "" {
		sessionID = uuid.NewString()
	} else if _, err := uuid.Parse(sessionID); err != nil {
		return nil, invalid("bad session id %q", sessionID)
	}

	contents, err := s.History(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	contents = append(contents, Content{Role: "user", Parts: []Part{{Text: message}}})

	out := &ChatReply{SessionID: sessionID}
	decls := s.tools.Declarations()
	for round := 0; ; round++ {
		req := &GenerateRequest{
			SystemInstruction: &Content{Parts: []Part{{Text: systemPrompt}}},
			Contents:          contents,
		}
		if len(decls) > 0 {
			req.Tools = []toolSet{{FunctionDeclarations: decls}}
		}

		reply, err := s.model.GenerateContent(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("chat: %w", err)
		}
		reply.Role = "model"
		contents = append(contents, *reply)

		calls := reply.FunctionCalls()
		if len(calls) == 0 {
			out.Reply = reply.Text()
			break
		}
		if round == MaxToolRounds {
			if err := s.save(ctx, sessionID, contents); err != nil {
				return nil, err
			}
			return out, fmt.Errorf("chat: %w after %d rounds", ErrToolRounds, MaxToolRounds)
		}

		results := Content{Role: "user"}
		for _, call := range calls {
			record := ToolCall{Name: call.Name, Args: call.Args}
			response := make(map[string]any)
			result, err := s.tools.Invoke(ctx, call.Name, call.Args)
			if err != nil {
				s.log.Warn("tool call failed", "session", sessionID, "tool", call.Name, "error", err)
				record.Error = err.Error()
				response["error"] = err.Error()
			} else {
				response["result"] = result
			}
			out.ToolCalls = append(out.ToolCalls, record)
			results.Parts = append(results.Parts, Part{FunctionResponse: &FunctionResponse{Name: call.Name, Response: response}})
		}
		contents = append(contents, results)
	}

	if err := s.save(ctx, sessionID, contents); err != nil {
		return nil, err
	}
	s.log.Info("chat turn", "session", sessionID, "tool_calls", len(out.ToolCalls))
	return out, nil
}

// History returns the stored turns of a session, empty when unknown.
func (s *ChatService) History(ctx context.Context, sessionID string) ([]Content, error) {
	data, err := s.redis.Get(ctx, chatKeyPrefix+sessionID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session from Redis: %w", err)
	}
	var contents []Content
	if err := json.Unmarshal(data, &contents); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return contents, nil
}

// Reset forgets a session.
func (s *ChatService) Reset(ctx context.Context, sessionID string) error {
	if err := s.redis.Del(ctx, chatKeyPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("failed to delete session from Redis: %w", err)
	}
	return nil
}

func (s *ChatService) save(ctx context.Context, sessionID string, contents []Content) error {
	data, err := json.Marshal(contents)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := s.redis.Set(ctx, chatKeyPrefix+sessionID, data, chatTTL).Err(); err != nil {
		return fmt.Errorf("failed to save session to Redis: %w", err)
	}
	return nil
}
