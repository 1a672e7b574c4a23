package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/voyagent/voyagent/internal/domain"
	"github.com/voyagent/voyagent/internal/repository"
	"github.com/voyagent/voyagent/internal/tools"
	"go.uber.org/zap"
)

var ErrForbidden = errors.New("chat belongs to another user")

// maxToolRounds bounds the model/tool loop for one user turn.
const maxToolRounds = 5

const systemPrompt = "You are an AI travel agent using the Amadeus API. Help users search flights, " +
	"check prices and seat maps, create reservations, and show boarding passes. " +
	"Follow the booking order: search flights, confirm the price, select seats, create the reservation, " +
	"authorize payment, verify payment, and only then display the boarding pass. " +
	"Never display a boarding pass before payment is verified. " +
	"Today's date is %s."

type UseCase interface {
	StreamMessage(ctx context.Context, req Request, emit func(Event)) error
	ListChats(ctx context.Context, userID string) ([]domain.Chat, error)
	GetChat(ctx context.Context, id, userID string) (*domain.Chat, error)
	DeleteChat(ctx context.Context, id, userID string) error
}

type Request struct {
	ChatID   string
	UserID   string
	Messages []domain.Message
}

type EventType string

const (
	EventText       EventType = "text"
	EventToolCall   EventType = "tool_call"
	EventToolResult EventType = "tool_result"
	EventDone       EventType = "done"
)

type Event struct {
	Type     EventType         `json:"type"`
	Text     string            `json:"text,omitempty"`
	ToolName string            `json:"toolName,omitempty"`
	Result   *tools.ToolResult `json:"result,omitempty"`
}

// Orchestrator drives one conversation turn: it forwards the transcript and
// tool definitions to the model, streams text back, dispatches requested
// tool calls sequentially in model order, and persists the transcript when
// the turn completes.
type Orchestrator struct {
	model    Model
	registry *tools.Registry
	chats    repository.ChatRepository
	log      *zap.Logger
}

func NewOrchestrator(model Model, registry *tools.Registry, chats repository.ChatRepository, log *zap.Logger) *Orchestrator {
	return &Orchestrator{model: model, registry: registry, chats: chats, log: log}
}

func (o *Orchestrator) StreamMessage(ctx context.Context, req Request, emit func(Event)) error {
	// Resuming someone else's chat id is refused before the model runs. A
	// lookup failure other than not-found does not block the turn; the
	// owner-scoped upsert still protects the stored transcript.
	if existing, err := o.chats.GetByID(ctx, req.ChatID); err == nil {
		if existing.UserID != req.UserID {
			return ErrForbidden
		}
	} else if !errors.Is(err, repository.ErrChatNotFound) {
		o.log.Warn("chat ownership lookup failed",
			zap.String("chat_id", req.ChatID),
			zap.Error(err))
	}

	history := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages)+1)
	history = append(history, openai.SystemMessage(fmt.Sprintf(systemPrompt, time.Now().Format("2006-01-02"))))
	for _, m := range req.Messages {
		history = append(history, toParam(m))
	}

	toolDefs := o.toolDefinitions()
	sess := tools.Session{UserID: req.UserID}
	produced := make([]domain.Message, 0)

	for round := 0; round < maxToolRounds; round++ {
		msg, err := o.model.Stream(ctx, history, toolDefs, func(delta string) {
			emit(Event{Type: EventText, Text: delta})
		})
		if err != nil {
			return err
		}

		history = append(history, msg.ToParam())
		assistant := domain.Message{Role: domain.RoleAssistant, Content: msg.Content}
		for _, call := range msg.ToolCalls {
			assistant.ToolCalls = append(assistant.ToolCalls, domain.ToolCall{
				ID:        call.ID,
				Name:      call.Function.Name,
				Arguments: call.Function.Arguments,
			})
		}
		if assistant.Content != "" || len(assistant.ToolCalls) > 0 {
			produced = append(produced, assistant)
		}

		if len(msg.ToolCalls) == 0 {
			break
		}

		for _, call := range msg.ToolCalls {
			name := call.Function.Name
			emit(Event{Type: EventToolCall, ToolName: name})

			result := o.registry.Dispatch(ctx, sess, name, json.RawMessage(call.Function.Arguments))
			emit(Event{Type: EventToolResult, ToolName: name, Result: &result})

			data, err := json.Marshal(result)
			if err != nil {
				data = []byte(`{"status":"error","code":"encode_failed"}`)
			}
			history = append(history, openai.ToolMessage(string(data), call.ID))
			produced = append(produced, domain.Message{
				Role:       domain.RoleTool,
				Content:    string(data),
				ToolName:   name,
				ToolCallID: call.ID,
			})
		}
	}

	emit(Event{Type: EventDone})

	// Best-effort side effect: the stream already completed, a failed save
	// is logged and swallowed, never retried.
	chat := &domain.Chat{
		ID:       req.ChatID,
		UserID:   req.UserID,
		Messages: append(req.Messages, produced...),
	}
	if err := o.chats.Save(ctx, chat); err != nil {
		o.log.Error("persist transcript failed",
			zap.String("chat_id", req.ChatID),
			zap.Error(err))
	}
	return nil
}

func (o *Orchestrator) ListChats(ctx context.Context, userID string) ([]domain.Chat, error) {
	return o.chats.ListByUser(ctx, userID)
}

func (o *Orchestrator) GetChat(ctx context.Context, id, userID string) (*domain.Chat, error) {
	chat, err := o.chats.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if chat.UserID != userID {
		return nil, ErrForbidden
	}
	return chat, nil
}

func (o *Orchestrator) DeleteChat(ctx context.Context, id, userID string) error {
	chat, err := o.chats.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if chat.UserID != userID {
		return ErrForbidden
	}
	return o.chats.Delete(ctx, id)
}

func (o *Orchestrator) toolDefinitions() []openai.ChatCompletionToolUnionParam {
	all := o.registry.All()
	defs := make([]openai.ChatCompletionToolUnionParam, 0, len(all))
	for _, t := range all {
		defs = append(defs, openai.ChatCompletionFunctionTool(openai.FunctionDefinitionParam{
			Name:        t.Name,
			Description: openai.String(t.Description),
			Parameters:  openai.FunctionParameters(t.Parameters),
		}))
	}
	return defs
}

func toParam(m domain.Message) openai.ChatCompletionMessageParamUnion {
	switch m.Role {
	case domain.RoleAssistant:
		if len(m.ToolCalls) == 0 {
			return openai.AssistantMessage(m.Content)
		}
		// An assistant message that requested tools must replay with its
		// tool_calls intact, otherwise the following tool messages are
		// orphaned and the completion request is rejected.
		assistant := openai.ChatCompletionAssistantMessageParam{}
		if m.Content != "" {
			assistant.Content = openai.ChatCompletionAssistantMessageParamContentUnion{
				OfString: openai.String(m.Content),
			}
		}
		for _, call := range m.ToolCalls {
			assistant.ToolCalls = append(assistant.ToolCalls, openai.ChatCompletionMessageToolCallUnionParam{
				OfFunction: &openai.ChatCompletionMessageFunctionToolCallParam{
					ID: call.ID,
					Function: openai.ChatCompletionMessageFunctionToolCallFunctionParam{
						Name:      call.Name,
						Arguments: call.Arguments,
					},
				},
			})
		}
		return openai.ChatCompletionMessageParamUnion{OfAssistant: &assistant}
	case domain.RoleTool:
		return openai.ToolMessage(m.Content, m.ToolCallID)
	default:
		return openai.UserMessage(m.Content)
	}
}

var _ UseCase = (*Orchestrator)(nil)
