package conversation

import (
	"context"

	"github.com/somya-cb/ai-travel-assistant/internal/types"
)

// Store persists conversation state by conversation id. Get returns
// types.ErrNotFound for unknown or expired conversations.
type Store interface {
	Get(ctx context.Context, conversationID string) (*types.ConversationState, error)
	Put(ctx context.Context, state types.ConversationState) error
	Delete(ctx context.Context, conversationID string) error
}
