package application

// Authorizer decides whether a chat may use the relay.
type Authorizer interface {
	Authorize(chatID int64) bool
}

// ChatAllowList authorizes a fixed set of chat ids.
type ChatAllowList struct {
	allowed map[int64]struct{}
}

func NewChatAllowList(chatIDs ...int64) *ChatAllowList {
	allowed := make(map[int64]struct{}, len(chatIDs))
	for _, id := range chatIDs {
		allowed[id] = struct{}{}
	}
	return &ChatAllowList{allowed: allowed}
}

func (l *ChatAllowList) Authorize(chatID int64) bool {
	_, ok := l.allowed[chatID]
	return ok
}

// AuthorizerFunc adapts a function to Authorizer.
type AuthorizerFunc func(chatID int64) bool

func (f AuthorizerFunc) Authorize(chatID int64) bool {
	return f(chatID)
}
