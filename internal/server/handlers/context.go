package handlers

import "context"

// contextKey тип для ключей контекста
type contextKey string

// AgentIDKey ключ для хранения идентификатора агента в контексте
const AgentIDKey contextKey = "agent_id"

// GetAgentID извлекает идентификатор агента из контекста запроса
func GetAgentID(ctx context.Context) (string, bool) {
	agentID, ok := ctx.Value(AgentIDKey).(string)
	return agentID, ok
}
