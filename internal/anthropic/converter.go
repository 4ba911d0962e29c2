package anthropic

import (
	"strings"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/chatweet/chatweet/types"
)

// ConvertTurns converts conversation turns to Anthropic message parameters.
// System turns are returned separately as system prompt blocks. Consecutive
// turns of the same role are merged into one message, since the Messages
// API expects user and assistant to alternate.
func ConvertTurns(turns []types.Turn) ([]anthropic.MessageParam, []anthropic.TextBlockParam) {
	var system []anthropic.TextBlockParam
	params := make([]anthropic.MessageParam, 0, len(turns))

	for _, turn := range turns {
		if turn.Role == types.RoleSystem {
			system = append(system, BuildSystemPrompt(turn.Content)...)
			continue
		}

		block := anthropic.NewTextBlock(turn.Content)
		role := anthropic.MessageParamRole(turn.Role)

		if n := len(params); n > 0 && params[n-1].Role == role {
			params[n-1].Content = append(params[n-1].Content, block)
			continue
		}

		params = append(params, anthropic.MessageParam{
			Role:    role,
			Content: []anthropic.ContentBlockParamUnion{block},
		})
	}

	return params, system
}

// BuildSystemPrompt creates system prompt blocks
func BuildSystemPrompt(systemPrompt string) []anthropic.TextBlockParam {
	if systemPrompt == "" {
		return nil
	}
	return []anthropic.TextBlockParam{
		{
			Text: systemPrompt,
		},
	}
}

// ExtractText concatenates the text blocks of a response message.
func ExtractText(msg *anthropic.Message) string {
	if msg == nil {
		return ""
	}
	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return b.String()
}
