package gemini

import (
	"encoding/json"
	"strings"
)

// NoResponseText возвращается, когда в ответе нет candidates[0].content.parts[0].text
// (генерация оборвалась, контент отфильтрован и т.п.)
const NoResponseText = "No response generated"

type generateResponse struct {
	Candidates []candidate `json:"candidates"`
}

type candidate struct {
	Content      *responseContent `json:"content"`
	FinishReason string           `json:"finishReason,omitempty"`
}

type responseContent struct {
	Parts []responsePart `json:"parts"`
	Role  string         `json:"role"`
}

type responsePart struct {
	Text *string `json:"text"`
}

type errorResponse struct {
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

func parseGenerateResponse(body []byte) (string, error) {
	var resp generateResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", wrapError(ErrAPI, "decode response", err)
	}
	return extractText(&resp), nil
}

func extractText(resp *generateResponse) string {
	if len(resp.Candidates) == 0 {
		return NoResponseText
	}
	c := resp.Candidates[0].Content
	if c == nil || len(c.Parts) == 0 || c.Parts[0].Text == nil {
		return NoResponseText
	}
	return *c.Parts[0].Text
}

// parseErrorMessage - error.message из тела, иначе тело целиком
func parseErrorMessage(body []byte) string {
	var resp errorResponse
	if err := json.Unmarshal(body, &resp); err == nil && resp.Error != nil && resp.Error.Message != "" {
		return resp.Error.Message
	}
	return strings.TrimSpace(string(body))
}
