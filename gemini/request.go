package gemini

import "encoding/base64"

const imageMIMEType = "image/jpeg"

type ChatMessage struct {
	Role    string
	Content string
}

// generateRequest - тело generateContent
type generateRequest struct {
	Contents          []content         `json:"contents"`
	GenerationConfig  generationConfig  `json:"generationConfig"`
	SafetySettings    []safetySetting   `json:"safetySettings,omitempty"`
	SystemInstruction *systemInstruction `json:"systemInstruction,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	InlineData *inlineData `json:"inline_data,omitempty"`
	Text       string      `json:"text,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
	TopP            float64 `json:"topP"`
	TopK            int     `json:"topK"`
}

type safetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

type systemInstruction struct {
	Parts []part `json:"parts"`
}

func newTextRequest(prompt string, o GenerationOptions) generateRequest {
	req := newRequest(o)
	req.Contents = []content{{Parts: []part{{Text: prompt}}}}
	return req
}

func newChatRequest(messages []ChatMessage, o GenerationOptions) generateRequest {
	req := newRequest(o)
	req.Contents = make([]content, len(messages))
	for i, m := range messages {
		req.Contents[i] = content{
			Role:  m.Role,
			Parts: []part{{Text: m.Content}},
		}
	}

	if o.SystemInstruction != "" {
		req.SystemInstruction = &systemInstruction{
			Parts: []part{{Text: o.SystemInstruction}},
		}
	}
	return req
}

func newImageRequest(image []byte, prompt string, o GenerationOptions) generateRequest {
	req := newRequest(o)
	req.Contents = []content{{
		Parts: []part{
			{InlineData: &inlineData{
				MimeType: imageMIMEType,
				Data:     base64.StdEncoding.EncodeToString(image),
			}},
			{Text: prompt},
		},
	}}
	return req
}

func newRequest(o GenerationOptions) generateRequest {
	req := generateRequest{
		GenerationConfig: generationConfig{
			Temperature:     o.Temperature,
			MaxOutputTokens: o.MaxTokens,
			TopP:            o.TopP,
			TopK:            o.TopK,
		},
	}

	if len(o.SafetySettings) > 0 {
		req.SafetySettings = make([]safetySetting, len(o.SafetySettings))
		for i, s := range o.SafetySettings {
			req.SafetySettings[i] = safetySetting{Category: s.Category, Threshold: s.Threshold}
		}
	}
	return req
}
