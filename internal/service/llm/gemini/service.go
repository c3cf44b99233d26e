package gemini

import (
	"context"
	"strings"

	"github.com/KNICEX/option-monitor/internal/service/llm"
	"github.com/google/generative-ai-go/genai"
)

type Service struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

type Option func(service *Service)

func WithTemperature(temp float32) Option {
	return func(service *Service) {
		service.model.SetTemperature(temp)
	}
}

func WithModel(name string) Option {
	return func(service *Service) {
		service.model = service.client.GenerativeModel(name)
	}
}

func NewService(client *genai.Client, opts ...Option) llm.Service {
	svc := &Service{
		client: client,
		model:  client.GenerativeModel("gemini-2.0-flash"),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

func (s *Service) AskOnce(ctx context.Context, q llm.Question) (llm.Answer, error) {
	resp, err := s.model.GenerateContent(ctx, genai.Text(q.Content))
	if err != nil {
		return llm.Answer{}, err
	}
	return llm.Answer{
		Content: parseResponse(resp),
	}, nil
}

func parseResponse(resp *genai.GenerateContentResponse) string {
	var resStr strings.Builder
	if len(resp.Candidates) > 0 {
		for i, part := range resp.Candidates[0].Content.Parts {
			if part == nil {
				continue
			}
			if text, ok := part.(genai.Text); ok {
				if i > 0 {
					resStr.WriteString("\n")
				}
				resStr.WriteString(string(text))
			} else {
				return ""
			}
		}
	}
	return resStr.String()
}
