package ioc

import (
	"context"
	"log/slog"

	"github.com/google/generative-ai-go/genai"
	"github.com/spf13/viper"
	"google.golang.org/api/option"
)

// InitGeminiCli 没配 api key 时返回 nil, 市场摘要会退回简单模板
func InitGeminiCli() *genai.Client {
	type Config struct {
		ApiKey []string `mapstructure:"api_key"`
	}

	var cfg Config
	if err := viper.UnmarshalKey("llm.gemini", &cfg); err != nil {
		panic(err)
	}

	if len(cfg.ApiKey) == 0 {
		slog.Warn("no gemini api key set, rich market summary disabled")
		return nil
	}

	cli, err := genai.NewClient(context.Background(), option.WithAPIKey(cfg.ApiKey[0]))
	if err != nil {
		panic(err)
	}
	return cli
}
