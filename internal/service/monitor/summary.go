package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/KNICEX/option-monitor/internal/service/llm"
	"github.com/samber/lo"
)

// buildSimpleSummary 确定性的模板摘要, 不依赖任何外部能力,
// 是所有摘要路径的最终兜底。
func buildSimpleSummary(order []string, results map[string]CycleResult, now time.Time) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📊 **市场状况更新** (%s)\n\n", now.Format(time.DateTime)))

	for _, symbol := range order {
		result, ok := results[symbol]
		if !ok {
			continue
		}
		if result.Err != "" {
			sb.WriteString(fmt.Sprintf("❌ %s: 监控错误\n", symbol))
			continue
		}
		emoji, ok := sessionEmoji[result.Session]
		if !ok {
			emoji = "❓"
		}
		sb.WriteString(fmt.Sprintf("%s %s: $%.2f\n", emoji, symbol, result.CurrentPrice))
	}

	totalSignals := lo.SumBy(lo.Values(results), func(r CycleResult) int {
		return len(r.Signals)
	})
	if totalSignals > 0 {
		sb.WriteString(fmt.Sprintf("\n🔔 本周期共产生 %d 个交易信号", totalSignals))
	} else {
		sb.WriteString("\n📭 本周期无交易信号")
	}
	return sb.String()
}

// buildSummary 优先用 LLM 生成可读性更好的摘要,
// LLM 不可用或失败时一律退回简单摘要。
func (s *MultiSymbolWatcher) buildSummary(ctx context.Context, results map[string]CycleResult) string {
	now := s.now()
	if s.llmSvc == nil {
		return buildSimpleSummary(s.order, results, now)
	}

	var marketData []string
	var signals []string
	for _, symbol := range s.order {
		result, ok := results[symbol]
		if !ok || result.Err != "" {
			continue
		}
		if result.CurrentPrice > 0 {
			marketData = append(marketData, fmt.Sprintf("%s: $%.2f (%s)", symbol, result.CurrentPrice, result.Session))
		}
		for _, sig := range result.Signals {
			signals = append(signals, fmt.Sprintf("%s - %s @%d (到期:%s)", symbol, sig.Kind, sig.Strike, sig.Expiry))
		}
	}
	if len(marketData) == 0 {
		return buildSimpleSummary(s.order, results, now)
	}

	signalPart := "无交易信号"
	if len(signals) > 0 {
		signalPart = "有以下交易信号:\n" + strings.Join(signals, "\n")
	}
	prompt := fmt.Sprintf(`作为专业的期权市场分析师, 请根据以下数据提供一份简短市场摘要(100字以内):

时间: %s
市场数据:
%s

%s

请分析当前市场状况和这些资产的表现, 给出简洁的市场总结, 适合发送到交易群组。
注意使用专业但通俗的语言。`,
		now.Format(time.DateTime), strings.Join(marketData, ", "), signalPart)

	answer, err := s.llmSvc.AskOnce(ctx, llm.Question{Content: prompt})
	if err != nil || answer.Content == "" {
		slog.Error("failed to generate llm market summary, falling back", "error", err)
		return buildSimpleSummary(s.order, results, now)
	}
	return fmt.Sprintf("📊 **市场摘要** (%s)\n\n%s", now.Format(time.DateTime), answer.Content)
}
