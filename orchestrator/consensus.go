package orchestrator

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Eeman1113/Hivemind/agent"
)

// EvaluateSatisfaction asks every agent to rate the research progress from
// 1 to 10. Unparseable or failed ratings fall back to the neutral score of
// 5; every fallback is logged and counted so silent degradation is visible.
// Each received rating response is appended to the transcript.
func (o *Orchestrator) EvaluateSatisfaction(ctx context.Context) (map[string]int, error) {
	start := time.Now()
	var err error
	defer func() { o.recordPhase(string(PhaseEvaluation), start, err) }()

	if len(o.roster) == 0 {
		err = ErrEmptyRoster
		return nil, err
	}

	for _, a := range o.roster {
		prompt := o.satisfactionPrompt(a)

		score := 5
		response, respErr := a.Respond(ctx, prompt, nil)
		if respErr != nil {
			o.logger.Warn("satisfaction rating failed, using neutral fallback",
				zap.String("agent", a.Name()),
				zap.Error(respErr),
			)
			o.recordFallback()
		} else {
			o.appendEntry(TranscriptEntry{
				AgentName: a.Name(),
				Phase:     PhaseEvaluation,
				Content:   response,
			})
			parsed, ok := parseRating(response)
			if !ok {
				o.logger.Warn("satisfaction rating unparseable, using neutral fallback",
					zap.String("agent", a.Name()),
					zap.String("response_head", head(response, 40)),
				)
				o.recordFallback()
			} else {
				score = parsed
			}
		}

		o.satisfaction[a.Name()] = score
		if o.collector != nil {
			o.collector.RecordSatisfaction(a.Name(), score)
		}
	}

	return o.SatisfactionScores(), nil
}

func (o *Orchestrator) satisfactionPrompt(a *agent.ResearchAgent) string {
	return fmt.Sprintf(`Evaluate the research progress on: %s

Your contributions so far: %d research notes
Team discussions: %d messages

Rate your satisfaction with:
1. Quality of research conducted
2. Depth of analysis
3. Collaboration effectiveness
4. Readiness to publish findings

Respond with ONLY a number from 1-10, where:
1-3: Needs significant more work
4-6: Making progress but incomplete
7-8: Good progress, minor refinements needed
9-10: Excellent, ready to publish

Your rating:`, o.topic, len(a.Notes()), len(o.transcript))
}

// parseRating extracts the digits of the first whitespace-separated token
// and clamps the value to [1, 10].
func parseRating(response string) (int, bool) {
	fields := strings.Fields(response)
	if len(fields) == 0 {
		return 0, false
	}
	var digits strings.Builder
	for _, r := range fields[0] {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(digits.String())
	if err != nil {
		return 0, false
	}
	if n < 1 {
		n = 1
	}
	if n > 10 {
		n = 10
	}
	return n, true
}

func (o *Orchestrator) recordFallback() {
	if o.collector != nil {
		o.collector.RecordRatingFallback()
	}
}

func head(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// CheckConsensus reports whether the mean satisfaction score has reached
// the configured target. An empty score set is never consensus.
func (o *Orchestrator) CheckConsensus() bool {
	if len(o.satisfaction) == 0 {
		return false
	}
	var sum int
	for _, s := range o.satisfaction {
		sum += s
	}
	return float64(sum)/float64(len(o.satisfaction)) >= o.cfg.TargetSatisfaction
}

// MeanSatisfaction returns the current mean score, or 0 with no scores.
func (o *Orchestrator) MeanSatisfaction() float64 {
	if len(o.satisfaction) == 0 {
		return 0
	}
	var sum int
	for _, s := range o.satisfaction {
		sum += s
	}
	return float64(sum) / float64(len(o.satisfaction))
}

// ImprovementResult is the outcome of one agent's self-improvement attempt.
type ImprovementResult struct {
	AgentName string
	Report    *agent.RevisionReport
	Err       error
}

// ImproveAgents runs a self-improvement pass over the whole roster. Agents
// that fail to revise keep their current instructions; the pass continues
// with the rest of the roster and reports every attempt.
func (o *Orchestrator) ImproveAgents(ctx context.Context) ([]ImprovementResult, error) {
	start := time.Now()
	var err error
	defer func() { o.recordPhase("improvement", start, err) }()

	if len(o.roster) == 0 {
		err = ErrEmptyRoster
		return nil, err
	}

	feedback := fmt.Sprintf("Research topic: %s. Recent discussions: %d.", o.topic, len(o.transcript))

	results := make([]ImprovementResult, 0, len(o.roster))
	revised := 0
	for _, a := range o.roster {
		report, revErr := a.ReviseInstructions(ctx, feedback)
		if revErr != nil {
			o.logger.Warn("self-improvement failed, keeping current instructions",
				zap.String("agent", a.Name()),
				zap.Error(revErr),
			)
			if o.collector != nil {
				o.collector.RecordImprovement(a.Name(), "error")
			}
			results = append(results, ImprovementResult{AgentName: a.Name(), Err: revErr})
			continue
		}
		if o.collector != nil {
			o.collector.RecordImprovement(a.Name(), "success")
		}
		revised++
		results = append(results, ImprovementResult{AgentName: a.Name(), Report: report})
	}

	o.logger.Info("self-improvement pass completed",
		zap.Int("revised", revised),
		zap.Int("roster", len(o.roster)),
	)
	return results, nil
}
