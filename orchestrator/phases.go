package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Eeman1113/Hivemind/retrieval"
	"github.com/Eeman1113/Hivemind/types"
)

// Brainstorm runs rounds of idea generation across the roster. Ideas from a
// round become visible to agents only once the round completes; within a
// round every agent sees the same staged tail of at most five prior ideas.
// A turn whose gateway call fails is skipped: logged, counted, and excluded
// from staging and the transcript. Returns all staged ideas in generation
// order.
func (o *Orchestrator) Brainstorm(ctx context.Context, rounds int) (results []string, err error) {
	start := time.Now()
	defer func() { o.recordPhase(string(PhaseBrainstorm), start, err) }()

	if err = o.requireRosterAndTopic(); err != nil {
		return nil, err
	}
	if rounds <= 0 {
		return nil, ErrNoRounds
	}

	o.logger.Info("brainstorm started", zap.Int("rounds", rounds), zap.Int("agents", len(o.roster)))

	for round := 1; round <= rounds; round++ {
		roundIdeas := make([]string, 0, len(o.roster))

		for _, a := range o.roster {
			prompt := o.brainstormPrompt(a.Specialty(), round, rounds, results)

			response, respErr := a.Respond(ctx, prompt, nil)
			if respErr != nil {
				o.skipTurn(PhaseBrainstorm, a.Name(), round, respErr)
				continue
			}

			roundIdeas = append(roundIdeas, fmt.Sprintf("[%s]: %s", a.Name(), response))
			o.appendEntry(TranscriptEntry{
				Round:     intPtr(round),
				AgentName: a.Name(),
				Phase:     PhaseBrainstorm,
				Content:   response,
			})
		}

		results = append(results, roundIdeas...)
	}

	o.logger.Info("brainstorm completed", zap.Int("ideas", len(results)))
	return results, nil
}

func (o *Orchestrator) brainstormPrompt(specialty string, round, rounds int, staged []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Research Topic: %s\n\n", o.topic)
	fmt.Fprintf(&b, "Brainstorming Round %d/%d\n\n", round, rounds)

	if len(staged) > 0 {
		b.WriteString("Previous ideas from team:\n")
		tail := staged
		if len(tail) > 5 {
			tail = tail[len(tail)-5:]
		}
		b.WriteString(strings.Join(tail, "\n"))
		b.WriteString("\n")
	} else {
		b.WriteString("Initial brainstorming - share your key ideas:\n")
	}

	fmt.Fprintf(&b, "\nAs an expert in %s, provide 2-3 key research directions or hypotheses.\n", specialty)
	b.WriteString("Be specific and build upon previous ideas where relevant.")
	return b.String()
}

// Research runs retrieval-backed research for each query. Each query is
// assigned to the first rostered agent, which analyzes the tagged results
// and records the findings as a research note. A query whose retrieval or
// analysis fails is skipped: logged, counted, and never folded into
// analysis text as data.
func (o *Orchestrator) Research(ctx context.Context, queries []string) (found map[string][]retrieval.Result, err error) {
	start := time.Now()
	defer func() { o.recordPhase(string(PhaseResearch), start, err) }()

	if err = o.requireRosterAndTopic(); err != nil {
		return nil, err
	}
	if o.searcher == nil {
		err = fmt.Errorf("orchestrator: no searcher configured")
		return nil, err
	}

	assignee := o.roster[0]
	found = make(map[string][]retrieval.Result, len(queries))

	for _, query := range queries {
		results, searchErr := o.searcher.Search(ctx, query, o.cfg.MaxSearchResults)
		if searchErr != nil {
			o.logger.Warn("retrieval failed, skipping query",
				zap.String("query", query),
				zap.Error(searchErr),
			)
			if o.collector != nil {
				o.collector.RecordTurnFailure(string(PhaseResearch))
			}
			continue
		}
		found[query] = results

		analysis, respErr := assignee.Respond(ctx, o.analysisPrompt(query, results), nil)
		if respErr != nil {
			o.skipTurn(PhaseResearch, assignee.Name(), 0, respErr)
			continue
		}

		assignee.RecordNote(fmt.Sprintf("Search: %s\nFindings: %s", query, analysis))
		o.appendEntry(TranscriptEntry{
			AgentName: assignee.Name(),
			Phase:     PhaseResearch,
			Query:     query,
			Content:   analysis,
		})

		o.logger.Info("research query completed",
			zap.String("query", query),
			zap.Int("results", len(results)),
		)
	}

	return found, nil
}

func (o *Orchestrator) analysisPrompt(query string, results []retrieval.Result) string {
	raw, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		raw = []byte("[]")
	}
	return fmt.Sprintf(`You searched for: %q

Search Results:
%s

Analyze these results and extract key findings relevant to our research on: %s
Provide a concise summary of the most important insights.`, query, raw, o.topic)
}

// Discuss runs a structured discussion on topic. The shared conversational
// context grows with each reply as a named assistant message, and each
// prompt inlines the three most recent replies. A turn whose gateway call
// fails is skipped and excluded from the shared context. Returns the
// tagged discussion messages in order.
func (o *Orchestrator) Discuss(ctx context.Context, topic string, rounds int) (discussion []string, err error) {
	start := time.Now()
	defer func() { o.recordPhase(string(PhaseDiscussion), start, err) }()

	if err = o.requireRosterAndTopic(); err != nil {
		return nil, err
	}
	if rounds <= 0 {
		return nil, ErrNoRounds
	}

	o.logger.Info("discussion started", zap.String("discussion_topic", topic), zap.Int("rounds", rounds))

	var shared []types.Message

	for round := 1; round <= rounds; round++ {
		for _, a := range o.roster {
			prompt := o.discussionPrompt(topic, a.Specialty(), round, rounds, discussion)

			response, respErr := a.Respond(ctx, prompt, shared)
			if respErr != nil {
				o.skipTurn(PhaseDiscussion, a.Name(), round, respErr)
				continue
			}

			tagged := fmt.Sprintf("[%s]: %s", a.Name(), response)
			discussion = append(discussion, tagged)

			msg := types.NewAssistantMessage(tagged)
			msg.Name = a.Name()
			shared = append(shared, msg)

			o.appendEntry(TranscriptEntry{
				Round:     intPtr(round),
				AgentName: a.Name(),
				Phase:     PhaseDiscussion,
				Topic:     topic,
				Content:   response,
			})
		}
	}

	o.logger.Info("discussion completed", zap.Int("messages", len(discussion)))
	return discussion, nil
}

func (o *Orchestrator) discussionPrompt(topic, specialty string, round, rounds int, prior []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Discussion Topic: %s\n\n", topic)
	fmt.Fprintf(&b, "Round %d/%d\n", round, rounds)
	fmt.Fprintf(&b, "Research Context: %s\n\n", o.topic)

	if len(prior) > 0 {
		b.WriteString("Recent discussion:\n")
		tail := prior
		if len(tail) > 3 {
			tail = tail[len(tail)-3:]
		}
		b.WriteString(strings.Join(tail, "\n"))
		b.WriteString("\n")
	} else {
		b.WriteString("Opening statement:\n")
	}

	fmt.Fprintf(&b, "\nProvide your perspective from %s. Be analytical and critical.\n", specialty)
	if len(prior) > 0 {
		b.WriteString("Challenge or build upon previous points.")
	}
	return b.String()
}
