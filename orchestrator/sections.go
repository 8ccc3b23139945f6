package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Eeman1113/Hivemind/agent"
	"github.com/Eeman1113/Hivemind/report"
)

// SectionSpec assigns one document section to a set of writers. Select
// picks the writers from the roster; Prompt builds the per-writer
// generation prompt. When Subhead is set, each contribution is prefixed
// with the writer's specialty as a subsection heading.
type SectionSpec struct {
	Name    string
	Select  func(roster []*agent.ResearchAgent) []*agent.ResearchAgent
	Prompt  func(topic string, a *agent.ResearchAgent) string
	Subhead bool
}

// SectionPolicy is the ordered assignment of document sections to writers.
// The policy is a value so callers can replace or reorder assignments
// without touching the engine.
type SectionPolicy []SectionSpec

func firstAgent(roster []*agent.ResearchAgent) []*agent.ResearchAgent {
	return roster[:1]
}

func secondOrFirst(roster []*agent.ResearchAgent) []*agent.ResearchAgent {
	if len(roster) > 1 {
		return roster[1:2]
	}
	return roster[:1]
}

func lastAgent(roster []*agent.ResearchAgent) []*agent.ResearchAgent {
	return roster[len(roster)-1:]
}

func allAgents(roster []*agent.ResearchAgent) []*agent.ResearchAgent {
	return roster
}

// DefaultSectionPolicy reproduces the standard paper layout: the lead agent
// writes the title and abstract, the second agent the introduction, every
// agent a methodology subsection from its specialty, and the last agent the
// results and conclusion.
func DefaultSectionPolicy() SectionPolicy {
	return SectionPolicy{
		{
			Name:   "title",
			Select: firstAgent,
			Prompt: func(topic string, _ *agent.ResearchAgent) string {
				return fmt.Sprintf(`Generate a compelling research paper title for our work on: %s

Respond with ONLY the title, nothing else.`, topic)
			},
		},
		{
			Name:   "abstract",
			Select: firstAgent,
			Prompt: func(topic string, _ *agent.ResearchAgent) string {
				return fmt.Sprintf(`Write a concise abstract (150-200 words) for our research paper on: %s

Include:
- Main objective
- Methodology
- Key findings
- Significance

Respond with ONLY the abstract text.`, topic)
			},
		},
		{
			Name:   "introduction",
			Select: secondOrFirst,
			Prompt: func(topic string, _ *agent.ResearchAgent) string {
				return fmt.Sprintf(`Write the Introduction section for our paper on: %s

Include:
- Background and motivation
- Research gap
- Our contributions
- Paper structure

Provide the complete introduction section.`, topic)
			},
		},
		{
			Name:    "methodology",
			Select:  allAgents,
			Subhead: true,
			Prompt: func(topic string, a *agent.ResearchAgent) string {
				return fmt.Sprintf(`Write a methodology subsection from your expertise in %s

For the research topic: %s

Describe the methods, techniques, or approaches relevant to your area.
Keep it concise (2-3 paragraphs).`, a.Specialty(), topic)
			},
		},
		{
			Name:   "results and discussion",
			Select: lastAgent,
			Prompt: func(topic string, _ *agent.ResearchAgent) string {
				return fmt.Sprintf(`Write the Results and Discussion section.

Research topic: %s

Synthesize the key findings and discuss their implications.
Include analysis and interpretation.`, topic)
			},
		},
		{
			Name:   "conclusion",
			Select: lastAgent,
			Prompt: func(topic string, _ *agent.ResearchAgent) string {
				return `Write the Conclusion section.

Summarize:
- Main contributions
- Findings
- Limitations
- Future work

Be concise but comprehensive.`
			},
		},
	}
}

// SynthesizeSections generates the research document by running the
// section policy over the roster. The section named "title" becomes the
// document title; every other section is appended in policy order.
func (o *Orchestrator) SynthesizeSections(ctx context.Context, policy SectionPolicy) (doc *report.Document, err error) {
	start := time.Now()
	defer func() { o.recordPhase("synthesis", start, err) }()

	if err = o.requireRosterAndTopic(); err != nil {
		return nil, err
	}
	if len(policy) == 0 {
		policy = DefaultSectionPolicy()
	}

	authors := make([]string, 0, len(o.roster))
	for _, a := range o.roster {
		authors = append(authors, a.Name())
	}
	doc = report.NewDocument(o.topic, authors)

	for _, spec := range policy {
		writers := spec.Select(o.roster)
		parts := make([]string, 0, len(writers))
		names := make([]string, 0, len(writers))

		for _, w := range writers {
			text, respErr := w.Respond(ctx, spec.Prompt(o.topic, w), nil)
			if respErr != nil {
				err = fmt.Errorf("section %q: %w", spec.Name, respErr)
				return nil, err
			}
			if spec.Subhead {
				text = fmt.Sprintf("### %s\n\n%s", w.Specialty(), text)
			}
			parts = append(parts, text)
			names = append(names, w.Name())
		}

		content := strings.Join(parts, "\n\n")
		if spec.Name == "title" {
			doc.Title = strings.TrimSpace(content)
			continue
		}
		doc.AddSection(spec.Name, strings.Join(names, ", "), content)
	}

	o.logger.Info("document synthesized",
		zap.String("title", doc.Title),
		zap.Int("sections", doc.Len()),
	)
	return doc, nil
}
