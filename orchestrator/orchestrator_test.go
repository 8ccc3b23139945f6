package orchestrator

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/Eeman1113/Hivemind/agent"
	"github.com/Eeman1113/Hivemind/llm"
	"github.com/Eeman1113/Hivemind/testutil/mocks"
)

func newTestAgent(name, specialty string, provider llm.Provider) *agent.ResearchAgent {
	return agent.New(agent.Config{Name: name, Specialty: specialty, Model: "llama3.1"}, provider, nil)
}

func newTestOrchestrator() *Orchestrator {
	return New(DefaultConfig(), mocks.NewSearcher(), nil, nil)
}

func TestAddAgent_DuplicateName(t *testing.T) {
	o := newTestOrchestrator()
	require.NoError(t, o.AddAgent(newTestAgent("Dr. Neural", "deep learning", mocks.NewProvider())))

	err := o.AddAgent(newTestAgent("Dr. Neural", "something else", mocks.NewProvider()))
	require.ErrorIs(t, err, ErrDuplicateAgent)
	assert.Len(t, o.Agents(), 1)
}

func TestAddAgent_StartsAtNeutralSatisfaction(t *testing.T) {
	o := newTestOrchestrator()
	require.NoError(t, o.AddAgent(newTestAgent("Dr. Neural", "deep learning", mocks.NewProvider())))
	assert.Equal(t, 5, o.SatisfactionScores()["Dr. Neural"])
}

func TestBrainstorm_Guards(t *testing.T) {
	o := newTestOrchestrator()

	_, err := o.Brainstorm(context.Background(), 2)
	require.ErrorIs(t, err, ErrEmptyRoster)

	require.NoError(t, o.AddAgent(newTestAgent("A", "x", mocks.NewProvider())))
	_, err = o.Brainstorm(context.Background(), 2)
	require.ErrorIs(t, err, ErrNoTopic)

	o.SetTopic("quantum computing")
	_, err = o.Brainstorm(context.Background(), 0)
	require.ErrorIs(t, err, ErrNoRounds)
}

func TestBrainstorm_TranscriptOrderAndTagging(t *testing.T) {
	o := newTestOrchestrator()
	o.SetTopic("quantum computing")

	pa := mocks.NewProvider().WithResponse("idea from A")
	pb := mocks.NewProvider().WithResponse("idea from B")
	require.NoError(t, o.AddAgent(newTestAgent("A", "alpha", pa)))
	require.NoError(t, o.AddAgent(newTestAgent("B", "beta", pb)))

	ideas, err := o.Brainstorm(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, ideas, 4)
	assert.Equal(t, "[A]: idea from A", ideas[0])
	assert.Equal(t, "[B]: idea from B", ideas[1])

	entries := o.Transcript()
	require.Len(t, entries, 4)
	for i, want := range []struct {
		agent string
		round int
	}{{"A", 1}, {"B", 1}, {"A", 2}, {"B", 2}} {
		assert.Equal(t, want.agent, entries[i].AgentName)
		require.NotNil(t, entries[i].Round)
		assert.Equal(t, want.round, *entries[i].Round)
		assert.Equal(t, PhaseBrainstorm, entries[i].Phase)
	}
}

func TestBrainstorm_RoundIsolation(t *testing.T) {
	// Ideas staged during a round are invisible until the round completes:
	// both round-1 prompts open with the initial marker, both round-2
	// prompts carry the staged ideas from round 1.
	o := newTestOrchestrator()
	o.SetTopic("quantum computing")

	pa := mocks.NewProvider().WithResponse("idea from A")
	pb := mocks.NewProvider().WithResponse("idea from B")
	require.NoError(t, o.AddAgent(newTestAgent("A", "alpha", pa)))
	require.NoError(t, o.AddAgent(newTestAgent("B", "beta", pb)))

	_, err := o.Brainstorm(context.Background(), 2)
	require.NoError(t, err)

	bCalls := pb.Calls()
	require.Len(t, bCalls, 2)

	round1Prompt := lastMessageContent(t, bCalls[0].Request)
	assert.Contains(t, round1Prompt, "Initial brainstorming - share your key ideas:")
	assert.NotContains(t, round1Prompt, "[A]: idea from A")

	round2Prompt := lastMessageContent(t, bCalls[1].Request)
	assert.Contains(t, round2Prompt, "Previous ideas from team:")
	assert.Contains(t, round2Prompt, "[A]: idea from A")
	assert.Contains(t, round2Prompt, "[B]: idea from B")
}

func TestBrainstorm_StagedTailCapped(t *testing.T) {
	o := newTestOrchestrator()
	o.SetTopic("topic")

	providers := make([]*mocks.Provider, 4)
	for i := range providers {
		providers[i] = mocks.NewProvider().WithResponseQueue(
			fmt.Sprintf("r1-idea-%d", i),
			fmt.Sprintf("r2-idea-%d", i),
			fmt.Sprintf("r3-idea-%d", i),
		)
		require.NoError(t, o.AddAgent(newTestAgent(fmt.Sprintf("A%d", i), "x", providers[i])))
	}

	_, err := o.Brainstorm(context.Background(), 3)
	require.NoError(t, err)

	// Round 2, first agent: 4 staged ideas, all within the 5-idea tail.
	prompt := lastMessageContent(t, providers[0].Calls()[1].Request)
	assert.Contains(t, prompt, "[A0]: r1-idea-0")
	assert.Contains(t, prompt, "[A3]: r1-idea-3")

	// Round 3, first agent: 8 staged ideas, only the last 5 survive.
	prompt = lastMessageContent(t, providers[0].Calls()[2].Request)
	assert.NotContains(t, prompt, "[A2]: r1-idea-2", "oldest staged ideas fell out of the tail")
	assert.Contains(t, prompt, "[A3]: r1-idea-3")
	assert.Contains(t, prompt, "[A3]: r2-idea-3")
}

func TestBrainstorm_FailedTurnSkipped(t *testing.T) {
	o := newTestOrchestrator()
	o.SetTopic("topic")

	pa := mocks.NewProvider().WithResponse("idea from A")
	require.NoError(t, o.AddAgent(newTestAgent("A", "x", pa)))
	require.NoError(t, o.AddAgent(newTestAgent("B", "y",
		mocks.NewErrorProvider(&llm.Error{Code: llm.ErrUpstreamError, Message: "down"}))))
	require.NoError(t, o.AddAgent(newTestAgent("C", "z", mocks.NewProvider().WithResponse("idea from C"))))

	ideas, err := o.Brainstorm(context.Background(), 1)
	require.NoError(t, err, "a failed turn must not abort the phase")
	assert.Equal(t, []string{"[A]: idea from A", "[C]: idea from C"}, ideas)

	// Only successful turns reach the transcript.
	entries := o.Transcript()
	require.Len(t, entries, 2)
	assert.Equal(t, "A", entries[0].AgentName)
	assert.Equal(t, "C", entries[1].AgentName)
}

func TestBrainstorm_EntryCountProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		agents := rapid.IntRange(1, 6).Draw(t, "agents")
		rounds := rapid.IntRange(1, 5).Draw(t, "rounds")

		o := newTestOrchestrator()
		o.SetTopic("topic")
		for i := 0; i < agents; i++ {
			require.NoError(t, o.AddAgent(newTestAgent(fmt.Sprintf("A%d", i), "x", mocks.NewProvider())))
		}

		ideas, err := o.Brainstorm(context.Background(), rounds)
		require.NoError(t, err)
		assert.Len(t, ideas, agents*rounds)
		assert.Len(t, o.Transcript(), agents*rounds)
	})
}

func TestResearch_AssignsFirstAgent(t *testing.T) {
	searcher := mocks.NewSearcher()
	o := New(DefaultConfig(), searcher, nil, nil)
	o.SetTopic("quantum computing")

	pa := mocks.NewProvider().WithResponse("analysis text")
	require.NoError(t, o.AddAgent(newTestAgent("A", "alpha", pa)))
	require.NoError(t, o.AddAgent(newTestAgent("B", "beta", mocks.NewProvider())))

	found, err := o.Research(context.Background(), []string{"qubit error correction"})
	require.NoError(t, err)
	require.Contains(t, found, "qubit error correction")

	calls := searcher.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "qubit error correction", calls[0].Query)
	assert.Equal(t, 3, calls[0].MaxResults)

	// The analysis prompt carries the tagged results and the topic.
	prompt := lastMessageContent(t, pa.LastCall().Request)
	assert.Contains(t, prompt, `You searched for: "qubit error correction"`)
	assert.Contains(t, prompt, "Mock Paper")
	assert.Contains(t, prompt, "quantum computing")

	agents := o.Agents()
	require.Len(t, agents[0].Notes(), 1)
	assert.Contains(t, agents[0].Notes()[0].Text, "Search: qubit error correction")
	assert.Contains(t, agents[0].Notes()[0].Text, "Findings: analysis text")
	assert.Empty(t, agents[1].Notes())

	entries := o.Transcript()
	require.Len(t, entries, 1)
	assert.Equal(t, PhaseResearch, entries[0].Phase)
	assert.Equal(t, "qubit error correction", entries[0].Query)
	assert.Nil(t, entries[0].Round)
}

func TestResearch_SearchFailureSkipsQuery(t *testing.T) {
	searcher := mocks.NewSearcher().WithError(fmt.Errorf("backend down"))
	o := New(DefaultConfig(), searcher, nil, nil)
	o.SetTopic("topic")
	require.NoError(t, o.AddAgent(newTestAgent("A", "x", mocks.NewProvider())))

	found, err := o.Research(context.Background(), []string{"q"})
	require.NoError(t, err, "a failed query must not abort the phase")
	assert.NotContains(t, found, "q")
	assert.Empty(t, o.Transcript(), "failed retrieval must not produce transcript entries")
	assert.Empty(t, o.Agents()[0].Notes())
}

func TestDiscuss_SharedContextGrows(t *testing.T) {
	o := newTestOrchestrator()
	o.SetTopic("quantum computing")

	pa := mocks.NewProvider().WithResponse("point from A")
	pb := mocks.NewProvider().WithResponse("point from B")
	require.NoError(t, o.AddAgent(newTestAgent("A", "alpha", pa)))
	require.NoError(t, o.AddAgent(newTestAgent("B", "beta", pb)))

	discussion, err := o.Discuss(context.Background(), "methodology", 1)
	require.NoError(t, err)
	require.Len(t, discussion, 2)
	assert.Equal(t, "[A]: point from A", discussion[0])
	assert.Equal(t, "[B]: point from B", discussion[1])

	// A opened with no shared context: system + prompt only.
	aMsgs := pa.LastCall().Request.Messages
	require.Len(t, aMsgs, 2)
	aPrompt := aMsgs[len(aMsgs)-1].Content
	assert.Contains(t, aPrompt, "Opening statement:")
	assert.NotContains(t, aPrompt, "Challenge or build upon previous points.")

	// B received A's tagged reply both as shared context and inline.
	bMsgs := pb.LastCall().Request.Messages
	require.Len(t, bMsgs, 3)
	assert.Equal(t, "[A]: point from A", bMsgs[1].Content)
	assert.Equal(t, "A", bMsgs[1].Name)

	bPrompt := bMsgs[len(bMsgs)-1].Content
	assert.Contains(t, bPrompt, "Recent discussion:")
	assert.Contains(t, bPrompt, "[A]: point from A")
	assert.Contains(t, bPrompt, "Challenge or build upon previous points.")

	entries := o.Transcript()
	require.Len(t, entries, 2)
	assert.Equal(t, PhaseDiscussion, entries[0].Phase)
	assert.Equal(t, "methodology", entries[0].Topic)
}

func TestDiscuss_InlinesLastThreeMessages(t *testing.T) {
	o := newTestOrchestrator()
	o.SetTopic("topic")

	providers := make([]*mocks.Provider, 5)
	for i := range providers {
		providers[i] = mocks.NewProvider().WithResponse(fmt.Sprintf("point-%d", i))
		require.NoError(t, o.AddAgent(newTestAgent(fmt.Sprintf("A%d", i), "x", providers[i])))
	}

	_, err := o.Discuss(context.Background(), "approach", 1)
	require.NoError(t, err)

	// The fifth agent sees only the three most recent replies inline.
	prompt := lastMessageContent(t, providers[4].LastCall().Request)
	assert.NotContains(t, prompt, "[A0]: point-0")
	assert.Contains(t, prompt, "[A1]: point-1")
	assert.Contains(t, prompt, "[A3]: point-3")
}

func lastMessageContent(t *testing.T, req *llm.ChatRequest) string {
	t.Helper()
	require.NotEmpty(t, req.Messages)
	return req.Messages[len(req.Messages)-1].Content
}
