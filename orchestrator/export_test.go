package orchestrator

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Eeman1113/Hivemind/testutil/mocks"
)

func TestExport_Snapshot(t *testing.T) {
	o := newTestOrchestrator()
	o.SetTopic("quantum computing")
	require.NoError(t, o.AddAgent(newTestAgent("A", "alpha", mocks.NewProvider().WithResponse("9"))))
	require.NoError(t, o.AddAgent(newTestAgent("B", "beta", mocks.NewProvider().WithResponse("8"))))

	_, err := o.Brainstorm(context.Background(), 1)
	require.NoError(t, err)
	_, err = o.EvaluateSatisfaction(context.Background())
	require.NoError(t, err)

	export := o.Export()
	assert.Equal(t, o.SessionID(), export.SessionID)
	assert.Equal(t, "quantum computing", export.Topic)
	assert.False(t, export.Timestamp.IsZero())
	require.Len(t, export.Agents, 2)
	assert.Equal(t, "A", export.Agents[0].Name)
	// 2 brainstorm entries + 2 evaluation entries.
	assert.Len(t, export.DiscussionLog, 4)
	assert.Equal(t, 4, export.TotalInteractions)
	assert.Equal(t, map[string]int{"A": 9, "B": 8}, export.SatisfactionScores)
}

func TestWriteExport_RoundTrip(t *testing.T) {
	o := newTestOrchestrator()
	o.SetTopic("quantum computing")
	require.NoError(t, o.AddAgent(newTestAgent("A", "alpha", mocks.NewProvider())))
	_, err := o.Brainstorm(context.Background(), 1)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, o.WriteExport(path))

	loaded, err := LoadExport(path)
	require.NoError(t, err)
	assert.Equal(t, o.SessionID(), loaded.SessionID)
	assert.Equal(t, "quantum computing", loaded.Topic)
	require.Len(t, loaded.DiscussionLog, 1)
	assert.Equal(t, PhaseBrainstorm, loaded.DiscussionLog[0].Phase)
	assert.Equal(t, "A", loaded.DiscussionLog[0].AgentName)
}

func TestLoadExport_MissingFile(t *testing.T) {
	_, err := LoadExport(filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
}
