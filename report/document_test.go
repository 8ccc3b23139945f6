package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocument_SectionOrderIsInsertionOrder(t *testing.T) {
	d := NewDocument("Quantum Computing", []string{"Dr. Neural", "Dr. Ethics"})
	d.AddSection("title", "Dr. Neural", "Quantum Computing: A Survey")
	d.AddSection("abstract", "Dr. Neural", "We survey the field.")
	d.AddSection("introduction", "Dr. Ethics", "Quantum computing promises...")

	sections := d.Sections()
	require.Len(t, sections, 3)
	assert.Equal(t, "title", sections[0].Name)
	assert.Equal(t, "abstract", sections[1].Name)
	assert.Equal(t, "introduction", sections[2].Name)
}

func TestDocument_AddSectionReplacesInPlace(t *testing.T) {
	d := NewDocument("Topic", nil)
	d.AddSection("abstract", "A", "first draft")
	d.AddSection("introduction", "B", "intro")
	d.AddSection("abstract", "A", "second draft")

	require.Equal(t, 2, d.Len())
	s, ok := d.Section("abstract")
	require.True(t, ok)
	assert.Equal(t, "second draft", s.Content)
	assert.Equal(t, "abstract", d.Sections()[0].Name, "replacement keeps position")
}

func TestDocument_SectionMissing(t *testing.T) {
	d := NewDocument("Topic", nil)
	_, ok := d.Section("results")
	assert.False(t, ok)
}

func TestMarkdownRenderer_Render(t *testing.T) {
	d := NewDocument("Quantum Computing", []string{"Dr. Neural"})
	d.AddSection("title", "Dr. Neural", "Quantum Computing: A Survey")
	d.AddSection("results and conclusion", "Dr. RL", "It works.")

	out, err := NewMarkdownRenderer().Render(d)
	require.NoError(t, err)
	text := string(out)

	assert.True(t, strings.HasPrefix(text, "# Quantum Computing\n"))
	assert.Contains(t, text, "*Authors: Dr. Neural*")
	assert.Contains(t, text, "## Title\n")
	assert.Contains(t, text, "## Results And Conclusion\n")
	assert.Contains(t, text, "*Contributed by Dr. RL*")

	// Sections render in insertion order.
	assert.Less(t, strings.Index(text, "## Title"), strings.Index(text, "## Results And Conclusion"))
}

func TestMarkdownRenderer_NilDocument(t *testing.T) {
	_, err := NewMarkdownRenderer().Render(nil)
	require.Error(t, err)
}
