package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"semsearch/internal/domain"
)

type stubQuerier struct {
	results []domain.RankedResult
	err     error
	got     []string
}

func (s *stubQuerier) Query(_ context.Context, text string, _ int) ([]domain.RankedResult, error) {
	s.got = append(s.got, text)
	return s.results, s.err
}

func typeText(m Model, s string) Model {
	for _, r := range s {
		next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = next.(Model)
	}
	return m
}

func press(m Model, k tea.KeyType) (Model, tea.Cmd) {
	next, cmd := m.Update(tea.KeyMsg{Type: k})
	return next.(Model), cmd
}

func sized(m Model) Model {
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 30})
	return next.(Model)
}

func isQuit(t *testing.T, cmd tea.Cmd) bool {
	t.Helper()
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestModel_EnterRunsQueryAndShowsResults(t *testing.T) {
	q := &stubQuerier{results: []domain.RankedResult{
		{Rank: 1, Score: 0.9, Metadata: domain.MetadataRecord{URL: "https://a", TotalChunks: 2, Text: "Solar power works. Cats sleep."}},
		{Rank: 2, Score: 0.4, Metadata: domain.MetadataRecord{URL: "https://b", TotalChunks: 1, Text: "Wind power too."}},
	}}
	m := sized(New(context.Background(), q, 5, "semsearch", "summary"))
	m = typeText(m, "solar power")

	m, cmd := press(m, tea.KeyEnter)
	require.NotNil(t, cmd)
	assert.True(t, m.busy)
	next, _ := m.Update(cmd())
	m = next.(Model)

	assert.Equal(t, []string{"solar power"}, q.got)
	assert.False(t, m.busy)
	assert.Len(t, m.results, 2)
	assert.Contains(t, m.renderCurrentResult(), "Chunk 1 of 2 from https://a")

	m, _ = press(m, tea.KeyDown)
	assert.Equal(t, 1, m.cursor)
	m, _ = press(m, tea.KeyDown)
	assert.Equal(t, 0, m.cursor, "cursor wraps around")
	m, _ = press(m, tea.KeyUp)
	assert.Equal(t, 1, m.cursor)
}

func TestModel_QueryErrorKeepsRunning(t *testing.T) {
	q := &stubQuerier{err: errors.New("embedding failed")}
	m := sized(New(context.Background(), q, 5, "semsearch", ""))
	m = typeText(m, "anything")

	m, cmd := press(m, tea.KeyEnter)
	next, follow := m.Update(cmd())
	m = next.(Model)
	assert.Nil(t, follow)
	assert.Contains(t, m.status, "embedding failed")
	assert.Empty(t, m.results)
}

func TestModel_QuitSentinelAndKeys(t *testing.T) {
	m := sized(New(context.Background(), &stubQuerier{}, 5, "semsearch", ""))
	m = typeText(m, "Exit")
	_, cmd := press(m, tea.KeyEnter)
	assert.True(t, isQuit(t, cmd))

	for _, k := range []tea.KeyType{tea.KeyCtrlC, tea.KeyCtrlD, tea.KeyEsc} {
		_, cmd := press(m, k)
		assert.True(t, isQuit(t, cmd), k.String())
	}
}

func TestModel_EmptyEnterDoesNothing(t *testing.T) {
	q := &stubQuerier{}
	m := sized(New(context.Background(), q, 5, "semsearch", ""))
	_, cmd := press(m, tea.KeyEnter)
	assert.Nil(t, cmd)
	assert.Empty(t, q.got)
}

func TestHighlightBestSentence(t *testing.T) {
	text := "Cats sleep a lot. Solar panels make power. Dogs bark."
	out := highlightBestSentence(text, "solar power")
	assert.Contains(t, out, "Solar panels make power.")
	assert.Contains(t, out, "Cats sleep a lot.")
	assert.Equal(t, "", highlightBestSentence("", "q"))
}
