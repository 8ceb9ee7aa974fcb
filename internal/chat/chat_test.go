package chat

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docqa/internal/chromemdb"
	"docqa/internal/config"
	"docqa/internal/fakes"
	"docqa/internal/models"
)

type askCall struct {
	question string
	history  []models.Turn
	single   bool
}

type recordingAsker struct {
	calls []askCall
	err   error
}

func (a *recordingAsker) answerFor(q string) *models.Answer {
	return &models.Answer{Question: q, StandaloneQuestion: q, Content: "A:" + q}
}

func (a *recordingAsker) Ask(_ context.Context, q string) (*models.Answer, error) {
	a.calls = append(a.calls, askCall{question: q, single: true})
	if a.err != nil {
		return nil, a.err
	}
	return a.answerFor(q), nil
}

func (a *recordingAsker) AskWithContext(_ context.Context, q string, history []models.Turn) (*models.Answer, error) {
	a.calls = append(a.calls, askCall{question: q, history: history})
	if a.err != nil {
		return nil, a.err
	}
	return a.answerFor(q), nil
}

func newTestSession(asker Asker, policy HistoryPolicy, mode Mode, input string, out *bytes.Buffer) *Session {
	return NewSession(asker, NewHistory(policy), mode, bufio.NewReader(strings.NewReader(input)), out)
}

func TestIsExitCommand(t *testing.T) {
	for _, kw := range []string{"q", "quit", "exit", "close"} {
		assert.True(t, IsExitCommand(kw), kw)
	}
	for _, s := range []string{"Exit", "QUIT", " q", "q ", "", "bye", "closed"} {
		assert.False(t, IsExitCommand(s), s)
	}
}

func TestHistory_LastTurnReplaces(t *testing.T) {
	h := NewHistory(RetainLastTurn)
	h.Record(models.Turn{Question: "Q1", Answer: "A1"})
	assert.Equal(t, []models.Turn{{Question: "Q1", Answer: "A1"}}, h.Turns())

	h.Record(models.Turn{Question: "Q2", Answer: "A2"})
	assert.Equal(t, []models.Turn{{Question: "Q2", Answer: "A2"}}, h.Turns())
}

func TestHistory_AllTurnsAppends(t *testing.T) {
	h := NewHistory(RetainAllTurns)
	h.Record(models.Turn{Question: "Q1", Answer: "A1"})
	h.Record(models.Turn{Question: "Q2", Answer: "A2"})
	assert.Equal(t, []models.Turn{{Question: "Q1", Answer: "A1"}, {Question: "Q2", Answer: "A2"}}, h.Turns())
}

func TestParseHistoryPolicy(t *testing.T) {
	p, err := ParseHistoryPolicy("")
	require.NoError(t, err)
	assert.Equal(t, RetainLastTurn, p)

	p, err = ParseHistoryPolicy("all-turns")
	require.NoError(t, err)
	assert.Equal(t, RetainAllTurns, p)

	_, err = ParseHistoryPolicy("everything")
	assert.Error(t, err)
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("single-shot")
	require.NoError(t, err)
	assert.Equal(t, SingleShot, m)

	_, err = ParseMode("batch")
	assert.Error(t, err)
}

func TestSession_LastTurnHistory(t *testing.T) {
	asker := &recordingAsker{}
	var out bytes.Buffer
	s := newTestSession(asker, RetainLastTurn, Conversational, "Q1\nQ2\nQ3\nquit\n", &out)

	require.NoError(t, s.Run(context.Background()))

	require.Len(t, asker.calls, 3)
	assert.Empty(t, asker.calls[0].history)
	assert.Equal(t, []models.Turn{{Question: "Q1", Answer: "A:Q1"}}, asker.calls[1].history)
	assert.Equal(t, []models.Turn{{Question: "Q2", Answer: "A:Q2"}}, asker.calls[2].history)
	assert.Equal(t, []models.Turn{{Question: "Q3", Answer: "A:Q3"}}, s.History())

	assert.Contains(t, out.String(), "Answer: A:Q2\n"+models.AnswerSeparator+"\n")
	assert.True(t, strings.HasSuffix(out.String(), models.UserPrompt))
}

func TestSession_AllTurnsHistory(t *testing.T) {
	asker := &recordingAsker{}
	s := newTestSession(asker, RetainAllTurns, Conversational, "Q1\nQ2\nQ3\nq\n", &bytes.Buffer{})

	require.NoError(t, s.Run(context.Background()))

	require.Len(t, asker.calls, 3)
	assert.Len(t, asker.calls[2].history, 2)
	assert.Len(t, s.History(), 3)
}

func TestSession_CapitalizedExitIsAQuestion(t *testing.T) {
	asker := &recordingAsker{}
	s := newTestSession(asker, RetainLastTurn, Conversational, "Exit\nquit\nnever asked\n", &bytes.Buffer{})

	require.NoError(t, s.Run(context.Background()))

	require.Len(t, asker.calls, 1)
	assert.Equal(t, "Exit", asker.calls[0].question)
}

func TestSession_EndOfInput(t *testing.T) {
	asker := &recordingAsker{}
	s := newTestSession(asker, RetainLastTurn, Conversational, "only question", &bytes.Buffer{})

	require.NoError(t, s.Run(context.Background()))
	assert.Len(t, asker.calls, 1)
}

func TestSession_SingleShot(t *testing.T) {
	asker := &recordingAsker{}
	var out bytes.Buffer
	s := newTestSession(asker, RetainLastTurn, SingleShot, "Q1\nQ2\nclose\n", &out)

	require.NoError(t, s.Run(context.Background()))

	require.Len(t, asker.calls, 2)
	assert.True(t, asker.calls[1].single)
	assert.Empty(t, s.History())
	assert.Contains(t, out.String(), "Question: Q2\nAnswer: A:Q2\n")
}

func TestSession_AskErrorEndsSession(t *testing.T) {
	boom := errors.New("timeout")
	asker := &recordingAsker{err: boom}
	s := newTestSession(asker, RetainLastTurn, Conversational, "Q1\nQ2\n", &bytes.Buffer{})

	assert.ErrorIs(t, s.Run(context.Background()), boom)
	assert.Len(t, asker.calls, 1)
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.IndexDir = filepath.Join(t.TempDir(), "faiss_vector_dbs")
	return cfg
}

func TestServe_MissingIndexPrintsGenericMessage(t *testing.T) {
	cfg := testConfig(t)
	var out bytes.Buffer
	gen := &fakes.Generator{}

	var err error
	require.NotPanics(t, func() {
		err = Serve(context.Background(), Options{Config: cfg, Embedder: &fakes.Embedder{}, LLM: gen}, strings.NewReader("never_indexed.pdf\nhello\n"), &out)
	})

	assert.ErrorIs(t, err, chromemdb.ErrIndexNotFound)
	assert.True(t, strings.HasPrefix(out.String(), models.ChatFileNamePrompt))
	assert.True(t, strings.HasSuffix(out.String(), models.SessionFailureMessage+"\n"))
	assert.Empty(t, gen.Calls)
}

func TestServe_RemoteFailureUsesSameMessage(t *testing.T) {
	cfg := testConfig(t)
	saveIndex(t, cfg, "doc_faiss_index")
	boom := errors.New("401")
	var out bytes.Buffer

	err := Serve(context.Background(), Options{Config: cfg, Embedder: &fakes.Embedder{}, LLM: &fakes.Generator{Err: boom}, FileName: "doc.pdf"}, strings.NewReader("What?\n"), &out)

	assert.ErrorIs(t, err, boom)
	assert.True(t, strings.HasSuffix(out.String(), models.SessionFailureMessage+"\n"))
}

func TestServe_Conversation(t *testing.T) {
	cfg := testConfig(t)
	saveIndex(t, cfg, filepath.Join("testFolder", "doc_faiss_index"))
	gen := &fakes.Generator{Responses: []string{"Rivers.", "What about mountains?", "Mountains."}}
	var out bytes.Buffer

	err := Serve(context.Background(), Options{Config: cfg, Embedder: &fakes.Embedder{}, LLM: gen}, strings.NewReader("\\testFolder/doc.pdf\nWhat is chapter one about?\nAnd two?\nexit\n"), &out)
	require.NoError(t, err)

	require.Len(t, gen.Calls, 3, "answer, condense, answer")
	assert.Contains(t, fakes.Text(gen.Calls[1]), "Follow Up Input: And two?")
	assert.Contains(t, out.String(), "Answer: Rivers.\n")
	assert.Contains(t, out.String(), "Answer: Mountains.\n")
	assert.NotContains(t, out.String(), models.SessionFailureMessage)
}

func saveIndex(t *testing.T, cfg *config.Config, rel string) {
	t.Helper()
	m, err := chromemdb.NewVectorDBManager("")
	require.NoError(t, err)
	var chunks []models.ChunkEmbedding
	for i, text := range []string{"Chapter one talks about rivers.", "Chapter two talks about mountains.", "Appendix lists every lake."} {
		chunks = append(chunks, models.ChunkEmbedding{
			Chunk:     models.Chunk{Source: "doc.pdf", Content: text, PageNumber: i + 1, ChunkID: 1},
			Embedding: fakes.LetterVector(text),
		})
	}
	require.NoError(t, m.CreateDocs(context.Background(), chromemdb.ChunkDocuments(chunks)))
	require.NoError(t, m.Save(filepath.Join(cfg.IndexDir, rel), chromemdb.Manifest{Source: "doc.pdf", Chunks: len(chunks)}))
}
