package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// fakeServer 模拟聊天服务的三个接口。
func fakeServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/chat", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req["question"] == "" {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "No question provided"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"response": "echo: " + req["question"]})
	})
	mux.HandleFunc("/train", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "Chatbot has learned a new answer!"})
	})
	mux.HandleFunc("/knowledge", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]entry{
			{Question: "Tell me about the route", Answer: "Lagos is past Ibadan"},
			{Question: "What time does the library open?", Answer: "8am"},
		})
	})
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestAsk(t *testing.T) {
	ts := fakeServer(t)

	out, err := run(t, "--server", ts.URL, "ask", "Where", "is", "Lagos?")
	require.NoError(t, err)
	assert.Equal(t, "echo: Where is Lagos?\n", out)
}

func TestAsk_ServerError(t *testing.T) {
	ts := fakeServer(t)

	_, err := run(t, "--server", ts.URL, "ask", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No question provided")
}

func TestTeach(t *testing.T) {
	ts := fakeServer(t)

	out, err := run(t, "--server", ts.URL, "teach", "-q", "Tell me about the route", "-a", "Lagos is past Ibadan")
	require.NoError(t, err)
	assert.Equal(t, "Chatbot has learned a new answer!\n", out)

	_, err = run(t, "--server", ts.URL, "teach", "-q", "only a question")
	assert.Error(t, err)
}

func TestKnowledgeList(t *testing.T) {
	ts := fakeServer(t)

	out, err := run(t, "--server", ts.URL, "knowledge", "list")
	require.NoError(t, err)

	var entries []entry
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	assert.Len(t, entries, 2)
}

func TestKnowledgeExport(t *testing.T) {
	ts := fakeServer(t)
	path := filepath.Join(t.TempDir(), "knowledge.xlsx")

	out, err := run(t, "--server", ts.URL, "knowledge", "export", "--out", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported 2 entries")

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	for cell, want := range map[string]string{
		"A1": "Question",
		"B1": "Answer",
		"A2": "Tell me about the route",
		"B2": "Lagos is past Ibadan",
		"A3": "What time does the library open?",
		"B3": "8am",
	} {
		got, err := f.GetCellValue(knowledgeSheet, cell)
		require.NoError(t, err)
		assert.Equal(t, want, got, cell)
	}
}
