package store

import (
	"context"
	"testing"

	"moihub_chatbot/backend/go/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Entries(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	exists, err := s.EntryExists(ctx, "Where is the library?")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, s.InsertEntry(ctx, models.QAEntry{Question: "Where is the library?", Answer: "Behind the hall"}))
	require.NoError(t, s.InsertEntry(ctx, models.QAEntry{Question: "When is lunch?", Answer: "1pm"}))

	exists, err = s.EntryExists(ctx, "Where is the library?")
	require.NoError(t, err)
	assert.True(t, exists)

	// 区分大小写
	exists, err = s.EntryExists(ctx, "where is the library?")
	require.NoError(t, err)
	assert.False(t, exists)

	questions, err := s.AllQuestions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Where is the library?", "When is lunch?"}, questions)

	entry, err := s.GetEntryByQuestion(ctx, "When is lunch?")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, "1pm", entry.Answer)

	missing, err := s.GetEntryByQuestion(ctx, "Who?")
	require.NoError(t, err)
	assert.Nil(t, missing)

	all, err := s.AllEntries(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestMemoryStore_FactsLastWriteWins(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	fact, err := s.GetFact(ctx, "lagos")
	require.NoError(t, err)
	assert.Nil(t, fact)

	require.NoError(t, s.UpsertFact(ctx, models.EntityFact{Entity: "lagos", Location: "Lagos is near Ibadan"}))
	require.NoError(t, s.UpsertFact(ctx, models.EntityFact{Entity: "lagos", Location: "Lagos is past Ibadan"}))

	fact, err = s.GetFact(ctx, "lagos")
	require.NoError(t, err)
	require.NotNil(t, fact)
	assert.Equal(t, "Lagos is past Ibadan", fact.Location)
}
