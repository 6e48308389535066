package extractor

import (
	"testing"

	"moihub_chatbot/backend/go/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractRelations(t *testing.T) {
	tests := []struct {
		name   string
		answer string
		want   models.Relation
		ok     bool
	}{
		{
			name:   "past",
			answer: "Lagos is past Ibadan",
			want:   models.Relation{Source: "Lagos", Target: "Ibadan", Verb: VerbPast},
			ok:     true,
		},
		{
			name:   "near",
			answer: "Lagos is near Ibadan",
			want:   models.Relation{Source: "Lagos", Target: "Ibadan", Verb: VerbNear},
			ok:     true,
		},
		{
			name:   "case insensitive connective keeps entity case",
			answer: "the Main Gate IS PAST the library",
			want:   models.Relation{Source: "the Main Gate", Target: "the library", Verb: VerbPast},
			ok:     true,
		},
		{
			name:   "non-breaking spaces count as whitespace",
			answer: "Lagos\u00a0is\u00a0past Ibadan\u00a0",
			want:   models.Relation{Source: "Lagos", Target: "Ibadan", Verb: VerbPast},
			ok:     true,
		},
		{
			name:   "punctuation ends entity",
			answer: "Go straight. Lagos is past Ibadan.",
			want:   models.Relation{Source: "Lagos", Target: "Ibadan", Verb: VerbPast},
			ok:     true,
		},
		{
			name:   "past wins over near",
			answer: "Oyo is near Ife. Lagos is past Ibadan",
			want:   models.Relation{Source: "Lagos", Target: "Ibadan", Verb: VerbPast},
			ok:     true,
		},
		{
			name:   "no relation",
			answer: "The library opens at 8am",
			ok:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractRelations(tt.answer)
			require.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDeriveFacts(t *testing.T) {
	past := DeriveFacts(models.Relation{Source: "Lagos", Target: "Ibadan", Verb: VerbPast})
	assert.Equal(t, []models.EntityFact{
		{Entity: "lagos", Location: "Lagos is past Ibadan"},
		{Entity: "ibadan", Location: "Ibadan is before Lagos"},
	}, past)

	near := DeriveFacts(models.Relation{Source: "Lagos", Target: "Ibadan", Verb: VerbNear})
	assert.Equal(t, []models.EntityFact{
		{Entity: "lagos", Location: "Lagos is near Ibadan"},
		{Entity: "ibadan", Location: "Ibadan is near Lagos"},
	}, near)

	assert.Nil(t, DeriveFacts(models.Relation{Source: "a", Target: "b", Verb: "under"}))
}

func TestExtractLocationForTarget(t *testing.T) {
	tests := []struct {
		name   string
		answer string
		target string
		want   string
		ok     bool
	}{
		{name: "first entity", answer: "Lagos is past Ibadan", target: "lagos", want: "Lagos is past Ibadan", ok: true},
		{name: "second entity uses target spelling", answer: "Lagos is past Ibadan", target: "IBADAN", want: "IBADAN is before Lagos", ok: true},
		{name: "near second entity", answer: "Lagos is near Ibadan", target: "Ibadan", want: "Ibadan is near Lagos", ok: true},
		{name: "falls through to near", answer: "Oyo is near Ife. Lagos is past Ibadan", target: "Ife", want: "Ife is near Oyo", ok: true},
		{name: "substring is not equality", answer: "Lagos is past Ibadan", target: "Lag", ok: false},
		{name: "no relation", answer: "Nothing to see here", target: "Lagos", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractLocationForTarget("any question", tt.answer, tt.target)
			require.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
