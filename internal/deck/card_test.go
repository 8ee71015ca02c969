package deck

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCards(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []Card
		wantErr bool
	}{
		{
			name:  "single card",
			input: "As",
			want:  []Card{{Rank: Ace, Suit: Spades}},
		},
		{
			name:  "multiple cards with spaces",
			input: "Ah Kd 2c",
			want: []Card{
				{Rank: Ace, Suit: Hearts},
				{Rank: King, Suit: Diamonds},
				{Rank: Two, Suit: Clubs},
			},
		},
		{
			name:  "lowercase ten",
			input: "td",
			want:  []Card{{Rank: Ten, Suit: Diamonds}},
		},
		{
			name:    "odd length",
			input:   "AsK",
			wantErr: true,
		},
		{
			name:    "bad rank",
			input:   "Xs",
			wantErr: true,
		},
		{
			name:    "bad suit",
			input:   "Ax",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCards(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCardString(t *testing.T) {
	assert.Equal(t, "As", Card{Rank: Ace, Suit: Spades}.String())
	assert.Equal(t, "Th", Card{Rank: Ten, Suit: Hearts}.String())
	assert.Equal(t, "2c", Card{Rank: Two, Suit: Clubs}.String())
}

func TestBlackjackValue(t *testing.T) {
	assert.Equal(t, 11, Ace.BlackjackValue())
	assert.Equal(t, 10, King.BlackjackValue())
	assert.Equal(t, 10, Queen.BlackjackValue())
	assert.Equal(t, 10, Jack.BlackjackValue())
	assert.Equal(t, 10, Ten.BlackjackValue())
	assert.Equal(t, 9, Nine.BlackjackValue())
	assert.Equal(t, 2, Two.BlackjackValue())
}

func TestStandard(t *testing.T) {
	full := Standard(nil, nil)
	require.Len(t, full, 52)

	// All cards unique
	seen := NewCardSet(full)
	count := 0
	for _, c := range full {
		require.True(t, seen.Contains(c))
		count++
	}
	assert.Equal(t, 52, count)

	short := Standard([]Rank{Ace, King}, []Suit{Spades, Hearts})
	assert.Len(t, short, 4)
}

func TestWithout(t *testing.T) {
	full := Standard(nil, nil)
	excluded := NewCardSet(MustParseCards("AsKsQs"))
	remaining := Without(full, excluded)
	require.Len(t, remaining, 49)
	for _, c := range remaining {
		assert.False(t, excluded.Contains(c), "excluded card %s still present", c)
	}
}
