package hn

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopItemsExactLengthAndOrder(t *testing.T) {
	f := &apiFixture{
		top: []int{30, 10, 20, 40, 50},
		items: map[int]Item{
			30: {ID: 30, Type: "story", Title: "first"},
			10: {ID: 10, Type: "story", Title: "second"},
			20: {ID: 20, Type: "story", Title: "third"},
			40: {ID: 40, Type: "story", Title: "fourth"},
			50: {ID: 50, Type: "story", Title: "fifth"},
		},
		// The top-ranked story resolves slowest; ranks must be unaffected.
		delay: map[int]time.Duration{30: 100 * time.Millisecond},
	}
	_, client := f.start(t, 4)

	ranked, err := client.TopItems(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, ranked, 3)
	for i, want := range []int{30, 10, 20} {
		assert.Equal(t, i+1, ranked[i].Rank)
		assert.Equal(t, want, ranked[i].ID)
		require.NotNil(t, ranked[i].Item)
		assert.Equal(t, want, ranked[i].Item.ID)
	}
}

func TestTopItemsFewerAvailableThanRequested(t *testing.T) {
	f := &apiFixture{
		top: []int{1, 2},
		items: map[int]Item{
			1: {ID: 1, Type: "story"},
			2: {ID: 2, Type: "story"},
		},
	}
	_, client := f.start(t, 4)

	ranked, err := client.TopItems(context.Background(), 30)
	require.NoError(t, err)
	assert.Len(t, ranked, 2)
}

func TestTopItemsPlaceholderKeepsRank(t *testing.T) {
	f := &apiFixture{
		top: []int{1, 2, 3},
		items: map[int]Item{
			1: {ID: 1, Type: "story"},
			3: {ID: 3, Type: "story"},
		},
		fail: map[int]int{2: http.StatusInternalServerError},
	}
	_, client := f.start(t, 4)

	ranked, err := client.TopItems(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, ranked, 3)

	assert.Nil(t, ranked[1].Item)
	assert.Equal(t, 2, ranked[1].Rank)
	assert.Equal(t, 2, ranked[1].ID)
	assert.Equal(t, FailureUpstream, ranked[1].Failure)

	assert.NotNil(t, ranked[0].Item)
	assert.NotNil(t, ranked[2].Item)
}

func TestTopItemsListingFailure(t *testing.T) {
	f := &apiFixture{topStatus: http.StatusBadGateway}
	_, client := f.start(t, 4)

	_, err := client.TopItems(context.Background(), 10)
	var ue *UpstreamError
	require.ErrorAs(t, err, &ue)
}

func TestTopItemsInvalidInput(t *testing.T) {
	f := &apiFixture{}
	_, client := f.start(t, 4)

	_, err := client.TopItems(context.Background(), 0)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, int32(0), f.requests.Load())
}
