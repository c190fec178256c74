package realtime

import (
	"encoding/json"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kerhoff/ListeDeNoel/internal/models"
)

func TestAudience(t *testing.T) {
	tests := []struct {
		name     string
		families []int64
		excluded int64
		familyID any
		userID   any
		expected bool
	}{
		{name: "member of listed family", families: []int64{1, 2}, excluded: 9, familyID: int64(2), userID: int64(3), expected: true},
		{name: "other family", families: []int64{1, 2}, excluded: 9, familyID: int64(5), userID: int64(3), expected: false},
		{name: "gift owner excluded", families: []int64{1}, excluded: 9, familyID: int64(1), userID: int64(9), expected: false},
		{name: "owner included when nobody excluded", families: []int64{1}, excluded: 0, familyID: int64(1), userID: int64(9), expected: true},
		{name: "session without keys", families: []int64{1}, excluded: 0, familyID: nil, userID: nil, expected: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			filter := audience(tc.families, tc.excluded)
			assert.Equal(t, tc.expected, filter(tc.familyID, tc.userID))
		})
	}
}

func TestEventEncoding(t *testing.T) {
	data, err := json.Marshal(Event{Type: EventContributionsUpdated, GiftID: 42})
	require.NoError(t, err)

	assert.JSONEq(t, `{"type":"contributions_updated","cadeau_id":42}`, string(data))
}

func TestHub_BroadcastWithoutSessions(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	hub := NewHub(logger, "http://localhost:5173")

	gift := &models.Gift{ID: 1, OwnerID: 2, FamilyIDs: []int64{3}}
	hub.ContributionsUpdated(gift)
	hub.GiftUpdated(gift)
	hub.GiftsUpdated([]int64{3}, 1)
	hub.GiftsUpdated(nil, 1)

	assert.Equal(t, 0, hub.Sessions())
	assert.NoError(t, hub.Close())
}
