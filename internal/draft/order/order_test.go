package order

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cdurbin34/draftroom/internal/models"
)

func newOrder(n int) []uuid.UUID {
	out := make([]uuid.UUID, n)
	for i := range out {
		out[i] = uuid.New()
	}
	return out
}

func TestPosition(t *testing.T) {
	cases := []struct {
		name       string
		pickNumber int
		teamCount  int
		wantRound  int
		wantIndex  int
	}{
		{name: "first pick", pickNumber: 1, teamCount: 4, wantRound: 1, wantIndex: 0},
		{name: "last pick of round one", pickNumber: 4, teamCount: 4, wantRound: 1, wantIndex: 3},
		{name: "first pick of round two", pickNumber: 5, teamCount: 4, wantRound: 2, wantIndex: 0},
		{name: "mid round three", pickNumber: 10, teamCount: 4, wantRound: 3, wantIndex: 1},
		{name: "two teams", pickNumber: 7, teamCount: 2, wantRound: 4, wantIndex: 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			round, index := Position(tc.pickNumber, tc.teamCount)
			assert.Equal(t, tc.wantRound, round)
			assert.Equal(t, tc.wantIndex, index)
		})
	}
}

func TestNextTurn_SnakeReversesEvenRounds(t *testing.T) {
	teams := newOrder(4)

	// Four teams, two rounds: A B C D D C B A.
	want := []uuid.UUID{
		teams[0], teams[1], teams[2], teams[3],
		teams[3], teams[2], teams[1], teams[0],
	}
	for pickNumber := 1; pickNumber <= 8; pickNumber++ {
		round, teamID := NextTurn(models.DraftTypeSnake, teams, pickNumber)
		assert.Equal(t, want[pickNumber-1], teamID, "pick %d", pickNumber)
		assert.Equal(t, (pickNumber-1)/4+1, round, "pick %d", pickNumber)
	}
}

func TestNextTurn_LinearRepeatsOrder(t *testing.T) {
	teams := newOrder(3)

	for pickNumber := 1; pickNumber <= 9; pickNumber++ {
		_, teamID := NextTurn(models.DraftTypeLinear, teams, pickNumber)
		assert.Equal(t, teams[(pickNumber-1)%3], teamID, "pick %d", pickNumber)
	}
}

func TestNextTurn_LotteryFixedIsLinearAfterDraw(t *testing.T) {
	teams := newOrder(3)

	// The lottery decides the order once; rounds never reverse.
	for pickNumber := 1; pickNumber <= 6; pickNumber++ {
		_, fixed := NextTurn(models.DraftTypeLotteryFixed, teams, pickNumber)
		_, linear := NextTurn(models.DraftTypeLinear, teams, pickNumber)
		assert.Equal(t, linear, fixed, "pick %d", pickNumber)
	}
}

func TestNextTurn_EveryTeamPicksOncePerRound(t *testing.T) {
	for _, draftType := range []models.DraftType{models.DraftTypeSnake, models.DraftTypeLinear} {
		teams := newOrder(5)
		for round := 0; round < 4; round++ {
			seen := make(map[uuid.UUID]bool)
			for slot := 1; slot <= 5; slot++ {
				_, teamID := NextTurn(draftType, teams, round*5+slot)
				require.False(t, seen[teamID], "%s round %d repeated team", draftType, round+1)
				seen[teamID] = true
			}
		}
	}
}

func TestComplete(t *testing.T) {
	cases := []struct {
		name         string
		pickNumber   int
		totalPlayers int
		totalRounds  int
		teamCount    int
		want         bool
	}{
		{name: "mid draft", pickNumber: 5, totalPlayers: 8, totalRounds: 2, teamCount: 4, want: false},
		{name: "final slot", pickNumber: 8, totalPlayers: 8, totalRounds: 2, teamCount: 4, want: false},
		{name: "past the pool", pickNumber: 9, totalPlayers: 8, totalRounds: 2, teamCount: 4, want: true},
		{name: "pool short of the final round", pickNumber: 7, totalPlayers: 6, totalRounds: 2, teamCount: 4, want: true},
		{name: "past the rounds with players left", pickNumber: 9, totalPlayers: 20, totalRounds: 2, teamCount: 4, want: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Complete(tc.pickNumber, tc.totalPlayers, tc.totalRounds, tc.teamCount))
		})
	}
}
