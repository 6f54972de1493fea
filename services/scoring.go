package services

import (
	"math"
	"sort"
	"time"

	"partyquiz/models"
)

const (
	// basePoints is awarded for any correct answer inside the time limit.
	basePoints = 1000
	// bonusPool is distributed linearly by remaining time, so instant answers
	// earn basePoints+bonusPool and last-second ones earn basePoints.
	bonusPool = 2000

	// LeaderboardSize caps the rankings included in broadcast payloads. The
	// full ranked list always stays in the session snapshot.
	LeaderboardSize = 10
)

// CalculatePoints returns the award for one submission. Wrong or late answers
// score zero.
func CalculatePoints(timeTaken, timeLimit time.Duration, isCorrect bool) int {
	if !isCorrect || timeLimit <= 0 || timeTaken > timeLimit {
		return 0
	}
	if timeTaken < 0 {
		timeTaken = 0
	}
	remaining := float64(timeLimit-timeTaken) / float64(timeLimit)
	return basePoints + int(math.Round(remaining*float64(bonusPool)))
}

// Rankings orders players by descending score, ties broken by join order.
func Rankings(players []models.Player) []models.Ranking {
	ordered := append([]models.Player(nil), players...)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Score != ordered[j].Score {
			return ordered[i].Score > ordered[j].Score
		}
		return ordered[i].JoinOrder < ordered[j].JoinOrder
	})

	rankings := make([]models.Ranking, len(ordered))
	for i, p := range ordered {
		rankings[i] = models.Ranking{
			Rank:     i + 1,
			PlayerID: p.ID,
			Name:     p.Name,
			Score:    p.Score,
		}
	}
	return rankings
}

// TopRankings truncates a ranked list for display payloads.
func TopRankings(rankings []models.Ranking) []models.Ranking {
	if len(rankings) <= LeaderboardSize {
		return rankings
	}
	return rankings[:LeaderboardSize]
}
