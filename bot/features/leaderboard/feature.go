package leaderboard

import (
	"vnclub/domain/interfaces"

	"github.com/bwmarrin/discordgo"
)

// Feature renders the guild and global point leaderboards.
type Feature struct {
	leaderboards interfaces.LeaderboardService
}

func New(leaderboards interfaces.LeaderboardService) *Feature {
	return &Feature{
		leaderboards: leaderboards,
	}
}

func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	f.handleLeaderboard(s, i)
}
