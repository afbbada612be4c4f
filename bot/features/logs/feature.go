package logs

import (
	"vnclub/domain/interfaces"

	"github.com/bwmarrin/discordgo"
)

// Feature handles the reading-log commands: finishing a VN, manual
// point rewards, deleting a log entry and listing a member's history.
type Feature struct {
	ledger     interfaces.LedgerService
	catalog    interfaces.VNCatalog
	managerIDs []int64
}

func New(ledger interfaces.LedgerService, catalog interfaces.VNCatalog, managerIDs []int64) *Feature {
	return &Feature{
		ledger:     ledger,
		catalog:    catalog,
		managerIDs: managerIDs,
	}
}

func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.ApplicationCommandData().Name {
	case "finish_vn":
		f.handleFinishVN(s, i)
	case "reward_points":
		f.handleRewardPoints(s, i)
	case "delete_log":
		f.handleDeleteLog(s, i)
	case "user_logs":
		f.handleUserLogs(s, i)
	}
}

func (f *Feature) isManager(userID int64) bool {
	for _, id := range f.managerIDs {
		if id == userID {
			return true
		}
	}
	return false
}
