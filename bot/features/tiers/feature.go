package tiers

import (
	"vnclub/domain/interfaces"

	"github.com/bwmarrin/discordgo"
)

// Feature manages a guild's reward tier configuration.
type Feature struct {
	tiers      interfaces.TierService
	managerIDs []int64
}

func New(tiers interfaces.TierService, managerIDs []int64) *Feature {
	return &Feature{
		tiers:      tiers,
		managerIDs: managerIDs,
	}
}

func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		return
	}

	switch options[0].Name {
	case "add":
		f.handleAdd(s, i, options[0])
	case "remove":
		f.handleRemove(s, i, options[0])
	case "list":
		f.handleList(s, i)
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
