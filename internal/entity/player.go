package entity

const (
	KindHuman = "human"
	KindBot   = "bot"

	BotLevelEasy = "easy"
	BotLevelHard = "hard"
)

type Player struct {
	ID      string `json:"id,omitempty"`
	Mark    string `json:"mark"`
	Kind    string `json:"kind"`
	Pending bool   `json:"pending,omitempty"`
	Level   string `json:"level,omitempty"`
}

// NewHumanPlayer - creates a human slot; an empty id leaves the slot pending
// until a participant binds to it.
func NewHumanPlayer(id, mark string) *Player {
	return &Player{
		ID:      id,
		Mark:    mark,
		Kind:    KindHuman,
		Pending: id == "",
	}
}

// NewBotPlayer - creates a bot slot; bot ids only need to be unique within
// one game, so they are derived from the mark.
func NewBotPlayer(mark, level string) *Player {
	if level == "" {
		level = BotLevelEasy
	}

	return &Player{
		ID:    "bot-" + mark,
		Mark:  mark,
		Kind:  KindBot,
		Level: level,
	}
}

func (that *Player) IsBot() bool {
	return that.Kind == KindBot
}
