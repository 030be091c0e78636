package domain

// Inbound event payloads, one struct per client event kind.
// The validate tags describe the minimal shape a frame must have
// before the gateway applies any domain policy.

type UserJoinCommand struct {
	Username string `json:"username" validate:"required"`
}

type JoinRoomCommand struct {
	Room string `json:"room" validate:"required"`
}

type LeaveRoomCommand struct {
	Room string `json:"room" validate:"required"`
}

type SendMessageCommand struct {
	Message string `json:"message" validate:"required"`
	Room    string `json:"room"`
}

type PrivateMessageCommand struct {
	To      string `json:"to" validate:"required"`
	Message string `json:"message" validate:"required"`
}

type TypingCommand struct {
	IsTyping bool   `json:"isTyping"`
	Room     string `json:"room"`
}
