package domain

type (
	// RoomID is the caller-chosen room identifier.
	RoomID string
	// ConnID identifies one live connection. A participant gets a new
	// ConnID on every reconnect; identity survives via name + device.
	ConnID string
)

// Content is the presenter's current prompt. Field names mirror the
// client wire format.
type Content struct {
	Question string   `json:"q"`
	Answers  []string `json:"a"`
	Note     string   `json:"m"`
}

// DefaultContent is what a freshly created room shows until the
// presenter pushes something.
func DefaultContent() Content {
	return Content{Question: "...", Answers: []string{}, Note: "..."}
}

// Room holds all state for one classroom session. Owned and mutated
// exclusively by core.RoomStore.
type Room struct {
	ID RoomID

	PresenterConn   ConnID
	PresenterName   string
	PresenterDevice string

	// Password empty means the room is public and listed in the lobby.
	Password string
	Public   bool

	MicLocked    bool
	Content      Content
	AnswerHidden bool

	// Members keyed by display name, which is unique within a room.
	Members map[string]*Member
}

// PublicRoomInfo is the lobby summary of a passwordless room.
type PublicRoomInfo struct {
	ID    RoomID `json:"id"`
	Name  string `json:"name"`
	Users int    `json:"users"`
}
