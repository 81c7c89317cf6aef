// Package domain contains entity metadata without behavior.
package domain

type Role string

const (
	RoleSensei  Role = "sensei"
	RoleStudent Role = "student"
)

// Member is one participant's seat in a room. The device fingerprint is
// never serialized to other clients.
type Member struct {
	Conn    ConnID `json:"id"`
	Name    string `json:"name"`
	Role    Role   `json:"role"`
	InVoice bool   `json:"isInVoice"`
	Muted   bool   `json:"isMutedBySensei"`

	Device string `json:"-"`
}

// NewMember avoids raw literals in callers and keeps construction obvious.
func NewMember(conn ConnID, name, device string, role Role) *Member {
	return &Member{Conn: conn, Name: name, Device: device, Role: role}
}

// VoiceParticipant is the broadcast view of an in-voice member.
type VoiceParticipant struct {
	Conn ConnID `json:"id"`
	Name string `json:"name"`
	Role Role   `json:"role"`
}
