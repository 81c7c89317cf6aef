package core_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tobeoren/classroom/internal/core"
	"github.com/tobeoren/classroom/internal/domain"
)

func newRoom(t *testing.T, s *core.RoomStore) {
	t.Helper()
	_, rej := s.Create("room1", "Sensei", "", "dev-sensei", "conn-sensei")
	require.Nil(t, rej)
}

func TestCreateRoom(t *testing.T) {
	s := core.NewRoomStore()

	res, rej := s.Create("room1", "Sensei", "", "dev-sensei", "conn-sensei")
	require.Nil(t, rej)
	assert.False(t, res.Reclaimed)
	assert.Equal(t, 1, res.MemberCount)
	assert.True(t, res.State.Hidden, "answers start hidden")
	assert.NotEmpty(t, res.State.Content.Question, "rooms start with placeholder content")

	conn, ok := s.PresenterConn("room1")
	require.True(t, ok)
	assert.Equal(t, domain.ConnID("conn-sensei"), conn)
}

func TestCreateRoomIDTaken(t *testing.T) {
	s := core.NewRoomStore()
	newRoom(t, s)

	_, rej := s.Create("room1", "Other", "", "dev-other", "conn-other")
	require.NotNil(t, rej)
	assert.Equal(t, domain.CodeRoomIDTaken, rej.Code)
}

func TestCreateRoomPresenterReclaim(t *testing.T) {
	s := core.NewRoomStore()
	newRoom(t, s)
	ok := s.UpdateContent("room1", "conn-sensei", domain.Content{Question: "q2"}, false)
	require.True(t, ok)

	// Same name, same device, new connection: the presenter is back.
	res, rej := s.Create("room1", "Sensei", "", "dev-sensei", "conn-sensei-2")
	require.Nil(t, rej)
	assert.True(t, res.Reclaimed)
	assert.Equal(t, 1, res.MemberCount, "reclaim does not add a seat")
	assert.Equal(t, "q2", res.State.Content.Question, "content survives the reconnect")

	conn, _ := s.PresenterConn("room1")
	assert.Equal(t, domain.ConnID("conn-sensei-2"), conn)
}

func TestCreateRoomHijackAttempt(t *testing.T) {
	s := core.NewRoomStore()
	newRoom(t, s)

	_, rej := s.Create("room1", "Sensei", "", "dev-impostor", "conn-impostor")
	require.NotNil(t, rej)
	assert.Equal(t, domain.CodeIdentityHijackAttempt, rej.Code)

	conn, _ := s.PresenterConn("room1")
	assert.Equal(t, domain.ConnID("conn-sensei"), conn, "presenter seat untouched")
}

func TestJoinRoom(t *testing.T) {
	s := core.NewRoomStore()
	newRoom(t, s)

	res, rej := s.Join("room1", "Aiko", "", "dev-aiko", "conn-aiko")
	require.Nil(t, rej)
	assert.False(t, res.Reentry)
	assert.Equal(t, 2, res.MemberCount)

	m, ok := s.MemberByConn("room1", "conn-aiko")
	require.True(t, ok)
	assert.Equal(t, domain.RoleStudent, m.Role)
	assert.False(t, m.InVoice)
}

func TestJoinRoomRejections(t *testing.T) {
	s := core.NewRoomStore()
	_, rej := s.Create("room1", "Sensei", "hunter2", "dev-sensei", "conn-sensei")
	require.Nil(t, rej)

	_, rej = s.Join("nope", "Aiko", "", "dev-aiko", "conn-aiko")
	require.NotNil(t, rej)
	assert.Equal(t, domain.CodeRoomNotFound, rej.Code)

	_, rej = s.Join("room1", "Aiko", "wrong", "dev-aiko", "conn-aiko")
	require.NotNil(t, rej)
	assert.Equal(t, domain.CodeWrongPassword, rej.Code)

	_, rej = s.Join("room1", "Sensei", "hunter2", "dev-aiko", "conn-aiko")
	require.NotNil(t, rej)
	assert.Equal(t, domain.CodeNameIsPresenter, rej.Code)
}

func TestJoinRoomIdentityBinding(t *testing.T) {
	s := core.NewRoomStore()
	newRoom(t, s)
	_, rej := s.Join("room1", "Aiko", "", "dev-aiko", "conn-aiko")
	require.Nil(t, rej)

	// Same name from another device is a collision, not a takeover.
	_, rej = s.Join("room1", "Aiko", "", "dev-other", "conn-other")
	require.NotNil(t, rej)
	assert.Equal(t, domain.CodeNameInUse, rej.Code)

	// Same name and device is the same person on a new connection.
	res, rej := s.Join("room1", "Aiko", "", "dev-aiko", "conn-aiko-2")
	require.Nil(t, rej)
	assert.True(t, res.Reentry)
	assert.Equal(t, 2, res.MemberCount, "re-entry does not grow the roster")

	m, ok := s.MemberByConn("room1", "conn-aiko-2")
	require.True(t, ok)
	assert.Equal(t, "Aiko", m.Name)
	_, ok = s.MemberByConn("room1", "conn-aiko")
	assert.False(t, ok, "old connection no longer maps to the seat")
}

func TestPresenterOnlyMutations(t *testing.T) {
	s := core.NewRoomStore()
	newRoom(t, s)
	_, rej := s.Join("room1", "Aiko", "", "dev-aiko", "conn-aiko")
	require.Nil(t, rej)

	// A learner's connection id carries no presenter authority.
	assert.False(t, s.UpdateContent("room1", "conn-aiko", domain.Content{Question: "hax"}, false))
	_, applied := s.ToggleAnswer("room1", "conn-aiko")
	assert.False(t, applied)
	_, applied = s.Kick("room1", "conn-aiko", "conn-sensei")
	assert.False(t, applied)
	assert.False(t, s.SetMuteAll("room1", "conn-aiko", true))
	assert.False(t, s.SetMemberMute("room1", "conn-aiko", "conn-sensei", true))
	_, applied = s.RosterFor("room1", "conn-aiko")
	assert.False(t, applied)

	state, _ := s.ContentFor("room1")
	assert.NotEqual(t, "hax", state.Content.Question)

	// The presenter's does.
	assert.True(t, s.UpdateContent("room1", "conn-sensei", domain.Content{Question: "real"}, true))
	hidden, applied := s.ToggleAnswer("room1", "conn-sensei")
	assert.True(t, applied)
	assert.False(t, hidden)

	roster, ok := s.RosterFor("room1", "conn-sensei")
	require.True(t, ok)
	assert.Len(t, roster, 2)
}

func TestKick(t *testing.T) {
	s := core.NewRoomStore()
	newRoom(t, s)
	_, rej := s.Join("room1", "Aiko", "", "dev-aiko", "conn-aiko")
	require.Nil(t, rej)

	m, ok := s.Kick("room1", "conn-sensei", "conn-aiko")
	require.True(t, ok)
	assert.Equal(t, "Aiko", m.Name)
	assert.Equal(t, "dev-aiko", m.Device, "snapshot keeps the recorded fingerprint")

	n, _ := s.MemberCount("room1")
	assert.Equal(t, 1, n)

	_, ok = s.Kick("room1", "conn-sensei", "conn-aiko")
	assert.False(t, ok, "kicking an absent target is a no-op")
}

func TestMuteAll(t *testing.T) {
	s := core.NewRoomStore()
	newRoom(t, s)
	_, rej := s.Join("room1", "Aiko", "", "dev-aiko", "conn-aiko")
	require.Nil(t, rej)

	require.True(t, s.SetMuteAll("room1", "conn-sensei", true))

	m, _ := s.MemberByConn("room1", "conn-aiko")
	assert.True(t, m.Muted)
	sensei, _ := s.MemberByConn("room1", "conn-sensei")
	assert.False(t, sensei.Muted, "mic lock never mutes the presenter")

	require.True(t, s.SetMuteAll("room1", "conn-sensei", false))
	m, _ = s.MemberByConn("room1", "conn-aiko")
	assert.False(t, m.Muted)
}

func TestRemoveIfStale(t *testing.T) {
	s := core.NewRoomStore()
	newRoom(t, s)
	_, rej := s.Join("room1", "Aiko", "", "dev-aiko", "conn-aiko")
	require.Nil(t, rej)

	// Reconnected in the meantime: captured connection id is outdated.
	_, rej = s.Join("room1", "Aiko", "", "dev-aiko", "conn-aiko-2")
	require.Nil(t, rej)
	_, removed := s.RemoveIfStale("room1", "Aiko", "conn-aiko")
	assert.False(t, removed)
	n, _ := s.MemberCount("room1")
	assert.Equal(t, 2, n)

	// Still gone: the seat goes.
	m, removed := s.RemoveIfStale("room1", "Aiko", "conn-aiko-2")
	require.True(t, removed)
	assert.Equal(t, "Aiko", m.Name)

	// Already removed: nothing to do.
	_, removed = s.RemoveIfStale("room1", "Aiko", "conn-aiko-2")
	assert.False(t, removed)
}

func TestVoiceRoster(t *testing.T) {
	s := core.NewRoomStore()
	newRoom(t, s)
	_, rej := s.Join("room1", "Aiko", "", "dev-aiko", "conn-aiko")
	require.Nil(t, rej)
	_, rej = s.Join("room1", "Ben", "", "dev-ben", "conn-ben")
	require.Nil(t, rej)

	assert.Empty(t, s.VoiceRoster("room1"))

	_, ok := s.SetVoice("room1", "conn-aiko", true)
	require.True(t, ok)
	_, ok = s.SetVoice("room1", "conn-sensei", true)
	require.True(t, ok)

	roster := s.VoiceRoster("room1")
	assert.Len(t, roster, 2)

	peers := s.VoicePeers("room1", "conn-aiko")
	assert.Equal(t, []domain.ConnID{"conn-sensei"}, peers)

	_, ok = s.SetVoice("room1", "conn-aiko", false)
	require.True(t, ok)
	roster = s.VoiceRoster("room1")
	require.Len(t, roster, 1)
	assert.Equal(t, domain.ConnID("conn-sensei"), roster[0].Conn)
}

func TestPublicRooms(t *testing.T) {
	s := core.NewRoomStore()
	_, rej := s.Create("open", "Sensei", "", "dev-a", "conn-a")
	require.Nil(t, rej)
	_, rej = s.Create("locked", "Tanaka", "pw", "dev-b", "conn-b")
	require.Nil(t, rej)
	_, rej = s.Join("open", "Aiko", "", "dev-aiko", "conn-aiko")
	require.Nil(t, rej)

	rooms := s.PublicRooms()
	require.Len(t, rooms, 1, "password-protected rooms stay out of the lobby")
	assert.Equal(t, domain.RoomID("open"), rooms[0].ID)
	assert.Equal(t, "Sensei's Class", rooms[0].Name)
	assert.Equal(t, 2, rooms[0].Users)

	require.True(t, s.Destroy("open"))
	assert.Empty(t, s.PublicRooms())
	assert.False(t, s.Destroy("open"))
}
