package core_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tobeoren/classroom/internal/core"
)

func TestPermanentBan(t *testing.T) {
	bans := core.NewBanRegistry()

	assert.False(t, bans.IsPermanentlyBanned("room1", "dev-a"))

	bans.BanPermanently("room1", "dev-a")
	bans.BanPermanently("room1", "dev-a") // idempotent

	assert.True(t, bans.IsPermanentlyBanned("room1", "dev-a"))
	assert.False(t, bans.IsPermanentlyBanned("room1", "dev-b"))
	assert.False(t, bans.IsPermanentlyBanned("room2", "dev-a"), "bans are scoped per room")
}

func TestTemporaryBanRemaining(t *testing.T) {
	bans := core.NewBanRegistry()
	t0 := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

	got := bans.BanTemporarily("room1", "dev-a", 5, t0)
	assert.Equal(t, 5, got)

	// 4 minutes in, one partial minute remains and rounds up.
	rem, active := bans.TemporaryRemaining("room1", "dev-a", t0.Add(4*time.Minute))
	assert.True(t, active)
	assert.Equal(t, 1, rem)

	// 3m30s in, 1m30s remains, still reported as 2.
	rem, active = bans.TemporaryRemaining("room1", "dev-a", t0.Add(3*time.Minute+30*time.Second))
	assert.True(t, active)
	assert.Equal(t, 2, rem)

	// Exactly at expiry the ban is gone.
	_, active = bans.TemporaryRemaining("room1", "dev-a", t0.Add(5*time.Minute))
	assert.False(t, active)

	_, active = bans.TemporaryRemaining("room1", "dev-a", t0.Add(6*time.Minute))
	assert.False(t, active)
}

func TestTemporaryBanDefaultsAndOverwrite(t *testing.T) {
	bans := core.NewBanRegistry()
	t0 := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, core.DefaultBanMinutes, bans.BanTemporarily("room1", "dev-a", 0, t0))
	assert.Equal(t, core.DefaultBanMinutes, bans.BanTemporarily("room1", "dev-a", -3, t0))

	// A fresh kick replaces the previous expiry entirely.
	bans.BanTemporarily("room1", "dev-a", 10, t0)
	rem, active := bans.TemporaryRemaining("room1", "dev-a", t0.Add(2*time.Minute))
	assert.True(t, active)
	assert.Equal(t, 8, rem)
}

func TestClearRoomDropsPermanentBansOnly(t *testing.T) {
	bans := core.NewBanRegistry()
	t0 := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

	bans.BanPermanently("room1", "dev-a")
	bans.BanTemporarily("room1", "dev-b", 5, t0)

	bans.ClearRoom("room1")

	assert.False(t, bans.IsPermanentlyBanned("room1", "dev-a"))
	// Temporary bans outlive the room and expire on their own.
	rem, active := bans.TemporaryRemaining("room1", "dev-b", t0.Add(time.Minute))
	assert.True(t, active)
	assert.Equal(t, 4, rem)
}
