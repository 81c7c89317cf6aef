package domain

import "fmt"

// Stable symbolic codes surfaced to clients through error_msg and
// force_leave payloads. Clients localize on these, never on prose.
const (
	CodeRoomIDTaken           = "RoomIdTaken"
	CodeRoomNotFound          = "RoomNotFound"
	CodeWrongPassword         = "WrongPassword"
	CodeNameInUse             = "NameInUse"
	CodeNameIsPresenter       = "NameIsPresenter"
	CodeBannedPermanently     = "BannedPermanently"
	CodeBannedTemporarily     = "BannedTemporarily"
	CodeIdentityHijackAttempt = "IdentityHijackAttempt"
	CodeKickedPermanently     = "KickedPermanently"
	CodeKickedTemporarily     = "KickedTemporarily"
	CodeClassClosed           = "ClassClosed"
	CodeRateLimited           = "RateLimited"
)

// Rejection is a caller-facing, expected failure. It is answered to the
// originating connection only and never mutates room state.
type Rejection struct {
	Code string
	// Minutes is the remaining duration for temporary bans and kicks,
	// ceiling-rounded so clients can show a countdown.
	Minutes int
}

func (r *Rejection) Error() string {
	if r.Minutes > 0 {
		return fmt.Sprintf("%s (%dm)", r.Code, r.Minutes)
	}
	return r.Code
}

// Reject builds a plain rejection.
func Reject(code string) *Rejection { return &Rejection{Code: code} }

// RejectFor builds a rejection carrying remaining minutes.
func RejectFor(code string, minutes int) *Rejection {
	return &Rejection{Code: code, Minutes: minutes}
}
