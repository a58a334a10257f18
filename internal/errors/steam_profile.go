package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"strings"
)

// ProfileReason says why Steam refused the owned-games request.
type ProfileReason int

const (
	ProfileDenied ProfileReason = iota
	ProfilePrivate
	ProfileForbidden
	ProfileBadKey
)

var profileMessages = map[ProfileReason]string{
	ProfileDenied:    "Steam API access error",
	ProfilePrivate:   "Steam profile is private or inaccessible",
	ProfileForbidden: "Access forbidden - check API key and profile settings",
	ProfileBadKey:    "Invalid Steam API key",
}

// SteamProfileError is a 401/403 from GetOwnedGames.
type SteamProfileError struct {
	Reason     ProfileReason
	Message    string
	StatusCode int
	APIMessage string
}

func (e *SteamProfileError) Error() string {
	msg := fmt.Sprintf("%s (HTTP %d)", e.Message, e.StatusCode)
	if e.APIMessage == "" {
		return msg
	}
	return msg + ": " + e.APIMessage
}

// Private reports whether Steam refused because the profile is private.
func (e *SteamProfileError) Private() bool {
	return e.Reason == ProfilePrivate
}

// NewSteamProfileError picks the reason from the status and Steam's message.
func NewSteamProfileError(statusCode int, apiMessage string) *SteamProfileError {
	reason := ProfileDenied
	switch {
	case statusCode == http.StatusUnauthorized:
		reason = ProfileBadKey
	case statusCode == http.StatusForbidden && strings.Contains(strings.ToLower(apiMessage), "private"):
		reason = ProfilePrivate
	case statusCode == http.StatusForbidden:
		reason = ProfileForbidden
	}

	return &SteamProfileError{
		Reason:     reason,
		Message:    profileMessages[reason],
		StatusCode: statusCode,
		APIMessage: apiMessage,
	}
}

// IsSteamProfileError reports whether err wraps a SteamProfileError.
func IsSteamProfileError(err error) bool {
	var profileErr *SteamProfileError
	return stdErrors.As(err, &profileErr)
}
