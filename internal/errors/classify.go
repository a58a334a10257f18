package errors

import "net/http"

// Class groups errors by how they are surfaced to callers.
type Class int

const (
	// ClassUnexpected is anything not covered by another class.
	ClassUnexpected Class = iota
	// ClassValidation is missing or malformed caller input.
	ClassValidation
	// ClassUpstream is a failure talking to the Steam APIs.
	ClassUpstream
	// ClassNotFound is an unknown Steam ID or a private profile.
	ClassNotFound
)

// User-facing notification texts.
const (
	MessageNotFound   = "Steam ID not found or the profile is private"
	MessageValidation = "Please enter a Steam ID and API key"
	MessageGeneric    = "Could not load games, please try again"
)

func (c Class) String() string {
	switch c {
	case ClassValidation:
		return "validation"
	case ClassUpstream:
		return "upstream"
	case ClassNotFound:
		return "not_found"
	default:
		return "unexpected"
	}
}

// ClassOf returns the class of err. Not-found is checked first so that a
// private-profile SteamProfileError is not reported as an upstream failure.
func ClassOf(err error) Class {
	switch {
	case err == nil:
		return ClassUnexpected
	case IsNotFoundError(err):
		return ClassNotFound
	case IsValidationError(err):
		return ClassValidation
	case IsUpstreamError(err), IsSteamProfileError(err):
		return ClassUpstream
	default:
		return ClassUnexpected
	}
}

// HTTPStatus maps err to the status code the proxy answers with.
func HTTPStatus(err error) int {
	switch ClassOf(err) {
	case ClassValidation:
		return http.StatusBadRequest
	case ClassNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// UserMessage returns the notification shown to the end user for err.
func UserMessage(err error) string {
	switch ClassOf(err) {
	case ClassNotFound:
		return MessageNotFound
	case ClassValidation:
		return MessageValidation
	default:
		return MessageGeneric
	}
}
