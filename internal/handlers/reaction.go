package handlers

import (
	"net/http"

	"quill/internal/models"
	"quill/internal/services"
)

func pastTense(kind models.ReactionKind) string {
	return string(kind) + "d"
}

// reactionStatus maps a ledger outcome to the response status and message.
// Only a repeated add is a client error; removal no-ops still succeed.
func reactionStatus(target string, kind models.ReactionKind, o services.Outcome) (int, string) {
	switch o {
	case services.ReactionAdded:
		return http.StatusOK, target + " " + pastTense(kind) + "."
	case services.ReactionSwitched:
		return http.StatusOK, target + " " + pastTense(kind) + ", " + string(kind.Opposite()) + " removed."
	case services.AlreadyReacted:
		return http.StatusBadRequest, "you already " + pastTense(kind) + " this " + target + "."
	case services.ReactionRemoved:
		return http.StatusOK, string(kind) + " removed from " + target + "."
	case services.AlreadyRemoved:
		return http.StatusOK, "you have not " + pastTense(kind) + " this " + target + "."
	default:
		return http.StatusOK, target + " has no " + string(kind) + "s to remove."
	}
}
