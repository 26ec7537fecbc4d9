package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"xiaoyuclone/pkg/claims"
	"xiaoyuclone/pkg/message"
)

const muxVarPeerID string = "peer_id"

type MessageService interface {
	History(userID, peerID int64) ([]*message.Message, error)
}

type MessageHandler struct {
	Service MessageService
	Logger  *slog.Logger
}

func NewMessageHandler(service MessageService, logger *slog.Logger) *MessageHandler {
	return &MessageHandler{
		Service: service,
		Logger:  logger,
	}
}

func (h *MessageHandler) Dialog(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	peerID, err := strconv.ParseInt(vars[muxVarPeerID], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, typeMessage, "invalid peer id")
		return
	}

	var claims claims.Claims
	if ok := getClaimsFromContext(w, r, &claims); !ok {
		return
	}

	msgs, err := h.Service.History(claims.User.ID, peerID)
	if err != nil {
		h.Logger.Error("dialog history", "error", err)
		writeError(w, http.StatusInternalServerError, typeError, err.Error())
		return
	}

	writeJSON(w, h.Logger, msgs)
}
