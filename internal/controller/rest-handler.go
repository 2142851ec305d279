package controller

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/reeltube/server/internal/service/feed"
	"github.com/reeltube/server/pkg/rest"
)

// writeServiceError maps the service's sentinel errors onto HTTP statuses.
// The body is a generic failure envelope either way; clients are not
// expected to distinguish a precondition failure from a late store error.
func (c controller) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, feed.ErrReelNotFound):
		status = http.StatusNotFound
	case errors.Is(err, feed.ErrBoundaryReached),
		errors.Is(err, feed.ErrSameReel),
		errors.Is(err, feed.ErrNotEnoughReels),
		errors.Is(err, feed.ErrReelLimitReached):
		status = http.StatusConflict
	}

	c.logger.InfoContext(r.Context(), "request failed", "err", err)
	rest.WriteJSON(w, status, rest.Envelope{"error": err.Error()})
}

func (c controller) listReels(w http.ResponseWriter, r *http.Request) {
	reels, err := c.feedService.GetReels(r.Context())
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": reels})
}

func (c controller) getFeed(w http.ResponseWriter, r *http.Request) {
	reels, err := c.feedService.GetFeed(r.Context())
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": reels})
}

func (c controller) addReel(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		rest.WriteJSON(w, http.StatusUnprocessableEntity, rest.Envelope{"error": err.Error()})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"error": "file is required"})
		return
	}
	defer file.Close()

	fileBytes, err := io.ReadAll(file)
	if err != nil {
		rest.WriteJSON(w, http.StatusUnprocessableEntity, rest.Envelope{"error": err.Error()})
		return
	}

	resp, err := c.feedService.AddReel(r.Context(), &feed.AddReelParams{
		File:     fileBytes,
		Filename: header.Filename,
		MimeType: header.Header.Get("Content-Type"),
		Name:     r.FormValue("name"),
	})
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusCreated, rest.Envelope{
		"data":  resp.AddedReel,
		"reels": resp.Reels,
	})
}

func (c controller) deleteReel(w http.ResponseWriter, r *http.Request) {
	reelId := chi.URLParam(r, "reel-id")

	resp, err := c.feedService.DeleteReel(r.Context(), reelId)
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"reels": resp.Reels})
}

type toggleVisibilityInput struct {
	Visible *bool `json:"visible" validate:"required"`
}

func (c controller) toggleVisibility(w http.ResponseWriter, r *http.Request) {
	var input toggleVisibilityInput
	if err := rest.ReadJSON(r, &input); err != nil {
		rest.WriteJSON(w, http.StatusUnprocessableEntity, rest.Envelope{"error": err.Error()})
		return
	}
	if validationErrors, ok := c.validate.Validate(input); !ok {
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"errors": validationErrors})
		return
	}

	resp, err := c.feedService.ToggleVisibility(r.Context(), &feed.ToggleVisibilityParams{
		ReelId:  chi.URLParam(r, "reel-id"),
		Visible: *input.Visible,
	})
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"reels": resp.Reels})
}

type adjacentMoveInput struct {
	Direction string `json:"direction" validate:"required,oneof=up down"`
}

func (c controller) adjacentMove(w http.ResponseWriter, r *http.Request) {
	var input adjacentMoveInput
	if err := rest.ReadJSON(r, &input); err != nil {
		rest.WriteJSON(w, http.StatusUnprocessableEntity, rest.Envelope{"error": err.Error()})
		return
	}
	if validationErrors, ok := c.validate.Validate(input); !ok {
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"errors": validationErrors})
		return
	}

	resp, err := c.feedService.AdjacentMove(r.Context(), &feed.AdjacentMoveParams{
		ReelId:    chi.URLParam(r, "reel-id"),
		Direction: input.Direction,
	})
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"reels": resp.Reels})
}

type dragMoveInput struct {
	ActiveId string `json:"active_id" validate:"required"`
	OverId   string `json:"over_id" validate:"required"`
}

func (c controller) dragMove(w http.ResponseWriter, r *http.Request) {
	var input dragMoveInput
	if err := rest.ReadJSON(r, &input); err != nil {
		rest.WriteJSON(w, http.StatusUnprocessableEntity, rest.Envelope{"error": err.Error()})
		return
	}
	if validationErrors, ok := c.validate.Validate(input); !ok {
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"errors": validationErrors})
		return
	}

	resp, err := c.feedService.DragMove(r.Context(), &feed.DragMoveParams{
		ActiveId: input.ActiveId,
		OverId:   input.OverId,
	})
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"reels": resp.Reels})
}

func (c controller) shuffle(w http.ResponseWriter, r *http.Request) {
	resp, err := c.feedService.Shuffle(r.Context())
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"reels": resp.Reels})
}
