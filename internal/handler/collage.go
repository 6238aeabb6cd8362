package handler

import (
	"context"
	"net/http"

	"github.com/picwall-dev/picwall/internal/domain"
	"github.com/picwall-dev/picwall/internal/middleware"
	"github.com/picwall-dev/picwall/internal/service"
	"github.com/picwall-dev/picwall/internal/utils"
)

type createCollageRequest struct {
	Name string `validate:"required" json:"name"`
}

func (h *Handler) CreateCollage(w http.ResponseWriter, r *http.Request) {
	var body createCollageRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	user := middleware.GetUserFromContext(r)
	collage, err := h.collages.Create(r.Context(), user, body.Name)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, toCollageResponse(collage))
}

func (h *Handler) GetCollage(w http.ResponseWriter, r *http.Request) {
	id, err := parseIdParam(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	collage, err := h.collages.Get(r.Context(), id)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, toCollageResponse(collage))
}

func (h *Handler) ListCollages(w http.ResponseWriter, r *http.Request) {
	collages, err := h.collages.List(r.Context())
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	response := make([]collageResponse, 0, len(collages))
	for i := range collages {
		response = append(response, toCollageResponse(&collages[i]))
	}
	utils.WriteJSON(w, http.StatusOK, response)
}

func (h *Handler) ListCollagePictures(w http.ResponseWriter, r *http.Request) {
	id, err := parseIdParam(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	pictures, err := h.collages.ListPictures(r.Context(), id)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	response := make([]pictureResponse, 0, len(pictures))
	for i := range pictures {
		response = append(response, toPictureResponse(&pictures[i]))
	}
	utils.WriteJSON(w, http.StatusOK, response)
}

func (h *Handler) DeleteCollage(w http.ResponseWriter, r *http.Request) {
	id, err := parseIdParam(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	user := middleware.GetUserFromContext(r)
	if err := h.collages.Delete(r.Context(), user, id); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) AttachPicture(w http.ResponseWriter, r *http.Request) {
	h.membershipChange(w, r, h.collages.Attach)
}

func (h *Handler) DetachPicture(w http.ResponseWriter, r *http.Request) {
	h.membershipChange(w, r, h.collages.Detach)
}

type membershipOp func(ctx context.Context, actor *domain.User, collageId domain.CollageId, pictureId domain.PictureId) (service.AttachResult, error)

func (h *Handler) membershipChange(w http.ResponseWriter, r *http.Request, op membershipOp) {
	collageId, err := parseIdParam(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	pictureId, err := parseIdParam(r, "pictureId")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	user := middleware.GetUserFromContext(r)
	result, err := op(r.Context(), user, collageId, pictureId)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": string(result)})
}
