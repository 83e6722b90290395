package http

import (
	"net/http"

	"koperasi-backend/internal/service"
)

type MemberHandler struct {
	members service.MemberService
	shu     service.SHUService
}

func NewMemberHandler(members service.MemberService, shu service.SHUService) *MemberHandler {
	return &MemberHandler{members: members, shu: shu}
}

func (h *MemberHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	memberID, err := memberIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "authorization token is not provided")
		return
	}

	member, err := h.members.GetProfile(r.Context(), memberID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, member)
}

type updateProfileRequest struct {
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	PhotoURL   string `json:"photo_url"`
	Address    string `json:"address"`
	Occupation string `json:"occupation"`
	BirthDate  string `json:"birth_date"`
}

func (h *MemberHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	memberID, err := memberIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "authorization token is not provided")
		return
	}

	var req updateProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	member, err := h.members.GetProfile(r.Context(), memberID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if req.Name != "" {
		member.Name = req.Name
	}
	if req.Phone != "" {
		member.Phone = req.Phone
	}
	if req.PhotoURL != "" {
		member.PhotoURL = req.PhotoURL
	}
	if req.Address != "" {
		member.Address = req.Address
	}
	if req.Occupation != "" {
		member.Occupation = req.Occupation
	}
	if req.BirthDate != "" {
		member.BirthDate = req.BirthDate
	}

	if err := h.members.UpdateProfile(r.Context(), member); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, member)
}

// SHUHistory returns the member's own share across all distributed years.
func (h *MemberHandler) SHUHistory(w http.ResponseWriter, r *http.Request) {
	memberID, err := memberIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "authorization token is not provided")
		return
	}

	records, err := h.shu.MemberHistory(r.Context(), memberID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}
