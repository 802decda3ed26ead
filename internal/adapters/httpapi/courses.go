package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/jgarza-dev/UT-Registration-Watcher/internal/app"
	"github.com/jgarza-dev/UT-Registration-Watcher/internal/httpjson"
)

type CoursesHandler struct {
	courses *app.CourseService
	watcher *app.Watcher
}

func NewCoursesHandler(courses *app.CourseService, watcher *app.Watcher) *CoursesHandler {
	return &CoursesHandler{courses: courses, watcher: watcher}
}

func (h *CoursesHandler) Routes(r chi.Router) {
	r.Route("/courses", func(r chi.Router) {
		r.Post("/", h.create)
		r.Get("/", h.list)
		r.Post("/check-all", h.checkAll)
		r.Get("/{id}", h.get)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.delete)
		r.Post("/{id}/check", h.check)
	})
}

type createCourseRequest struct {
	Semester string `json:"semester"`
	Code     string `json:"code"`
	Label    string `json:"label,omitempty"`
}

func (h *CoursesHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createCourseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpjson.WriteError(w, http.StatusBadRequest, "invalid json")
		return
	}

	course, err := h.courses.Create(r.Context(), req.Semester, req.Code, req.Label)
	if err != nil {
		if errors.Is(err, app.ErrConflict) {
			httpjson.WriteError(w, http.StatusConflict, "course already watched")
			return
		}
		httpjson.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	httpjson.Write(w, http.StatusCreated, course)
}

func (h *CoursesHandler) list(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	courses, err := h.courses.List(r.Context(), limit)
	if err != nil {
		httpjson.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	httpjson.Write(w, http.StatusOK, courses)
}

func (h *CoursesHandler) get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	course, err := h.courses.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, app.ErrNotFound) {
			httpjson.WriteError(w, http.StatusNotFound, "not found")
			return
		}
		httpjson.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	httpjson.Write(w, http.StatusOK, course)
}

func (h *CoursesHandler) update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var dto app.CourseDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		httpjson.WriteError(w, http.StatusBadRequest, "invalid json")
		return
	}
	dto.ID = id

	prev, prevErr := h.courses.Get(r.Context(), id)

	updated, err := h.courses.Update(r.Context(), dto)
	if err != nil {
		if errors.Is(err, app.ErrNotFound) {
			httpjson.WriteError(w, http.StatusNotFound, "not found")
			return
		}
		httpjson.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	// Un changement de semestre/code invalide l'onglet ouvert sur l'ancienne
	// URL; il sera rouvert à la prochaine lecture.
	if h.watcher != nil && prevErr == nil && prev.URL != updated.URL {
		h.watcher.ForgetCourse(id)
	}
	httpjson.Write(w, http.StatusOK, updated)
}

func (h *CoursesHandler) delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.courses.Delete(r.Context(), id); err != nil {
		if errors.Is(err, app.ErrNotFound) {
			httpjson.WriteError(w, http.StatusNotFound, "not found")
			return
		}
		httpjson.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if h.watcher != nil {
		h.watcher.ForgetCourse(id)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CoursesHandler) check(w http.ResponseWriter, r *http.Request) {
	if h.watcher == nil {
		httpjson.WriteError(w, http.StatusServiceUnavailable, "watcher unavailable")
		return
	}
	id := chi.URLParam(r, "id")
	res, err := h.watcher.CheckCourse(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrNotFound):
			httpjson.WriteError(w, http.StatusNotFound, "not found")
		case errors.Is(err, app.ErrWatcherNotRunning):
			httpjson.WriteError(w, http.StatusConflict, "watcher not running, start it first")
		default:
			httpjson.WriteError(w, http.StatusBadGateway, err.Error())
		}
		return
	}
	httpjson.Write(w, http.StatusOK, res)
}

type checkAllResponse struct {
	Results []app.CheckResult `json:"results"`
	Errors  []struct {
		ID    string `json:"id"`
		Error string `json:"error"`
	} `json:"errors"`
}

func (h *CoursesHandler) checkAll(w http.ResponseWriter, r *http.Request) {
	if h.watcher == nil {
		httpjson.WriteError(w, http.StatusServiceUnavailable, "watcher unavailable")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	courses, err := h.courses.List(r.Context(), limit)
	if err != nil {
		httpjson.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	res := checkAllResponse{Results: []app.CheckResult{}, Errors: []struct {
		ID    string `json:"id"`
		Error string `json:"error"`
	}{}}

	for _, c := range courses {
		rr, err := h.watcher.CheckCourse(r.Context(), c.ID)
		if err != nil {
			res.Errors = append(res.Errors, struct {
				ID    string `json:"id"`
				Error string `json:"error"`
			}{ID: c.ID, Error: err.Error()})
			continue
		}
		res.Results = append(res.Results, rr)
	}

	httpjson.Write(w, http.StatusOK, res)
}
