package chapter

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	requestutil "github.com/taibuivan/novika/internal/platform/request"
	"github.com/taibuivan/novika/internal/platform/respond"
	"github.com/taibuivan/novika/pkg/pagination"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the chapter-scoped operations (at /chapters).
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/{id}", handler.getChapter)
	router.Post("/{id}/publish", handler.togglePublish)
	router.Delete("/{id}", handler.retireChapter)
}

// RegisterNovelRoutes mounts the novel-scoped operations
// (at /novels/{novelID}/chapters).
func (handler *Handler) RegisterNovelRoutes(router chi.Router) {
	router.Get("/", handler.listChapters)
	router.Post("/", handler.createChapter)
}

func (handler *Handler) listChapters(writer http.ResponseWriter, request *http.Request) {
	paginationParams := pagination.FromRequest(request)

	chapters, total, err := handler.service.ListChapters(request.Context(), requestutil.ID(request, "novelID"), paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, chapters, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

func (handler *Handler) getChapter(writer http.ResponseWriter, request *http.Request) {
	chapter, err := handler.service.GetChapter(request.Context(), requestutil.ID(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, chapter)
}

func (handler *Handler) createChapter(writer http.ResponseWriter, request *http.Request) {
	var input Chapter
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	input.NovelID = requestutil.ID(request, "novelID")

	if err := handler.service.CreateChapter(request.Context(), &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, input)
}

func (handler *Handler) togglePublish(writer http.ResponseWriter, request *http.Request) {
	var input struct {
		Visible bool `json:"visible"`
	}
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	chapter, err := handler.service.TogglePublish(request.Context(), requestutil.ID(request, "id"), input.Visible)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, chapter)
}

func (handler *Handler) retireChapter(writer http.ResponseWriter, request *http.Request) {
	if err := handler.service.RetireChapter(request.Context(), requestutil.ID(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}
