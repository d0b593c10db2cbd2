package novel

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	requestutil "github.com/taibuivan/novika/internal/platform/request"
	"github.com/taibuivan/novika/internal/platform/respond"
	"github.com/taibuivan/novika/pkg/convert"
	"github.com/taibuivan/novika/pkg/pagination"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/", handler.listNovels)
	router.Get("/slug/{slug}", handler.getNovelBySlug)
	router.Get("/{novelID}", handler.getNovel)
	router.Post("/", handler.createNovel)
	router.Patch("/{novelID}", handler.updateNovel)
	router.Post("/{novelID}/publish", handler.publishNovel)
	router.Delete("/{novelID}", handler.retireNovel)
}

func (handler *Handler) listNovels(writer http.ResponseWriter, request *http.Request) {
	paginationParams := pagination.FromRequest(request)
	queryParams := request.URL.Query()

	filter := Filter{
		Query:       queryParams.Get("q"),
		AuthorID:    queryParams.Get("author_id"),
		GenreID:     queryParams.Get("genre_id"),
		Status:      queryParams.Get("status"),
		VisibleOnly: convert.ToBool(queryParams.Get("visible")),
	}

	novels, total, err := handler.service.ListNovels(request.Context(), filter, paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, novels, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

func (handler *Handler) getNovel(writer http.ResponseWriter, request *http.Request) {
	novel, err := handler.service.GetNovel(request.Context(), requestutil.ID(request, "novelID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, novel)
}

func (handler *Handler) getNovelBySlug(writer http.ResponseWriter, request *http.Request) {
	novel, err := handler.service.GetNovelBySlug(request.Context(), requestutil.ID(request, "slug"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, novel)
}

func (handler *Handler) createNovel(writer http.ResponseWriter, request *http.Request) {
	var input Novel
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.CreateNovel(request.Context(), &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, input)
}

func (handler *Handler) updateNovel(writer http.ResponseWriter, request *http.Request) {
	var input UpdateInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	novel, err := handler.service.UpdateNovel(request.Context(), requestutil.ID(request, "novelID"), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, novel)
}

func (handler *Handler) publishNovel(writer http.ResponseWriter, request *http.Request) {
	var input struct {
		Visible bool `json:"visible"`
	}
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	novel, err := handler.service.PublishNovel(request.Context(), requestutil.ID(request, "novelID"), input.Visible)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, novel)
}

func (handler *Handler) retireNovel(writer http.ResponseWriter, request *http.Request) {
	if err := handler.service.RetireNovel(request.Context(), requestutil.ID(request, "novelID")); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}
