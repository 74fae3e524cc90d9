package entries

import (
	"context"
	"crypto/subtle"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"timeline/internal/app/server/api/http/apierr"
	"timeline/internal/domain/sync"
)

type Handler struct {
	service     sync.Servicer
	publicToken string
	log         *slog.Logger
	middleware  huma.Middlewares
}

// NewHandler создает обработчик; пустой publicToken закрывает публичное чтение
func NewHandler(service sync.Servicer, publicToken string, log *slog.Logger, middleware huma.Middlewares) *Handler {
	return &Handler{
		service:     service,
		publicToken: publicToken,
		log:         log,
		middleware:  middleware,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.publicOp(), h.public)
	huma.Register(api, h.listCommentsOp(), h.listComments)
	huma.Register(api, h.addCommentOp(), h.addComment)
}

func (h *Handler) authorized(token string) bool {
	if h.publicToken == "" || token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(h.publicToken)) == 1
}

func (h *Handler) public(ctx context.Context, input *publicInput) (*publicOutput, error) {
	if !h.authorized(input.Token) {
		return nil, apierr.New(http.StatusUnauthorized, "Unauthorized")
	}

	b, err := h.service.PublicEntries(ctx, sync.PublicQuery{
		Start: input.Start,
		End:   input.End,
		Limit: input.Limit,
	})
	if err != nil {
		return nil, apierr.FromDomain(err)
	}
	return &publicOutput{Body: b}, nil
}

func (h *Handler) listComments(ctx context.Context, input *listCommentsInput) (*listCommentsOutput, error) {
	comments, err := h.service.ListComments(ctx, input.ID)
	if err != nil {
		return nil, apierr.FromDomain(err)
	}
	return &listCommentsOutput{Body: CommentsResponse{Comments: comments}}, nil
}

func (h *Handler) addComment(ctx context.Context, input *addCommentInput) (*addCommentOutput, error) {
	c, err := h.service.AddComment(ctx, input.ID, input.Body.Author, input.Body.Body)
	if err != nil {
		return nil, apierr.FromDomain(err)
	}
	h.log.Info("comment added", "entry_id", input.ID)
	return &addCommentOutput{Body: c}, nil
}
