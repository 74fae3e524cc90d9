package entries

import "timeline/internal/domain/sync"

type publicInput struct {
	Token string `query:"token" doc:"Static read token"`
	Start string `query:"start" doc:"Lower bound, YYYY-MM-DD or RFC3339"`
	End   string `query:"end" doc:"Upper bound, YYYY-MM-DD (inclusive day) or RFC3339"`
	Limit int    `query:"limit" minimum:"0" doc:"Max entries, default 100, capped at 1000"`
}

type publicOutput struct {
	Body *sync.PublicBundle
}

type listCommentsInput struct {
	ID string `path:"id"`
}

type listCommentsOutput struct {
	Body CommentsResponse
}

type CommentsResponse struct {
	Comments []*sync.Comment `json:"comments"`
}

type addCommentInput struct {
	ID   string `path:"id"`
	Body CommentRequest
}

type CommentRequest struct {
	Author string `json:"author,omitempty" maxLength:"80"`
	Body   string `json:"body" minLength:"1" maxLength:"2000"`
}

type addCommentOutput struct {
	Body *sync.Comment
}
