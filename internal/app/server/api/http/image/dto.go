package image

import "timeline/internal/domain/journal"

const cacheForever = "public, max-age=31536000, immutable"

type getInput struct {
	Key string `path:"key"`
}

type getOutput struct {
	ContentType  string `header:"Content-Type"`
	CacheControl string `header:"Cache-Control"`
	Body         []byte
}

type uploadInput struct {
	ContentType string `header:"Content-Type"`
	RawBody     []byte
}

type uploadOutput struct {
	Body *journal.ImageRef
}

type listInput struct{}

type listOutput struct {
	Body ListResponse
}

type ListResponse struct {
	Keys []string `json:"keys"`
}

type deleteInput struct {
	Key string `path:"key"`
}
