package data

import "timeline/internal/domain/journal"

type getBundleInput struct{}

type getBundleOutput struct {
	Body *journal.CloudData
}

type lastModifiedInput struct{}

type lastModifiedOutput struct {
	Body LastModifiedResponse
}

type LastModifiedResponse struct {
	LastModified int64 `json:"lastModified" doc:"Unix ms of the last accepted write, 0 when empty"`
}

type pushInput struct {
	Body journal.PushRequest
}

type pushOutput struct {
	Body journal.PushResponse
}
