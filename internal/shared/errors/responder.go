package errors

import (
	"errors"

	"github.com/gin-gonic/gin"
)

// ContentTypeProblemJSON is the media type for Problem Details responses.
const ContentTypeProblemJSON = "application/problem+json"

// ErrorMapper maps domain/application errors to ProblemDetail.
type ErrorMapper func(err error) (ProblemDetail, bool)

// ChainedResponder writes problem documents, consulting its mappers for plain errors.
type ChainedResponder struct {
	// BaseURI is prepended to problem type URIs if they are relative.
	BaseURI string
	mappers []ErrorMapper
}

// NewChainedResponder creates a responder with custom error mappers.
func NewChainedResponder(baseURI string, mappers ...ErrorMapper) *ChainedResponder {
	return &ChainedResponder{BaseURI: baseURI, mappers: mappers}
}

// Respond sends a ProblemDetail response with proper content type.
func (r *ChainedResponder) Respond(c *gin.Context, problem ProblemDetail) {
	if r.BaseURI != "" && len(problem.Type) > 0 && problem.Type[0] == '/' {
		problem.Type = r.BaseURI + problem.Type
	}
	if problem.Instance == "" {
		problem.Instance = c.Request.URL.Path
	}
	c.Header("Content-Type", ContentTypeProblemJSON)
	c.JSON(problem.Status, problem)
}

// RespondError tries each mapper, then a ProblemDetail already in the chain, then falls back to 500.
func (r *ChainedResponder) RespondError(c *gin.Context, err error) {
	for _, mapper := range r.mappers {
		if problem, ok := mapper(err); ok {
			r.Respond(c, problem)
			return
		}
	}
	var problem ProblemDetail
	if errors.As(err, &problem) {
		r.Respond(c, problem)
		return
	}
	r.Respond(c, ErrInternal.WithDetail(err.Error()))
}
