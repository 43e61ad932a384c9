package httpapi

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/copallet/copallet-api/internal/domains/shipments/application"
	apierrors "github.com/copallet/copallet-api/internal/shared/errors"
)

var shipmentResponder = apierrors.NewChainedResponder("", shipmentErrorMapper)

// shipmentErrorMapper translates application error kinds into problem documents.
func shipmentErrorMapper(err error) (apierrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, application.ErrInvalidTransition):
		return apierrors.ErrInvalidTransition.WithDetail(err.Error()), true
	case errors.Is(err, application.ErrUnauthorized):
		return apierrors.ErrForbidden.WithDetail(err.Error()), true
	case errors.Is(err, application.ErrNotFound):
		return apierrors.ErrNotFound.WithDetail(err.Error()), true
	case errors.Is(err, application.ErrInvalidArgument):
		return apierrors.ErrValidation.WithDetail(err.Error()), true
	case errors.Is(err, application.ErrConflict):
		return apierrors.ErrUnavailable.WithDetail("shipment is being modified concurrently, retry later"), true
	case errors.Is(err, context.DeadlineExceeded):
		return apierrors.ErrUnavailable.WithDetail("request timed out"), true
	}
	return apierrors.ProblemDetail{}, false
}

func respondProblem(c *gin.Context, problem apierrors.ProblemDetail) {
	shipmentResponder.Respond(c, problem)
}

func respondServiceError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	shipmentResponder.RespondError(c, err)
}
