package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/bakery-app/middlewares"
	"github.com/yeremiapane/bakery-app/services"
	"github.com/yeremiapane/bakery-app/utils"
)

var errNoPrincipal = errors.New("unauthorized")

// statusFor maps a service failure to the HTTP status the client sees.
func statusFor(e *services.Error) int {
	switch e.Kind {
	case services.KindValidation:
		switch e.Code {
		case services.CodeInsufficientStock, services.CodeInsufficientIngredient,
			services.CodeTotalMismatch, services.CodeInvalidTransition:
			return http.StatusConflict
		case services.CodeEmptyCart, services.CodeNoRecipeConfigured, services.CodeInsufficientPayment:
			return http.StatusUnprocessableEntity
		default:
			return http.StatusBadRequest
		}
	case services.KindNotFound:
		return http.StatusNotFound
	case services.KindTransient:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func respondServiceError(c *gin.Context, err error) {
	svcErr, ok := services.AsError(err)
	if !ok {
		utils.ErrorLogger.WithField("path", c.Request.URL.Path).Errorf("unclassified error: %v", err)
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	detail := gin.H{"code": svcErr.Code, "kind": svcErr.Kind.String()}
	for k, v := range svcErr.Detail {
		detail[k] = v
	}

	status := statusFor(svcErr)
	if status >= http.StatusInternalServerError {
		// store internals stay in the log
		utils.ErrorLogger.WithField("path", c.Request.URL.Path).Errorf("%s: %v", svcErr.Kind, err)
		utils.RespondErrorDetail(c, status, svcErr.Message, detail)
		return
	}
	utils.RespondErrorDetail(c, status, svcErr.Error(), detail)
}

func principalOrAbort(c *gin.Context) (services.Principal, bool) {
	p, ok := middlewares.PrincipalFrom(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, errNoPrincipal)
		return nil, false
	}
	return p, true
}

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid "+name))
		return 0, false
	}
	return uint(id), true
}
