package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-kit/log/level"
	"github.com/go-playground/validator/v10"
	"github.com/mailio/go-mailio-identity/global"
	"github.com/mailio/go-mailio-identity/services"
	"github.com/mailio/go-mailio-identity/types"
)

type AssertionApi struct {
	transitionService *services.TransitionService
	validate          *validator.Validate
}

func NewAssertionApi(transitionService *services.TransitionService) *AssertionApi {
	return &AssertionApi{
		transitionService: transitionService,
		validate:          validator.New(),
	}
}

// Authenticate with an assertion
// @Summary Verify a backed assertion and return the email it proves
// @Tags Federation
// @Accept json
// @Produce json
// @Param input body types.InputAssertion true "backed assertion"
// @Success 200 {object} types.OutputSuccess
// @Failure 400 {object} api.ApiError "invalid input"
// @Failure 401 {object} api.ApiError "assertion rejected"
// @Failure 403 {object} api.ApiError "primary support disabled"
// @Failure 503 {object} api.ApiError "database unavailable"
// @Router /wsapi/auth_with_assertion [post]
func (a *AssertionApi) AuthWithAssertion(c *gin.Context) {
	var input types.InputAssertion
	if !a.bind(c, &input) {
		return
	}
	email, err := a.transitionService.AuthWithAssertion(c.Request.Context(), types.AssertionBundle(input.Assertion))
	if err != nil {
		level.Info(global.Logger).Log("msg", "auth with assertion failed", "correlationId", c.GetString("correlationId"), "err", err)
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.OutputSuccess{Success: true, Email: email})
}

// Complete transition to a primary
// @Summary Record that an email now authenticates with its primary
// @Tags Federation
// @Accept json
// @Produce json
// @Param input body types.InputCompleteTransition true "email and backed assertion"
// @Success 200 {object} types.OutputSuccess
// @Failure 400 {object} api.ApiError "invalid input"
// @Failure 401 {object} api.ApiError "assertion rejected"
// @Failure 503 {object} api.ApiError "database unavailable"
// @Router /wsapi/complete_transition [post]
func (a *AssertionApi) CompleteTransition(c *gin.Context) {
	var input types.InputCompleteTransition
	if !a.bind(c, &input) {
		return
	}
	err := a.transitionService.CompleteTransition(c.Request.Context(), input.Email, types.AssertionBundle(input.Assertion))
	if err != nil {
		level.Info(global.Logger).Log("msg", "complete transition failed", "correlationId", c.GetString("correlationId"), "err", err)
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.OutputSuccess{Success: true})
}

func (a *AssertionApi) bind(c *gin.Context, input interface{}) bool {
	if err := c.ShouldBindJSON(input); err != nil {
		ApiErrorf(c, http.StatusBadRequest, "invalid input")
		return false
	}
	if err := a.validate.Struct(input); err != nil {
		if vErr, ok := err.(validator.ValidationErrors); ok {
			ApiErrorf(c, http.StatusBadRequest, "%s", ValidatorErrorToUser(vErr))
			return false
		}
		ApiErrorf(c, http.StatusBadRequest, "%s", err.Error())
		return false
	}
	return true
}
