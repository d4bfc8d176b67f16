package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/mailio/go-mailio-identity/services"
	"github.com/mailio/go-mailio-identity/types"
)

type AddressInfoApi struct {
	addressInfoService *services.AddressInfoService
	validate           *validator.Validate
}

func NewAddressInfoApi(addressInfoService *services.AddressInfoService) *AddressInfoApi {
	return &AddressInfoApi{
		addressInfoService: addressInfoService,
		validate:           validator.New(),
	}
}

// Address info
// @Summary How an email address authenticates right now
// @Description Returns the authority type (primary or secondary), the account state and, for primaries, the authentication and provisioning urls
// @Tags Federation
// @Param email query string true "email address"
// @Param issuer query string false "issuer hint"
// @Success 200 {object} types.AddressInfo
// @Failure 400 {object} api.ApiError "invalid email"
// @Failure 429 {object} api.ApiError "rate limit exceeded"
// @Failure 503 {object} api.ApiError "database unavailable"
// @Produce json
// @Router /wsapi/address_info [get]
func (a *AddressInfoApi) AddressInfo(c *gin.Context) {
	var input types.InputAddressInfo
	if err := c.ShouldBindQuery(&input); err != nil {
		ApiErrorf(c, http.StatusBadRequest, "invalid input")
		return
	}
	if err := a.validate.Struct(input); err != nil {
		if vErr, ok := err.(validator.ValidationErrors); ok {
			ApiErrorf(c, http.StatusBadRequest, "%s", ValidatorErrorToUser(vErr))
			return
		}
		ApiErrorf(c, http.StatusBadRequest, "%s", err.Error())
		return
	}

	info, err := a.addressInfoService.AddressInfo(c.Request.Context(), input.Email, input.Issuer)
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}
