package api

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-jose/go-jose/v3"
	"github.com/mailio/go-mailio-identity/types"
)

// WellKnownApi serves this service's own declaration of support, so it can act
// as the authority for proxied domains
type WellKnownApi struct {
	document types.WellKnownDocument
}

func NewWellKnownApi(publicKey *jose.JSONWebKey, authenticationPath, provisioningPath string) (*WellKnownApi, error) {
	key, err := json.Marshal(publicKey)
	if err != nil {
		return nil, err
	}
	return &WellKnownApi{
		document: types.WellKnownDocument{
			PublicKey:      key,
			Authentication: authenticationPath,
			Provisioning:   provisioningPath,
		},
	}, nil
}

// Declaration of support
// @Summary BrowserID declaration of support of this service
// @Tags Federation
// @Produce json
// @Success 200 {object} types.WellKnownDocument
// @Router /.well-known/browserid [get]
func (a *WellKnownApi) Browserid(c *gin.Context) {
	c.Header("Cache-Control", "public, max-age=21600")
	c.JSON(http.StatusOK, a.document)
}
