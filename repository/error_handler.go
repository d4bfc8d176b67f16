package repository

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-kit/log/level"
	"github.com/go-resty/resty/v2"
	"github.com/mailio/go-mailio-identity/global"
	"github.com/mailio/go-mailio-identity/types"
)

func handleError(reqErr *resty.Response) error {
	if reqErr.StatusCode() == 404 {
		return types.ErrNotFound
	}
	if reqErr.StatusCode() == 409 {
		return types.ErrConflict
	}
	if reqErr.StatusCode() >= 500 {
		level.Error(global.Logger).Log("msg", "couchdb unavailable", "status", reqErr.StatusCode())
		return fmt.Errorf("%w: status %d", types.ErrDatabaseUnavailable, reqErr.StatusCode())
	}
	if reqErr.IsError() {
		var dbErr types.CouchDBError
		uErr := json.Unmarshal(reqErr.Body(), &dbErr)
		if uErr != nil {
			level.Error(global.Logger).Log("msg", "Failed to unmarshal response", "err", uErr)
			return types.ErrBadRequest
		}
		if dbErr.Error != "" {
			return errors.New(dbErr.Error)
		}
		return types.ErrBadRequest
	}
	return nil
}
