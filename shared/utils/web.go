package utils

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"

	"github.com/openreview/openreview-web/shared/errors"
	"github.com/openreview/openreview-web/shared/logger"
	"github.com/openreview/openreview-web/shared/validation"
)

// WriteErrorAndStatusCode answers with the status carried by err, 500 otherwise.
// Internal errors are logged and never echoed to the client.
func WriteErrorAndStatusCode(w http.ResponseWriter, r *http.Request, err error) {
	var e *errors.ErrorWithStatusCode
	if stderrors.As(err, &e) {
		http.Error(w, e.Message, e.StatusCode)
		return
	}
	logger.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("internal error")
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// DecodeValidate decodes a JSON body and runs the shared validator over it.
func DecodeValidate(r io.ReadCloser, body any) error {
	if err := Decode(r, body); err != nil {
		return err
	}
	if err := validation.Struct(body); err != nil {
		logger.Log.Debug().Err(err).Msg("request body failed validation")
		return errors.BadRequest(err.Error())
	}
	return nil
}

func Decode(r io.ReadCloser, body any) error {
	if err := json.NewDecoder(r).Decode(body); err != nil {
		logger.Log.Debug().Err(err).Msg("request body is not json")
		return errors.BadRequest("Body is invalid json")
	}
	return nil
}
