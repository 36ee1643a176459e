package service

import (
	"net/http"
	"strconv"

	"github.com/medflow/mrz-scanner/internal/mrz"
	"github.com/medflow/mrz-scanner/pkg/errors"
)

// mapMRZError converts engine errors for the HTTP layer. Input the engine
// cannot read is unprocessable; bad request fields are a bad request.
func mapMRZError(err error) error {
	switch {
	case errors.Is(err, mrz.ErrMalformedInput), errors.Is(err, mrz.ErrFormatMismatch):
		return errors.Unprocessable("MALFORMED_MRZ", err)
	case errors.Is(err, mrz.ErrUnknownFormat):
		appErr := errors.Unprocessable("UNKNOWN_FORMAT", err)
		var unknown *mrz.UnknownFormatError
		if errors.As(err, &unknown) {
			appErr = appErr.WithDetails(map[string]string{
				"rows":    strconv.Itoa(unknown.Rows),
				"columns": strconv.Itoa(unknown.Columns),
			})
		}
		return appErr
	case errors.Is(err, mrz.ErrInvalidCharacter):
		appErr := errors.Unprocessable("INVALID_CHARACTER", err)
		var invalid *mrz.InvalidCharacterError
		if errors.As(err, &invalid) {
			appErr = appErr.WithDetails(map[string]string{
				"row":       strconv.Itoa(invalid.Row),
				"column":    strconv.Itoa(invalid.Column),
				"character": string(invalid.Char),
			})
		}
		return appErr
	case errors.Is(err, mrz.ErrInvalidSexChar):
		return errors.Unprocessable("INVALID_SEX", err)
	case errors.Is(err, mrz.ErrUnsupportedDocumentCode):
		return errors.Unprocessable("UNSUPPORTED_DOCUMENT", err)
	case errors.Is(err, mrz.ErrInvalidArgument):
		return errors.BadRequest(err.Error())
	default:
		return errors.Wrap(err, "INTERNAL_ERROR", "failed to process MRZ", http.StatusInternalServerError)
	}
}
