package httperr

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/text/language"

	"github.com/t0bias84/hagelskott/auth"
)

// Response is a normalized error.
type Response struct {
	StatusCode int
	Message    string
}

// Status returns "fail" for client errors and "error" otherwise.
func (r Response) Status() string {
	if r.StatusCode >= 400 && r.StatusCode < 500 {
		return "fail"
	}
	return "error"
}

type coder interface{ Code() int }

type statusCoder interface{ StatusCode() int }

var invalidTokenErrors = []error{
	jwt.ErrTokenMalformed,
	jwt.ErrTokenUnverifiable,
	jwt.ErrTokenSignatureInvalid,
	jwt.ErrTokenNotValidYet,
	jwt.ErrTokenUsedBeforeIssued,
	jwt.ErrTokenInvalidClaims,
	jwt.ErrTokenInvalidAudience,
	jwt.ErrTokenInvalidIssuer,
	jwt.ErrTokenInvalidSubject,
	jwt.ErrTokenRequiredClaimMissing,
	auth.ErrTokenMalformed,
}

// Normalize maps err to a status code and a message in lang.
func Normalize(err error, lang language.Tag) Response {
	if err == nil {
		return Response{StatusCode: http.StatusOK}
	}

	var (
		dup        *DuplicateKeyError
		validation *ValidationError
		invalidID  *InvalidIDError
		upload     *UploadError
		maxBytes   *http.MaxBytesError
		withCode   coder
		withStatus statusCoder
	)

	switch {
	case errors.As(err, &dup):
		if dup.Field != "" {
			return badRequest(message(lang, msgDuplicateField, dup.Field))
		}
		return badRequest(message(lang, msgDuplicate))

	case errors.As(err, &withCode) && withCode.Code() == DuplicateKeyCode:
		return badRequest(message(lang, msgDuplicate))

	case errors.As(err, &validation):
		if msgs := validation.Messages(); msgs != "" {
			return badRequest(msgs)
		}
		return badRequest(message(lang, msgValidation))

	case errors.As(err, &invalidID):
		return badRequest(message(lang, msgInvalidID))

	case errors.Is(err, jwt.ErrTokenExpired), errors.Is(err, auth.ErrTokenExpired), errors.Is(err, ErrSessionExpired):
		return Response{StatusCode: http.StatusUnauthorized, Message: message(lang, msgSessionExpired)}

	case isInvalidToken(err):
		return Response{StatusCode: http.StatusUnauthorized, Message: message(lang, msgInvalidToken)}

	case errors.As(err, &upload):
		return badRequest(uploadMessage(lang, upload.Code))

	case errors.As(err, &maxBytes), errors.Is(err, multipart.ErrMessageTooLarge):
		return badRequest(message(lang, msgUploadTooLarge))

	case errors.As(err, &withStatus) && withStatus.StatusCode() >= 400 && withStatus.StatusCode() < 500:
		return Response{StatusCode: withStatus.StatusCode(), Message: err.Error()}

	case errors.As(err, &withStatus) && withStatus.StatusCode() >= 500:
		return Response{StatusCode: withStatus.StatusCode(), Message: message(lang, msgInternal)}
	}

	return Response{StatusCode: http.StatusInternalServerError, Message: message(lang, msgInternal)}
}

// RawStatus returns the status an error declares, or 500.
func RawStatus(err error) int {
	var withStatus statusCoder
	if errors.As(err, &withStatus) && withStatus.StatusCode() >= 400 {
		return withStatus.StatusCode()
	}
	return http.StatusInternalServerError
}

func badRequest(msg string) Response {
	return Response{StatusCode: http.StatusBadRequest, Message: msg}
}

func isInvalidToken(err error) bool {
	for _, target := range invalidTokenErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func uploadMessage(lang language.Tag, code string) string {
	switch code {
	case UploadTooLarge:
		return message(lang, msgUploadTooLarge)
	case UploadTooManyFiles:
		return message(lang, msgUploadTooMany)
	case UploadBadType:
		return message(lang, msgUploadBadType)
	default:
		return message(lang, msgUploadFailed)
	}
}
