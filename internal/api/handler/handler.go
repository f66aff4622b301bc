package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/homedeck/homedeck/internal/auth"
	"github.com/homedeck/homedeck/internal/service"
)

type Handler struct {
	auth  *service.AuthService
	apps  *service.AppService
	memos *service.MemoService
}

func New(authSvc *service.AuthService, appSvc *service.AppService, memoSvc *service.MemoService) *Handler {
	return &Handler{
		auth:  authSvc,
		apps:  appSvc,
		memos: memoSvc,
	}
}

func respond(c *gin.Context, resp service.Response) {
	c.JSON(resp.StatusCode, resp)
}

// identity returns the authenticated caller. It answers 401 itself when there is none.
func identity(c *gin.Context) (auth.Identity, bool) {
	id, ok := auth.IdentityFrom(c.Request.Context())
	if !ok {
		respond(c, service.Unauthorized("Authentication required"))
		return auth.Identity{}, false
	}
	return id, true
}

func parseUintParam(param string) (uint, error) {
	var id uint64
	var err error
	if id, err = strconv.ParseUint(param, 10, 0); err != nil {
		return 0, err
	}
	return uint(id), nil
}

// bindJSON decodes the body into obj. It answers 400 itself on failure.
func bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respond(c, service.Failure("Request body too large", http.StatusRequestEntityTooLarge))
			return false
		}
		respond(c, service.BadRequest(bindingMessage(err)))
		return false
	}
	return true
}

// bindingMessage turns decoding and validation errors into a client-facing message.
func bindingMessage(err error) string {
	var (
		verrs   validator.ValidationErrors
		typeErr *json.UnmarshalTypeError
		syntax  *json.SyntaxError
	)
	switch {
	case errors.As(err, &verrs):
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, fieldMessage(fe))
		}
		return strings.Join(msgs, "; ")
	case errors.As(err, &typeErr):
		return fmt.Sprintf("%s must be of type %s", typeErr.Field, typeErr.Type)
	case errors.As(err, &syntax), errors.Is(err, io.ErrUnexpectedEOF):
		return "Malformed JSON body"
	case errors.Is(err, io.EOF):
		return "Request body is required"
	case strings.HasPrefix(err.Error(), "json: unknown field"):
		return "Unknown field " + strings.TrimPrefix(err.Error(), "json: unknown field ")
	default:
		return "Invalid request"
	}
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	default:
		return field + " is invalid"
	}
}
