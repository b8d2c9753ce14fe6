package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapKeepsCode(t *testing.T) {
	base := InvalidInput("bad facet", stderrors.New("country"))
	wrapped := Wrap(base, "set filter")

	assert.Equal(t, CodeInvalidInput, GetCode(wrapped))
	assert.Equal(t, "set filter: bad facet: country", wrapped.Error())
	assert.True(t, stderrors.Is(wrapped, base))
}

func TestWrapPlainError(t *testing.T) {
	assert.Nil(t, Wrap(nil, "noop"))
	wrapped := Wrapf(stderrors.New("boom"), "load %s", "x.csv")
	assert.Equal(t, CodeInternalError, GetCode(wrapped))
	assert.Equal(t, "load x.csv: boom", wrapped.Error())
}

func TestGetCodeThroughFmtWrap(t *testing.T) {
	err := fmt.Errorf("outer: %w", NotFound("view"))
	assert.True(t, IsAppError(err))
	assert.Equal(t, CodeNotFound, GetCode(err))
	assert.Equal(t, "UNKNOWN", GetCode(stderrors.New("plain")))
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(InvalidInput("x", nil)))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(NotFound("x")))
	assert.Equal(t, http.StatusServiceUnavailable, HTTPStatus(Unavailable("x")))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(StorageError("x", nil)))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(stderrors.New("plain")))
}

func TestWithCode(t *testing.T) {
	err := WithCode(CodeNotFound, stderrors.New("missing"))
	assert.Equal(t, CodeNotFound, GetCode(err))
	assert.Nil(t, WithCode(CodeNotFound, nil))
}
