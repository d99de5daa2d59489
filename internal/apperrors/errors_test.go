package apperrors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(ErrValidation))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(fmt.Errorf("%w: missing email", ErrValidation)))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(ErrUpstreamAuth))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(ErrStorage))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(assert.AnError))
}
