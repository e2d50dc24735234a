package openapi

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const spec = `
openapi: 3.0.3
info:
  title: test
  version: 1.0.0
servers:
  - url: http://example.com
paths:
  /things/{id}:
    parameters:
      - name: id
        in: path
        required: true
        schema:
          type: string
    put:
      operationId: putThing
      requestBody:
        required: true
        content:
          application/json:
            schema:
              type: object
              required: [name]
              properties:
                name:
                  type: string
                  minLength: 1
      responses:
        '200':
          description: ok
          content:
            application/json:
              schema:
                type: object
                required: [id]
                properties:
                  id:
                    type: string
`

func putThing(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPut, "/things/42", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestValidator_Request(t *testing.T) {
	v, err := NewValidatorFromBytes([]byte(spec))
	require.NoError(t, err)

	req := putThing(`{"name":"box"}`)
	require.NoError(t, v.ValidateRequest(req))

	// body remains readable for the handler
	buf := new(bytes.Buffer)
	_, err = buf.ReadFrom(req.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"box"}`, buf.String())

	assert.Error(t, v.ValidateRequest(putThing(`{"name":""}`)))
	assert.Error(t, v.ValidateRequest(putThing(`{}`)))
}

func TestValidator_Response(t *testing.T) {
	v, err := NewValidatorFromBytes([]byte(spec))
	require.NoError(t, err)

	header := http.Header{"Content-Type": []string{"application/json"}}
	assert.NoError(t, v.ValidateResponse(putThing(`{}`), http.StatusOK, header, []byte(`{"id":"42"}`)))
	assert.Error(t, v.ValidateResponse(putThing(`{}`), http.StatusOK, header, []byte(`{"name":"box"}`)))
	assert.Error(t, v.ValidateResponse(putThing(`{}`), http.StatusTeapot, header, []byte(`{}`)))
}

func TestValidator_OperationID(t *testing.T) {
	v, err := NewValidatorFromBytes([]byte(spec))
	require.NoError(t, err)

	id, err := v.OperationID(putThing(`{}`))
	require.NoError(t, err)
	assert.Equal(t, "putThing", id)

	_, err = v.OperationID(httptest.NewRequest(http.MethodGet, "/unknown", nil))
	assert.Error(t, err)
	assert.NotNil(t, v.Document())
}

func TestNewValidatorFromBytes_Invalid(t *testing.T) {
	_, err := NewValidatorFromBytes([]byte("openapi: ["))
	assert.Error(t, err)
}
