package validator

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleInput struct {
	Name  string `validate:"required,min=2"`
	Count int    `validate:"gte=0,lte=100"`
}

func TestValidate_Valid(t *testing.T) {
	assert.NoError(t, Validate(sampleInput{Name: "ok", Count: 5}))
}

func TestValidate_Invalid(t *testing.T) {
	err := Validate(sampleInput{Name: "", Count: 500})
	require.Error(t, err)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)

	fields := valErr.Fields()
	assert.Equal(t, "is required", fields["Name"])
	assert.Equal(t, "must be less than or equal to 100", fields["Count"])
	assert.Contains(t, valErr.Error(), "Name")
}

func TestDecodeAndValidate(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"Name":"ok","Count":1}`))

	var dst sampleInput
	require.NoError(t, DecodeAndValidate(req, &dst))
	assert.Equal(t, "ok", dst.Name)
}

func TestDecodeAndValidate_BadJSON(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{not json`))

	var dst sampleInput
	err := DecodeAndValidate(req, &dst)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode request body")
}
