package validate

import (
	"testing"

	"github.com/go-mail-verify/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStruct_CustomEmailWithoutBody(t *testing.T) {
	err := Struct(&domain.CustomEmail{Recipients: []string{"a@x.com"}, Subject: "Hi"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, err.Error(), "required_without")
}

func TestStruct_CustomEmailTextOnly(t *testing.T) {
	err := Struct(&domain.CustomEmail{Recipients: []string{"a@x.com"}, Subject: "Hi", Text: "hello"})
	assert.NoError(t, err)
}

func TestStruct_IssueRequestEmpty(t *testing.T) {
	err := Struct(&domain.IssueCodesRequest{})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestStruct_IssueRequestBadAddress(t *testing.T) {
	err := Struct(&domain.IssueCodesRequest{Recipients: []string{"a@x.com", "nope"}})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestStruct_RedeemRequestMissingCode(t *testing.T) {
	err := Struct(&domain.RedeemCodeRequest{Recipient: "a@x.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "field 'code' failed 'required'")
}

func TestStruct_ReportsJSONFieldNames(t *testing.T) {
	err := Struct(&domain.TemplateEmail{Recipients: []string{"a@x.com"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "field 'template' failed 'required'")
}
