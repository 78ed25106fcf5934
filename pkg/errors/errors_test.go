package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code      Code
		status    int
		retryable bool
		detailsOK bool
		warning   bool
	}{
		{code: CodeValidation, status: http.StatusBadRequest, detailsOK: true},
		{code: CodeUnauthorized, status: http.StatusUnauthorized},
		{code: CodeForbidden, status: http.StatusForbidden},
		{code: CodeNotFound, status: http.StatusNotFound},
		{code: CodeConflict, status: http.StatusConflict},
		{code: CodeInternal, status: http.StatusInternalServerError, retryable: true},
		{code: CodeDependency, status: http.StatusServiceUnavailable, retryable: true, detailsOK: true},
		{code: CodeInvalidTransition, status: http.StatusConflict, detailsOK: true},
		{code: CodeCategoryMismatch, status: http.StatusUnprocessableEntity, detailsOK: true},
		{code: CodeAssetUnavailable, status: http.StatusConflict, detailsOK: true},
		{code: CodeMissingAssignment, status: http.StatusUnprocessableEntity, detailsOK: true},
		{code: CodeDuplicateRequest, status: http.StatusConflict, detailsOK: true, warning: true},
	}

	for _, tt := range tests {
		meta := MetadataFor(tt.code)
		assert.Equal(t, tt.status, meta.HTTPStatus, "status for %s", tt.code)
		assert.Equal(t, tt.retryable, meta.Retryable, "retryable for %s", tt.code)
		assert.Equal(t, tt.detailsOK, meta.DetailsAllowed, "details for %s", tt.code)
		assert.Equal(t, tt.warning, meta.Warning, "warning for %s", tt.code)
		assert.NotEmpty(t, meta.PublicMessage, "public message for %s", tt.code)
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	meta := MetadataFor("SOMETHING_UNKNOWN")
	assert.Equal(t, http.StatusInternalServerError, meta.HTTPStatus)
}

func TestErrorConstructors(t *testing.T) {
	base := New(CodeValidation, "return_date before request_date")
	assert.Equal(t, CodeValidation, base.Code())
	assert.Equal(t, "return_date before request_date", base.Message())
	assert.Nil(t, base.Details())

	base.WithDetails(map[string]any{"field": "return_date"})
	assert.NotNil(t, base.Details())

	cause := stdErrors.New("boom")
	wrapped := Wrap(CodeDependency, cause, "load request")
	assert.True(t, stdErrors.Is(wrapped, cause))
	assert.Equal(t, CodeDependency, wrapped.Code())
	assert.Contains(t, wrapped.Error(), "boom")
}

func TestAsAndIsCode(t *testing.T) {
	err := fmt.Errorf("outer: %w", New(CodeInvalidTransition, "request not pending"))
	got := As(err)
	require.NotNil(t, got)
	assert.Equal(t, CodeInvalidTransition, got.Code())
	assert.True(t, IsCode(err, CodeInvalidTransition))
	assert.False(t, IsCode(err, CodeValidation))
	assert.Nil(t, As(nil))
	assert.False(t, IsCode(stdErrors.New("plain"), CodeInternal))
}

func TestDumpExtractsPostgresFields(t *testing.T) {
	pgErr := &pgconn.PgError{
		Code:           "23505",
		ConstraintName: "ux_asset_requests_active_asset",
		TableName:      "asset_requests",
		Message:        "duplicate key value violates unique constraint",
	}
	err := Wrap(CodeAssetUnavailable, pgErr, "assign asset")

	d := Dump(err)
	assert.Equal(t, CodeAssetUnavailable, d.Code)
	assert.Equal(t, http.StatusConflict, d.HTTPStatus)
	assert.Equal(t, "23505", d.PGCode)
	assert.Equal(t, "ux_asset_requests_active_asset", d.PGConstraint)
	assert.Len(t, d.Chain, 2)

	fields := d.Fields()
	assert.Equal(t, "asset_requests", fields["pg_table"])
	assert.NotContains(t, fields, "pg_column")
}

func TestDumpNil(t *testing.T) {
	assert.Equal(t, ErrorDump{}, Dump(nil))
}
