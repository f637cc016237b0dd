package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractErrorFatal(t *testing.T) {
	fatalCodes := []string{
		ErrCodeSession,
		ErrCodeAuth,
		ErrCodeFrameNotFound,
		ErrCodeTableNotFound,
		ErrCodeInvalidInput,
		ErrCodeNoRecords,
	}
	for _, code := range fatalCodes {
		require.True(t, NewExtractError(code, "x", nil).Fatal(), code)
	}
	require.False(t, NewExtractError(ErrCodePagination, "x", nil).Fatal())
}

func TestExtractErrorWrapping(t *testing.T) {
	cause := fmt.Errorf("boom")
	err := NewExtractError(ErrCodeSession, "launch failed", cause)

	require.Equal(t, "SESSION_FAILED: launch failed: boom", err.Error())
	require.ErrorIs(t, err, cause)

	bare := NewExtractError(ErrCodeNoRecords, "extraction finished with zero records", nil)
	require.Equal(t, "NO_RECORDS: extraction finished with zero records", bare.Error())

	var xerr *ExtractError
	require.True(t, errors.As(error(err), &xerr))
	require.Equal(t, ErrCodeSession, xerr.Code)
}
