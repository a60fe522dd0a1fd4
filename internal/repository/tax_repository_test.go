package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestTranslateError(t *testing.T) {
	driverErr := errors.New("connection reset by peer")

	tests := []struct {
		name string
		in   error
		want error
	}{
		{"nil", nil, nil},
		{"record not found", gorm.ErrRecordNotFound, ErrNotFound},
		{"duplicate key", gorm.ErrDuplicatedKey, ErrConflict},
		{"wrapped duplicate key", fmt.Errorf("save filing: %w", gorm.ErrDuplicatedKey), ErrConflict},
		{"other errors pass through", driverErr, driverErr},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := translateError(tt.in)
			if tt.want == nil {
				assert.NoError(t, got)
				return
			}
			assert.ErrorIs(t, got, tt.want)
		})
	}
}

func TestCacheKeys(t *testing.T) {
	assert.NotEqual(t, profileCacheKey("tenant-1"), profileCacheKey("tenant-2"))
	assert.NotEqual(t, profileCacheKey("tenant-1"), categoryListCacheKey("tenant-1"))
}
