package catalog

import (
	"errors"
	"testing"

	"github.com/wtfunko/backend/internal/apperror"
)

func TestPageWindow(t *testing.T) {
	tests := []struct {
		name      string
		total     int
		page      int
		size      int
		wantSkip  int
		wantLimit int
	}{
		{"first page of many", 45, 0, 20, 0, 20},
		{"middle page", 45, 1, 20, 20, 20},
		{"last page trimmed", 45, 2, 20, 40, 5},
		{"exact multiple last page", 40, 1, 20, 20, 20},
		{"single short page", 7, 0, 20, 0, 7},
		{"empty result page zero", 0, 0, 20, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			skip, limit, err := PageWindow(tt.total, tt.page, tt.size)
			if err != nil {
				t.Fatalf("PageWindow(%d, %d, %d) error = %v", tt.total, tt.page, tt.size, err)
			}
			if skip != tt.wantSkip || limit != tt.wantLimit {
				t.Errorf("PageWindow(%d, %d, %d) = (%d, %d), want (%d, %d)",
					tt.total, tt.page, tt.size, skip, limit, tt.wantSkip, tt.wantLimit)
			}
		})
	}
}

func TestPageWindow_OutOfRange(t *testing.T) {
	tests := []struct {
		name  string
		total int
		page  int
	}{
		{"past the last page", 45, 3},
		{"negative page", 45, -1},
		{"page one of empty result", 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := PageWindow(tt.total, tt.page, 20)
			if err == nil {
				t.Fatalf("PageWindow(%d, %d, 20) expected error, got nil", tt.total, tt.page)
			}
			if !errors.Is(err, apperror.ErrValidation) {
				t.Errorf("PageWindow(%d, %d, 20) error = %v, want ErrValidation", tt.total, tt.page, err)
			}
		})
	}
}

func TestTotalPages(t *testing.T) {
	tests := []struct {
		total int
		size  int
		want  int
	}{
		{45, 20, 3},
		{40, 20, 2},
		{1, 20, 1},
		{0, 20, 1}, // an empty catalog still renders one (empty) page
	}

	for _, tt := range tests {
		if got := TotalPages(tt.total, tt.size); got != tt.want {
			t.Errorf("TotalPages(%d, %d) = %d, want %d", tt.total, tt.size, got, tt.want)
		}
	}
}
