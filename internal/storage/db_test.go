package storage

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
)

// TestPlaceholders verifies batch insert tuples number their parameters row by row.
func TestPlaceholders(t *testing.T) {
	tests := []struct {
		rows, cols int
		want       string
	}{
		{0, 3, ""},
		{1, 1, "($1)"},
		{1, 3, "($1,$2,$3)"},
		{2, 3, "($1,$2,$3),($4,$5,$6)"},
		{3, 2, "($1,$2),($3,$4),($5,$6)"},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%dx%d", tt.rows, tt.cols), func(t *testing.T) {
			if got := placeholders(tt.rows, tt.cols); got != tt.want {
				t.Errorf("placeholders(%d, %d) = %q, want %q", tt.rows, tt.cols, got, tt.want)
			}
		})
	}
}

// TestNotFound verifies missing rows become ErrNotFound while other errors keep their cause.
func TestNotFound(t *testing.T) {
	if err := notFound(pgx.ErrNoRows, "workout"); !errors.Is(err, ErrNotFound) {
		t.Errorf("no rows error = %v, want ErrNotFound", err)
	}
	boom := errors.New("connection reset")
	err := notFound(boom, "workout")
	if errors.Is(err, ErrNotFound) {
		t.Errorf("transport error mapped to ErrNotFound: %v", err)
	}
	if !errors.Is(err, boom) {
		t.Errorf("error = %v, want wrapped cause", err)
	}
}
