package shared

import (
	"net/http/httptest"
	"testing"
)

func TestValidatorPage(t *testing.T) {
	cases := []struct {
		query      string
		wantLimit  int
		wantOffset int
		wantIssues int
	}{
		{"", 20, 0, 0},
		{"?limit=5&offset=10", 5, 10, 0},
		{"?limit=500", 100, 0, 0},
		{"?limit=-1&offset=-3", 20, 0, 2},
		{"?limit=abc", 20, 0, 1},
		{"?offset=0", 20, 0, 0},
	}
	for _, tc := range cases {
		r := httptest.NewRequest("GET", "/api/v1/commissions/runs"+tc.query, nil)
		v := NewValidator()
		got := v.Page(r, 20, 100)
		if got.Limit != tc.wantLimit || got.Offset != tc.wantOffset {
			t.Fatalf("%q: got %+v", tc.query, got)
		}
		if n := len(v.Issues()); n != tc.wantIssues {
			t.Fatalf("%q: expected %d issues, got %d", tc.query, tc.wantIssues, n)
		}
	}
}
