package response

import "testing"

func TestCalculatePagination(t *testing.T) {
	cases := []struct {
		name       string
		page       int
		limit      int
		total      int64
		wantPage   int
		wantLimit  int
		wantPages  int
	}{
		{"exact pages", 1, 20, 40, 1, 20, 2},
		{"partial last page", 2, 20, 45, 2, 20, 3},
		{"empty result", 1, 20, 0, 1, 20, 0},
		{"page clamped to 1", 0, 20, 10, 1, 20, 1},
		{"limit clamped up", 1, 0, 10, 1, 10, 1},
		{"limit clamped down", 1, 500, 1000, 1, 100, 10},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			meta := CalculatePagination(tc.page, tc.limit, tc.total)
			if meta.CurrentPage != tc.wantPage {
				t.Errorf("CurrentPage = %d, want %d", meta.CurrentPage, tc.wantPage)
			}
			if meta.PerPage != tc.wantLimit {
				t.Errorf("PerPage = %d, want %d", meta.PerPage, tc.wantLimit)
			}
			if meta.Total != tc.total {
				t.Errorf("Total = %d, want %d", meta.Total, tc.total)
			}
			if meta.TotalPages != tc.wantPages {
				t.Errorf("TotalPages = %d, want %d", meta.TotalPages, tc.wantPages)
			}
		})
	}
}
