package pagex_test

import (
	"net/http/httptest"
	"testing"

	"github.com/kodefactor/accounts/pkg/pagex"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		page, limit int
		want        pagex.Params
	}{
		{0, 0, pagex.Params{Page: 1, Limit: 10}},
		{-3, -1, pagex.Params{Page: 1, Limit: 10}},
		{2, 5, pagex.Params{Page: 2, Limit: 5}},
		{1, 1000, pagex.Params{Page: 1, Limit: 100}},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, pagex.New(tt.page, tt.limit))
	}
}

func TestOffsetAndTotalPages(t *testing.T) {
	p := pagex.New(2, 5)
	require.Equal(t, 5, p.Offset())
	require.Equal(t, 3, pagex.TotalPages(12, 5))
	require.Equal(t, 0, pagex.TotalPages(0, 5))
	require.Equal(t, 1, pagex.TotalPages(10, 10))
	require.Equal(t, 0, pagex.New(1, 10).Offset())
}

func TestFromRequest(t *testing.T) {
	r := httptest.NewRequest("GET", "/allusers?page=3&limit=7", nil)
	require.Equal(t, pagex.Params{Page: 3, Limit: 7}, pagex.FromRequest(r))

	r = httptest.NewRequest("GET", "/allusers?page=abc", nil)
	require.Equal(t, pagex.Params{Page: 1, Limit: 10}, pagex.FromRequest(r))
}
