package dto_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/stock-reconciler/internal/application/dto"
)

func TestPageRequest_Normalize(t *testing.T) {
	cases := []struct {
		name string
		in   dto.PageRequest
		want dto.PageRequest
	}{
		{"vacío usa defecto", dto.PageRequest{}, dto.PageRequest{Limit: 20}},
		{"acota al máximo", dto.PageRequest{Limit: 5000, Offset: 10}, dto.PageRequest{Limit: 200, Offset: 10}},
		{"offset negativo", dto.PageRequest{Limit: 5, Offset: -3}, dto.PageRequest{Limit: 5}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := tc.in
			p.Normalize()
			assert.Equal(t, tc.want, p)
		})
	}
}

func TestNewPageResponse_HasMore(t *testing.T) {
	p := dto.PageRequest{Limit: 2}
	assert.True(t, dto.NewPageResponse(p, 2).HasMore)
	assert.False(t, dto.NewPageResponse(p, 1).HasMore)
}
