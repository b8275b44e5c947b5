package api

import (
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bibliointel/bibliointel-server/internal/auth"
)

// authenticateAdmin validates the Bearer token and returns its claims.
func (s *Server) authenticateAdmin(authHeader string) (*auth.AdminClaims, error) {
	if authHeader == "" {
		return nil, huma.Error401Unauthorized("Missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, huma.Error401Unauthorized("Invalid authorization header format")
	}

	claims, err := s.services.Admin.Verify(parts[1])
	if err != nil {
		return nil, huma.Error401Unauthorized("Invalid or expired token")
	}

	return claims, nil
}
