package server

import (
	"context"

	"github.com/viant/jsonrpc/transport/server/stdio"
)

// Stdio returns a stdio transport bound to this server.
func (s *Server) Stdio(ctx context.Context, options ...stdio.Option) *stdio.Server {
	return stdio.New(ctx, s.NewHandler, options...)
}
