package draft

import (
	"context"
	"encoding/json"
	"errors"

	"connectrpc.com/connect"
	"github.com/google/uuid"
)

// UserIDHeader carries the caller identity set by the upstream identity provider.
const UserIDHeader = "X-User-ID"

type userKey struct{}

// WithUser returns a context carrying the authenticated user id.
func WithUser(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, userKey{}, userID)
}

// UserFromContext returns the authenticated user id, or uuid.Nil.
func UserFromContext(ctx context.Context) uuid.UUID {
	id, _ := ctx.Value(userKey{}).(uuid.UUID)
	return id
}

// NewIdentityInterceptor reads X-User-ID into the context. A missing header
// leaves the caller anonymous and the engine rejects it; a malformed one is
// rejected here.
func NewIdentityInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			raw := req.Header().Get(UserIDHeader)
			if raw == "" {
				return next(ctx, req)
			}
			userID, err := uuid.Parse(raw)
			if err != nil {
				return nil, connect.NewError(connect.CodeUnauthenticated, errors.New("malformed "+UserIDHeader))
			}
			return next(WithUser(ctx, userID), req)
		}
	}
}

// JSONCodec marshals plain Go structs as JSON. It replaces connect's protojson codec.
type JSONCodec struct{}

func (JSONCodec) Name() string { return "json" }

func (JSONCodec) Marshal(msg any) ([]byte, error) { return json.Marshal(msg) }

func (JSONCodec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, msg)
}
