package logging

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const metadataKeyRequestID = "x-request-id"

func UnaryServerInterceptor(logger zerolog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		scoped, done := startCall(ctx, logger, info.FullMethod)
		resp, err := handler(WithLogger(ctx, scoped), req)
		done(err)
		return resp, err
	}
}

func StreamServerInterceptor(logger zerolog.Logger) grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		scoped, done := startCall(ss.Context(), logger, info.FullMethod)
		err := handler(srv, &scopedStream{ServerStream: ss, ctx: WithLogger(ss.Context(), scoped)})
		done(err)
		return err
	}
}

// startCall builds the per-call logger and returns a func that writes the
// completion line for err.
func startCall(ctx context.Context, logger zerolog.Logger, method string) (zerolog.Logger, func(error)) {
	start := time.Now()
	var id string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if vals := md.Get(metadataKeyRequestID); len(vals) > 0 {
			id = vals[0]
		}
	}
	scoped := logger.With().
		Str(FieldRequestID, requestID(id)).
		Str(FieldGRPCMethod, method).
		Logger()

	return scoped, func(err error) {
		code := status.Code(err)
		var e *zerolog.Event
		switch code {
		case codes.OK, codes.Canceled:
			e = scoped.Info()
		case codes.Internal, codes.Unknown, codes.DataLoss, codes.Unavailable:
			e = scoped.Error().Err(err)
		default:
			e = scoped.Warn().Err(err)
		}
		e.Str(FieldGRPCCode, code.String()).
			Dur(FieldLatency, time.Since(start)).
			Msg("call finished")
	}
}

// scopedStream overrides Context so handlers see the call logger.
type scopedStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (s *scopedStream) Context() context.Context {
	return s.ctx
}
