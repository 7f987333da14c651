package adaptor

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	pb "github.com/ponyo877/livechat/chatpb"
	"github.com/ponyo877/livechat/server/domain"
	"github.com/ponyo877/livechat/server/logging"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type Adaptor struct {
	uc       Usecase
	stream   StreamUsecase
	sessions *SessionStore
	validate *validator.Validate
	pb.UnimplementedChatServiceServer
}

func NewAdaptor(uc Usecase, stream StreamUsecase, sessions *SessionStore) *Adaptor {
	return &Adaptor{
		uc:       uc,
		stream:   stream,
		sessions: sessions,
		validate: newValidator(),
	}
}

func (a *Adaptor) Join(ctx context.Context, in *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	req := joinRequest{User: in.GetValue()}
	if err := a.validate.Struct(req); err != nil {
		return nil, status.Error(codes.InvalidArgument, "invalid user name")
	}

	if err := a.uc.Join(req.User); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, status.Error(codes.AlreadyExists, "User already exists")
		}
		logging.Ctx(ctx).Error().Err(err).Msg("join failed")
		return nil, status.Error(codes.Internal, "join failed")
	}

	token, err := a.sessions.Token(req.User)
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Msg("failed to issue session")
		a.uc.Leave(req.User)
		return nil, status.Error(codes.Internal, "failed to create session")
	}
	return wrapperspb.String(token), nil
}

func (a *Adaptor) Leave(ctx context.Context, _ *emptypb.Empty) (*emptypb.Empty, error) {
	user, err := a.authenticate(ctx)
	if err != nil {
		return nil, err
	}
	a.uc.Leave(user)
	return &emptypb.Empty{}, nil
}

func (a *Adaptor) SendMessage(ctx context.Context, in *wrapperspb.StringValue) (*emptypb.Empty, error) {
	user, err := a.authenticate(ctx)
	if err != nil {
		return nil, err
	}
	a.uc.SendMessage(user, domain.TruncateMessage(in.GetValue(), domain.MaxMessageLength))
	return &emptypb.Empty{}, nil
}

func (a *Adaptor) ListUsers(ctx context.Context, _ *emptypb.Empty) (*structpb.ListValue, error) {
	users := a.uc.ListUsers()
	values := make([]*structpb.Value, len(users))
	for i, user := range users {
		values[i] = structpb.NewStringValue(user)
	}
	return &structpb.ListValue{Values: values}, nil
}

func (a *Adaptor) DoesUserExist(ctx context.Context, in *wrapperspb.StringValue) (*wrapperspb.BoolValue, error) {
	return wrapperspb.Bool(a.uc.DoesUserExist(in.GetValue())), nil
}

func (a *Adaptor) StreamEvents(_ *emptypb.Empty, stream pb.ChatService_StreamEventsServer) error {
	ctx := stream.Context()
	user, err := a.authenticate(ctx)
	if err != nil {
		return err
	}

	remote := ""
	if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
		remote = p.Addr.String()
	}

	err = a.stream.HandleStreamSession(ctx, user, remote, &grpcSink{stream: stream})
	if err != nil && !errors.Is(err, domain.ErrSessionClosed) {
		logging.Ctx(ctx).Warn().Err(err).Msg("stream session ended with error")
		return status.Error(codes.Internal, "stream failed")
	}
	return nil
}

// authenticate resolves the caller from the authorization metadata, which
// may hold a bare token or a bearer header.
func (a *Adaptor) authenticate(ctx context.Context) (string, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", status.Error(codes.Unauthenticated, "missing session token")
	}
	values := md.Get(pb.TokenMetadataKey)
	if len(values) == 0 {
		return "", status.Error(codes.Unauthenticated, "missing session token")
	}

	token := values[0]
	if bearer, ok := BearerToken(token); ok {
		token = bearer
	}
	user, err := a.sessions.Verify(strings.TrimSpace(token))
	if err != nil {
		return "", status.Error(codes.Unauthenticated, "invalid session token")
	}
	return user, nil
}

type grpcSink struct {
	stream pb.ChatService_StreamEventsServer
}

func (s *grpcSink) Send(event domain.Event) error {
	msg, err := ToPbEvent(event)
	if err != nil {
		return err
	}
	return s.stream.Send(msg)
}

// ToPbEvent converts event to the stream envelope. Protobuf strings must be
// valid UTF-8, so any invalid bytes are replaced.
func ToPbEvent(event domain.Event) (*structpb.Struct, error) {
	return pb.Event{
		Kind:    event.Kind.String(),
		User:    strings.ToValidUTF8(event.User, "\uFFFD"),
		Message: strings.ToValidUTF8(event.Message, "\uFFFD"),
	}.Struct()
}
