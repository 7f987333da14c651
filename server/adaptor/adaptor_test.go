package adaptor_test

import (
	"context"
	"net"
	"testing"
	"time"

	pb "github.com/ponyo877/livechat/chatpb"
	"github.com/ponyo877/livechat/server/adaptor"
	"github.com/ponyo877/livechat/server/domain"
	"github.com/ponyo877/livechat/server/logging"
	"github.com/ponyo877/livechat/server/repository"
	"github.com/ponyo877/livechat/server/usecase"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type grpcHarness struct {
	client pb.ChatServiceClient
	bus    *domain.EventBus
	uc     *usecase.Usecase
}

func newGRPCHarness(t *testing.T) *grpcHarness {
	t.Helper()
	rp := repository.NewRepository(repository.DefaultCapacity, repository.DefaultTTL)
	bus := domain.NewEventBus()
	uc := usecase.NewUsecase(rp, bus, zerolog.Nop())
	suc := usecase.NewStreamUsecase(uc, rp, bus, domain.NewStreamManager(), 16, zerolog.Nop())
	sessions := adaptor.NewSessionStore("test-secret", time.Hour, "", false)

	lis := bufconn.Listen(1 << 20)
	s := grpc.NewServer(
		grpc.ChainUnaryInterceptor(logging.UnaryServerInterceptor(zerolog.Nop())),
		grpc.ChainStreamInterceptor(logging.StreamServerInterceptor(zerolog.Nop())),
	)
	pb.RegisterChatServiceServer(s, adaptor.NewAdaptor(uc, suc, sessions))
	go func() { _ = s.Serve(lis) }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(context.Context, string) (net.Conn, error) {
			return lis.Dial()
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		suc.CloseAll()
		conn.Close()
		s.Stop()
	})
	return &grpcHarness{client: pb.NewChatServiceClient(conn), bus: bus, uc: uc}
}

func withToken(ctx context.Context, token string) context.Context {
	return metadata.AppendToOutgoingContext(ctx, pb.TokenMetadataKey, "Bearer "+token)
}

func TestAdaptor_Join(t *testing.T) {
	h := newGRPCHarness(t)
	ctx := context.Background()

	t.Run("should return a session token", func(t *testing.T) {
		req := require.New(t)

		token, err := h.client.Join(ctx, wrapperspb.String("alice"))
		req.NoError(err)
		req.NotEmpty(token.GetValue())

		exists, err := h.client.DoesUserExist(ctx, wrapperspb.String("alice"))
		req.NoError(err)
		req.True(exists.GetValue())
	})

	t.Run("should map conflicts to already exists", func(t *testing.T) {
		_, err := h.client.Join(ctx, wrapperspb.String("ALICE"))
		require.Equal(t, codes.AlreadyExists, status.Code(err))
	})

	t.Run("should map invalid names to invalid argument", func(t *testing.T) {
		req := require.New(t)

		for _, name := range []string{"", "x\n\nevent: message", "tab\tname"} {
			_, err := h.client.Join(ctx, wrapperspb.String(name))
			req.Equal(codes.InvalidArgument, status.Code(err), name)
		}
		req.Equal([]string{"alice"}, h.uc.ListUsers())
	})
}

func TestAdaptor_Unauthenticated(t *testing.T) {
	req := require.New(t)
	h := newGRPCHarness(t)
	ctx := context.Background()

	_, err := h.client.SendMessage(ctx, wrapperspb.String("hi"))
	req.Equal(codes.Unauthenticated, status.Code(err))

	_, err = h.client.Leave(withToken(ctx, "garbage"), &emptypb.Empty{})
	req.Equal(codes.Unauthenticated, status.Code(err))

	stream, err := h.client.StreamEvents(ctx, &emptypb.Empty{})
	req.NoError(err)
	_, err = stream.Recv()
	req.Equal(codes.Unauthenticated, status.Code(err))
}

func TestAdaptor_StreamEvents(t *testing.T) {
	req := require.New(t)
	h := newGRPCHarness(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	aliceToken, err := h.client.Join(ctx, wrapperspb.String("alice"))
	req.NoError(err)

	before := h.bus.SubscriberCount(domain.EventUserLeft)
	stream, err := h.client.StreamEvents(withToken(ctx, aliceToken.GetValue()), &emptypb.Empty{})
	req.NoError(err)
	req.Eventually(func() bool {
		return h.bus.SubscriberCount(domain.EventUserLeft) > before
	}, time.Second, 5*time.Millisecond)

	bobToken, err := h.client.Join(ctx, wrapperspb.String("bob"))
	req.NoError(err)
	_, err = h.client.SendMessage(withToken(ctx, bobToken.GetValue()), wrapperspb.String("hi"))
	req.NoError(err)

	users, err := h.client.ListUsers(ctx, &emptypb.Empty{})
	req.NoError(err)
	req.ElementsMatch([]string{"alice", "bob"}, pb.Users(users))

	_, err = h.client.Leave(withToken(ctx, bobToken.GetValue()), &emptypb.Empty{})
	req.NoError(err)

	want := []pb.Event{
		{Kind: "user-joined", User: "bob"},
		{Kind: "message", User: "bob", Message: "hi"},
		{Kind: "user-left", User: "bob"},
	}
	for _, w := range want {
		msg, err := stream.Recv()
		req.NoError(err)
		got, err := pb.EventFromStruct(msg)
		req.NoError(err)
		req.Equal(w, got)
	}
	req.False(h.uc.DoesUserExist("bob"))
}

func TestAdaptor_StreamEventsInvalidUTF8(t *testing.T) {
	req := require.New(t)
	h := newGRPCHarness(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	bobToken, err := h.client.Join(ctx, wrapperspb.String("bob"))
	req.NoError(err)

	before := h.bus.SubscriberCount(domain.EventMessage)
	stream, err := h.client.StreamEvents(withToken(ctx, bobToken.GetValue()), &emptypb.Empty{})
	req.NoError(err)
	req.Eventually(func() bool {
		return h.bus.SubscriberCount(domain.EventMessage) > before
	}, time.Second, 5*time.Millisecond)

	req.NoError(h.uc.Join("alice"))
	h.uc.SendMessage("alice", domain.TruncateMessage("hi\xff", domain.MaxMessageLength))
	h.bus.Publish(domain.NewMessageEvent(domain.NewChatMessage("alice", "raw\xfe")))
	h.uc.SendMessage("alice", "still here")

	want := []pb.Event{
		{Kind: "user-joined", User: "alice"},
		{Kind: "message", User: "alice", Message: "hi\uFFFD"},
		{Kind: "message", User: "alice", Message: "raw\uFFFD"},
		{Kind: "message", User: "alice", Message: "still here"},
	}
	for _, w := range want {
		msg, err := stream.Recv()
		req.NoError(err)
		got, err := pb.EventFromStruct(msg)
		req.NoError(err)
		req.Equal(w, got)
	}
	req.True(h.uc.DoesUserExist("bob"))
}
