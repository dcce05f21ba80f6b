package directory

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"medical-booking/internal/model"
)

const (
	ServiceName         = "directory.v1.DirectoryService"
	GetAllDoctorsMethod = "/directory.v1.DirectoryService/GetAllDoctors"
)

// AccountSource is the server-side view of the account store.
type AccountSource interface {
	ListDoctors(ctx context.Context) ([]model.Account, error)
}

type directoryServer interface {
	GetAllDoctors(ctx context.Context, req *emptypb.Empty) (*structpb.ListValue, error)
}

// Server answers GetAllDoctors with a list of account structs.
type Server struct {
	src    AccountSource
	logger zerolog.Logger
}

func NewServer(src AccountSource, logger zerolog.Logger) *Server {
	return &Server{src: src, logger: logger}
}

func (s *Server) Register(r grpc.ServiceRegistrar) {
	r.RegisterService(&serviceDesc, s)
}

func (s *Server) GetAllDoctors(ctx context.Context, _ *emptypb.Empty) (*structpb.ListValue, error) {
	accounts, err := s.src.ListDoctors(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("list doctors")
		return nil, status.Error(codes.Unavailable, "directory unavailable")
	}
	out, err := encodeAccounts(accounts)
	if err != nil {
		return nil, status.Error(codes.Internal, "internal error")
	}
	return out, nil
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*directoryServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetAllDoctors", Handler: getAllDoctorsHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "directory/v1/directory.proto",
}

func getAllDoctorsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(directoryServer).GetAllDoctors(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: GetAllDoctorsMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(directoryServer).GetAllDoctors(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

// Client calls the directory service over gRPC.
type Client struct {
	conn  *grpc.ClientConn
	token string
}

// Dial connects to the directory at addr (e.g. "localhost:50051").
func Dial(addr, token string) (*Client, error) {
	conn, err := grpc.NewClient(
		addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return nil, fmt.Errorf("directory dial: %w", err)
	}
	return NewClient(conn, token), nil
}

func NewClient(conn *grpc.ClientConn, token string) *Client {
	return &Client{conn: conn, token: token}
}

func (c *Client) Close() error { return c.conn.Close() }

func (c *Client) GetAllDoctors(ctx context.Context) ([]model.Account, error) {
	if c.token != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+c.token)
	}
	out := &structpb.ListValue{}
	if err := c.conn.Invoke(ctx, GetAllDoctorsMethod, &emptypb.Empty{}, out); err != nil {
		return nil, fmt.Errorf("directory: get all doctors: %w", err)
	}
	return decodeAccounts(out)
}

func encodeAccounts(accounts []model.Account) (*structpb.ListValue, error) {
	out := &structpb.ListValue{Values: make([]*structpb.Value, 0, len(accounts))}
	for _, a := range accounts {
		fields := map[string]any{
			"id":    a.ID,
			"name":  a.Name,
			"email": a.Email,
			"role":  a.Role,
			"image": a.Image,
		}
		if a.Specialty != nil {
			fields["specialty"] = *a.Specialty
		}
		s, err := structpb.NewStruct(fields)
		if err != nil {
			return nil, err
		}
		out.Values = append(out.Values, structpb.NewStructValue(s))
	}
	return out, nil
}

func decodeAccounts(list *structpb.ListValue) ([]model.Account, error) {
	out := make([]model.Account, 0, len(list.GetValues()))
	for i, v := range list.GetValues() {
		s := v.GetStructValue()
		if s == nil {
			return nil, fmt.Errorf("directory: entry %d is not an account", i)
		}
		f := s.GetFields()
		a := model.Account{
			ID:    f["id"].GetStringValue(),
			Name:  f["name"].GetStringValue(),
			Email: f["email"].GetStringValue(),
			Role:  f["role"].GetStringValue(),
			Image: f["image"].GetStringValue(),
		}
		if sv, ok := f["specialty"].GetKind().(*structpb.Value_StringValue); ok {
			spec := sv.StringValue
			a.Specialty = &spec
		}
		out = append(out, a)
	}
	return out, nil
}
