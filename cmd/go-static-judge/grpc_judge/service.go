package grpcjudge

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	serviceName             = "judge.Judge"
	submitFullMethod        = "/" + serviceName + "/Submit"
	getSubmissionFullMethod = "/" + serviceName + "/GetSubmission"
)

// JudgeServer is the server API for the judge.Judge service declared in judge.proto.
// Messages are well known protobuf types carrying the JSON shape of the REST API.
type JudgeServer interface {
	Submit(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetSubmission(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
}

// RegisterJudgeServer registers the judge service on the grpc server
func RegisterJudgeServer(s grpc.ServiceRegistrar, srv JudgeServer) {
	s.RegisterService(&judgeServiceDesc, srv)
}

var judgeServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*JudgeServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Submit",
			Handler:    submitHandler,
		},
		{
			MethodName: "GetSubmission",
			Handler:    getSubmissionHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: File_judge_proto.Path(),
}

func submitHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(JudgeServer).Submit(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: submitFullMethod,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(JudgeServer).Submit(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func getSubmissionHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(JudgeServer).GetSubmission(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: getSubmissionFullMethod,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(JudgeServer).GetSubmission(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

// JudgeClient is the client API for the judge.Judge service
type JudgeClient struct {
	cc grpc.ClientConnInterface
}

// NewJudgeClient creates a client over the connection
func NewJudgeClient(cc grpc.ClientConnInterface) *JudgeClient {
	return &JudgeClient{cc: cc}
}

// Submit judges a submission
func (c *JudgeClient) Submit(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, submitFullMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// GetSubmission reads a submission by id
func (c *JudgeClient) GetSubmission(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, getSubmissionFullMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
