package grpcjudge

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/criyle/go-static-judge/cmd/go-static-judge/model"
	"github.com/criyle/go-static-judge/judge"
	"github.com/criyle/go-static-judge/submission"
	"github.com/criyle/go-static-judge/worker"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// SubmissionGetter loads persisted submissions
type SubmissionGetter interface {
	Get(ctx context.Context, id string) (*submission.Submission, error)
}

type judgeServer struct {
	worker      worker.Worker
	submissions SubmissionGetter
	logger      *zap.Logger
}

// New creates grpc judge server
func New(worker worker.Worker, submissions SubmissionGetter, logger *zap.Logger) JudgeServer {
	return &judgeServer{
		worker:      worker,
		submissions: submissions,
		logger:      logger,
	}
}

func (j *judgeServer) Submit(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req model.Request
	if err := fromStruct(in, &req); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	r := model.ConvertRequest(&req)
	if err := r.Validate(); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	j.logger.Sugar().Debugf("request: %+v", req)
	var rt worker.Response
	select {
	case rt = <-j.worker.Submit(ctx, r):
	case <-ctx.Done():
		return nil, convertError(ctx.Err())
	}
	res, err := model.ConvertResponse(rt, in.GetFields()["results"].GetBoolValue())
	if err != nil {
		return nil, convertError(err)
	}
	return toStruct(res)
}

func (j *judgeServer) GetSubmission(ctx context.Context, in *wrapperspb.StringValue) (*structpb.Struct, error) {
	s, err := j.submissions.Get(ctx, in.GetValue())
	if err != nil {
		return nil, convertError(err)
	}
	return toStruct(s)
}

func convertError(err error) error {
	switch {
	case errors.Is(err, judge.ErrInputMissing):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, submission.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, worker.ErrClosed):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

// fromStruct decodes the struct through its JSON form
func fromStruct(in *structpb.Struct, v any) error {
	b, err := json.Marshal(in.AsMap())
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

func toStruct(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	s, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return s, nil
}
