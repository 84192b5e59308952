package grpcjudge

import (
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
)

// File_judge_proto is the descriptor of judge.proto.
// It is registered in the global registry so that server reflection can serve it.
var File_judge_proto = registerJudgeFile()

func registerJudgeFile() protoreflect.FileDescriptor {
	fd, err := protodesc.NewFile(judgeFileProto(), protoregistry.GlobalFiles)
	if err != nil {
		panic(fmt.Sprintf("grpcjudge: invalid judge.proto descriptor: %v", err))
	}
	if err := protoregistry.GlobalFiles.RegisterFile(fd); err != nil {
		panic(fmt.Sprintf("grpcjudge: register judge.proto: %v", err))
	}
	return fd
}

// judgeFileProto mirrors judge.proto
func judgeFileProto() *descriptorpb.FileDescriptorProto {
	return &descriptorpb.FileDescriptorProto{
		Name:    proto.String("judge.proto"),
		Package: proto.String("judge"),
		Dependency: []string{
			"google/protobuf/struct.proto",
			"google/protobuf/wrappers.proto",
		},
		Service: []*descriptorpb.ServiceDescriptorProto{{
			Name: proto.String("Judge"),
			Method: []*descriptorpb.MethodDescriptorProto{
				{
					Name:       proto.String("Submit"),
					InputType:  proto.String(".google.protobuf.Struct"),
					OutputType: proto.String(".google.protobuf.Struct"),
				},
				{
					Name:       proto.String("GetSubmission"),
					InputType:  proto.String(".google.protobuf.StringValue"),
					OutputType: proto.String(".google.protobuf.Struct"),
				},
			},
		}},
		Options: &descriptorpb.FileOptions{
			GoPackage: proto.String("github.com/criyle/go-static-judge/cmd/go-static-judge/grpc_judge;grpcjudge"),
		},
		Syntax: proto.String("proto3"),
	}
}
