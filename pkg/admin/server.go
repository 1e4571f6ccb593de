// Package admin serves runtime profiles of a running service over gRPC.
package admin

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"runtime/pprof"
	"runtime/trace"
	"time"

	"google.golang.org/grpc"

	wgpgrpc "github.com/stuagano/wolf-goat-pig/internal/modules/wgp/adapter/grpc"
	"github.com/stuagano/wolf-goat-pig/pkg/logger"
)

const (
	ServiceName     = "wgp.AdminService"
	collectMethod   = "CollectPerformanceData"
	defaultDuration = 30 * time.Second
	maxDuration     = 5 * time.Minute
	chunkSize       = 32 * 1024
)

// DataType names one captured profile
type DataType string

const (
	CPUProfile    DataType = "cpu_profile"
	TraceData     DataType = "trace"
	HeapSnapshot  DataType = "heap"
	GoroutineDump DataType = "goroutine"
	BlockProfile  DataType = "block"
	MutexProfile  DataType = "mutex"
)

type CollectReq struct {
	Duration time.Duration `json:"duration"`
}

// Chunk is one piece of a profile; large profiles arrive in several chunks
type Chunk struct {
	DataType    DataType `json:"data_type"`
	Data        []byte   `json:"data"`
	Timestamp   int64    `json:"timestamp"`
	ServiceName string   `json:"service_name"`
}

// ChunkSender is the server side of a collect stream
type ChunkSender interface {
	Context() context.Context
	Send(*Chunk) error
}

// AdminServer is the server API of the admin service
type AdminServer interface {
	CollectPerformanceData(*CollectReq, ChunkSender) error
}

// Server captures CPU, trace, heap, goroutine, block and mutex profiles
type Server struct {
	name string
}

// NewServer creates an admin server; name tags every chunk and defaults to the hostname
func NewServer(name string) *Server {
	if name == "" {
		name, _ = os.Hostname()
	}
	return &Server{name: name}
}

// CollectPerformanceData profiles the process for req.Duration and streams the results back
func (s *Server) CollectPerformanceData(req *CollectReq, stream ChunkSender) error {
	duration := req.Duration
	if duration <= 0 {
		duration = defaultDuration
	}
	if duration > maxDuration {
		duration = maxDuration
	}
	ctx := stream.Context()
	logger.Info(ctx).Dur("duration", duration).Msg("collecting performance data")

	var cpuBuf, traceBuf bytes.Buffer

	// block and mutex profiling are off by default and costly, so only for this window
	runtime.SetBlockProfileRate(1)
	runtime.SetMutexProfileFraction(1)
	defer func() {
		runtime.SetBlockProfileRate(0)
		runtime.SetMutexProfileFraction(0)
	}()

	if err := pprof.StartCPUProfile(&cpuBuf); err != nil {
		return fmt.Errorf("start cpu profile: %w", err)
	}
	if err := trace.Start(&traceBuf); err != nil {
		pprof.StopCPUProfile()
		return fmt.Errorf("start trace: %w", err)
	}

	select {
	case <-time.After(duration):
	case <-ctx.Done():
		pprof.StopCPUProfile()
		trace.Stop()
		return ctx.Err()
	}
	pprof.StopCPUProfile()
	trace.Stop()

	var heapBuf bytes.Buffer
	if err := pprof.WriteHeapProfile(&heapBuf); err != nil {
		return fmt.Errorf("write heap profile: %w", err)
	}

	type profile struct {
		kind DataType
		data []byte
	}
	profiles := []profile{
		{CPUProfile, cpuBuf.Bytes()},
		{TraceData, traceBuf.Bytes()},
		{HeapSnapshot, heapBuf.Bytes()},
	}
	for _, rp := range []struct {
		kind DataType
		name string
	}{
		{GoroutineDump, "goroutine"},
		{BlockProfile, "block"},
		{MutexProfile, "mutex"},
	} {
		var buf bytes.Buffer
		if err := writeProfile(&buf, rp.name); err != nil {
			return err
		}
		profiles = append(profiles, profile{rp.kind, buf.Bytes()})
	}

	timestamp := time.Now().Unix()
	for _, p := range profiles {
		for i := 0; i < len(p.data); i += chunkSize {
			end := i + chunkSize
			if end > len(p.data) {
				end = len(p.data)
			}
			chunk := &Chunk{DataType: p.kind, Data: p.data[i:end], Timestamp: timestamp, ServiceName: s.name}
			if err := stream.Send(chunk); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeProfile(w io.Writer, name string) error {
	p := pprof.Lookup(name)
	if p == nil {
		return fmt.Errorf("profile %s not available", name)
	}
	if err := p.WriteTo(w, 0); err != nil {
		return fmt.Errorf("write %s profile: %w", name, err)
	}
	return nil
}

type chunkStream struct {
	grpc.ServerStream
}

func (s *chunkStream) Send(c *Chunk) error { return s.ServerStream.SendMsg(c) }

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AdminServer)(nil),
	Streams: []grpc.StreamDesc{{
		StreamName:    collectMethod,
		ServerStreams: true,
		Handler: func(srv interface{}, stream grpc.ServerStream) error {
			req := new(CollectReq)
			if err := stream.RecvMsg(req); err != nil {
				return err
			}
			return srv.(AdminServer).CollectPerformanceData(req, &chunkStream{stream})
		},
	}},
	Metadata: "admin",
}

// Register adds the admin service to s
func Register(s grpc.ServiceRegistrar, srv AdminServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// Collect asks the service behind cc for a profile and hands each chunk to onChunk
func Collect(ctx context.Context, cc grpc.ClientConnInterface, req *CollectReq, onChunk func(*Chunk) error) error {
	stream, err := cc.NewStream(ctx, &ServiceDesc.Streams[0], "/"+ServiceName+"/"+collectMethod,
		grpc.CallContentSubtype(wgpgrpc.CodecName))
	if err != nil {
		return err
	}
	if err := stream.SendMsg(req); err != nil {
		return err
	}
	if err := stream.CloseSend(); err != nil {
		return err
	}
	for {
		chunk := new(Chunk)
		err := stream.RecvMsg(chunk)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := onChunk(chunk); err != nil {
			return err
		}
	}
}
