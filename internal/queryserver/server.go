// Package queryserver exposes a snapshot over gRPC.
//
// The service is registered by hand (see ServiceDesc) and exchanges
// google.protobuf.Struct messages:
//
//	GetArtifact    {type, id}                    -> artifact fields
//	ListArtifacts  {type}                        -> {items: [id...]}
//	Select         Query                         -> selected ids per type
//	BuildGraph     Query                         -> {name, nodes, edges}
//
// Graphs are cached per snapshot digest and filter.
package queryserver

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"time"

	"github.com/go-logr/logr"
	lru "github.com/hashicorp/golang-lru/v2"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/bayleafwalker/bindery-explorer/internal/config"
	"github.com/bayleafwalker/bindery-explorer/internal/filter"
	"github.com/bayleafwalker/bindery-explorer/internal/graph"
	"github.com/bayleafwalker/bindery-explorer/internal/model"
	"github.com/bayleafwalker/bindery-explorer/internal/snapshot"
)

// Server implements SnapshotQueryServer over one snapshot.
type Server struct {
	snap       *snapshot.Snapshot
	presets    map[string]config.Preset
	categories []graph.CategoryRule
	cacheSize  int
	graphs     *lru.Cache[string, *graph.Graph]
	log        logr.Logger
}

var _ SnapshotQueryServer = (*Server)(nil)

type Option func(*Server)

// WithPresets makes named filter presets available to Select and BuildGraph.
func WithPresets(presets ...config.Preset) Option {
	return func(s *Server) {
		for _, p := range presets {
			s.presets[p.Name] = p
		}
	}
}

// WithCategories sets the category rules of built graphs.
func WithCategories(rules ...graph.CategoryRule) Option {
	return func(s *Server) { s.categories = rules }
}

func WithCacheSize(n int) Option {
	return func(s *Server) { s.cacheSize = n }
}

func WithLogger(l logr.Logger) Option {
	return func(s *Server) { s.log = l }
}

// New returns a server answering queries about snap.
func New(snap *snapshot.Snapshot, opts ...Option) (*Server, error) {
	if snap == nil {
		return nil, fmt.Errorf("queryserver: new: nil snapshot")
	}
	s := &Server{
		snap:      snap,
		presets:   make(map[string]config.Preset),
		cacheSize: config.DefaultGraphCacheSize,
		log:       logr.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	cache, err := lru.New[string, *graph.Graph](s.cacheSize)
	if err != nil {
		return nil, fmt.Errorf("queryserver: new graph cache of size %d: %w", s.cacheSize, err)
	}
	s.graphs = cache
	return s, nil
}

// NewGRPCServer returns a grpc.Server with s registered and request metrics
// recorded.
func (s *Server) NewGRPCServer(opts ...grpc.ServerOption) *grpc.Server {
	opts = append(opts, grpc.ChainUnaryInterceptor(s.observe))
	gs := grpc.NewServer(opts...)
	RegisterSnapshotQueryServer(gs, s)
	return gs
}

func (s *Server) observe(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	method := path.Base(info.FullMethod)
	code := status.Code(err)
	queryRequestsTotal.WithLabelValues(method, code.String()).Inc()
	queryRequestDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
	if err != nil {
		s.log.V(1).Info("query failed", "method", method, "code", code.String(), "error", err.Error())
	}
	return resp, err
}

func stringField(in *structpb.Struct, key string) string {
	return in.GetFields()[key].GetStringValue()
}

func parseType(in *structpb.Struct) (model.Type, error) {
	raw := stringField(in, "type")
	t, ok := model.ParseType(raw)
	if !ok {
		return "", status.Errorf(codes.InvalidArgument, "unknown artifact type %q", raw)
	}
	return t, nil
}

func (s *Server) GetArtifact(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	_ = ctx
	t, err := parseType(in)
	if err != nil {
		return nil, err
	}
	id := stringField(in, "id")
	if t == model.TypeDistribution && id == "" {
		id = s.snap.Key()
	}
	a, ok := s.snap.Lookup(model.Ref{Type: t, ID: id})
	if !ok {
		return nil, status.Errorf(codes.NotFound, "%s %q not found", t, id)
	}
	return encode(Fields(a))
}

func (s *Server) ListArtifacts(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	_ = ctx
	t, err := parseType(in)
	if err != nil {
		return nil, err
	}
	ids := s.snap.IDs(t)
	if ids == nil {
		ids = []string{}
	}
	return encode(map[string]any{"type": string(t), "items": ids})
}

func (s *Server) Select(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	_ = ctx
	f, _, err := s.filterFor(in)
	if err != nil {
		return nil, err
	}
	return encode(filter.Select(s.snap, f))
}

func (s *Server) BuildGraph(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	_ = ctx
	g, err := s.graph(in)
	if err != nil {
		return nil, err
	}
	return encode(g)
}

func (s *Server) graph(in *structpb.Struct) (*graph.Graph, error) {
	f, key, err := s.filterFor(in)
	if err != nil {
		return nil, err
	}
	cacheKey := s.snap.Digest() + "/" + key
	if g, ok := s.graphs.Get(cacheKey); ok {
		graphCacheHitsTotal.Inc()
		return g, nil
	}
	g := graph.Build(s.snap, f, graph.WithCategories(s.categories...), graph.WithLogger(s.log))
	s.graphs.Add(cacheKey, g)
	graphBuildsTotal.Inc()
	graphNodes.Set(float64(len(g.Nodes)))
	s.log.V(1).Info("graph built", "filter", f.Name(), "nodes", len(g.Nodes), "edges", len(g.Edges))
	return g, nil
}

// filterFor resolves a query into a filter and the key its graph is cached
// under.
func (s *Server) filterFor(in *structpb.Struct) (filter.Filter, string, error) {
	var q Query
	if err := fromStruct(in, &q); err != nil {
		return nil, "", status.Error(codes.InvalidArgument, err.Error())
	}
	switch {
	case q.Preset != "":
		p, ok := s.presets[q.Preset]
		if !ok {
			return nil, "", status.Errorf(codes.NotFound, "filter preset %q not found", q.Preset)
		}
		refs := p.IncludeReferences || q.IncludeReferences
		return filter.ForCriteria(s.snap, p.Name, p.Criteria, refs), fmt.Sprintf("preset:%s:%t", p.Name, refs), nil
	case q.Criteria != nil:
		if q.Criteria.IsEmpty() {
			return nil, "", status.Error(codes.InvalidArgument, "criteria has no include list")
		}
		name := q.Name
		if name == "" {
			name = "query"
		}
		raw, err := json.Marshal(q.Criteria)
		if err != nil {
			return nil, "", status.Error(codes.Internal, err.Error())
		}
		key := fmt.Sprintf("criteria:%s:%s:%t", name, raw, q.IncludeReferences)
		return filter.ForCriteria(s.snap, name, *q.Criteria, q.IncludeReferences), key, nil
	default:
		return filter.All, "all", nil
	}
}

func encode(v any) (*structpb.Struct, error) {
	out, err := toStruct(v)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}
