package queryserver

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/bayleafwalker/bindery-explorer/internal/filter"
	"github.com/bayleafwalker/bindery-explorer/internal/graph"
	"github.com/bayleafwalker/bindery-explorer/internal/model"
)

// Client is a typed client of the snapshot query service.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) invoke(ctx context.Context, method string, req any, resp any, opts ...grpc.CallOption) error {
	in, err := toStruct(req)
	if err != nil {
		return err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, fullMethod(method), in, out, opts...); err != nil {
		return err
	}
	return fromStruct(out, resp)
}

// GetArtifact returns the fields of one artifact. A missing artifact fails
// with codes.NotFound.
func (c *Client) GetArtifact(ctx context.Context, t model.Type, id string, opts ...grpc.CallOption) (map[string]any, error) {
	var out map[string]any
	err := c.invoke(ctx, methodGetArtifact, map[string]string{"type": string(t), "id": id}, &out, opts...)
	return out, err
}

func (c *Client) ListArtifacts(ctx context.Context, t model.Type, opts ...grpc.CallOption) ([]string, error) {
	var out struct {
		Items []string `json:"items"`
	}
	err := c.invoke(ctx, methodListArtifacts, map[string]string{"type": string(t)}, &out, opts...)
	return out.Items, err
}

func (c *Client) Select(ctx context.Context, q Query, opts ...grpc.CallOption) (filter.Selection, error) {
	var out filter.Selection
	err := c.invoke(ctx, methodSelect, q, &out, opts...)
	return out, err
}

// BuildGraph returns the graph of q. Nodes of the returned graph carry no
// artifact.
func (c *Client) BuildGraph(ctx context.Context, q Query, opts ...grpc.CallOption) (*graph.Graph, error) {
	var out graph.Graph
	if err := c.invoke(ctx, methodBuildGraph, q, &out, opts...); err != nil {
		return nil, err
	}
	return &out, nil
}
