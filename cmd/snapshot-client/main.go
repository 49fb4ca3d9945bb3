package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/bayleafwalker/bindery-explorer/internal/model"
	"github.com/bayleafwalker/bindery-explorer/internal/queryserver"
)

func main() {
	var target string
	var preset string
	flag.StringVar(&target, "target", "127.0.0.1:9090", "gRPC server address")
	flag.StringVar(&preset, "preset", "", "filter preset to select and graph, empty for the whole snapshot")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	conn, err := grpc.NewClient(target, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		panic(fmt.Errorf("dial %s: %w", target, err))
	}
	defer conn.Close()

	c := queryserver.NewClient(conn)

	dist, err := c.GetArtifact(ctx, model.TypeDistribution, "")
	if err != nil {
		fmt.Printf("GetArtifact error: %v\n", err)
		return
	}
	fmt.Printf("distribution: %v\n", dist["id"])

	bundles, err := c.ListArtifacts(ctx, model.TypeBundle)
	if err != nil {
		fmt.Printf("ListArtifacts error: %v\n", err)
		return
	}
	fmt.Printf("bundles: %d\n", len(bundles))

	q := queryserver.Query{Preset: preset}
	sel, err := c.Select(ctx, q)
	if err != nil {
		fmt.Printf("Select error: %v\n", err)
		return
	}
	fmt.Printf("select %q: bundles=%d components=%d extensions=%d\n", sel.Filter, len(sel.Bundles), len(sel.Components), len(sel.Extensions))

	g, err := c.BuildGraph(ctx, q)
	if err != nil {
		fmt.Printf("BuildGraph error: %v\n", err)
		return
	}
	st := g.Stats()
	fmt.Printf("graph %q: nodes=%d edges=%d references=%d\n", g.Name, len(g.Nodes), len(g.Edges), st.References)
}
