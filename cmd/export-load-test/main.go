package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	utilruntime "k8s.io/apimachinery/pkg/util/runtime"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	"k8s.io/client-go/tools/clientcmd"
	"k8s.io/client-go/util/homedir"
	"sigs.k8s.io/controller-runtime/pkg/client"

	explorerv1alpha1 "github.com/bayleafwalker/bindery-explorer/api/v1alpha1"
)

var (
	scheme = runtime.NewScheme()
)

func init() {
	utilruntime.Must(clientgoscheme.AddToScheme(scheme))
	utilruntime.Must(explorerv1alpha1.AddToScheme(scheme))
}

func main() {
	var kubeconfig string
	if home := homedir.HomeDir(); home != "" {
		kubeconfig = filepath.Join(home, ".kube", "config")
	} else {
		kubeconfig = os.Getenv("KUBECONFIG")
	}
	flag.StringVar(&kubeconfig, "kubeconfig", kubeconfig, "absolute path to the kubeconfig file")

	var numExports int
	var namespace string
	var bundles string
	var includeReferences bool
	var cleanup bool

	flag.IntVar(&numExports, "exports", 10, "Number of SnapshotExports to create")
	flag.StringVar(&namespace, "namespace", "default", "Namespace to create exports in")
	flag.StringVar(&bundles, "bundles", "org.example", "Comma separated bundle id prefixes to select")
	flag.BoolVar(&includeReferences, "include-references", true, "Ask for the reference closure of each selection")
	flag.BoolVar(&cleanup, "cleanup", true, "Delete the exports once measured")
	flag.Parse()

	config, err := clientcmd.BuildConfigFromFlags("", kubeconfig)
	if err != nil {
		log.Fatalf("Error building kubeconfig: %v", err)
	}

	k8sClient, err := client.New(config, client.Options{Scheme: scheme})
	if err != nil {
		log.Fatalf("Error creating client: %v", err)
	}

	fmt.Printf("Starting load test: %d exports in namespace %s\n", numExports, namespace)

	var wg sync.WaitGroup
	start := time.Now()
	latencies := make(chan time.Duration, numExports)

	for i := 0; i < numExports; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			name := fmt.Sprintf("load-test-export-%d-%d", time.Now().Unix(), id)

			exp := &explorerv1alpha1.SnapshotExport{
				ObjectMeta: metav1.ObjectMeta{
					Name:      name,
					Namespace: namespace,
				},
				Spec: explorerv1alpha1.SnapshotExportSpec{
					Bundles:           strings.Split(bundles, ","),
					PrefixMatch:       true,
					IncludeReferences: includeReferences,
				},
			}

			createStart := time.Now()
			fmt.Printf("Creating export %s\n", name)
			if err := k8sClient.Create(context.Background(), exp); err != nil {
				fmt.Printf("Error creating export %s: %v\n", name, err)
				return
			}
			if cleanup {
				defer func() {
					if err := k8sClient.Delete(context.Background(), exp); client.IgnoreNotFound(err) != nil {
						fmt.Printf("Error deleting export %s: %v\n", name, err)
					}
				}()
			}

			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()

			for {
				select {
				case <-ctx.Done():
					fmt.Printf("Timeout waiting for export %s\n", name)
					return
				case <-time.After(500 * time.Millisecond):
					var current explorerv1alpha1.SnapshotExport
					if err := k8sClient.Get(ctx, client.ObjectKey{Name: name, Namespace: namespace}, &current); err != nil {
						continue
					}
					switch current.Status.Phase {
					case explorerv1alpha1.SnapshotExportPhaseReady:
						latency := time.Since(createStart)
						latencies <- latency
						fmt.Printf("Export %s ready in %v (%d bundles)\n", name, latency, current.Status.SelectedCount)
						return
					case explorerv1alpha1.SnapshotExportPhaseFailed:
						fmt.Printf("Export %s failed\n", name)
						return
					}
				}
			}
		}(i)
	}

	wg.Wait()
	close(latencies)
	totalDuration := time.Since(start)

	var totalLatency time.Duration
	count := 0
	for l := range latencies {
		totalLatency += l
		count++
	}

	if count > 0 {
		avgLatency := totalLatency / time.Duration(count)
		fmt.Printf("Load test completed in %v. %d/%d ready, avg latency: %v\n", totalDuration, count, numExports, avgLatency)
	} else {
		fmt.Printf("Load test completed in %v. No exports became ready.\n", totalDuration)
	}
}
