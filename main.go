package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"syscall"

	"github.com/valyala/fasthttp"

	"github.com/funny-falcon/refgc/alloc"
	"github.com/funny-falcon/refgc/atexit"
	"github.com/funny-falcon/refgc/gc"
)

var workload = flag.String("config", "", "workload yaml, built-in scenarios if empty")
var port = flag.String("port", "8080", "port to listen")
var serve = flag.Bool("serve", false, "serve registry diagnostics after the workload")
var trace = flag.Bool("trace", false, "trace registry events")

func main() {
	log.SetFlags(log.Lmicroseconds | log.Lshortfile)
	flag.Parse()
	atexit.Main(run)
}

func run() int {
	w, err := LoadWorkload(*workload)
	if err != nil {
		log.Print(err)
		return 1
	}

	var al alloc.Simple
	opts := []gc.Option{gc.WithExitHooks(atexit.Default)}
	if *trace {
		opts = append(opts, gc.WithLogger(log.New(os.Stderr, "gc ", log.Lmicroseconds)))
	}
	heap := gc.NewHeap(opts...)
	atexit.Register("alloc stats", func() {
		st := al.Stats()
		fmt.Println("alloc ", st.TotalAlloc, st.TotalFree, st.Chunks, st.FreeChunks)
	})

	runner := &Runner{Heap: heap, Typed: alloc.NewTyped[int64](&al)}
	reports, err := runner.Run(w)
	if err != nil {
		log.Print(err)
		return 1
	}
	for _, rep := range reports {
		fmt.Printf("%-16s %-12s tracked %6d peak %6d remaining %4d\n",
			rep.Name, rep.Shape, rep.Tracked, rep.PeakSize, rep.Remaining)
	}

	if !*serve {
		return 0
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigs := atexit.Default.RunOnSignal(ctx, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Printf("got %v", sig)
		os.Exit(0)
	}()

	dbg := &Debug{Heap: heap, Alloc: &al}
	log.Printf("serving diagnostics on :%s", *port)
	if err := fasthttp.ListenAndServe(":"+*port, dbg.Handler); err != nil {
		log.Print(err)
		return 1
	}
	return 0
}
