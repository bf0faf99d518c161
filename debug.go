package main

import (
	"bytes"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"

	"github.com/funny-falcon/refgc/alloc"
	"github.com/funny-falcon/refgc/gc"
)

var config = jsoniter.Config{
	OnlyTaggedField: true,
	CaseSensitive:   true,
}.Froze()

// Debug serves the registries of a heap and the allocator behind them.
type Debug struct {
	Heap  *gc.Heap
	Alloc *alloc.Simple
}

func (d *Debug) Handler(ctx *fasthttp.RequestCtx) {
	path := string(ctx.Path())
	switch {
	case path == "/registries" && ctx.IsGet():
		data, err := gc.MarshalSnapshot(d.Heap.Snapshot()...)
		if err != nil {
			ctx.Error(err.Error(), fasthttp.StatusInternalServerError)
			return
		}
		ctx.SetContentType("application/json")
		ctx.SetBody(data)
	case path == "/dump" && ctx.IsGet():
		var buf bytes.Buffer
		d.Heap.Dump(&buf)
		ctx.SetContentType("text/plain; charset=utf-8")
		ctx.SetBody(buf.Bytes())
	case path == "/collect" && ctx.IsPost():
		freed := d.Heap.Collect()
		d.writeJSON(ctx, struct {
			Freed bool `json:"freed"`
			Size  int  `json:"size"`
		}{freed, d.Heap.Size()})
	case path == "/alloc" && ctx.IsGet():
		d.writeJSON(ctx, d.Alloc.Stats())
	default:
		ctx.SetStatusCode(fasthttp.StatusNotFound)
	}
}

func (d *Debug) writeJSON(ctx *fasthttp.RequestCtx, v interface{}) {
	ctx.SetContentType("application/json")
	stream := config.BorrowStream(ctx)
	defer config.ReturnStream(stream)
	stream.WriteVal(v)
	if stream.Error != nil {
		ctx.Error(stream.Error.Error(), fasthttp.StatusInternalServerError)
		return
	}
	stream.Flush()
}
