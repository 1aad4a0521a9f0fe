package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"runtime/pprof"
	"time"

	"github.com/delaneyj/statekit/component"
	"github.com/delaneyj/statekit/observed"
	"github.com/delaneyj/statekit/subscriber"
	"github.com/dustin/go-humanize"
	"github.com/jamiealquiza/tachymeter"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/urfave/cli/v3"
)

const (
	widthKey   = "width"
	heightKey  = "height"
	itersKey   = "iters"
	profileKey = "profile"
)

func main() {
	cmd := &cli.Command{
		Name:  "statebench",
		Usage: "Measure change propagation through links, props and nested objects",
		Flags: []cli.Flag{
			&cli.UintFlag{
				Name:  widthKey,
				Usage: "Largest number of chains hanging off the source, stepping by powers of ten",
				Value: 100,
			},
			&cli.UintFlag{
				Name:  heightKey,
				Usage: "Largest chain length, stepping by powers of ten",
				Value: 100,
			},
			&cli.UintFlag{
				Name:  itersKey,
				Usage: "Source updates per measurement",
				Value: 100,
			},
			&cli.StringFlag{
				Name:  profileKey,
				Usage: "Write a CPU profile to this file",
			},
		},
		Action: bench,
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

type shape struct {
	w, h  int
	iters int
}

type benchmark struct {
	title string
	// build wires a graph of the given shape and returns the update to time
	build func(rt *observed.Runtime, s shape) (update func(i int), err error)
}

func bench(ctx context.Context, cmd *cli.Command) error {
	if path := cmd.String(profileKey); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			return err
		}
		defer pprof.StopCPUProfile()
	}

	var shapes []shape
	for _, w := range steps(int(cmd.Uint(widthKey))) {
		for _, h := range steps(int(cmd.Uint(heightKey))) {
			shapes = append(shapes, shape{w: w, h: h, iters: int(cmd.Uint(itersKey))})
		}
	}

	log.Printf("warming up")
	for _, b := range benchmarks {
		if err := run(b, shapes, false); err != nil {
			return err
		}
	}
	for _, b := range benchmarks {
		if err := run(b, shapes, true); err != nil {
			return err
		}
	}
	return nil
}

// steps returns 1, 10, 100 and so on below limit, then limit itself.
func steps(limit int) []int {
	if limit < 1 {
		limit = 1
	}
	var out []int
	for n := 1; n < limit; n *= 10 {
		out = append(out, n)
	}
	return append(out, limit)
}

var benchmarks = []benchmark{
	{title: "Link chains", build: linkChains},
	{title: "Prop chains", build: propChains},
	{title: "Nested fan-out", build: nestedFanOut},
}

func run(b benchmark, shapes []shape, shouldRender bool) error {
	tbl := table.NewWriter()
	tbl.SetTitle(b.title)
	tbl.SetOutputMirror(os.Stdout)
	tbl.AppendHeader(table.Row{"benchmark", "avg", "min", "p75", "p99", "max", "updates/s"})

	for _, s := range shapes {
		rt := observed.NewRuntime(observed.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
		update, err := b.build(rt, s)
		if err != nil {
			return fmt.Errorf("%s %dx%d: %w", b.title, s.w, s.h, err)
		}

		tach := tachymeter.New(&tachymeter.Config{Size: s.iters})
		for i := 0; i < s.iters; i++ {
			start := time.Now()
			update(i)
			tach.AddTime(time.Since(start))
		}

		calc := tach.Calc()
		rate := int64(0)
		if calc.Time.Avg > 0 {
			rate = int64(time.Second / calc.Time.Avg)
		}
		tbl.AppendRow(table.Row{
			fmt.Sprintf("propagate: %d * %d", s.w, s.h),
			calc.Time.Avg,
			calc.Time.Min,
			calc.Time.P75,
			calc.Time.P99,
			calc.Time.Max,
			humanize.Comma(rate),
		})
	}

	if shouldRender {
		tbl.Render()
	}
	return nil
}

func linkChains(rt *observed.Runtime, s shape) (func(int), error) {
	return chains(rt, s, component.Link[int])
}

func propChains(rt *observed.Runtime, s shape) (func(int), error) {
	return chains(rt, s, component.Prop[int])
}

// chains hangs s.w chains of s.h derived properties off one source. Each
// level of each chain is owned by its own view.
func chains(rt *observed.Runtime, s shape, derive func(*component.View, observed.Property[int], string) (observed.Property[int], error)) (func(int), error) {
	root, err := component.New(rt, "root")
	if err != nil {
		return nil, err
	}
	src, err := component.State(root, 0, "src")
	if err != nil {
		return nil, err
	}
	for i := 0; i < s.w; i++ {
		var last observed.Property[int] = src
		for j := 0; j < s.h; j++ {
			v, err := component.New(rt, fmt.Sprintf("c%d.%d", i, j))
			if err != nil {
				return nil, err
			}
			if last, err = derive(v, last, "value"); err != nil {
				return nil, err
			}
		}
	}
	return func(i int) { src.Set(i + 1) }, nil
}

type node struct {
	N int
}

// nestedFanOut binds s.w*s.h nested properties to one object and mutates it.
func nestedFanOut(rt *observed.Runtime, s shape) (func(int), error) {
	obj := observed.Wrap(rt, &node{}, subscriber.Unassigned)
	for i := 0; i < s.w; i++ {
		for j := 0; j < s.h; j++ {
			v, err := component.New(rt, fmt.Sprintf("n%d.%d", i, j))
			if err != nil {
				return nil, err
			}
			component.Nested(v, obj, "node")
		}
	}
	return func(i int) {
		observed.SetField(obj, func(n *node) *int { return &n.N }, i+1)
	}, nil
}
