// Command vertexdemo runs the vertex stage over generated UI geometry and
// prints a few transformed vertices.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math/rand/v2"
	"os"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/schollz/progressbar/v3"

	"github.com/gogpu/vertex"
	"github.com/gogpu/vertex/internal/config"
)

func main() {
	var (
		configPath = flag.String("config", "", "YAML config file")
		verbose    = flag.Bool("v", false, "debug logging")
		quiet      = flag.Bool("q", false, "hide the progress bar")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *verbose {
		vertex.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	d := cfg.DrawData()
	r := rand.New(rand.NewPCG(uint64(cfg.Seed), 0)) //nolint:gosec // demo geometry
	for range cfg.Batches {
		d.Lists = append(d.Lists, randomList(r, d.Display(), cfg.Quads, cfg.ModelTransform()))
	}

	p := vertex.NewProcessor(cfg.Options()...)
	defer p.Close()

	if err := run(context.Background(), p, d, cfg, *quiet); err != nil {
		log.Fatalf("Demo failed: %v", err)
	}
}

func run(ctx context.Context, p *vertex.Processor, d *vertex.DrawData, cfg config.Config, quiet bool) error {
	layout := cfg.VertexLayout()
	if err := layout.Validate(); err != nil {
		return err
	}
	vb, ib := vertex.NewQuadBuffers(layout, cfg.Quads)

	var pb *progressbar.ProgressBar
	if !quiet {
		pb = progressbar.Default(int64(len(d.Lists)), "transforming")
	}

	start := time.Now()
	proj := d.Projection()
	var first []vertex.Output
	total := 0
	for i := range d.Lists {
		list := &d.Lists[i]

		out, err := p.Process(ctx, vertex.NewBatch(proj, list.Vertices))
		if err != nil {
			return err
		}
		if i == 0 {
			first = out
		}
		total += len(out)

		vb.Reset()
		ib.Reset()
		if err := vb.Append(list.Vertices); err != nil {
			return fmt.Errorf("list %d: %w", i, err)
		}
		if err := ib.Append(list.Indices); err != nil {
			return fmt.Errorf("list %d: %w", i, err)
		}

		if pb != nil {
			_ = pb.Add(1)
		}
	}
	if pb != nil {
		_ = pb.Close()
	}
	elapsed := time.Since(start)

	draws := 0
	for range d.Params() {
		draws++
	}

	fbW, fbH := d.Framebuffer()
	fmt.Printf("%d vertices in %d lists, %d draws, %v (framebuffer %vx%v, %d bytes/vertex)\n",
		total, len(d.Lists), draws, elapsed.Round(time.Microsecond), fbW, fbH, layout.Stride)

	for i := range min(cfg.Print, len(first)) {
		o := first[i]
		ndc, ok := o.NDC()
		fmt.Printf("  %4d  pos %v  clip %v  ndc %v (visible=%v)\n",
			i, d.Lists[0].Vertices[i].Position, o.ClipPosition, ndc, ok)
	}
	return nil
}

// randomList emits quads quads inside the display, each moved by model, and
// one draw command covering the display.
func randomList(r *rand.Rand, display vertex.Rect, quads int, model vertex.Transform) vertex.DrawList {
	list := vertex.DrawList{
		Vertices: make([]vertex.Vertex, 0, quads*4),
		Indices:  make([]uint16, 0, quads*6),
	}
	w, h := display.Width(), display.Height()
	for q := range quads {
		x := display.Left + r.Float32()*w
		y := display.Top + r.Float32()*h
		size := 4 + r.Float32()*28
		color := mgl32.Vec4{r.Float32(), r.Float32(), r.Float32(), 1}

		corners := [4]mgl32.Vec2{{x, y}, {x + size, y}, {x + size, y + size}, {x, y + size}}
		uvs := [4]mgl32.Vec2{{0, 0}, {1, 0}, {1, 1}, {0, 1}}
		for i, c := range corners {
			pos := model.Apply(vertex.Lift(c))
			list.Vertices = append(list.Vertices, vertex.Vertex{
				Position: mgl32.Vec2{pos[0], pos[1]},
				TexCoord: uvs[i],
				Color:    color,
			})
		}
		base := uint16(q * 4) //nolint:gosec // quads are capped to the 16-bit range
		list.Indices = append(list.Indices, base, base+1, base+2, base, base+2, base+3)
	}
	list.Commands = []vertex.DrawCmd{{
		Kind:     vertex.CmdElements,
		Count:    len(list.Indices),
		ClipRect: mgl32.Vec4{display.Left, display.Top, display.Right, display.Bottom},
	}}
	return list
}
