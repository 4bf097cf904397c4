// Package config loads the demo's YAML configuration.
package config

import (
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"

	"github.com/gogpu/vertex"
)

// Layout names accepted in the layout field.
const (
	LayoutStandard = "standard"
	LayoutPacked   = "packed"
)

// Config describes one demo run.
type Config struct {
	Display Display `yaml:"display"`
	Model   Model   `yaml:"model"`

	// Layout selects the vertex buffer layout: "standard" or "packed".
	Layout string `yaml:"layout"`

	// Workers and Chunk tune the processor. Zero picks the defaults.
	Workers int `yaml:"workers"`
	Chunk   int `yaml:"chunk"`

	// Batches is the number of draw lists; each holds Quads quads.
	Batches int   `yaml:"batches"`
	Quads   int   `yaml:"quads"`
	Seed    int64 `yaml:"seed"`

	// Print is how many transformed vertices of the first batch to print.
	Print int `yaml:"print"`
}

// Display is the host's display rectangle.
type Display struct {
	Pos              [2]float32 `yaml:"pos"`
	Size             [2]float32 `yaml:"size"`
	FramebufferScale [2]float32 `yaml:"framebuffer_scale"`
}

// Model is applied to every generated vertex before the projection.
type Model struct {
	Translate [2]float32 `yaml:"translate"`
	Rotate    float32    `yaml:"rotate"`
	Scale     [2]float32 `yaml:"scale"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	var c Config
	c.normalize()
	return c
}

// Load reads and parses the file at path. An empty path returns Default.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read %s: %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes YAML, fills unset fields with defaults and validates.
func Parse(data []byte) (Config, error) {
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, err
	}
	c.normalize()
	if err := c.validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c *Config) normalize() {
	if c.Layout == "" {
		c.Layout = LayoutPacked
	}
	if c.Display.Size == [2]float32{} {
		c.Display.Size = [2]float32{1280, 720}
	}
	if c.Display.FramebufferScale == [2]float32{} {
		c.Display.FramebufferScale = [2]float32{1, 1}
	}
	if c.Model.Scale == [2]float32{} {
		c.Model.Scale = [2]float32{1, 1}
	}
	if c.Batches <= 0 {
		c.Batches = 8
	}
	if c.Quads <= 0 {
		c.Quads = vertex.DefaultQuadCapacity
	}
	if c.Seed == 0 {
		c.Seed = 1
	}
	if c.Print < 0 {
		c.Print = 0
	}
}

func (c *Config) validate() error {
	switch c.Layout {
	case LayoutStandard, LayoutPacked:
	default:
		return fmt.Errorf("unknown layout %q", c.Layout)
	}
	// 16-bit indices address at most 65536 vertices per list.
	if c.Quads*4 > 1<<16 {
		return fmt.Errorf("quads %d exceeds the 16-bit index range", c.Quads)
	}
	return nil
}

// VertexLayout returns the selected vertex layout.
func (c Config) VertexLayout() vertex.Layout {
	if c.Layout == LayoutStandard {
		return vertex.StandardLayout()
	}
	return vertex.PackedLayout()
}

// ModelTransform composes translate, rotate and scale, applied to a point
// in the reverse order.
func (c Config) ModelTransform() vertex.Transform {
	m := c.Model
	return vertex.Compose(
		vertex.Translate(m.Translate[0], m.Translate[1]),
		vertex.Rotate(m.Rotate),
		vertex.Scale(m.Scale[0], m.Scale[1], 1, 1),
	)
}

// DrawData returns an empty frame for the configured display.
func (c Config) DrawData() *vertex.DrawData {
	return &vertex.DrawData{
		DisplayPos:       mgl32.Vec2(c.Display.Pos),
		DisplaySize:      mgl32.Vec2(c.Display.Size),
		FramebufferScale: mgl32.Vec2(c.Display.FramebufferScale),
	}
}

// Options returns the processor options for the configured tuning.
func (c Config) Options() []vertex.Option {
	return []vertex.Option{
		vertex.WithWorkers(c.Workers),
		vertex.WithChunkSize(c.Chunk),
	}
}
