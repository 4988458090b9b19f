package prefabs

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/duckpond/common"
	"github.com/milk9111/duckpond/obj"
	"gopkg.in/yaml.v3"
)

const (
	ShapeBox    = "box"
	ShapeCircle = "circle"
)

var ErrUnknownShape = errors.New("prefabs: unknown obstacle shape")

// defaulter is implemented by specs that start from non-zero values, so keys
// missing from the file keep their defaults.
type defaulter interface {
	SetDefaults()
}

func LoadSpec[T any](src Source, filename string) (T, error) {
	var zero T
	data, err := src.Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	var spec T
	if d, ok := any(&spec).(defaulter); ok {
		d.SetDefaults()
	}
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

type Vec3Spec struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

func (v Vec3Spec) Vec3() mgl64.Vec3 {
	return mgl64.Vec3{v.X, v.Y, v.Z}
}

func vec3Spec(v mgl64.Vec3) Vec3Spec {
	return Vec3Spec{X: v.X(), Y: v.Y(), Z: v.Z()}
}

// TransformSpec places something on the ground. Yaw is in degrees, 0 facing +z.
type TransformSpec struct {
	X   float64 `yaml:"x"`
	Y   float64 `yaml:"y"`
	Z   float64 `yaml:"z"`
	Yaw float64 `yaml:"yaw"`
}

func (t TransformSpec) Pose() obj.Pose {
	return obj.NewPose(mgl64.Vec3{t.X, t.Y, t.Z}, common.FromYaw(mgl64.DegToRad(t.Yaw)))
}

type DuckSpec struct {
	Name          string   `yaml:"name"`
	SightDistance float64  `yaml:"sight_distance"`
	SensorOffset  Vec3Spec `yaml:"sensor_offset"`
	WanderTime    float64  `yaml:"wander_time"`
	ProbeDistance float64  `yaml:"probe_distance"`
	ProbeRadius   float64  `yaml:"probe_radius"`
	StopDistance  float64  `yaml:"stop_distance"`
	RotateSpeed   float64  `yaml:"rotate_speed"`
	WalkSpeed     float64  `yaml:"walk_speed"`
}

func (s *DuckSpec) SetDefaults() {
	d := obj.DefaultDuckConfig()
	*s = DuckSpec{
		Name:          "duck",
		SightDistance: d.SightDistance,
		SensorOffset:  vec3Spec(d.SensorOffset),
		WanderTime:    d.WanderTime,
		ProbeDistance: d.ProbeDistance,
		ProbeRadius:   d.ProbeRadius,
		StopDistance:  d.StopDistance,
		RotateSpeed:   d.RotateSpeed,
		WalkSpeed:     d.WalkSpeed,
	}
}

func (s DuckSpec) Config() obj.DuckConfig {
	return obj.DuckConfig{
		SightDistance: s.SightDistance,
		SensorOffset:  s.SensorOffset.Vec3(),
		WanderTime:    s.WanderTime,
		ProbeDistance: s.ProbeDistance,
		ProbeRadius:   s.ProbeRadius,
		StopDistance:  s.StopDistance,
		RotateSpeed:   s.RotateSpeed,
		WalkSpeed:     s.WalkSpeed,
	}
}

func LoadDuckSpec(src Source, filename string) (*DuckSpec, error) {
	spec, err := LoadSpec[DuckSpec](src, filename)
	if err != nil {
		return nil, err
	}
	if err := spec.Config().Validate(); err != nil {
		return nil, fmt.Errorf("prefabs: %s: %w", filename, err)
	}
	return &spec, nil
}

type PlayerSpec struct {
	Name              string     `yaml:"name"`
	CenterOffset      Vec3Spec   `yaml:"center_offset"`
	ForwardSpeed      float64    `yaml:"forward_speed"`
	TurnSpeed         float64    `yaml:"turn_speed"`
	MaxGroundDistance float64    `yaml:"max_ground_distance"`
	Radius            float64    `yaml:"radius"`
	Height            float64    `yaml:"height"`
	Color             *YAMLColor `yaml:"color"`
}

func (s *PlayerSpec) SetDefaults() {
	d := obj.DefaultPlayerConfig()
	*s = PlayerSpec{
		Name:              "player",
		CenterOffset:      vec3Spec(d.CenterOffset),
		ForwardSpeed:      d.ForwardSpeed,
		TurnSpeed:         d.TurnSpeed,
		MaxGroundDistance: d.MaxGroundDistance,
		Radius:            d.Radius,
		Height:            d.Height,
	}
}

func (s PlayerSpec) Config() obj.PlayerConfig {
	return obj.PlayerConfig{
		CenterOffset:      s.CenterOffset.Vec3(),
		ForwardSpeed:      s.ForwardSpeed,
		TurnSpeed:         s.TurnSpeed,
		MaxGroundDistance: s.MaxGroundDistance,
		Radius:            s.Radius,
		Height:            s.Height,
	}
}

func LoadPlayerSpec(src Source, filename string) (*PlayerSpec, error) {
	spec, err := LoadSpec[PlayerSpec](src, filename)
	if err != nil {
		return nil, err
	}
	if err := spec.Config().Validate(); err != nil {
		return nil, fmt.Errorf("prefabs: %s: %w", filename, err)
	}
	return &spec, nil
}

// ObstacleSpec is a footprint on the ground extruded from MinY to MaxY.
// Boxes use Width (x) and Depth (z); circles use Radius.
type ObstacleSpec struct {
	Name   string     `yaml:"name"`
	Shape  string     `yaml:"shape"`
	X      float64    `yaml:"x"`
	Z      float64    `yaml:"z"`
	Width  float64    `yaml:"width"`
	Depth  float64    `yaml:"depth"`
	Radius float64    `yaml:"radius"`
	MinY   float64    `yaml:"min_y"`
	MaxY   float64    `yaml:"max_y"`
	Color  *YAMLColor `yaml:"color"`
}

func (o ObstacleSpec) Validate() error {
	switch o.Shape {
	case ShapeBox:
		if o.Width <= 0 || o.Depth <= 0 {
			return fmt.Errorf("prefabs: obstacle %q: box needs positive width and depth", o.Name)
		}
	case ShapeCircle:
		if o.Radius <= 0 {
			return fmt.Errorf("prefabs: obstacle %q: circle needs a positive radius", o.Name)
		}
	default:
		return fmt.Errorf("%w: %q (obstacle %q)", ErrUnknownShape, o.Shape, o.Name)
	}
	if o.MaxY <= o.MinY {
		return fmt.Errorf("prefabs: obstacle %q: max_y must be above min_y", o.Name)
	}
	return nil
}

type SpawnSpec struct {
	Name      string        `yaml:"name"`
	Transform TransformSpec `yaml:"transform"`
}

type BoundsSpec struct {
	MinX float64 `yaml:"min_x"`
	MinZ float64 `yaml:"min_z"`
	MaxX float64 `yaml:"max_x"`
	MaxZ float64 `yaml:"max_z"`
}

type SceneSpec struct {
	Name      string         `yaml:"name"`
	Bounds    BoundsSpec     `yaml:"bounds"`
	Obstacles []ObstacleSpec `yaml:"obstacles"`
	Ducks     []SpawnSpec    `yaml:"ducks"`
	Player    SpawnSpec      `yaml:"player"`
}

func (s SceneSpec) Validate() error {
	for _, o := range s.Obstacles {
		if err := o.Validate(); err != nil {
			return err
		}
	}
	seen := make(map[string]bool, len(s.Ducks))
	for i, d := range s.Ducks {
		if d.Name == "" {
			return fmt.Errorf("prefabs: duck %d has no name", i)
		}
		if seen[d.Name] {
			return fmt.Errorf("prefabs: duplicate duck name %q", d.Name)
		}
		seen[d.Name] = true
	}
	return nil
}

func LoadSceneSpec(src Source, filename string) (*SceneSpec, error) {
	spec, err := LoadSpec[SceneSpec](src, filename)
	if err != nil {
		return nil, err
	}
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("prefabs: %s: %w", filename, err)
	}
	return &spec, nil
}

type YAMLColor struct {
	color.Color
}

func (c *YAMLColor) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("color must be a string")
	}

	s := strings.TrimPrefix(value.Value, "#")

	if len(s) != 6 && len(s) != 8 {
		return fmt.Errorf("invalid color format: %s", value.Value)
	}

	parse := func(start int) (uint8, error) {
		v, err := strconv.ParseUint(s[start:start+2], 16, 8)
		return uint8(v), err
	}

	r, err := parse(0)
	if err != nil {
		return err
	}
	g, err := parse(2)
	if err != nil {
		return err
	}
	b, err := parse(4)
	if err != nil {
		return err
	}

	a := uint8(255)
	if len(s) == 8 {
		a, err = parse(6)
		if err != nil {
			return err
		}
	}

	c.Color = color.NRGBA{R: r, G: g, B: b, A: a}
	return nil
}

// ColorOr returns the parsed color, or fallback when none was given.
func (c *YAMLColor) ColorOr(fallback color.Color) color.Color {
	if c == nil || c.Color == nil {
		return fallback
	}
	return c.Color
}
