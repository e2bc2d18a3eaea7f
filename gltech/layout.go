package gltech

import (
	"embed"
	"errors"
	"fmt"

	"github.com/soypat/minigl/glexpr"
)

// Slot names a root position of a technique that must be filled with a
// [glexpr.Node] before assembly.
type Slot string

// Slots used by the built-in layouts.
const (
	SlotPosition   Slot = "position"
	SlotTexCoord   Slot = "texCoord"
	SlotColor      Slot = "color"
	SlotModel      Slot = "model"
	SlotView       Slot = "view"
	SlotProjection Slot = "projection"

	SlotEye          Slot = "eye"
	SlotDiffuse      Slot = "diffuse"
	SlotMatAmbient   Slot = "matAmbient"
	SlotMatDiffuse   Slot = "matDiffuse"
	SlotMatSpecular  Slot = "matSpecular"
	SlotShine        Slot = "shine"
	SlotTransparency Slot = "transparency"
)

// SlotSpec describes a slot of a shader stage: the type its root must have
// and the template hole that receives the root's name.
type SlotSpec struct {
	Slot Slot
	Type glexpr.Type
	Hole string
}

// Stage is a shader compilation unit: a template and its ordered slots.
// Slot order determines the order in which declarations and statements
// of the roots are emitted.
type Stage struct {
	Template *Template
	Slots    []SlotSpec
}

// Layout describes a technique: the vertex and fragment stages it is made of.
type Layout struct {
	Name     string
	Vertex   Stage
	Fragment Stage
}

// Validate checks that every template hole is either reserved or belongs to
// exactly one slot and that every slot hole exists in its template.
func (l Layout) Validate() error {
	if l.Vertex.Template == nil || l.Fragment.Template == nil {
		return errors.New("layout " + l.Name + ": nil stage template")
	}
	seen := make(map[Slot]bool)
	for _, stage := range [2]struct {
		name string
		Stage
	}{{"vertex", l.Vertex}, {"fragment", l.Fragment}} {
		holes := make(map[string]bool)
		for _, spec := range stage.Slots {
			switch {
			case spec.Slot == "":
				return fmt.Errorf("layout %s: %s stage has unnamed slot", l.Name, stage.name)
			case seen[spec.Slot]:
				return fmt.Errorf("layout %s: duplicate slot %q", l.Name, spec.Slot)
			case !spec.Type.IsValid():
				return fmt.Errorf("layout %s: slot %q has invalid type", l.Name, spec.Slot)
			case spec.Hole == HoleDecl || spec.Hole == HoleExpr:
				return fmt.Errorf("layout %s: slot %q uses reserved hole %%%s%%", l.Name, spec.Slot, spec.Hole)
			case !stage.Template.HasHole(spec.Hole):
				return fmt.Errorf("layout %s: %s template has no hole %%%s%% for slot %q", l.Name, stage.name, spec.Hole, spec.Slot)
			}
			seen[spec.Slot] = true
			holes[spec.Hole] = true
		}
		for _, h := range stage.Template.Holes() {
			if h != HoleDecl && h != HoleExpr && !holes[h] {
				return fmt.Errorf("layout %s: %s template hole %%%s%% not bound to a slot", l.Name, stage.name, h)
			}
		}
	}
	return nil
}

//go:embed templates/*.tmpl
var templateFS embed.FS

func mustTemplate(name string) *Template {
	src, err := templateFS.ReadFile("templates/" + name)
	if err != nil {
		panic(err)
	}
	return NewTemplate(string(src))
}

var (
	flatVert = mustTemplate("flat.vert.tmpl")
	flatFrag = mustTemplate("flat.frag.tmpl")
	mvpVert  = mustTemplate("mvp.vert.tmpl")

	phongVert = mustTemplate("phong.vert.tmpl")
	phongFrag = mustTemplate("phong.frag.tmpl")
)

// Flat returns the layout of the flat technique. The vertex stage computes
// the clip space position and the texture coordinate passed on to the
// fragment stage as vTexCoord. The fragment stage computes the color.
//
//	vertex:   position vec4, texCoord vec2
//	fragment: color vec4
func Flat() Layout {
	return Layout{
		Name: "flat",
		Vertex: Stage{
			Template: flatVert,
			Slots: []SlotSpec{
				{Slot: SlotPosition, Type: glexpr.Vec4, Hole: "POSITION"},
				{Slot: SlotTexCoord, Type: glexpr.Vec2, Hole: "TEXCOORD"},
			},
		},
		Fragment: Stage{
			Template: flatFrag,
			Slots: []SlotSpec{
				{Slot: SlotColor, Type: glexpr.Vec4, Hole: "COLOR"},
			},
		},
	}
}

// MVP returns the layout of a technique transforming the vertex attribute
// aPosition (location 0) by model, view and projection matrices. The
// template also declares aTexCoord (location 1) which texCoord roots may
// reference with [glexpr.Builder.Named]. The fragment stage computes the
// color and may read the interpolated texture coordinate as vTexCoord.
//
//	vertex:   model mat4, view mat4, projection mat4, texCoord vec2
//	fragment: color vec4
func MVP() Layout {
	return Layout{
		Name: "mvp",
		Vertex: Stage{
			Template: mvpVert,
			Slots: []SlotSpec{
				{Slot: SlotModel, Type: glexpr.Mat4, Hole: "MODEL"},
				{Slot: SlotView, Type: glexpr.Mat4, Hole: "VIEW"},
				{Slot: SlotProjection, Type: glexpr.Mat4, Hole: "PROJECTION"},
				{Slot: SlotTexCoord, Type: glexpr.Vec2, Hole: "TEXCOORD"},
			},
		},
		Fragment: Stage{
			Template: flatFrag,
			Slots: []SlotSpec{
				{Slot: SlotColor, Type: glexpr.Vec4, Hole: "COLOR"},
			},
		},
	}
}

// Phong returns the layout of a Blinn-Phong lit technique. The vertex stage
// reads aPosition (location 0), aTexCoord (location 1) and aNormal
// (location 2) and transforms them by the model, view and projection
// matrices. The fragment stage lights the interpolated surface with the
// material slots and up to [MaxLights] lights set with [LightValues].
// The diffuse color multiplies the lit color and may sample textures at
// vTexCoord.
//
//	vertex:   model mat4, view mat4, projection mat4
//	fragment: eye vec3, diffuse vec4, matAmbient vec3, matDiffuse vec3,
//	          matSpecular vec3, shine float, transparency float
func Phong() Layout {
	return Layout{
		Name: "phong",
		Vertex: Stage{
			Template: phongVert,
			Slots: []SlotSpec{
				{Slot: SlotModel, Type: glexpr.Mat4, Hole: "MODEL"},
				{Slot: SlotView, Type: glexpr.Mat4, Hole: "VIEW"},
				{Slot: SlotProjection, Type: glexpr.Mat4, Hole: "PROJECTION"},
			},
		},
		Fragment: Stage{
			Template: phongFrag,
			Slots: []SlotSpec{
				{Slot: SlotEye, Type: glexpr.Vec3, Hole: "EYE"},
				{Slot: SlotDiffuse, Type: glexpr.Vec4, Hole: "DIFFUSE"},
				{Slot: SlotMatAmbient, Type: glexpr.Vec3, Hole: "MAT_AMBIENT"},
				{Slot: SlotMatDiffuse, Type: glexpr.Vec3, Hole: "MAT_DIFFUSE"},
				{Slot: SlotMatSpecular, Type: glexpr.Vec3, Hole: "MAT_SPECULAR"},
				{Slot: SlotShine, Type: glexpr.Float, Hole: "SHINE"},
				{Slot: SlotTransparency, Type: glexpr.Float, Hole: "TRANSPARENCY"},
			},
		},
	}
}

// Identifiers declared by the built-in templates.
const (
	// VaryingTexCoord is the interpolated texture coordinate available to fragment stages.
	VaryingTexCoord = "vTexCoord"
	// AttribPosition is the vec3 vertex position at location 0 of the MVP and Phong layouts.
	AttribPosition = "aPosition"
	// AttribTexCoord is the vec2 texture coordinate at location 1 of the MVP and Phong layouts.
	AttribTexCoord = "aTexCoord"
	// AttribNormal is the vec3 vertex normal at location 2 of the Phong layout.
	AttribNormal = "aNormal"
	// VaryingPosition is the vec4 world space position available to Phong fragment stages.
	VaryingPosition = "vPosition"
	// VaryingNormal is the vec3 world space normal available to Phong fragment stages.
	VaryingNormal = "vNormal"
)
