package gltech_test

import (
	"errors"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"testing"

	"github.com/soypat/geometry/ms3"
	"github.com/soypat/minigl/glexpr"
	"github.com/soypat/minigl/gltech"
)

func TestTemplateHoles(t *testing.T) {
	tp := gltech.NewTemplate("a %X% b 10%2 %lower% %Y_1% %X% %Z")
	holes := tp.Holes()
	if !slices.Equal(holes, []string{"X", "Y_1"}) {
		t.Fatalf("got holes %q", holes)
	}
	if !tp.HasHole("Y_1") || tp.HasHole("Z") {
		t.Error("HasHole mismatch")
	}
	var sb strings.Builder
	n, err := tp.Execute(&sb, map[string]string{"X": "1", "Y_1": "two"})
	if err != nil {
		t.Fatal(err)
	}
	const want = "a 1 b 10%2 %lower% two 1 %Z"
	if sb.String() != want {
		t.Errorf("got %q, want %q", sb.String(), want)
	}
	if n != len(want) {
		t.Errorf("got n=%d, want %d", n, len(want))
	}
}

func TestTemplateMissingHole(t *testing.T) {
	tp := gltech.NewTemplate("start %A% middle %B% end")
	var sb strings.Builder
	n, err := tp.Execute(&sb, map[string]string{"A": "x"})
	if !errors.Is(err, gltech.ErrMissingHole) {
		t.Fatalf("want ErrMissingHole, got %v", err)
	}
	if n != 0 || sb.Len() != 0 {
		t.Errorf("expected nothing written, got %q", sb.String())
	}
}

func TestBuiltinLayoutsValid(t *testing.T) {
	for _, layout := range []gltech.Layout{gltech.Flat(), gltech.MVP(), gltech.Phong()} {
		err := layout.Validate()
		if err != nil {
			t.Errorf("%s: %v", layout.Name, err)
		}
	}
}

func TestLayoutValidate(t *testing.T) {
	frag := gltech.Stage{
		Template: gltech.NewTemplate("%DECL%\nvoid main() {\n\t%EXPR%\n\tc = %COLOR%;\n}"),
		Slots:    []gltech.SlotSpec{{Slot: gltech.SlotColor, Type: glexpr.Vec4, Hole: "COLOR"}},
	}
	vert := gltech.Stage{
		Template: gltech.NewTemplate("%DECL%\nvoid main() {\n\t%EXPR%\n\tgl_Position = %POSITION%;\n}"),
		Slots:    []gltech.SlotSpec{{Slot: gltech.SlotPosition, Type: glexpr.Vec4, Hole: "POSITION"}},
	}
	tests := []struct {
		desc   string
		mutate func(l *gltech.Layout)
		ok     bool
	}{
		{desc: "valid", mutate: func(l *gltech.Layout) {}, ok: true},
		{desc: "nil template", mutate: func(l *gltech.Layout) { l.Fragment.Template = nil }},
		{desc: "unbound hole", mutate: func(l *gltech.Layout) { l.Vertex.Slots = nil }},
		{desc: "missing hole", mutate: func(l *gltech.Layout) {
			l.Vertex.Slots = append(l.Vertex.Slots, gltech.SlotSpec{Slot: gltech.SlotTexCoord, Type: glexpr.Vec2, Hole: "TEXCOORD"})
		}},
		{desc: "reserved hole", mutate: func(l *gltech.Layout) {
			l.Vertex.Slots = append(l.Vertex.Slots, gltech.SlotSpec{Slot: gltech.SlotTexCoord, Type: glexpr.Vec2, Hole: gltech.HoleExpr})
		}},
		{desc: "duplicate slot", mutate: func(l *gltech.Layout) {
			l.Fragment.Slots = []gltech.SlotSpec{{Slot: gltech.SlotPosition, Type: glexpr.Vec4, Hole: "COLOR"}}
		}},
		{desc: "invalid type", mutate: func(l *gltech.Layout) {
			l.Fragment.Slots = []gltech.SlotSpec{{Slot: gltech.SlotColor, Hole: "COLOR"}}
		}},
	}
	for _, test := range tests {
		t.Run(test.desc, func(t *testing.T) {
			l := gltech.Layout{
				Name:     "test",
				Vertex:   vert,
				Fragment: frag,
			}
			l.Vertex.Slots = slices.Clone(vert.Slots)
			l.Fragment.Slots = slices.Clone(frag.Slots)
			test.mutate(&l)
			err := l.Validate()
			if test.ok && err != nil {
				t.Fatal(err)
			} else if !test.ok && err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

// flatRoots builds a flat technique with color = extend(1.0 + 2.0).
func flatRoots(bld *glexpr.Builder) map[gltech.Slot]*glexpr.Node {
	one := bld.Constant(float32(1))
	two := bld.Constant(float32(2))
	color := bld.Extend(bld.Add(one, two))
	return map[gltech.Slot]*glexpr.Node{
		gltech.SlotColor:    color,
		gltech.SlotPosition: bld.Extend(bld.Attribute(glexpr.Vec3, 0)),
		gltech.SlotTexCoord: bld.Attribute(glexpr.Vec2, 1),
	}
}

func TestAssembleScenarioA(t *testing.T) {
	var bld glexpr.Builder
	roots := flatRoots(&bld)
	prog, err := gltech.Assemble(gltech.Flat(), roots)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"const float _v0 = 1.0;",
		"const float _v1 = 2.0;",
		"float addf(float left, float right) { return left + right; }",
		"float _v2 = addf(_v0, _v1);",
		"vec4 _v3 = vec4(_v2);",
		"oFragColor = _v3;",
	} {
		if !strings.Contains(prog.Fragment, want) {
			t.Errorf("fragment source missing %q:\n%s", want, prog.Fragment)
		}
	}
	if strings.Index(prog.Fragment, "float _v2 = addf") > strings.Index(prog.Fragment, "vec4 _v3 = vec4(_v2)") {
		t.Error("operand statement must precede its user")
	}
	pos := roots[gltech.SlotPosition]
	tex := roots[gltech.SlotTexCoord]
	for _, want := range []string{
		"layout (location = 0) in vec3 ",
		"layout (location = 1) in vec2 " + tex.Name() + ";",
		"gl_Position = " + pos.Name() + ";",
		"vTexCoord = " + tex.Name() + ";",
	} {
		if !strings.Contains(prog.Vertex, want) {
			t.Errorf("vertex source missing %q:\n%s", want, prog.Vertex)
		}
	}
	if strings.Contains(prog.Vertex+prog.Fragment, "%") {
		t.Error("unfilled hole in output")
	}
	if len(prog.Uniforms) != 0 {
		t.Errorf("expected no uniforms, got %v", prog.Uniforms)
	}
}

var nameRE = regexp.MustCompile(`_v[0-9]+`)

// canonical renames generated names in order of first appearance.
func canonical(src string) string {
	names := make(map[string]string)
	return nameRE.ReplaceAllStringFunc(src, func(s string) string {
		if c, ok := names[s]; ok {
			return c
		}
		c := "N" + strconv.Itoa(len(names))
		names[s] = c
		return c
	})
}

func TestAssembleScenarioB(t *testing.T) {
	var bld glexpr.Builder
	var asm gltech.Assembler
	p1, err := asm.Assemble(gltech.Flat(), flatRoots(&bld))
	if err != nil {
		t.Fatal(err)
	}
	p2, err := asm.Assemble(gltech.Flat(), flatRoots(&bld))
	if err != nil {
		t.Fatal(err)
	}
	if p1.Fragment == p2.Fragment || p1.Vertex == p2.Vertex {
		t.Error("independent builds should differ in naming")
	}
	if canonical(p1.Fragment) != canonical(p2.Fragment) {
		t.Errorf("fragment sources not structurally equivalent:\n%s\n%s", p1.Fragment, p2.Fragment)
	}
	if canonical(p1.Vertex) != canonical(p2.Vertex) {
		t.Errorf("vertex sources not structurally equivalent:\n%s\n%s", p1.Vertex, p2.Vertex)
	}
	// Every generated name used in a stage must be declared in that stage.
	for _, src := range []string{p1.Vertex, p1.Fragment, p2.Vertex, p2.Fragment} {
		for _, name := range nameRE.FindAllString(src, -1) {
			if !regexp.MustCompile(`(float|vec2|vec3|vec4|mat4) ` + name + `\b`).MatchString(src) {
				t.Errorf("name %s used but not declared:\n%s", name, src)
			}
		}
	}
}

func TestAssembleSharedUniform(t *testing.T) {
	var bld glexpr.Builder
	shared := bld.Uniform(glexpr.Mat4)
	other := bld.Uniform(glexpr.Mat4)
	view := bld.Mul(shared, other)
	proj := bld.Uniform(glexpr.Mat4)
	sampler := bld.Uniform(glexpr.Sampler2D)
	color := bld.Texture(sampler, bld.Named(glexpr.Vec2, gltech.VaryingTexCoord))
	prog, err := gltech.NewMVP(shared, view, proj, bld.Named(glexpr.Vec2, gltech.AttribTexCoord), color)
	if err != nil {
		t.Fatal(err)
	}
	decl := "uniform mat4 " + shared.Name() + ";"
	if c := strings.Count(prog.Vertex, decl); c != 1 {
		t.Fatalf("shared uniform declared %d times:\n%s", c, prog.Vertex)
	}
	// First encounter is the model slot, before the other view operand.
	if strings.Index(prog.Vertex, decl) > strings.Index(prog.Vertex, "uniform mat4 "+other.Name()+";") {
		t.Error("shared uniform not declared at first encounter")
	}
	if !strings.Contains(prog.Vertex, "mat4 mvp = "+proj.Name()+" * "+view.Name()+" * "+shared.Name()+";") {
		t.Errorf("bad mvp wiring:\n%s", prog.Vertex)
	}
	if !strings.Contains(prog.Fragment, "vec4 "+color.Name()+" = texture("+sampler.Name()+", vTexCoord);") {
		t.Errorf("bad texture statement:\n%s", prog.Fragment)
	}
	want := []gltech.UniformDecl{
		{Name: shared.Name(), Type: glexpr.Mat4},
		{Name: other.Name(), Type: glexpr.Mat4},
		{Name: proj.Name(), Type: glexpr.Mat4},
		{Name: sampler.Name(), Type: glexpr.Sampler2D},
	}
	if !slices.Equal(prog.Uniforms, want) {
		t.Errorf("got uniforms %v, want %v", prog.Uniforms, want)
	}
	u, ok := prog.Uniform(sampler.Name())
	if !ok || u.Type != glexpr.Sampler2D {
		t.Error("sampler uniform lookup failed")
	}
	if _, ok := prog.Uniform("nope"); ok {
		t.Error("found nonexistent uniform")
	}
}

func TestAssembleSharedStatement(t *testing.T) {
	var bld glexpr.Builder
	m := bld.Mul(bld.Uniform(glexpr.Mat4), bld.Uniform(glexpr.Mat4))
	tex := bld.Named(glexpr.Vec2, gltech.AttribTexCoord)
	color := bld.Constant(glexpr.V4{X: 1, W: 1})
	prog, err := gltech.NewMVP(m, m, m, tex, color)
	if err != nil {
		t.Fatal(err)
	}
	stmt := "mat4 " + m.Name() + " = mulm4("
	if c := strings.Count(prog.Vertex, stmt); c != 1 {
		t.Errorf("statement emitted %d times:\n%s", c, prog.Vertex)
	}
	if c := strings.Count(prog.Vertex, "mat4 mulm4("); c != 1 {
		t.Errorf("helper declared %d times", c)
	}
	if len(prog.Uniforms) != 2 {
		t.Errorf("want 2 uniforms, got %v", prog.Uniforms)
	}
	if !strings.Contains(prog.Fragment, "const vec4 "+color.Name()+" = vec4(1.0, 0.0, 0.0, 1.0);") {
		t.Errorf("bad color constant:\n%s", prog.Fragment)
	}
}

func TestAssembleMissingSlot(t *testing.T) {
	var bld glexpr.Builder
	roots := flatRoots(&bld)
	delete(roots, gltech.SlotColor)
	prog, err := gltech.Assemble(gltech.Flat(), roots)
	if !errors.Is(err, gltech.ErrMissingSlot) {
		t.Fatalf("want ErrMissingSlot, got %v", err)
	}
	if prog.Vertex != "" || prog.Fragment != "" || prog.Uniforms != nil {
		t.Error("expected no output on missing slot")
	}
}

func TestAssembleSlotTypeMismatch(t *testing.T) {
	var bld glexpr.Builder
	roots := flatRoots(&bld)
	roots[gltech.SlotColor] = bld.Constant(float32(1))
	prog, err := gltech.Assemble(gltech.Flat(), roots)
	if !errors.Is(err, glexpr.ErrTypeMismatch) {
		t.Fatalf("want ErrTypeMismatch, got %v", err)
	}
	if prog.Vertex != "" || prog.Fragment != "" {
		t.Error("expected no output on type mismatch")
	}
}

func TestDedup(t *testing.T) {
	lines := []string{"a", "b", "a", "c", "b", "const float _v0 = 1.0;", "const float _v1 = 1.0;"}
	got := gltech.Dedup(lines)
	want := []string{"a", "b", "c", "const float _v0 = 1.0;", "const float _v1 = 1.0;"}
	if !slices.Equal(got, want) {
		t.Errorf("got %q, want %q", got, want)
	}
	if lines[2] != "a" {
		t.Error("Dedup modified its input")
	}
}

func TestAssemblePhong(t *testing.T) {
	var bld glexpr.Builder
	model := bld.Uniform(glexpr.Mat4)
	view := bld.Uniform(glexpr.Mat4)
	proj := bld.Uniform(glexpr.Mat4)
	eye := bld.Uniform(glexpr.Vec3)
	sampler := bld.Uniform(glexpr.Sampler2D)
	diffuse := bld.Texture(sampler, bld.Named(glexpr.Vec2, gltech.VaryingTexCoord))
	white := bld.Constant(ms3.Vec{X: 1, Y: 1, Z: 1})
	shine := bld.Uniform(glexpr.Float)
	opaque := bld.Constant(float32(1))
	prog, err := gltech.NewPhong(model, view, proj, eye, diffuse, white, white, white, shine, opaque)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"layout (location = 2) in vec3 aNormal;",
		"vec4 worldPos = " + model.Name() + " * vec4(aPosition, 1.0);",
		"vNormal = transpose(inverse(mat3(" + model.Name() + "))) * aNormal;",
		"gl_Position = " + proj.Name() + " * " + view.Name() + " * worldPos;",
		"uniform mat4 " + model.Name() + ";",
	} {
		if !strings.Contains(prog.Vertex, want) {
			t.Errorf("vertex source missing %q:\n%s", want, prog.Vertex)
		}
	}
	for _, want := range []string{
		"struct Light {",
		"uniform Light uLights[MAX_LIGHTS];",
		"PhongMaterial material = PhongMaterial(" + white.Name() + ", " + white.Name() + ", " + white.Name() + ", " + shine.Name() + ", " + opaque.Name() + ");",
		"vec3 viewDir = normalize(" + eye.Name() + " - fragPosition);",
		"color *= " + diffuse.Name() + ".rgb;",
		"vec4 " + diffuse.Name() + " = texture(" + sampler.Name() + ", vTexCoord);",
	} {
		if !strings.Contains(prog.Fragment, want) {
			t.Errorf("fragment source missing %q:\n%s", want, prog.Fragment)
		}
	}
	if c := strings.Count(prog.Fragment, "const vec3 "+white.Name()); c != 1 {
		t.Errorf("material constant declared %d times", c)
	}
	if strings.Contains(prog.Vertex+prog.Fragment, "%") {
		t.Error("unfilled hole in output")
	}
	want := []gltech.UniformDecl{
		{Name: model.Name(), Type: glexpr.Mat4},
		{Name: view.Name(), Type: glexpr.Mat4},
		{Name: proj.Name(), Type: glexpr.Mat4},
		{Name: eye.Name(), Type: glexpr.Vec3},
		{Name: sampler.Name(), Type: glexpr.Sampler2D},
		{Name: shine.Name(), Type: glexpr.Float},
	}
	if !slices.Equal(prog.Uniforms, want) {
		t.Errorf("got uniforms %v, want %v", prog.Uniforms, want)
	}

	_, err = gltech.NewPhong(model, view, proj, eye, diffuse, white, white, white, shine, nil)
	if !errors.Is(err, gltech.ErrMissingSlot) {
		t.Errorf("want ErrMissingSlot, got %v", err)
	}
	_, err = gltech.NewPhong(model, view, proj, eye, diffuse, white, white, white, shine, white)
	if !errors.Is(err, glexpr.ErrTypeMismatch) {
		t.Errorf("want ErrTypeMismatch for vec3 transparency, got %v", err)
	}
}

func TestAssembleDiscard(t *testing.T) {
	var bld glexpr.Builder
	roots := flatRoots(&bld)
	alpha := bld.Uniform(glexpr.Float)
	color := bld.Add(bld.SetComponent(roots[gltech.SlotColor], 'w', alpha), bld.Discard())
	roots[gltech.SlotColor] = color
	prog, err := gltech.Assemble(gltech.Flat(), roots)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"vec4 expr_set_w(vec4 v, float f) { return vec4(v.x, v.y, v.z, f); }",
		"vec4 expr_discard() { discard; return vec4(1.0); }",
	} {
		if !strings.Contains(prog.Fragment, want) {
			t.Errorf("fragment source missing %q:\n%s", want, prog.Fragment)
		}
	}
	if strings.Contains(prog.Vertex, "discard") {
		t.Errorf("discard leaked into vertex stage:\n%s", prog.Vertex)
	}

	roots = flatRoots(&bld)
	roots[gltech.SlotPosition] = bld.Mul(roots[gltech.SlotPosition], bld.Discard())
	prog, err = gltech.Assemble(gltech.Flat(), roots)
	if !errors.Is(err, gltech.ErrVertexDiscard) {
		t.Fatalf("want ErrVertexDiscard, got %v", err)
	}
	if prog.Vertex != "" || prog.Fragment != "" {
		t.Error("expected no output on vertex discard")
	}
}

func TestLightValues(t *testing.T) {
	red := ms3.Vec{X: 1}
	lights := []gltech.Light{
		gltech.DirectionalLight(ms3.Vec{Y: -1}, red),
		gltech.PointLight(ms3.Vec{X: 1, Y: 2, Z: 3}, red, 10),
		gltech.PointLight(ms3.Vec{Z: 5}, red, 100),
	}
	vals, err := gltech.LightValues(nil, lights)
	if err != nil {
		t.Fatal(err)
	}
	if len(vals) != 5*len(lights)+2 {
		t.Fatalf("got %d values", len(vals))
	}
	got := make(map[string]any)
	for _, v := range vals {
		got[v.Name] = v.Value
	}
	for _, test := range []struct {
		name string
		want any
	}{
		// Point lights first.
		{name: "uLights[0].vector", want: ms3.Vec{X: 1, Y: 2, Z: 3}},
		{name: "uLights[0].attenConstant", want: float32(1)},
		{name: "uLights[0].attenLinear", want: float32(0.45)},
		{name: "uLights[0].attenQuadratic", want: float32(0.75)},
		{name: "uLights[1].vector", want: ms3.Vec{Z: 5}},
		{name: "uLights[2].vector", want: ms3.Vec{Y: -1}},
		{name: "uLights[2].color", want: red},
		{name: "uLights[2].attenLinear", want: float32(0)},
		{name: "uLightsPointCnt", want: int32(2)},
		{name: "uLightsDirCnt", want: int32(1)},
	} {
		if got[test.name] != test.want {
			t.Errorf("%s: got %v, want %v", test.name, got[test.name], test.want)
		}
	}

	_, err = gltech.LightValues(nil, make([]gltech.Light, gltech.MaxLights+1))
	if err == nil {
		t.Error("expected error for too many lights")
	}
	vals, err = gltech.LightValues(nil, nil)
	if err != nil || len(vals) != 2 || vals[0].Value != int32(0) {
		t.Errorf("no lights: got %v, %v", vals, err)
	}
}
