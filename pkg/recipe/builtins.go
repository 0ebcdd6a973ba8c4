package recipe

import (
	"fmt"

	"github.com/chazu/colliderbake/pkg/bake"
	"github.com/chazu/colliderbake/pkg/scene"
	v3 "github.com/deadsy/sdfx/vec/v3"
	zygo "github.com/glycerine/zygomys/zygo"
)

// builtin is the zygomys user function signature.
type builtin = func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error)

// registerBuiltins installs the recipe DSL into a zygomys environment.
// Solids and parts are added to r.Scene and bake forms append to r.Jobs.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, r *Recipe) {
	fns := map[string]builtin{
		"vec3":          vec3Builtin,
		"box":           boxBuiltin,
		"sphere":        sphereBuiltin,
		"cylinder":      cylinderBuiltin,
		"union":         booleanBuiltin(scene.Union),
		"difference":    booleanBuiltin(scene.Difference),
		"intersection":  booleanBuiltin(scene.Intersection),
		"translate":     transformBuiltin("by", scene.Translate),
		"rotate":        transformBuiltin("degrees", scene.Rotate),
		"voxel":         voxelBuiltin,
		"decomposition": decompositionBuiltin,
		"poisson":       poissonBuiltin,
		"part":          partBuiltin(r),
		"bake":          bakeBuiltin(r),
	}
	for name, fn := range fns {
		env.AddFunction(name, fn)
	}
}

// (vec3 1 2 3)
func vec3Builtin(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	if len(args) != 3 {
		return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
	}
	var c [3]float64
	for i, a := range args {
		f, err := toFloat64(a)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: %c: %w", "xyz"[i], err)
		}
		c[i] = f
	}
	return &sexpVec3{vec: v3.Vec{X: c[0], Y: c[1], Z: c[2]}}, nil
}

// (box 1 2 3) or (box :size (vec3 1 2 3))
func boxBuiltin(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	pa := parseArgs(args)
	if v, ok := pa.kw["size"]; ok {
		if len(pa.kw) > 1 || len(pa.positional) > 0 {
			return zygo.SexpNull, fmt.Errorf("box: :size cannot be combined with other arguments")
		}
		size, err := toVec3(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("box: size: %w", err)
		}
		return &sexpSolid{node: scene.Box(size)}, nil
	}
	if len(pa.kw) > 0 {
		return zygo.SexpNull, fmt.Errorf("box: unknown keyword :%s", pa.keywords()[0])
	}
	if len(pa.positional) == 1 {
		if size, err := toVec3(pa.positional[0]); err == nil {
			return &sexpSolid{node: scene.Box(size)}, nil
		}
	}
	v, err := vec3Builtin(env, name, pa.positional)
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("box: %w", err)
	}
	return &sexpSolid{node: scene.Box(v.(*sexpVec3).vec)}, nil
}

// (sphere 0.5) or (sphere :radius 0.5)
func sphereBuiltin(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	pa := parseArgs(args)
	var radius float64
	if len(pa.positional) == 1 {
		f, err := toFloat64(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("sphere: radius: %w", err)
		}
		radius = f
	} else if len(pa.positional) > 1 {
		return zygo.SexpNull, fmt.Errorf("sphere takes one radius, got %d arguments", len(pa.positional))
	}
	if err := pa.bind("sphere", map[string]any{"radius": &radius}); err != nil {
		return zygo.SexpNull, err
	}
	return &sexpSolid{node: scene.Sphere(radius)}, nil
}

// (cylinder :height 2 :radius 0.5)
func cylinderBuiltin(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	pa := parseArgs(args)
	if len(pa.positional) > 0 {
		return zygo.SexpNull, fmt.Errorf("cylinder takes only :height and :radius")
	}
	var height, radius float64
	if err := pa.bind("cylinder", map[string]any{"height": &height, "radius": &radius}); err != nil {
		return zygo.SexpNull, err
	}
	return &sexpSolid{node: scene.Cylinder(height, radius)}, nil
}

// (union a b ...), (difference a b ...), (intersection a b ...)
func booleanBuiltin(build func(...*scene.Node) *scene.Node) builtin {
	return func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) == 0 {
			return zygo.SexpNull, fmt.Errorf("%s requires at least one solid", name)
		}
		nodes, err := toSolids(name, args)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpSolid{node: build(nodes...)}, nil
	}
}

// (translate solid (vec3 ...)) or (translate solid :by (vec3 ...))
// (rotate solid (vec3 ...)) or (rotate solid :degrees (vec3 ...))
func transformBuiltin(kw string, build func(*scene.Node, v3.Vec) *scene.Node) builtin {
	return func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) == 0 {
			return zygo.SexpNull, fmt.Errorf("%s requires a solid", name)
		}
		child, err := toSolid(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
		}

		vecArg, hasKW := pa.kw[kw]
		switch {
		case len(pa.kw) > 1 || (len(pa.kw) == 1 && !hasKW):
			return zygo.SexpNull, fmt.Errorf("%s: unknown keyword :%s", name, pa.keywords()[0])
		case hasKW && len(pa.positional) == 1:
		case !hasKW && len(pa.positional) == 2:
			vecArg = pa.positional[1]
		default:
			return zygo.SexpNull, fmt.Errorf("%s requires a solid and one vec3", name)
		}

		vec, err := toVec3(vecArg)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
		}
		return &sexpSolid{node: build(child, vec)}, nil
	}
}

// gridFields maps grid keywords onto g. The returned check rejects
// :cell-size together with :cells-per-edge and switches the grid to
// cells-per-edge mode when that keyword is present.
func gridFields(form string, pa kwArgs, g *bake.GridSettings, fields map[string]any) func() error {
	fields["cell-size"] = &g.CellSize
	fields["cells-per-edge"] = &g.CellsPerEdge
	fields["padding"] = &g.Padding
	return func() error {
		_, size := pa.kw["cell-size"]
		_, count := pa.kw["cells-per-edge"]
		if size && count {
			return fmt.Errorf("%s: :cell-size and :cells-per-edge are mutually exclusive", form)
		}
		if count {
			g.UseCellsPerEdge = true
		}
		return nil
	}
}

// (voxel :cell-size 0.1 :merge true :max-boxes 500 ...)
func voxelBuiltin(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	pa := parseArgs(args)
	if len(pa.positional) > 0 {
		return zygo.SexpNull, fmt.Errorf("voxel takes only keyword arguments")
	}
	s := bake.DefaultVoxelSettings()
	fields := map[string]any{
		"size-multiplier": &s.SizeMultiplier,
		"merge":           &s.Merge,
		"max-boxes":       &s.MaxBoxes,
		"ray-directions":  &s.RayDirections,
		"workers":         &s.Workers,
		"trigger":         &s.Trigger,
	}
	check := gridFields("voxel", pa, &s.GridSettings, fields)
	if err := check(); err != nil {
		return zygo.SexpNull, err
	}
	if err := pa.bind("voxel", fields); err != nil {
		return zygo.SexpNull, err
	}
	return &sexpSettings{settings: s}, nil
}

// (decomposition :cells-per-edge 8 :max-fragments 64 :convex true ...)
func decompositionBuiltin(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	pa := parseArgs(args)
	if len(pa.positional) > 0 {
		return zygo.SexpNull, fmt.Errorf("decomposition takes only keyword arguments")
	}
	s := bake.DefaultDecompositionSettings()
	fields := map[string]any{
		"max-fragments":  &s.MaxFragments,
		"min-triangles":  &s.MinTriangles,
		"warn-triangles": &s.WarnTriangles,
		"convex":         &s.Convex,
		"trigger":        &s.Trigger,
	}
	check := gridFields("decomposition", pa, &s.GridSettings, fields)
	if err := check(); err != nil {
		return zygo.SexpNull, err
	}
	if err := pa.bind("decomposition", fields); err != nil {
		return zygo.SexpNull, err
	}
	return &sexpSettings{settings: s}, nil
}

// (poisson :radius 0.2 :target-count 100 :seed 7 ...)
func poissonBuiltin(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	pa := parseArgs(args)
	if len(pa.positional) > 0 {
		return zygo.SexpNull, fmt.Errorf("poisson takes only keyword arguments")
	}
	s := bake.DefaultPoissonSettings()
	err := pa.bind("poisson", map[string]any{
		"radius":                   &s.Radius,
		"target-count":             &s.TargetCount,
		"max-attempts":             &s.MaxAttempts,
		"inset-distance":           &s.InsetDistance,
		"collider-radius":          &s.ColliderRadius,
		"auto-coverage":            &s.AutoCoverage,
		"collider-to-sample-ratio": &s.ColliderToSampleRatio,
		"inset-fraction":           &s.InsetFraction,
		"coverage-fraction":        &s.CoverageFraction,
		"strict-spacing":           &s.StrictSpacing,
		"seed":                     &s.Seed,
		"trigger":                  &s.Trigger,
	})
	if err != nil {
		return zygo.SexpNull, err
	}
	return &sexpSettings{settings: s}, nil
}

// (part "name" solid)
func partBuiltin(r *Recipe) builtin {
	return func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("part requires a name and a solid")
		}
		partName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("part: name: %w", err)
		}
		root, err := toSolid(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("part %q: %w", partName, err)
		}
		r.Scene.AddPart(partName, root)
		return args[1], nil
	}
}

// (bake "name" (voxel ...)) or (bake "name" (poisson ...) :parts (list "a" "b"))
func bakeBuiltin(r *Recipe) builtin {
	return func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 2 {
			return zygo.SexpNull, fmt.Errorf("bake requires a name and settings")
		}
		jobName, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("bake: name: %w", err)
		}
		st, ok := pa.positional[1].(*sexpSettings)
		if !ok {
			return zygo.SexpNull, fmt.Errorf("bake %q: expected voxel, decomposition or poisson settings, got %T", jobName, pa.positional[1])
		}

		job := Job{Name: jobName, Settings: st.settings}
		for _, kw := range pa.keywords() {
			if kw != "parts" {
				return zygo.SexpNull, fmt.Errorf("bake %q: unknown keyword :%s", jobName, kw)
			}
			if job.Parts, err = toStrings(pa.kw[kw]); err != nil {
				return zygo.SexpNull, fmt.Errorf("bake %q: parts: %w", jobName, err)
			}
		}
		if err := st.settings.Validate(); err != nil {
			return zygo.SexpNull, fmt.Errorf("bake %q: %w", jobName, err)
		}

		r.Jobs = append(r.Jobs, job)
		return st, nil
	}
}
