package shaders

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/fluidball/gpu"
)

// Reference kernels mirror the GLSL fragment stages one for one. Each
// begins with what the vertex stage would have interpolated.

func neighbours(f gpu.Fragment) (l, r, t, b mgl32.Vec2) {
	uv := f.UV()
	ts := f.Vec2("texelSize")
	return uv.Sub(mgl32.Vec2{ts[0], 0}),
		uv.Add(mgl32.Vec2{ts[0], 0}),
		uv.Add(mgl32.Vec2{0, ts[1]}),
		uv.Sub(mgl32.Vec2{0, ts[1]})
}

func floor32(v float32) float32 { return float32(math.Floor(float64(v))) }

func clamp32(v, lo, hi float32) float32 { return max(lo, min(v, hi)) }

func copyTexture(f gpu.Fragment) mgl32.Vec4 {
	return f.Sample("uTexture", f.UV()).Mul(f.Float("value"))
}

func color(f gpu.Fragment) mgl32.Vec4 {
	return f.Vec4("color")
}

func checkerboard(f gpu.Fragment) mgl32.Vec4 {
	const scale = 25
	uv := f.UV()
	x := floor32(uv[0] * scale * f.Float("aspectRatio"))
	y := floor32(uv[1] * scale)
	v := float32(math.Mod(float64(x+y), 2))
	if v < 0 {
		v += 2
	}
	v = v*0.1 + 0.8
	return mgl32.Vec4{v, v, v, 1}
}

func linearToGamma(c mgl32.Vec3) mgl32.Vec3 {
	for i := range c {
		v := math.Max(float64(c[i]), 0)
		c[i] = float32(math.Max(1.055*math.Pow(v, 0.416666667)-0.055, 0))
	}
	return c
}

func display(f gpu.Fragment) mgl32.Vec4 {
	uv := f.UV()
	c := f.Sample("uTexture", uv).Vec3()

	if f.Defined(KeywordShading) {
		l, r, t, b := neighbours(f)
		lc := f.Sample("uTexture", l).Vec3()
		rc := f.Sample("uTexture", r).Vec3()
		tc := f.Sample("uTexture", t).Vec3()
		bc := f.Sample("uTexture", b).Vec3()

		dx := rc.Len() - lc.Len()
		dy := tc.Len() - bc.Len()
		n := mgl32.Vec3{dx, dy, f.Vec2("texelSize").Len()}.Normalize()
		diffuse := clamp32(n.Dot(mgl32.Vec3{0, 0, 1})+0.7, 0.7, 1.0)
		c = c.Mul(diffuse)
	}

	bloomOn := f.Defined(KeywordBloom)
	var bloom mgl32.Vec3
	if bloomOn {
		bloom = f.Sample("uBloom", uv).Vec3()
	}

	if f.Defined(KeywordSunrays) {
		s := f.Sample("uSunrays", uv)[0]
		c = c.Mul(s)
		if bloomOn {
			bloom = bloom.Mul(s)
		}
	}

	if bloomOn {
		ds := f.Vec2("ditherScale")
		noise := f.Sample("uDithering", mgl32.Vec2{uv[0] * ds[0], uv[1] * ds[1]})[0]
		noise = noise*2 - 1
		bloom = bloom.Add(mgl32.Vec3{1, 1, 1}.Mul(noise / 255))
		c = c.Add(linearToGamma(bloom))
	}

	a := max(c[0], c[1], c[2])
	return c.Vec4(a)
}

func splat(f gpu.Fragment) mgl32.Vec4 {
	uv := f.UV()
	p := uv.Sub(f.Vec2("point"))
	p[0] *= f.Float("aspectRatio")
	falloff := float32(math.Exp(float64(-p.Dot(p) / f.Float("radius"))))
	s := f.Vec3("color").Mul(falloff)
	base := f.Sample("uTarget", uv).Vec3()
	return base.Mul(f.Float("sourceMult")).Add(s).Vec4(1)
}

// bilerp is the manual four-tap filter used when the device cannot filter
// the field format.
func bilerp(f gpu.Fragment, sampler string, uv, tsize mgl32.Vec2) mgl32.Vec4 {
	st := mgl32.Vec2{uv[0]/tsize[0] - 0.5, uv[1]/tsize[1] - 0.5}
	iuv := mgl32.Vec2{floor32(st[0]), floor32(st[1])}
	fuv := st.Sub(iuv)

	at := func(ox, oy float32) mgl32.Vec4 {
		return f.Sample(sampler, mgl32.Vec2{(iuv[0] + ox) * tsize[0], (iuv[1] + oy) * tsize[1]})
	}
	a, b := at(0.5, 0.5), at(1.5, 0.5)
	c, d := at(0.5, 1.5), at(1.5, 1.5)
	return mix(mix(a, b, fuv[0]), mix(c, d, fuv[0]), fuv[1])
}

func mix(a, b mgl32.Vec4, t float32) mgl32.Vec4 {
	return a.Add(b.Sub(a).Mul(t))
}

func advection(f gpu.Fragment) mgl32.Vec4 {
	uv := f.UV()
	ts := f.Vec2("texelSize")
	dt := f.Float("dt")

	var vel mgl32.Vec2
	var result mgl32.Vec4
	if f.Defined(KeywordManualFiltering) {
		vel = bilerp(f, "uVelocity", uv, ts).Vec2()
		coord := mgl32.Vec2{uv[0] - dt*vel[0]*ts[0], uv[1] - dt*vel[1]*ts[1]}
		result = bilerp(f, "uSource", coord, f.Vec2("dyeTexelSize"))
	} else {
		vel = f.Sample("uVelocity", uv).Vec2()
		coord := mgl32.Vec2{uv[0] - dt*vel[0]*ts[0], uv[1] - dt*vel[1]*ts[1]}
		result = f.Sample("uSource", coord)
	}
	decay := 1 + f.Float("dissipation")*dt
	return result.Mul(1 / decay)
}

func divergence(f gpu.Fragment) mgl32.Vec4 {
	vl, vr, vt, vb := neighbours(f)
	L := f.Sample("uVelocity", vl)[0]
	R := f.Sample("uVelocity", vr)[0]
	T := f.Sample("uVelocity", vt)[1]
	B := f.Sample("uVelocity", vb)[1]

	c := f.Sample("uVelocity", f.UV())
	if vl[0] < 0 {
		L = -c[0]
	}
	if vr[0] > 1 {
		R = -c[0]
	}
	if vt[1] > 1 {
		T = -c[1]
	}
	if vb[1] < 0 {
		B = -c[1]
	}

	div := 0.5 * (R - L + T - B)
	return mgl32.Vec4{div, 0, 0, 1}
}

func curl(f gpu.Fragment) mgl32.Vec4 {
	vl, vr, vt, vb := neighbours(f)
	L := f.Sample("uVelocity", vl)[1]
	R := f.Sample("uVelocity", vr)[1]
	T := f.Sample("uVelocity", vt)[0]
	B := f.Sample("uVelocity", vb)[0]
	return mgl32.Vec4{0.5 * (R - L - T + B), 0, 0, 1}
}

func vorticity(f gpu.Fragment) mgl32.Vec4 {
	vl, vr, vt, vb := neighbours(f)
	uv := f.UV()
	L := f.Sample("uCurl", vl)[0]
	R := f.Sample("uCurl", vr)[0]
	T := f.Sample("uCurl", vt)[0]
	B := f.Sample("uCurl", vb)[0]
	C := f.Sample("uCurl", uv)[0]

	abs := func(v float32) float32 { return float32(math.Abs(float64(v))) }
	force := mgl32.Vec2{abs(T) - abs(B), abs(R) - abs(L)}.Mul(0.5)
	force = force.Mul(1 / (force.Len() + 0.0001))
	force = force.Mul(f.Float("curlStrength") * C)
	force[1] = -force[1]

	vel := f.Sample("uVelocity", uv).Vec2().Add(force.Mul(f.Float("dt")))
	vel[0] = clamp32(vel[0], -1000, 1000)
	vel[1] = clamp32(vel[1], -1000, 1000)
	return mgl32.Vec4{vel[0], vel[1], 0, 1}
}

func pressure(f gpu.Fragment) mgl32.Vec4 {
	vl, vr, vt, vb := neighbours(f)
	L := f.Sample("uPressure", vl)[0]
	R := f.Sample("uPressure", vr)[0]
	T := f.Sample("uPressure", vt)[0]
	B := f.Sample("uPressure", vb)[0]
	div := f.Sample("uDivergence", f.UV())[0]
	return mgl32.Vec4{(L + R + B + T - div) * 0.25, 0, 0, 1}
}

func gradientSubtract(f gpu.Fragment) mgl32.Vec4 {
	vl, vr, vt, vb := neighbours(f)
	L := f.Sample("uPressure", vl)[0]
	R := f.Sample("uPressure", vr)[0]
	T := f.Sample("uPressure", vt)[0]
	B := f.Sample("uPressure", vb)[0]
	vel := f.Sample("uVelocity", f.UV()).Vec2().Sub(mgl32.Vec2{R - L, T - B})
	return mgl32.Vec4{vel[0], vel[1], 0, 1}
}

func bloomPrefilter(f gpu.Fragment) mgl32.Vec4 {
	c := f.Sample("uTexture", f.UV()).Vec3()
	curve := f.Vec3("curve")
	threshold := f.Float("threshold")

	br := max(c[0], c[1], c[2])
	rq := clamp32(br-curve[0], 0, curve[1])
	rq = curve[2] * rq * rq
	c = c.Mul(max(rq, br-threshold) / max(br, 0.0001))
	return c.Vec4(0)
}

func crossAverage(f gpu.Fragment) mgl32.Vec4 {
	vl, vr, vt, vb := neighbours(f)
	sum := f.Sample("uTexture", vl).
		Add(f.Sample("uTexture", vr)).
		Add(f.Sample("uTexture", vt)).
		Add(f.Sample("uTexture", vb))
	return sum.Mul(0.25)
}

func bloomBlur(f gpu.Fragment) mgl32.Vec4 {
	return crossAverage(f)
}

func bloomFinal(f gpu.Fragment) mgl32.Vec4 {
	return crossAverage(f).Mul(f.Float("intensity"))
}

func sunraysMask(f gpu.Fragment) mgl32.Vec4 {
	c := f.Sample("uTexture", f.UV())
	br := max(c[0], c[1], c[2])
	c[3] = 1 - min(max(br*20, 0), 0.8)
	return c
}

func sunrays(f gpu.Fragment) mgl32.Vec4 {
	const (
		iterations = 16
		density    = 0.3
		decay      = 0.95
		exposure   = 0.7
	)
	uv := f.UV()
	weight := f.Float("weight")
	dir := uv.Sub(f.Vec2("center")).Mul(1.0 / iterations * density)

	coord := uv
	illumination := float32(1)
	col := f.Sample("uTexture", uv)[3]
	for range iterations {
		coord = coord.Sub(dir)
		col += f.Sample("uTexture", coord)[3] * illumination * weight
		illumination *= decay
	}
	return mgl32.Vec4{col * exposure, 0, 0, 1}
}

func blur(f gpu.Fragment) mgl32.Vec4 {
	const offset = 1.33333333
	uv := f.UV()
	ts := f.Vec2("texelSize").Mul(offset)
	sum := f.Sample("uTexture", uv).Mul(0.29411764)
	sum = sum.Add(f.Sample("uTexture", uv.Sub(ts)).Mul(0.35294117))
	sum = sum.Add(f.Sample("uTexture", uv.Add(ts)).Mul(0.35294117))
	return sum
}
