package main

import (
	"errors"
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/pthm-cable/fluidball/config"
)

func TestMeanLuma(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	if got := meanLuma(img); got != 0 {
		t.Errorf("black = %v, want 0", got)
	}
	for y := range 2 {
		for x := range 2 {
			img.Set(x, y, color.RGBA{255, 255, 255, 255})
		}
	}
	if got := meanLuma(img); math.Abs(got-1) > 1e-9 {
		t.Errorf("white = %v, want 1", got)
	}
}

func TestComputeFitness(t *testing.T) {
	tests := []struct {
		name string
		r    runResult
		want float64
	}{
		{"on target", runResult{luma: targetLuma, activity: 1}, 0},
		{"dark", runResult{luma: 0, activity: 1}, 100 * targetLuma * targetLuma},
		{"still", runResult{luma: targetLuma, activity: 0}, 100 * minActivity},
		{"failed", runResult{err: errors.New("boom")}, failedFitness},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := computeFitness(tt.r); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("fitness = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEvaluateRunsOnSoftDevice(t *testing.T) {
	if testing.Short() {
		t.Skip("runs the solver on the CPU")
	}
	pv := NewParamVector()
	fe := NewFitnessEvaluator(pv, 12, []int64{1, 2}, config.Defaults())

	f := fe.Evaluate(pv.DefaultVector())
	if f >= failedFitness {
		t.Fatalf("evaluation failed: fitness %v", f)
	}
	if q := fe.LastQuality(); q < 0 || q > 1 {
		t.Errorf("quality = %v outside [0, 1]", q)
	}
}
