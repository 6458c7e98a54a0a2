package studio

import "math"

// estimateCurrent returns estimated amps for an rgb frame at 20mA per
// channel full-scale.
func estimateCurrent(rgb []byte) float64 {
	var sum float64
	for i := 0; i+2 < len(rgb); i += 3 {
		sum += float64(rgb[i]) + float64(rgb[i+1]) + float64(rgb[i+2])
	}
	return sum / 255.0 * 0.020
}

// applyWhiteCap scales each LED so r+g+b <= whiteCap*3*255. A cap outside
// (0,1) disables it. Reports whether any LED was scaled.
func applyWhiteCap(rgb []byte, whiteCap float64) bool {
	if whiteCap <= 0 || whiteCap >= 1 {
		return false
	}
	capped := false
	limit := whiteCap * 3.0 * 255.0
	for i := 0; i+2 < len(rgb); i += 3 {
		s := float64(rgb[i]) + float64(rgb[i+1]) + float64(rgb[i+2])
		if s > limit && s > 0 {
			scale := limit / s
			rgb[i] = byte(math.Round(float64(rgb[i]) * scale))
			rgb[i+1] = byte(math.Round(float64(rgb[i+1]) * scale))
			rgb[i+2] = byte(math.Round(float64(rgb[i+2]) * scale))
			capped = true
		}
	}
	return capped
}

const limiterKnee = 0.9

// applyBudget dims the whole frame so its estimated current stays under
// limitAmps. Below limiterKnee of the budget frames pass unchanged; above
// it the draw is compressed smoothly toward the budget and never reaches
// it. A limit <= 0 disables it.
func applyBudget(rgb []byte, limitAmps float64) bool {
	if limitAmps <= 0 {
		return false
	}
	total := estimateCurrent(rgb)
	if total <= 0 {
		return false
	}
	ratio := total / limitAmps
	if ratio <= limiterKnee {
		return false
	}
	// out is the compressed ratio: slope 1 at the knee, approaching 1.
	span := 1 - limiterKnee
	out := limiterKnee + span*(1-math.Exp(-(ratio-limiterKnee)/span))
	s := out / ratio
	for i := range rgb {
		rgb[i] = byte(math.Floor(float64(rgb[i]) * s))
	}
	return true
}
