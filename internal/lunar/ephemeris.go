package lunar

import (
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/base"
	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/meeus/v3/moonillum"
	"github.com/soniakeys/meeus/v3/moonphase"
	"github.com/soniakeys/unit"
)

// Phase is the Moon's geometry at an instant.
type Phase struct {
	Time time.Time `json:"time"`
	JD   float64   `json:"jd"`

	// Illuminated is the illuminated fraction of the disc, 0 to 1.
	Illuminated float64 `json:"illuminated"`

	// PhaseAngle is the Sun-Moon-Earth angle in degrees.
	PhaseAngle float64 `json:"phase_angle"`

	// Waxing is true while the illuminated fraction is growing.
	Waxing bool `json:"waxing"`
}

// Illumination returns the illuminated fraction of the Moon at t.
func Illumination(t time.Time) float64 {
	return illuminated(julian.TimeToJD(t))
}

func illuminated(jd float64) float64 {
	return base.Illuminated(moonillum.PhaseAngle3(jd))
}

// PhaseAt returns the Moon's phase at t.
func PhaseAt(t time.Time) Phase {
	jd := julian.TimeToJD(t)
	i := moonillum.PhaseAngle3(jd)

	// An hour is short enough that the fraction is monotonic across it
	// except exactly at new and full Moon.
	const hour = 1.0 / 24
	return Phase{
		Time:        t.UTC(),
		JD:          jd,
		Illuminated: base.Illuminated(i),
		PhaseAngle:  foldDegrees(i),
		Waxing:      illuminated(jd+hour) > illuminated(jd),
	}
}

// foldDegrees maps any angle onto [0, 180] degrees.
func foldDegrees(a unit.Angle) float64 {
	d := a.Mod1().Deg()
	if d > 180 {
		d = 360 - d
	}
	return d
}

// Window is a span of days centred on a full Moon.
type Window struct {
	Full  time.Time `json:"full"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls inside the window, inclusive.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// FullMoonWindow returns the full Moon nearest t and the window of the given
// number of days on either side of it.
func FullMoonWindow(t time.Time, days float64) Window {
	full := nearestFull(t)
	span := time.Duration(days * 24 * float64(time.Hour))
	return Window{
		Full:  full,
		Start: full.Add(-span),
		End:   full.Add(span),
	}
}

// nearestFull returns the instant of the full Moon closest to t. moonphase
// works from a decimal year and may land on the neighbouring lunation, so
// the candidates one synodic month either side are compared too.
func nearestFull(t time.Time) time.Time {
	const synodic = 29.530588861

	jd := julian.TimeToJD(t)
	year := float64(t.UTC().Year()) + float64(t.UTC().YearDay()-1)/365.25

	best := moonphase.Full(year)
	for _, y := range []float64{year - synodic/365.25, year + synodic/365.25} {
		if c := moonphase.Full(y); math.Abs(c-jd) < math.Abs(best-jd) {
			best = c
		}
	}
	return julian.JDToTime(best).UTC().Round(time.Minute)
}
