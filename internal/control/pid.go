package control

import "math"

// PID is a textbook PID loop on a scalar process variable. IntegralLimit
// bounds the accumulated error; zero leaves it unbounded.
type PID struct {
	Kp            float64
	Ki            float64
	Kd            float64
	Target        float64
	IntegralLimit float64
	integral      float64
	prevErr       float64
	prevT         float64
	first         bool
}

func NewPID(kp, ki, kd, target float64) *PID {
	return &PID{
		Kp:     kp,
		Ki:     ki,
		Kd:     kd,
		Target: target,
		first:  true,
	}
}

// Compute returns the control output for measured at time t.
func (p *PID) Compute(measured, t float64) float64 {
	err := p.Target - measured

	if p.first {
		p.prevErr = err
		p.prevT = t
		p.first = false
		return p.Kp * err
	}

	dt := t - p.prevT
	if dt > 0 {
		p.integral += err * dt
		if p.IntegralLimit > 0 {
			p.integral = math.Max(-p.IntegralLimit, math.Min(p.IntegralLimit, p.integral))
		}
		derivative := (err - p.prevErr) / dt

		u := p.Kp*err + p.Ki*p.integral + p.Kd*derivative

		p.prevErr = err
		p.prevT = t

		return u
	}
	return p.Kp * err
}

// Reset clears integral and derivative state
func (p *PID) Reset() {
	p.integral = 0
	p.prevErr = 0
	p.prevT = 0
	p.first = true
}

func (p *PID) Integral() float64 { return p.integral }
