// Package control provides feedback control of the annealing temperature.
//
// The default schedule cools linearly and ignores how the search is going.
// [Adaptive] instead treats the acceptance rate as the process variable and
// steers the temperature with a [PID] loop so that a fixed share of
// candidates keeps being accepted:
//
//	sched := control.NewAdaptive(control.DefaultAdaptiveConfig())
//	d.SetSchedule(sched)
//	// Next is called by the driver before every step
package control
