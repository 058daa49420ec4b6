// Package analysis inspects what is left of the error once a run ends.
//
// [ResidualSpectrum] transforms the luma difference between a candidate and
// its target and bins the power by spatial frequency. A run that has matched
// the broad colour fields but not the edges leaves most of its residual in
// the high bins:
//
//	s, err := analysis.ResidualSpectrum(target, candidate, 8)
//	if err == nil && s.HighShare() > 0.5 {
//	    // mostly fine detail missing
//	}
package analysis
