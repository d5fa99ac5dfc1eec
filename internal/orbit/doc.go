// Package orbit provides the vector algebra shared by every secular
// perturbation term.
//
// Orbits are described by their angular-momentum vector L and their
// eccentricity (Laplace-Runge-Lenz) vector e. The helpers here recover the
// scalar orbital quantities from those two vectors:
//
//   - [CalcOrbitArgs]: e², j², j, |L|, the circular angular momentum and a
//   - [CalcAEff]: the effective semi-major axis a·j used by the GR, de Sitter
//     and octupole rates
//   - [CalcA]: the semi-major axis alone
//
// and convert Keplerian elements into vectors ([UnitJ], [UnitE], [StateRV]).
//
// # Units
//
// Lengths are in AU, times in years and masses in solar masses, so that
// [G] = 4π² and [C] is the speed of light in AU/yr.
package orbit
