// Package secular assembles the orbit-averaged equations of motion of a
// hierarchical triple.
//
// A task selects its physics through a [Controller]: the averaging mode
// plus five switches (octupole, GR precession, GW radiation, spin-orbit
// coupling to the outer orbit, inner-outer orbit coupling). [Dispatch] maps
// that toggle set to one composed [dynamo.Derivative] before integration
// starts; the returned closure only visits the terms that are enabled.
//
// Terms:
//
//   - Lidov-Kozai, double or single averaged, quadrupole or quadrupole+octupole
//   - de Sitter spin-orbit and orbit-orbit precession
//   - GR apsidal precession
//   - GW radiation reaction
//
// Every term adds into the derivative accumulator; none overwrites it.
package secular
