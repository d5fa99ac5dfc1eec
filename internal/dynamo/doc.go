// Package dynamo provides the state primitives shared by the secular
// integrator.
//
// The package defines:
//
//   - [State]: the flat coordinate vector integrated by the steppers
//   - [Slot]: a named 3-component view into a State (L1, e1, L2, e2, S1..S3)
//   - [Layout]: the averaging mode and spin count that fix a State's length
//   - [Derivative]: the right-hand-side signature every stepper consumes
//
// # Layout
//
//	[ L1 | e1 | L2 | e2 | S1 | S2 | S3 ]
//	  0    3    6    9    12   15   18
//
// Under single averaging the outer slots hold the instantaneous relative
// position and velocity of the tertiary instead of its orbit-averaged L2
// and e2. [R] and [V] name the same storage as [L2] and [E2]; code reading
// the outer orbit must go through [Layout.Averaging] to pick the meaning.
//
// # Thread Safety
//
// States are plain slices and are NOT safe for concurrent mutation. Each
// task owns its state exclusively.
package dynamo
