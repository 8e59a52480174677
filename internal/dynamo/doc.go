// Package dynamo holds the primitives shared by every other package: the
// error taxonomy and the random source the dynamics draw from.
//
//   - [ErrConfiguration], [ErrNumericDomain], [ErrEmptySeries], [ErrStopped]
//   - [ParamError]: wraps a sentinel with the offending parameter
//   - [Random]: the draws a site-update rule needs
//   - [NewRandom]: seeded PCG source
//
// A Random is NOT safe for concurrent use. Every simulator owns its own
// source; parallel runs are seeded independently.
package dynamo
