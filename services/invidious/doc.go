// Package invidious is a multi-instance client for Invidious-style video
// metadata APIs.
//
// A Client holds an ordered, immutable list of instance base URLs. Each
// resolution tries the instances strictly in that order, once each, and
// returns the payload of the first one that answers with a 2xx status and a
// body that decodes into the expected shape. Individual failures are
// recorded, not returned; only when every instance failed does the caller
// see an *AllInstancesUnavailableError carrying one reason per instance.
//
// The pass is modelled as a small state machine (see State and Next) so the
// fallback rule can be tested without any network I/O.
package invidious
