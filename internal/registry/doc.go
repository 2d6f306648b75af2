// Package registry provides the central store of model metadata.
//
// The Registry maps model names to their supported modes, the engines
// available per mode, the argument descriptors that translate user-facing
// argument names into each engine's native names, and the fit/predict
// modules that describe how to build engine calls. It also stores the
// executable side: the Go fit functions, predict functions, and pre/post
// hooks that manifests reference by name.
//
// Registration happens during process or test setup, in prerequisite order
// (model before mode, mode before engine, engine before arguments and
// modules); each register call validates its prerequisite exists. After
// startup the registry is validated once and treated as read-only.
package registry
