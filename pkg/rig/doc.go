// Package rig computes the topology and physical-constraint configuration
// of multi-link elastic cable assemblies.
//
// An assembly is one cable: a chain of capsule-shaped rigid links running
// from a shared payload body to a structural anchor (a table for the single
// vertical cable, a counterweight box per cable in the radial layout). The
// package derives link counts from cable length and link pitch, computes
// per-link poses for the chosen layout, synthesizes the three joint
// archetypes (cable, fixed, universal), and wires links, payload and anchor
// together into index-addressable descriptor batches.
//
// The package is a pure computation: it emits descriptors for an external
// scene/physics collaborator and never executes physics itself.
//
// # Pipeline
//
//  1. Config.ValidateAndSetDefaults derives link pitch, link count and the
//     cable-joint numeric policy, rejecting degenerate input before any
//     descriptor is built.
//  2. ChooseLayout picks the vertical single-assembly path or the radial
//     multi-assembly path from the assembly count.
//  3. Builder produces one Assembly per cable; BuildAssemblies fans the
//     per-assembly builds out across goroutines and joins.
//
// # Usage
//
//	cfg := rig.Config{NumAssemblies: 4, AssemblyLength: 1.0, PayloadMass: 2.0}
//	stage := rig.Stage{UpAxis: spatial.UpZ, MetersPerUnit: 0.01}
//	assemblies, err := rig.BuildAssemblies(ctx, cfg, stage)
//	if err != nil {
//	    return err
//	}
//	// hand assemblies to the scene/physics collaborator
package rig
