// Package topology holds the cloud topology model and the lifecycle events
// published when it changes.
//
// The model is pure data: a Topology contains Services, a Service contains
// Clusters and a Cluster contains Members. Events describe single
// transitions (a service created, a member activated) or carry a full
// snapshot (CompleteTopology).
//
// Every event has a canonical JSON text form, an envelope of
//
//	{"event_id": "...", "event_type": "...", "occurred_at": "...", "payload": {...}}
//
// produced by Marshal, and a structured protobuf form of the same envelope
// produced by ToStruct.
package topology
