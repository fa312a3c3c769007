// Package grpcserver hosts the standard grpc.health.v1 service. The overall
// status ("") and the "rofka" service follow the store: SERVING while it is
// readable, NOT_SERVING otherwise and after shutdown.
//
// Example:
//
//	rt, _ := runtime.Open(runtime.Options{Config: cfg})
//	s := grpcserver.New(rt, logger)
//	ctx, cancel := context.WithCancel(context.Background())
//	defer cancel()
//	_ = s.ListenAndServe(ctx, ":50051")
package grpcserver
