// Package runtime opens the store once per process and wires the raw,
// projection and fault families on top of it. It exposes health and
// storage counters to the admin surfaces.
//
// Example:
//
//	cfg := config.Default()
//	rt, err := runtime.Open(runtime.Options{Config: cfg, Logger: logger})
//	if err != nil { /* errors.Is(err, store.ErrOpen) */ }
//	defer rt.Close()
//	_ = rt.CheckHealth(context.Background())
//	_, _ = rt.Store().Write(ctx, key, value)
package runtime
