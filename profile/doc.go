// Package profile provides optional runtime profiling for the l20n command.
//
// Profiling is backed by [github.com/pkg/profile] and is compiled in only
// with the "pprof" build tag:
//
//	go build -tags pprof -o l20n .
//
// Without the tag, [Modes] is empty and [Profiler.Start] does nothing.
//
// # Modes
//
// allocs, block, clock, cpu, goroutine, heap, mem, mutex, thread, trace.
//
// # Usage
//
//	p := profile.Profiler{Mode: "cpu", Dir: "/tmp/profiles"}
//	defer p.Start().Stop()
//
// From the command line:
//
//	l20n --pprof-mode cpu resolve en.l20n
//	go tool pprof -http=: ~/.cache/l20n/pprof/cpu.pprof
//
// With the tag, [net/http/pprof] is imported so its handlers are registered
// on [net/http.DefaultServeMux] for programs that serve it.
package profile
