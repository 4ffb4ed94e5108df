// Command profile churns entities through a world under pkg/profile.
//
//	go build ./cmd/profile
//	./profile -mode mem
//	go tool pprof -http=":8000" -nodefraction=0.001 ./profile mem.pprof
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/pkg/profile"
	"github.com/rs/zerolog"

	"github.com/milk9111/cyan/ecs"
	"github.com/milk9111/cyan/ecs/component"
	"github.com/milk9111/cyan/ecs/system"
)

func main() {
	mode := flag.String("mode", "mem", "profile mode: cpu or mem")
	rounds := flag.Int("rounds", 50, "fresh worlds to build")
	iters := flag.Int("iters", 1000, "churn iterations per world")
	entities := flag.Int("entities", 1000, "entities created per iteration")
	flag.Parse()

	var opt func(*profile.Profile)
	switch *mode {
	case "cpu":
		opt = profile.CPUProfile
	case "mem":
		opt = profile.MemProfileAllocs
	default:
		fmt.Fprintf(os.Stderr, "profile: unknown mode %q\n", *mode)
		os.Exit(2)
	}

	p := profile.Start(opt, profile.ProfilePath("."), profile.NoShutdownHook)
	run(*rounds, *iters, *entities)
	p.Stop()
}

func run(rounds, iters, numEntities int) {
	motion := system.NewMotionSystem()
	for range rounds {
		w := ecs.NewWorld(ecs.WithLogger(zerolog.Nop()))
		ents := make([]ecs.Entity, 0, numEntities)

		for range iters {
			ents = ents[:0]
			for i := range numEntities {
				e := w.NewEntity()
				ecs.AddComponent(w, e, component.Transform{})
				if i%2 == 0 {
					ecs.AddComponent(w, e, component.Physics{Velocity: component.Vec3{X: 1, Y: 1}})
				}
				ents = append(ents, e)
			}
			motion.Update(w, 1)
			for _, e := range ents {
				w.DeleteEntity(e)
			}
			w.Collect()
		}
	}
}
