package main

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

type stressConfig struct {
	Workers int
	Ops     int
	Keys    int
	Seed    int64
}

func runStress(cctx *cli.Context) error {
	config := stressConfig{
		Workers: cctx.Int("workers"),
		Ops:     cctx.Int("ops"),
		Keys:    cctx.Int("keys"),
		Seed:    cctx.Int64("seed"),
	}
	if config.Workers <= 0 || config.Ops < 0 || config.Keys <= 0 {
		return fmt.Errorf("workers and keys must be positive, ops non-negative")
	}
	return run(cctx, func(ctx context.Context, e *env) error {
		return stress(ctx, e, config)
	})
}

// stressKey spells i in base 26 so every key stays inside the store alphabet.
func stressKey(i int) string {
	b := []byte{'K'}
	for {
		b = append(b, byte('a'+i%26))
		i /= 26
		if i == 0 {
			return string(b)
		}
	}
}

func stress(ctx context.Context, e *env, config stressConfig) error {
	s := e.store
	log := e.logger.With("cmd", "stress")
	start := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < config.Workers; w++ {
		w := w
		rng := rand.New(rand.NewSource(config.Seed + int64(w)))
		g.Go(func() error {
			for i := 0; i < config.Ops; i++ {
				if i%1024 == 0 {
					if err := ctx.Err(); err != nil {
						return err
					}
				}
				key := stressKey(rng.Intn(config.Keys))
				switch op := rng.Intn(100); {
				case op < 40:
					if _, err := s.Put(key, fmt.Sprintf("w%d-%d", w, i)); err != nil {
						return err
					}
				case op < 70:
					if _, _, err := s.Get(key); err != nil {
						return err
					}
				case op < 85:
					if _, err := s.Delete(key); err != nil {
						return err
					}
				case op < 95:
					if n := s.Len(); n > 0 {
						s.GetNth(rng.Intn(n))
					}
				default:
					if n := s.Len(); n > 0 {
						s.DeleteNth(rng.Intn(n))
					}
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	entries := s.Entries()
	if len(entries) != s.Len() {
		return fmt.Errorf("entry count %d does not match length %d", len(entries), s.Len())
	}
	for i := range entries {
		if i > 0 && entries[i-1].Key >= entries[i].Key {
			return fmt.Errorf("entries out of order at rank %d: %q >= %q", i, entries[i-1].Key, entries[i].Key)
		}
		nth, ok := s.GetNth(i)
		if !ok || nth != entries[i] {
			return fmt.Errorf("rank %d: expected %v, got %v", i, entries[i], nth)
		}
	}

	log.Info("stress run verified",
		"workers", config.Workers,
		"ops", config.Workers*config.Ops,
		"keys", len(entries),
		"elapsed", time.Since(start),
	)
	return nil
}
