package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

func runDemo(cctx *cli.Context) error {
	return run(cctx, func(ctx context.Context, e *env) error {
		return demo(ctx, e, cctx.Int("readers"))
	})
}

func demo(ctx context.Context, e *env, readers int) error {
	s := e.store
	log := e.logger.With("cmd", "demo")

	log.Info("testing basic put and get")
	for _, kv := range [][2]string{
		{"Apple", "A sweet red fruit"},
		{"Banana", "A sweet yellow fruit"},
	} {
		if _, err := s.Put(kv[0], kv[1]); err != nil {
			return err
		}
	}
	if err := expectValue(e, "Apple", "A sweet red fruit"); err != nil {
		return err
	}
	if err := expectValue(e, "Banana", "A sweet yellow fruit"); err != nil {
		return err
	}
	if _, ok, err := s.Get("Carrot"); err != nil || ok {
		return fmt.Errorf("expected Carrot to be absent (err=%v)", err)
	}
	log.Info("basic tests passed")

	log.Info("testing concurrent reads and writes", "readers", readers)
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if _, err := s.Put("Carrot", "An orange vegetable"); err != nil {
			return err
		}
		log.Info("writer added Carrot")
		replaced, err := s.Put("Apple", "A crunchy fruit")
		if err != nil {
			return err
		}
		if !replaced {
			return fmt.Errorf("expected Apple to be overwritten")
		}
		log.Info("writer updated Apple")
		return nil
	})

	for i := 0; i < readers; i++ {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			apple, _, err := s.Get("Apple")
			if err != nil {
				return err
			}
			carrot, ok, err := s.Get("Carrot")
			if err != nil {
				return err
			}
			if !ok {
				carrot = "N/A"
			}
			log.Info("reader observed", "reader", i, "apple", apple, "carrot", carrot)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	if err := expectValue(e, "Apple", "A crunchy fruit"); err != nil {
		return err
	}
	if _, ok, _ := s.Get("Carrot"); !ok {
		return fmt.Errorf("expected Carrot to be present")
	}

	for i := 0; ; i++ {
		entry, ok := s.GetNth(i)
		if !ok {
			break
		}
		fmt.Printf("%d\t%s\t%s\n", i, entry.Key, entry.Value)
	}

	log.Info("all tests passed", "keys", s.Len())
	return nil
}

func expectValue(e *env, key, want string) error {
	got, ok, err := e.store.Get(key)
	if err != nil {
		return err
	}
	if !ok || got != want {
		return fmt.Errorf("get %q: expected %q, got %q (found=%v)", key, want, got, ok)
	}
	return nil
}
