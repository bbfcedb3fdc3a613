// Measures follow write latency with async fan redundancy against the
// synchronous two-write path, plus follower/following page reads.
package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/d60-Lab/gin-blog/config"
	"github.com/d60-Lab/gin-blog/internal/repository"
	"github.com/d60-Lab/gin-blog/internal/service"
	"github.com/d60-Lab/gin-blog/pkg/database"
)

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func envInt(name string, def int) int {
	if s := os.Getenv(name); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func main() {
	cfg := must(config.Load())
	db := must(database.InitDB(cfg))

	userRepo := repository.NewUserRepository(db)
	followRepo := repository.NewFollowRepository(db)
	fanRepo := repository.NewFanRepository(db)
	replicator := service.NewFanReplicator(fanRepo, 100000)
	stop := replicator.Start(8)
	relSvc := service.NewRelationshipService(followRepo, fanRepo, replicator, nil)

	ctx := context.Background()
	n := envInt("N", 10000)
	conc := envInt("CONC", 1)
	page := envInt("PAGE", 50)

	// One celebrity author; everyone else follows them.
	hash := string(must(bcrypt.GenerateFromPassword([]byte("p"), bcrypt.MinCost)))
	celeb := must(userRepo.Create(ctx, "celeb-"+uuid.New().String()[:8], hash))
	users := make([]string, n)
	for i := range users {
		u := must(userRepo.Create(ctx, "u-"+uuid.New().String(), hash))
		users[i] = u.ID
	}

	// Async path: follow write + queued fan replication.
	asyncRecs := make([]time.Duration, 0, n)
	asyncCh := make(chan time.Duration, n)
	feed := make(chan int, n)
	for i := 0; i < n; i++ {
		feed <- i
	}
	close(feed)

	workers := conc
	if workers > n {
		workers = n
	}
	done := make(chan struct{}, workers)
	t0 := time.Now()
	for w := 0; w < workers; w++ {
		go func() {
			for i := range feed {
				st := time.Now()
				_ = relSvc.Follow(ctx, users[i], celeb.ID)
				asyncCh <- time.Since(st)
			}
			done <- struct{}{}
		}()
	}
	for w := 0; w < workers; w++ {
		<-done
	}
	close(asyncCh)
	for d := range asyncCh {
		asyncRecs = append(asyncRecs, d)
	}
	asyncDur := time.Since(t0)

	// Sync path: both index writes on the request.
	t1 := time.Now()
	for i := 0; i < n; i++ {
		_ = followRepo.Create(ctx, celeb.ID, users[i])
		_ = fanRepo.Create(ctx, users[i], celeb.ID)
	}
	syncDur := time.Since(t1)

	q0 := time.Now()
	_, _ = fanRepo.ListFans(ctx, celeb.ID, 0, page)
	fansDur := time.Since(q0)

	q1 := time.Now()
	_, _ = followRepo.ListFollowings(ctx, celeb.ID, 0, page)
	follDur := time.Since(q1)

	_ = stop(ctx)

	pct := func(vs []time.Duration, p float64) time.Duration {
		if len(vs) == 0 {
			return 0
		}
		xs := append([]time.Duration(nil), vs...)
		sort.Slice(xs, func(i, j int) bool { return xs[i] < xs[j] })
		k := int(math.Ceil(p*float64(len(xs)))) - 1
		if k < 0 {
			k = 0
		}
		if k >= len(xs) {
			k = len(xs) - 1
		}
		return xs[k]
	}

	fmt.Printf("N=%d, CONC=%d, PAGE=%d\n", n, conc, page)
	fmt.Printf("Async follow total: %v, per op: %v, p50: %v, p95: %v, p99: %v\n",
		asyncDur, asyncDur/time.Duration(n), pct(asyncRecs, 0.50), pct(asyncRecs, 0.95), pct(asyncRecs, 0.99))
	fmt.Printf("Sync (2 writes) total: %v, per op: %v\n", syncDur, syncDur/time.Duration(n))
	fmt.Printf("Query fans(%d): %v\n", page, fansDur)
	fmt.Printf("Query following(%d): %v\n", page, follDur)
}
